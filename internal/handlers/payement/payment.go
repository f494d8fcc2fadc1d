package payement

import (
	"context"
	"net/http"

	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency, userID string, metadata map[string]string) (*services.IntentResult, error)
	CreateCheckoutSession(ctx context.Context, req services.CheckoutRequest) (*services.CheckoutResult, error)
}

type Completer interface {
	Complete(ctx context.Context, req services.CompletionRequest) (*services.CompletionOutcome, error)
	Verify(ctx context.Context, paymentIntentID, sessionID, userEmail string) (*models.PaymentRecord, error)
}

// Handler regroupe les routes /api de paiement
type Handler struct {
	gateway        Gateway
	completion     Completer
	publishableKey string
	log            *zap.Logger
}

func NewHandler(gateway Gateway, completion Completer, publishableKey string, log *zap.Logger) *Handler {
	return &Handler{gateway: gateway, completion: completion, publishableKey: publishableKey, log: log}
}

// GET /api/stripe-config
func (h *Handler) StripeConfig(c *gin.Context) {
	utils.Respond(c, "Stripe config retrieved successfully", gin.H{"publishableKey": h.publishableKey})
}

// POST /api/create-payment-intent
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req struct {
		Amount   float64           `json:"amount"`
		Currency string            `json:"currency"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "Amount is required and must be greater than 0", nil)
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	intent, err := h.gateway.CreateIntent(c.Request.Context(), req.Amount, req.Currency, userID, req.Metadata)
	if err != nil {
		h.log.Error("❌ Erreur Stripe PaymentIntent", zap.String("user_id", userID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}

	h.log.Info("💳 PaymentIntent créé", zap.String("payment_intent_id", intent.PaymentIntentID), zap.Float64("amount", req.Amount))
	utils.Respond(c, "Payment intent created successfully", intent)
}

// POST /api/create-checkout-session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req struct {
		Items      []models.CartLine `json:"items"`
		SuccessURL string            `json:"successUrl"`
		CancelURL  string            `json:"cancelUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "Items array is required", nil)
		return
	}

	session, err := h.gateway.CreateCheckoutSession(c.Request.Context(), services.CheckoutRequest{
		Items:      req.Items,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		UserID:     c.GetString(middleware.CtxUserID),
	})
	if err != nil {
		h.log.Error("❌ Erreur Stripe Checkout", zap.Error(err))
		utils.RespondError(c, err)
		return
	}

	h.log.Info("🛒 Session Checkout créée", zap.String("session_id", session.SessionID), zap.Int("items", len(req.Items)))
	utils.Respond(c, "Checkout session created successfully", session)
}

type paymentRef struct {
	PaymentIntentID string `json:"paymentIntentId"`
	SessionID       string `json:"sessionId"`
	UserEmail       string `json:"userEmail"`
}

// POST /api/verify-payment
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req paymentRef
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "Payment Intent ID or Session ID is required", nil)
		return
	}

	record, err := h.completion.Verify(c.Request.Context(), req.PaymentIntentID, req.SessionID, req.UserEmail)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, "Payment details retrieved successfully", record)
}

type completionResponse struct {
	PaymentData *models.PaymentRecord `json:"paymentData"`
	OrderID     string                `json:"orderId"`
	EmailSent   bool                  `json:"emailSent"`
	Duplicate   bool                  `json:"duplicate"`
}

// POST /api/process-payment-success
func (h *Handler) ProcessPaymentSuccess(c *gin.Context) {
	var req struct {
		paymentRef
		OrderItems []models.CartLine `json:"orderItems"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	h.log.Info("📦 Traitement paiement réussi",
		zap.String("payment_intent_id", req.PaymentIntentID),
		zap.String("session_id", req.SessionID),
		zap.Int("items", len(req.OrderItems)))

	outcome, err := h.completion.Complete(c.Request.Context(), services.CompletionRequest{
		PaymentIntentID: req.PaymentIntentID,
		SessionID:       req.SessionID,
		UserEmail:       req.UserEmail,
		Items:           req.OrderItems,
	})
	if err != nil {
		state := services.StateFailed
		if outcome != nil {
			state = outcome.State
		}
		h.log.Warn("⚠️ Paiement non traité", zap.String("state", string(state)), zap.Error(err))
		utils.RespondError(c, err)
		return
	}

	resp := completionResponse{
		PaymentData: outcome.Payment,
		OrderID:     outcome.Order.ID.String(),
		EmailSent:   outcome.EmailSent(),
		Duplicate:   outcome.Duplicate,
	}
	utils.Respond(c, completionMessage(resp), resp)
}

func completionMessage(r completionResponse) string {
	switch {
	case r.Duplicate:
		return "Payment already processed. Existing order returned."
	case r.EmailSent:
		return "Payment processed successfully. Order saved to database. Confirmation email sent."
	default:
		return "Payment processed successfully. Order saved to database. Email sending failed - please check your email settings."
	}
}
