package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront_back_end/internal/metrics"
	"storefront_back_end/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletionState suit une confirmation de paiement de bout en bout
type CompletionState string

const (
	StatePending   CompletionState = "pending"
	StateVerifying CompletionState = "verifying"
	StateCompleted CompletionState = "completed"
	StateRejected  CompletionState = "rejected"
	StateFailed    CompletionState = "failed"
)

type PaymentVerifier interface {
	RetrieveByIntentID(ctx context.Context, id string) (*models.PaymentRecord, error)
	RetrieveByCheckoutSessionID(ctx context.Context, id string) (*models.PaymentRecord, error)
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateEmailSent(ctx context.Context, order *models.Order, sent bool) error
	ClaimPayment(ctx context.Context, paymentID string, claim models.PaymentClaim) (models.PaymentClaim, bool, error)
	TakeOverPayment(ctx context.Context, paymentID string, stale uuid.UUID, claim models.PaymentClaim) (bool, error)
	ReleasePayment(ctx context.Context, paymentID string, orderID uuid.UUID) error
}

type UserByEmail interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ConfirmationSender interface {
	SendPaymentConfirmation(ctx context.Context, recipient string, record *models.PaymentRecord, items []models.OrderItem) NotificationResult
}

type OrderIndexer interface {
	IndexOrder(ctx context.Context, order *models.Order) error
}

type CompletionRequest struct {
	PaymentIntentID string
	SessionID       string
	UserEmail       string
	Items           []models.CartLine
}

// CompletionOutcome sépare ce qui a été persisté de ce qui a été notifié :
// une commande enregistrée reste acquise même si le mail échoue.
type CompletionOutcome struct {
	State        CompletionState
	Payment      *models.PaymentRecord
	Order        *models.Order
	Notification *NotificationResult
	Duplicate    bool
}

func (o *CompletionOutcome) EmailSent() bool {
	if o.Notification != nil {
		return o.Notification.Success
	}
	return o.Order != nil && o.Order.EmailSent
}

var (
	ErrPaymentNotSuccessful = models.NewValidationError("Payment was not successful")
	ErrPaymentInProgress    = models.NewConflictError("Payment is already being processed, please retry")
)

// Au-delà de ce délai, une réservation sans commande est considérée abandonnée
const defaultClaimTimeout = 30 * time.Second

type PaymentCompletionService struct {
	payments PaymentVerifier
	orders   OrderWriter
	users    UserByEmail
	mailer   ConfirmationSender
	index    OrderIndexer
	metrics  *metrics.Collector
	dedup    bool
	claimTTL time.Duration
	now      func() time.Time
	log      *zap.Logger
}

type CompletionDeps struct {
	Payments PaymentVerifier
	Orders   OrderWriter
	Users    UserByEmail
	Mailer   ConfirmationSender
	Index    OrderIndexer // optionnel
	Metrics  *metrics.Collector
	Dedup    bool
	Log      *zap.Logger
}

func NewPaymentCompletionService(deps CompletionDeps) *PaymentCompletionService {
	return &PaymentCompletionService{
		payments: deps.Payments,
		orders:   deps.Orders,
		users:    deps.Users,
		mailer:   deps.Mailer,
		index:    deps.Index,
		metrics:  deps.Metrics,
		dedup:    deps.Dedup,
		claimTTL: defaultClaimTimeout,
		now:      time.Now,
		log:      deps.Log,
	}
}

// Retrieve récupère le paiement Stripe, l'intent l'emporte si les deux ids sont fournis
func Retrieve(ctx context.Context, payments PaymentVerifier, paymentIntentID, sessionID string) (*models.PaymentRecord, error) {
	switch {
	case paymentIntentID != "":
		return payments.RetrieveByIntentID(ctx, paymentIntentID)
	case sessionID != "":
		return payments.RetrieveByCheckoutSessionID(ctx, sessionID)
	default:
		return nil, models.NewValidationError("Payment Intent ID or Session ID is required")
	}
}

// Complete vérifie le paiement, enregistre la commande puis envoie la confirmation.
// L'erreur renvoyée porte son ErrorKind ; l'outcome est toujours non nil.
func (s *PaymentCompletionService) Complete(ctx context.Context, req CompletionRequest) (outcome *CompletionOutcome, err error) {
	outcome = &CompletionOutcome{State: StatePending}
	defer func() {
		s.metrics.RecordCompletion(string(outcome.State))
	}()

	if strings.TrimSpace(req.UserEmail) == "" {
		outcome.State = StateRejected
		return outcome, models.NewValidationError("User email is required")
	}
	if req.PaymentIntentID == "" && req.SessionID == "" {
		outcome.State = StateRejected
		return outcome, models.NewValidationError("Payment Intent ID or Session ID is required")
	}

	// 1. Vérification Stripe
	outcome.State = StateVerifying
	record, err := Retrieve(ctx, s.payments, req.PaymentIntentID, req.SessionID)
	if err != nil {
		outcome.State = StateFailed
		return outcome, err
	}
	outcome.Payment = record

	s.log.Info("💳 Paiement récupéré",
		zap.String("payment_id", record.ID),
		zap.String("status", record.RawStatus),
		zap.Int64("amount", record.AmountMinor))

	if !record.Status.Succeeded() {
		outcome.State = StateRejected
		return outcome, ErrPaymentNotSuccessful
	}

	// 2. Utilisateur
	user, err := s.users.GetUserByEmail(ctx, req.UserEmail)
	if err != nil {
		outcome.State = StateFailed
		if models.KindOf(err) == models.KindNotFound {
			return outcome, models.NewNotFoundError("User not found", err)
		}
		return outcome, models.NewInternalError("Failed to process payment success", err)
	}

	// 3. Commande (+ réservation du paiement si le dédoublonnage est actif)
	order := s.buildOrder(req, record, user)
	paymentKey := record.ProcessorPaymentID()

	if s.dedup {
		claim := models.PaymentClaim{OrderID: order.ID, ClaimedAt: s.now().UTC().Truncate(time.Millisecond)}
		current, claimed, err := s.orders.ClaimPayment(ctx, paymentKey, claim)
		if err != nil {
			outcome.State = StateFailed
			return outcome, models.NewInternalError("Failed to process payment success", err)
		}
		if !claimed {
			existing, err := s.resolveClaim(ctx, paymentKey, current, claim)
			if err != nil {
				outcome.State = StateFailed
				return outcome, err
			}
			if existing != nil {
				outcome.Order = existing
				outcome.Duplicate = true
				outcome.State = StateCompleted
				return outcome, nil
			}
		}
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if s.dedup {
			// La requête peut être annulée : la libération ne doit pas l'être
			if relErr := s.orders.ReleasePayment(context.WithoutCancel(ctx), paymentKey, order.ID); relErr != nil {
				s.log.Error("❌ Libération du paiement échouée", zap.String("payment_id", paymentKey), zap.Error(relErr))
			}
		}
		outcome.State = StateFailed
		return outcome, models.NewInternalError("Failed to process payment success", err)
	}
	outcome.Order = order
	s.log.Info("✅ Commande enregistrée", zap.String("order_id", order.ID.String()), zap.String("user_id", user.ID))

	// 4. Indexation (best effort)
	if s.index != nil {
		if err := s.index.IndexOrder(ctx, order); err != nil {
			s.log.Warn("⚠️ Indexation Elasticsearch échouée", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	// 5. Confirmation par mail, jamais bloquante
	result := s.mailer.SendPaymentConfirmation(ctx, req.UserEmail, record, order.OrderItems)
	outcome.Notification = &result
	s.metrics.RecordNotification(result.Success)

	if err := s.orders.UpdateEmailSent(ctx, order, result.Success); err != nil {
		s.log.Warn("⚠️ Mise à jour email_sent échouée", zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	outcome.State = StateCompleted
	return outcome, nil
}

// Verify relit le paiement et, s'il a réussi et qu'un email est fourni,
// envoie la confirmation. L'échec du mail n'affecte pas la réponse.
func (s *PaymentCompletionService) Verify(ctx context.Context, paymentIntentID, sessionID, userEmail string) (*models.PaymentRecord, error) {
	record, err := Retrieve(ctx, s.payments, paymentIntentID, sessionID)
	if err != nil {
		return nil, err
	}

	if record.Status.Succeeded() && strings.TrimSpace(userEmail) != "" {
		result := s.mailer.SendPaymentConfirmation(ctx, userEmail, record, nil)
		s.metrics.RecordNotification(result.Success)
		if !result.Success {
			s.log.Warn("⚠️ Confirmation non envoyée", zap.String("payment_id", record.ID), zap.String("error", result.Error))
		}
	}
	return record, nil
}

// resolveClaim traite un paiement déjà réservé. Renvoie la commande existante,
// ou nil si la réservation orpheline a été reprise pour claim.
func (s *PaymentCompletionService) resolveClaim(ctx context.Context, paymentKey string, current, claim models.PaymentClaim) (*models.Order, error) {
	existing, err := s.orders.GetOrderByID(ctx, current.OrderID)
	if err == nil {
		s.log.Info("🔁 Paiement déjà traité", zap.String("payment_id", paymentKey), zap.String("order_id", existing.ID.String()))
		return existing, nil
	}
	if !errors.Is(err, models.ErrOrderNotFound) {
		return nil, models.NewInternalError("Failed to process payment success", err)
	}

	// Réservation sans commande : insertion en cours ou abandonnée
	if age := claim.ClaimedAt.Sub(current.ClaimedAt); age < s.claimTTL {
		s.log.Warn("⏳ Paiement en cours de traitement",
			zap.String("payment_id", paymentKey), zap.String("order_id", current.OrderID.String()), zap.Duration("age", age))
		return nil, ErrPaymentInProgress
	}

	taken, err := s.orders.TakeOverPayment(ctx, paymentKey, current.OrderID, claim)
	if err != nil {
		return nil, models.NewInternalError("Failed to process payment success", err)
	}
	if !taken {
		return nil, ErrPaymentInProgress
	}
	s.log.Warn("♻️ Réservation orpheline reprise",
		zap.String("payment_id", paymentKey), zap.String("stale_order_id", current.OrderID.String()), zap.String("order_id", claim.OrderID.String()))
	return nil, nil
}

func (s *PaymentCompletionService) buildOrder(req CompletionRequest, record *models.PaymentRecord, user *models.User) *models.Order {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:    line.ResolvedProductID(),
			ProductName:  line.ResolvedName(),
			ProductImage: line.ResolvedImage(),
			Price:        line.Price,
			Quantity:     line.Quantity,
			Total:        models.LineTotal(line.Price, line.Quantity),
		})
	}

	total := models.FromMinorUnits(record.AmountMinor)
	if itemsTotal := models.SumLineTotals(items); len(items) > 0 && itemsTotal != total {
		s.log.Warn("⚠️ Montant Stripe différent du total des lignes",
			zap.Float64("stripe_total", total), zap.Float64("items_total", itemsTotal))
	}

	paymentStatus := record.RawStatus
	if paymentStatus == "" {
		paymentStatus = "paid"
	}
	currency := record.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	return &models.Order{
		ID:         uuid.New(),
		UserID:     user.ID,
		UserEmail:  req.UserEmail,
		UserName:   user.Name,
		OrderItems: items,
		PaymentDetails: models.PaymentDetails{
			PaymentIntentID: req.PaymentIntentID,
			SessionID:       req.SessionID,
			PaymentMethod:   "card",
			PaymentStatus:   paymentStatus,
			Amount:          total,
			Currency:        currency,
			StripePaymentID: record.ID,
		},
		OrderStatus: models.OrderStatusConfirmed,
		TotalAmount: total,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		EmailSent:   false,
	}
}
