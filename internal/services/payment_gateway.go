package services

import (
	"context"
	"errors"
	"strings"

	"storefront_back_end/internal/models"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

const defaultCurrency = "usd"

// IntentResult est renvoyé au front pour confirmer le paiement côté Stripe.js
type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type CheckoutRequest struct {
	Items      []models.CartLine
	SuccessURL string
	CancelURL  string
	UserID     string
}

type intentClient interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type sessionClient interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway encapsule les appels Stripe (PaymentIntent + Checkout Session)
type StripeGateway struct {
	intents     intentClient
	sessions    sessionClient
	currency    string
	frontendURL string
}

// NewStripeGateway construit les clients par ressource. backend nil = API Stripe réelle.
func NewStripeGateway(secretKey, currency, frontendURL string, backend stripe.Backend) *StripeGateway {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	if currency == "" {
		currency = defaultCurrency
	}
	return &StripeGateway{
		intents:     &paymentintent.Client{B: backend, Key: secretKey},
		sessions:    &session.Client{B: backend, Key: secretKey},
		currency:    currency,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// CreateIntent crée un PaymentIntent de round(amount × 100) centimes
func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency, userID string, metadata map[string]string) (*IntentResult, error) {
	minor, err := models.ToMinorUnits(amount)
	if err != nil {
		return nil, models.NewValidationError("Amount is required and must be greater than 0")
	}
	if currency == "" {
		currency = g.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("userId", userID)

	intent, err := g.intents.New(params)
	if err != nil {
		return nil, upstream("Error creating payment intent", err)
	}

	return &IntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// CreateCheckoutSession crée une session Checkout hébergée par Stripe
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, models.NewValidationError("Items array is required")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		unit, err := models.ToMinorUnits(item.Price)
		if err != nil {
			return nil, models.NewValidationError("Invalid price for " + item.ResolvedName())
		}
		quantity := int64(item.Quantity)
		if quantity <= 0 {
			quantity = 1
		}

		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.ResolvedName()),
		}
		if image := item.ResolvedImage(); image != "" {
			product.Images = stripe.StringSlice([]string{image})
		}
		if item.Description != "" {
			product.Description = stripe.String(item.Description)
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(defaultCurrency),
				ProductData: product,
				UnitAmount:  stripe.Int64(unit),
			},
			Quantity: stripe.Int64(quantity),
		})
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = g.frontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = g.frontendURL + "/payment/cancel"
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("userId", req.UserID)

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, upstream("Error creating checkout session", err)
	}

	return &CheckoutResult{SessionID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) RetrieveByIntentID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.intents.Get(id, params)
	if err != nil {
		return nil, upstream("Error verifying payment", err)
	}

	raw := string(intent.Status)
	return &models.PaymentRecord{
		ID:              intent.ID,
		Kind:            models.PaymentKindIntent,
		RawStatus:       raw,
		Status:          models.ParsePaymentStatus(models.PaymentKindIntent, raw),
		AmountMinor:     intent.Amount,
		Currency:        string(intent.Currency),
		PaymentIntentID: intent.ID,
		Metadata:        intent.Metadata,
	}, nil
}

func (g *StripeGateway) RetrieveByCheckoutSessionID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sessions.Get(id, params)
	if err != nil {
		return nil, upstream("Error verifying payment", err)
	}

	raw := string(s.PaymentStatus)
	record := &models.PaymentRecord{
		ID:          s.ID,
		Kind:        models.PaymentKindCheckoutSession,
		RawStatus:   raw,
		Status:      models.ParsePaymentStatus(models.PaymentKindCheckoutSession, raw),
		AmountMinor: s.AmountTotal,
		Currency:    string(s.Currency),
		SessionID:   s.ID,
		Metadata:    s.Metadata,
	}
	if s.PaymentIntent != nil {
		record.PaymentIntentID = s.PaymentIntent.ID
	}
	return record, nil
}

// upstream garde le message Stripe tel quel pour le client
func upstream(msg string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return models.NewUpstreamError(msg, errors.New(stripeErr.Msg))
	}
	return models.NewUpstreamError(msg, err)
}
