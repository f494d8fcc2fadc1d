package models

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentKindIntent          PaymentKind = "payment_intent"
	PaymentKindCheckoutSession PaymentKind = "checkout_session"
)

// PaymentStatus est l'énumération fermée des statuts Stripe qu'on sait interpréter
type PaymentStatus string

const (
	PaymentSucceeded      PaymentStatus = "succeeded"
	PaymentProcessing     PaymentStatus = "processing"
	PaymentRequiresAction PaymentStatus = "requires_action"
	PaymentFailed         PaymentStatus = "failed"
	PaymentCanceled       PaymentStatus = "canceled"
	PaymentUnknown        PaymentStatus = "unknown"
)

// ParsePaymentStatus traduit le statut brut renvoyé par Stripe.
// Seuls "succeeded" (intent) et "paid" (checkout session) valent un succès.
func ParsePaymentStatus(kind PaymentKind, raw string) PaymentStatus {
	switch kind {
	case PaymentKindIntent:
		switch raw {
		case "succeeded":
			return PaymentSucceeded
		case "processing":
			return PaymentProcessing
		case "requires_action", "requires_confirmation", "requires_payment_method", "requires_capture":
			return PaymentRequiresAction
		case "canceled":
			return PaymentCanceled
		}
	case PaymentKindCheckoutSession:
		switch raw {
		case "paid":
			return PaymentSucceeded
		case "unpaid":
			return PaymentRequiresAction
		case "no_payment_required":
			return PaymentProcessing
		}
	}
	return PaymentUnknown
}

func (s PaymentStatus) Succeeded() bool {
	return s == PaymentSucceeded
}

// PaymentRecord est l'instantané en lecture seule d'un paiement côté Stripe
type PaymentRecord struct {
	ID              string            `json:"id"`
	Kind            PaymentKind       `json:"object"`
	RawStatus       string            `json:"status"`
	Status          PaymentStatus     `json:"paymentStatus"`
	AmountMinor     int64             `json:"amount"`
	Currency        string            `json:"currency"`
	PaymentIntentID string            `json:"paymentIntentId,omitempty"`
	SessionID       string            `json:"sessionId,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ProcessorPaymentID est la clé utilisée pour dédoublonner les commandes
func (p *PaymentRecord) ProcessorPaymentID() string {
	if p.PaymentIntentID != "" {
		return p.PaymentIntentID
	}
	return p.ID
}

var ErrInvalidAmount = errors.New("amount must be greater than 0")

// ToMinorUnits convertit un montant (unités majeures) en centimes: round(amount × 100)
func ToMinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart(), nil
}

// FromMinorUnits fait la conversion inverse (centimes ÷ 100)
func FromMinorUnits(minor int64) float64 {
	f, _ := decimal.New(minor, -2).Float64()
	return f
}

// LineTotal calcule prix unitaire × quantité sans dérive flottante
func LineTotal(price float64, quantity int) float64 {
	f, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return f
}

func SumLineTotals(items []OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Total))
	}
	f, _ := total.Round(2).Float64()
	return f
}
