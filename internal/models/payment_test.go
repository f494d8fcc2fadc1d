package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentStatus(t *testing.T) {
	tests := []struct {
		kind PaymentKind
		raw  string
		want PaymentStatus
	}{
		{PaymentKindIntent, "succeeded", PaymentSucceeded},
		{PaymentKindIntent, "processing", PaymentProcessing},
		{PaymentKindIntent, "requires_payment_method", PaymentRequiresAction},
		{PaymentKindIntent, "canceled", PaymentCanceled},
		{PaymentKindIntent, "paid", PaymentUnknown},
		{PaymentKindCheckoutSession, "paid", PaymentSucceeded},
		{PaymentKindCheckoutSession, "unpaid", PaymentRequiresAction},
		{PaymentKindCheckoutSession, "succeeded", PaymentUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.raw, func(t *testing.T) {
			got := ParsePaymentStatus(tt.kind, tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == PaymentSucceeded, got.Succeeded())
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount  float64
		want    int64
		wantErr bool
	}{
		{amount: 19.99, want: 1999},
		{amount: 0.1 + 0.2, want: 30},
		{amount: 1.005, want: 101},
		{amount: 45, want: 4500},
		{amount: 0, wantErr: true},
		{amount: -3, wantErr: true},
		{amount: math.NaN(), wantErr: true},
	}
	for _, tt := range tests {
		got, err := ToMinorUnits(tt.amount)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAmount)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "amount %v", tt.amount)
	}
	assert.Equal(t, 19.99, FromMinorUnits(1999))
}

func TestLineTotals(t *testing.T) {
	items := []OrderItem{
		{Total: LineTotal(0.1, 3)},
		{Total: LineTotal(19.99, 2)},
	}
	assert.Equal(t, 0.3, items[0].Total)
	assert.Equal(t, 40.28, SumLineTotals(items))
}

func TestProcessorPaymentID(t *testing.T) {
	assert.Equal(t, "pi_1", (&PaymentRecord{ID: "cs_1", PaymentIntentID: "pi_1"}).ProcessorPaymentID())
	assert.Equal(t, "cs_1", (&PaymentRecord{ID: "cs_1"}).ProcessorPaymentID())
}

func TestCartLineDecoding(t *testing.T) {
	var lines []CartLine
	err := json.Unmarshal([]byte(`[
		{"_id": "p-1", "name": "Mug", "price": 10, "quantity": 2, "image": "a.png"},
		{"productId": "p-2", "productName": "Poster", "price": 5, "quantity": 1, "image": ["b.png", "c.png"]},
		{"productId": "p-3", "productImage": "d.png", "image": []}
	]`), &lines)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "p-1", lines[0].ResolvedProductID())
	assert.Equal(t, "Mug", lines[0].ResolvedName())
	assert.Equal(t, "a.png", lines[0].ResolvedImage())
	assert.Equal(t, "Poster", lines[1].ResolvedName())
	assert.Equal(t, "b.png", lines[1].ResolvedImage())
	assert.Equal(t, "d.png", lines[2].ResolvedImage())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrOrderNotFound))
	assert.Equal(t, KindInputValidation, KindOf(ErrDuplicateEmail))
	assert.Equal(t, KindPermission, KindOf(NewPermissionError("no")))
	assert.Equal(t, KindConflict, KindOf(NewConflictError("retry")))
	assert.Equal(t, "retry", MessageOf(NewConflictError("retry")))
	assert.Equal(t, "Stripe down", MessageOf(NewUpstreamError("Failed", assertErr("Stripe down"))))
	assert.Equal(t, "Order not found", MessageOf(NewNotFoundError("Order not found", ErrOrderNotFound)))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
