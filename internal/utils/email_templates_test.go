package utils

import (
	"testing"
	"time"

	"storefront_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentConfirmationData_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	data := NewPaymentConfirmationData(&models.PaymentRecord{}, nil, "E-Commerce Store", "", now)

	assert.Equal(t, "0.00", data.Amount)
	assert.Equal(t, "USD", data.Currency)
	assert.Equal(t, "N/A", data.TransactionID)
	assert.Equal(t, "completed", data.Status)
	assert.Equal(t, 2026, data.Year)
	assert.Empty(t, data.Items)
}

func TestRenderPaymentConfirmationHTML(t *testing.T) {
	record := &models.PaymentRecord{ID: "pi_123", RawStatus: "succeeded", AmountMinor: 4599, Currency: "eur"}
	items := []models.OrderItem{{ProductName: "Mug <b>", Quantity: 2, Price: 12.5}}

	data := NewPaymentConfirmationData(record, items, "E-Commerce Store", "http://localhost:3000/orders", time.Now())
	data.QRImage = "cid:" + QRContentID

	html, err := RenderPaymentConfirmationHTML(data)
	require.NoError(t, err)

	assert.Contains(t, html, "$45.99 EUR")
	assert.Contains(t, html, "pi_123")
	assert.Contains(t, html, "Mug &lt;b&gt; (x2)")
	assert.Contains(t, html, "$12.50")
	assert.Contains(t, html, `src="cid:order-qr.png"`)
}

func TestGenerateLinkQR(t *testing.T) {
	png, err := GenerateLinkQR("http://localhost:3000/orders")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
	assert.Contains(t, QRDataURI(png), "data:image/png;base64,")
}
