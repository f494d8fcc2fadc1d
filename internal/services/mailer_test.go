package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type fakeTransport struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeTransport) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func newTestMailer(transport mailTransport) *Mailer {
	m := newMailer(transport, "shop@example.com", "E-Commerce Store", "http://localhost:3000/", zap.NewNop())
	m.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return m
}

func renderMsg(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	// retire les coupures de ligne quoted-printable
	return strings.ReplaceAll(buf.String(), "=\r\n", "")
}

func TestSendPaymentConfirmation_Success(t *testing.T) {
	transport := &fakeTransport{}
	m := newTestMailer(transport)

	record := &models.PaymentRecord{ID: "pi_9", RawStatus: "succeeded", AmountMinor: 3000, Currency: "usd"}
	items := []models.OrderItem{{ProductName: "Notebook", Quantity: 3, Price: 10}}

	res := m.SendPaymentConfirmation(context.Background(), "buyer@example.com", record, items)

	require.True(t, res.Success, res.Error)
	assert.NotEmpty(t, res.MessageID)
	require.Len(t, transport.sent, 1)

	msg := transport.sent[0]
	assert.Equal(t, []string{"Payment Confirmation - Your Order is Confirmed!"}, msg.GetGenHeader(mail.HeaderSubject))
	require.Len(t, msg.GetTo(), 1)
	assert.Equal(t, "buyer@example.com", msg.GetTo()[0].Address)

	body := renderMsg(t, msg)
	assert.Contains(t, body, "$30.00 USD")
	assert.Contains(t, body, "Notebook (x3)")
	assert.Contains(t, body, "cid:order-qr.png")
}

func TestSendPaymentConfirmation_TransportFailure(t *testing.T) {
	m := newTestMailer(&fakeTransport{err: errors.New("dial tcp: connection refused")})

	res := m.SendPaymentConfirmation(context.Background(), "buyer@example.com", &models.PaymentRecord{}, nil)

	assert.False(t, res.Success)
	assert.Equal(t, "dial tcp: connection refused", res.Error)
	assert.Empty(t, res.MessageID)
}

func TestSendPaymentConfirmation_InvalidRecipient(t *testing.T) {
	transport := &fakeTransport{}
	m := newTestMailer(transport)

	res := m.SendPaymentConfirmation(context.Background(), "not an address", &models.PaymentRecord{}, nil)

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, transport.sent)
}
