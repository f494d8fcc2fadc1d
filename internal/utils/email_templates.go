package utils

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"storefront_back_end/internal/models"

	"github.com/shopspring/decimal"
)

const PaymentConfirmationSubject = "Payment Confirmation - Your Order is Confirmed!"

// QRContentID est le Content-ID de l'image QR embarquée dans le mail
const QRContentID = "order-qr.png"

// ConfirmationItem est une ligne affichée dans le récapitulatif du mail
type ConfirmationItem struct {
	Name     string
	Quantity int
	Price    string
}

type PaymentConfirmationData struct {
	Amount        string
	Currency      string
	TransactionID string
	Status        string
	Date          string
	Year          int
	Items         []ConfirmationItem
	StoreName     string
	QRImage       template.URL
	OrdersURL     string
}

// NewPaymentConfirmationData prépare les valeurs affichées à partir du paiement Stripe
func NewPaymentConfirmationData(record *models.PaymentRecord, items []models.OrderItem, storeName, ordersURL string, now time.Time) PaymentConfirmationData {
	data := PaymentConfirmationData{
		Amount:        "0.00",
		Currency:      "USD",
		TransactionID: "N/A",
		Status:        "completed",
		Date:          now.Format("1/2/2006"),
		Year:          now.Year(),
		StoreName:     storeName,
		OrdersURL:     ordersURL,
	}
	if record != nil {
		if record.AmountMinor > 0 {
			data.Amount = FormatMinorAmount(record.AmountMinor)
		}
		if record.Currency != "" {
			data.Currency = strings.ToUpper(record.Currency)
		}
		if record.ID != "" {
			data.TransactionID = record.ID
		}
		if record.RawStatus != "" {
			data.Status = record.RawStatus
		}
	}
	for _, item := range items {
		data.Items = append(data.Items, ConfirmationItem{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    FormatAmount(item.Price),
		})
	}
	return data
}

// FormatMinorAmount affiche des centimes en unités majeures, deux décimales
func FormatMinorAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func RenderPaymentConfirmationHTML(data PaymentConfirmationData) (string, error) {
	var buf bytes.Buffer
	if err := paymentConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var paymentConfirmationTmpl = template.Must(template.New("payment_confirmation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Payment Confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
        <h1>Payment Successful!</h1>
    </div>

    <div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px; border: 1px solid #ddd;">
        <div style="font-size: 48px; text-align: center; margin-bottom: 20px;">✅</div>
        <h2 style="text-align: center; color: #4CAF50;">Thank you for your purchase!</h2>
        <p style="text-align: center;">Your payment has been processed successfully and your order is confirmed.</p>

        <div style="background-color: white; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #4CAF50;">
            <h3>Payment Details</h3>
            <p><strong>Amount Paid:</strong> <span style="font-size: 24px; font-weight: bold; color: #4CAF50;">${{.Amount}} {{.Currency}}</span></p>
            <p><strong>Transaction ID:</strong> {{.TransactionID}}</p>
            <p><strong>Payment Status:</strong> <span style="text-transform: capitalize; color: #4CAF50;">{{.Status}}</span></p>
            <p><strong>Payment Date:</strong> {{.Date}}</p>
        </div>
{{if .Items}}
        <div style="background-color: white; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #4CAF50;">
            <h3>Order Items</h3>
{{range .Items}}            <p>{{.Name}} (x{{.Quantity}}) <span style="float: right;">${{.Price}}</span></p>
{{end}}        </div>
{{end}}
        <p><strong>What's next?</strong></p>
        <ul>
            <li>You will receive a separate email with tracking information once your order ships</li>
            <li>You can track your order status in your account dashboard</li>
            <li>If you have any questions, please contact our support team</li>
        </ul>
{{if .QRImage}}
        <div style="text-align: center; margin-top: 20px;">
            <a href="{{.OrdersURL}}"><img src="{{.QRImage}}" alt="My orders" width="160" height="160"></a>
            <p style="font-size: 12px; color: #666;">Scan to view your orders</p>
        </div>
{{end}}    </div>

    <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; color: #666; font-size: 14px;">
        <p>Thank you for shopping with us!</p>
        <p>This is an automated email. Please do not reply to this message.</p>
        <p>&copy; {{.Year}} {{.StoreName}}. All rights reserved.</p>
    </div>
</body>
</html>
`))
