package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"storefront_back_end/internal/config"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// NotificationResult ne porte jamais d'erreur Go : l'échec d'envoi est une donnée
type NotificationResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// mailTransport est satisfait par *mail.Client
type mailTransport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Mailer struct {
	transport mailTransport
	from      string
	fromName  string
	ordersURL string
	now       func() time.Time
	log       *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, frontendURL string, log *zap.Logger) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("client SMTP: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return newMailer(client, from, cfg.FromName, frontendURL, log), nil
}

func newMailer(transport mailTransport, from, fromName, frontendURL string, log *zap.Logger) *Mailer {
	return &Mailer{
		transport: transport,
		from:      from,
		fromName:  fromName,
		ordersURL: strings.TrimRight(frontendURL, "/") + "/orders",
		now:       time.Now,
		log:       log,
	}
}

// SendPaymentConfirmation envoie le mail de confirmation. Toutes les erreurs
// (adresse, rendu, connexion, envoi) finissent dans le résultat.
func (m *Mailer) SendPaymentConfirmation(ctx context.Context, recipient string, record *models.PaymentRecord, items []models.OrderItem) NotificationResult {
	m.log.Info("📤 Envoi de la confirmation de paiement", zap.String("to", recipient))

	msg, err := m.buildConfirmation(recipient, record, items)
	if err != nil {
		m.log.Error("❌ Préparation du mail échouée", zap.String("to", recipient), zap.Error(err))
		return NotificationResult{Error: err.Error()}
	}

	if err := m.transport.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error("❌ Envoi du mail échoué", zap.String("to", recipient), zap.Error(err))
		return NotificationResult{Error: err.Error()}
	}

	messageID := msg.GetMessageID()
	m.log.Info("📧 Confirmation de paiement envoyée", zap.String("to", recipient), zap.String("message_id", messageID))
	return NotificationResult{Success: true, MessageID: messageID}
}

func (m *Mailer) buildConfirmation(recipient string, record *models.PaymentRecord, items []models.OrderItem) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("adresse expéditeur invalide: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("adresse destinataire invalide: %w", err)
	}
	msg.Subject(utils.PaymentConfirmationSubject)
	msg.SetMessageID()
	msg.SetDate()

	data := utils.NewPaymentConfirmationData(record, items, m.fromName, m.ordersURL, m.now())

	// QR vers l'historique des commandes, embarqué en pièce inline
	if png, err := utils.GenerateLinkQR(m.ordersURL); err != nil {
		m.log.Warn("⚠️ QR code non généré", zap.Error(err))
	} else if err := msg.EmbedReader(utils.QRContentID, bytes.NewReader(png)); err != nil {
		m.log.Warn("⚠️ QR code non embarqué", zap.Error(err))
	} else {
		data.QRImage = "cid:" + utils.QRContentID
	}

	html, err := utils.RenderPaymentConfirmationHTML(data)
	if err != nil {
		return nil, fmt.Errorf("rendu du template: %w", err)
	}
	msg.SetBodyString(mail.TypeTextHTML, html)

	return msg, nil
}
