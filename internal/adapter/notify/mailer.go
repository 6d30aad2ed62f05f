package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends purchase confirmations over SMTP. Without SMTP configuration
// it degrades to a no-op with a warning, matching how the rest of the system
// treats post-commit effects: best effort, never fatal.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewMailer(host string, port int, username, password, from string, logger *zap.Logger) *Mailer {
	m := &Mailer{from: from, logger: logger}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, username, password)
	}
	return m
}

func (m *Mailer) SendPurchaseConfirmation(ctx context.Context, to, itemName, buyerLogin string) error {
	if m.dialer == nil {
		m.logger.Warn("smtp not configured, skipping purchase confirmation", zap.String("to", to))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Purchase Confirmation")
	msg.SetBody("text/html", fmt.Sprintf(
		"<h1>Purchase Confirmed!</h1>"+
			"<p>You have successfully purchased: <strong>%s</strong></p>"+
			"<p>The item is registered to: <strong>%s</strong></p>"+
			"<p>Thank you for shopping with us!</p>",
		itemName, buyerLogin,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}
