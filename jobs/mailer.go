package jobs

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/atelier-crm/atelier-crm/internal/invoices"
)

// MailerConfig carries SMTP connection settings.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	cfg MailerConfig
}

// NewMailer builds Mailer instance.
func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers one message. Plain text only; the reminder mails have
// no need for HTML.
func (m *Mailer) Send(payload SendEmailPayload) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + payload.To,
		"Subject: " + payload.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		payload.Body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{payload.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", payload.To, err)
	}
	return nil
}

// ComposeDunning drafts the payment reminder for an overdue invoice.
func ComposeDunning(inv invoices.WithRelations) SendEmailPayload {
	due := ""
	if inv.DueDate != nil {
		due = inv.DueDate.Format("02/01/2006")
	}
	body := fmt.Sprintf(
		"Bonjour,\n\n"+
			"Sauf erreur de notre part, la facture %s émise le %s d'un montant de %s € "+
			"est arrivée à échéance le %s et reste impayée.\n\n"+
			"Nous vous remercions de bien vouloir procéder à son règlement dans les meilleurs délais.\n\n"+
			"Cordialement",
		inv.Number, inv.IssuedAt.Format("02/01/2006"), inv.Amount.StringFixed(2), due)

	return SendEmailPayload{
		To:      inv.ClientEmail,
		Subject: fmt.Sprintf("Relance : facture %s en attente de règlement", inv.Number),
		Body:    body,
	}
}
