package service

import (
	"fmt"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"gopkg.in/gomail.v2"
)

// Mailer delivers the share email carrying an access code. Implementations
// must be safe for concurrent use.
type Mailer interface {
	SendAccessCode(to, clientName string, kind domain.ResourceKind, code string, expiresAt time.Time) error
}

// SMTPMailer sends templated HTML mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendAccessCode(to, clientName string, kind domain.ResourceKind, code string, expiresAt time.Time) error {
	var what string
	switch kind {
	case domain.KindProposal:
		what = "proposal"
	case domain.KindInvoice:
		what = "invoice"
	default:
		what = "document"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your %s is ready to view", what))

	body := fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>A %s has been shared with you.</p>
		<p>Enter this access code on the portal to view it:</p>
		<p style="font-size:24px;letter-spacing:4px;"><strong>%s</strong></p>
		<p>The code is valid until %s and can be used multiple times before then.</p>
	`, clientName, what, code, expiresAt.Format("Jan 2, 2006 15:04 MST"))

	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send access code email: %w", err)
	}
	return nil
}

// NopMailer discards all mail. Used when SMTP is not configured and in tests.
type NopMailer struct{}

func (NopMailer) SendAccessCode(string, string, domain.ResourceKind, string, time.Time) error {
	return nil
}
