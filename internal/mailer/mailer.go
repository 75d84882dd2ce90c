// Package mailer sends transactional email over SMTP.
// The only consumer today is the password-reset flow.
package mailer

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends mail through an SMTP relay using gomail.
// When no SMTP credentials are configured the mailer runs disabled: Send
// logs the message instead of delivering it, which keeps local development
// working without a relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *slog.Logger
}

// New constructs an SMTPMailer. Pass an empty user to run disabled.
func New(host string, port int, user, pass, from string, log *slog.Logger) *SMTPMailer {
	m := &SMTPMailer{from: from, log: log}
	if user != "" {
		m.dialer = gomail.NewDialer(host, port, user, pass)
	} else {
		log.Warn("SMTP credentials not set; outgoing email disabled")
	}
	return m
}

// Send delivers one plain-text message. Failures are returned, not retried;
// the caller decides how delivery failure surfaces.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.dialer == nil {
		m.log.Info("email suppressed (SMTP disabled)", "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer.Send: %w", err)
	}
	return nil
}
