package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/domodwyer/mailyak/v3"
	"github.com/gitinsky/gatekeeper/config"
)

// Mailer delivers one-time verification codes over SMTP. It is the delivery
// collaborator of the verification state machine: it either delivers the
// whole message or reports failure, never partial success.
type Mailer struct {
	cfg    config.Smtp
	logger *slog.Logger
}

// New creates a new Mailer instance from the SMTP configuration.
func New(cfg config.Smtp, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mail: from address is required")
	}
	return &Mailer{cfg: cfg, logger: logger}, nil
}

func (m *Mailer) client() (*mailyak.MailYak, error) {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if m.cfg.UseTLS {
		return mailyak.NewWithTLS(addr, auth, nil)
	}
	return mailyak.New(addr, auth), nil
}

// DeliverCode sends a verification code email. The send is bounded by ctx;
// a timed-out send reports failure like any other delivery error.
func (m *Mailer) DeliverCode(ctx context.Context, email, code string, ttl time.Duration) error {
	mail, err := m.client()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	minutes := int(ttl.Minutes())

	mail.To(email)
	mail.From(m.cfg.FromAddress)
	mail.FromName(m.cfg.FromName)
	mail.Subject("Your verification code")
	mail.Plain().Set(textBody(code, minutes))
	mail.HTML().Set(htmlBody(code, minutes))

	// mailyak has no context support; run the send aside and race the context.
	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send verification email: %w", err)
		}
	}

	m.logger.Info("verification email sent", "email", email)
	return nil
}

func textBody(code string, minutes int) string {
	return fmt.Sprintf(`Email Verification

You have requested access to the support assistant. Use the following
verification code to complete the verification process:

    %s

This code expires in %d minutes.

If you did not request this code, please ignore this email.
`, code, minutes)
}

func htmlBody(code string, minutes int) string {
	return fmt.Sprintf(`<h1>Email Verification</h1>
<p>You have requested access to the support assistant. Use the following
verification code to complete the verification process:</p>
<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
<p>This code expires in <strong>%d minutes</strong>.</p>
<p>If you did not request this code, please ignore this email.</p>
`, code, minutes)
}
