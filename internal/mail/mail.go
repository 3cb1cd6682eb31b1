// Package mail sends transactional mail over SMTP.
package mail

import (
	"context"
	"fmt"
	"html"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"vnfurniture/internal/config"
	"vnfurniture/internal/logger"
)

// Mailer sends the welcome mail after sign-up.
type Mailer interface {
	SendWelcome(ctx context.Context, to string) error
}

// SMTP delivers through a configured relay.
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
	baseURL  string
}

// New returns an SMTP mailer, or Noop when SMTP is not configured.
func New(cfg *config.Config) Mailer {
	if !cfg.MailEnabled() {
		logger.Log.Info("📭 SMTP not configured, welcome mails disabled")
		return Noop{}
	}
	return &SMTP{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		baseURL:  cfg.BaseURL,
	}
}

func (s *SMTP) SendWelcome(ctx context.Context, to string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject("Welcome to VN Furniture")
	msg.SetBodyString(mail.TypeTextHTML, WelcomeHTML(to, s.baseURL))

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}
	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return err
	}

	logger.Log.Info("📤 sending welcome mail", zap.String("to", to))
	return client.DialAndSendWithContext(ctx, msg)
}

// WelcomeHTML renders the welcome mail body.
func WelcomeHTML(email, baseURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Welcome to VN Furniture</h2>
		<p>Your account <strong>%s</strong> is ready.</p>
		<p><a href="%s" style="color: #b45309;">Start browsing</a></p>
	</div>
</body>
</html>`, html.EscapeString(email), html.EscapeString(baseURL))
}

// Noop discards mail.
type Noop struct{}

func (Noop) SendWelcome(context.Context, string) error { return nil }
