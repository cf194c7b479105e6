// Package mail sends transactional email (welcome and account-cancellation
// notices) over SMTP. Delivery is best-effort: call sites run it from a
// goroutine and only log failures.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	gomail "github.com/go-mail/mail/v2"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
)

// sendRetries is how many times a message is re-dialed before giving up.
const sendRetries = 3

// Mailer defines the outbound notifications the application sends.
type Mailer interface {
	// SendWelcome greets a freshly signed-up user.
	SendWelcome(ctx context.Context, email, name string) error

	// SendCancellation confirms account deletion and asks why.
	SendCancellation(ctx context.Context, email, name string) error
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
{{define "subject"}}Welcome to TaskHive{{end}}
{{define "body"}}Hi {{.Name}},

Welcome to TaskHive! Let us know how you get along with the app.

The TaskHive team{{end}}
`))

var cancellationTemplate = template.Must(template.New("cancellation").Parse(`
{{define "subject"}}Sorry to see you go{{end}}
{{define "body"}}Hi {{.Name}},

Your TaskHive account and all of its tasks have been deleted. We'd love to
hear if there was anything we could have done to keep you around.

The TaskHive team{{end}}
`))

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a Mailer backed by the configured SMTP relay.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		dialer: dialer,
		sender: cfg.Sender,
	}
}

// SendWelcome implements Mailer.SendWelcome.
func (m *SMTPMailer) SendWelcome(ctx context.Context, email, name string) error {
	return m.send(ctx, email, welcomeTemplate, map[string]string{"Name": name})
}

// SendCancellation implements Mailer.SendCancellation.
func (m *SMTPMailer) SendCancellation(ctx context.Context, email, name string) error {
	return m.send(ctx, email, cancellationTemplate, map[string]string{"Name": name})
}

func (m *SMTPMailer) send(ctx context.Context, to string, tmpl *template.Template, data any) error {
	log := logger.FromContext(ctx)

	var subject bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return fmt.Errorf("failed to render subject: %w", err)
	}
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "body", data); err != nil {
		return fmt.Errorf("failed to render body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", body.String())

	var err error
	for i := 0; i < sendRetries; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
		log.Debug("mail send attempt failed", "to", to, "attempt", i+1, "error", err)
	}
	return fmt.Errorf("failed to send mail after %d attempts: %w", sendRetries, err)
}

// NoopMailer is used when no SMTP relay is configured and in tests.
type NoopMailer struct{}

var _ Mailer = (*NoopMailer)(nil)

// NewNoopMailer creates a Mailer that drops every message.
func NewNoopMailer() *NoopMailer {
	return &NoopMailer{}
}

// SendWelcome implements Mailer.SendWelcome.
func (m *NoopMailer) SendWelcome(ctx context.Context, email, name string) error {
	logger.FromContext(ctx).Debug("mail disabled, dropping welcome mail", "to", email)
	return nil
}

// SendCancellation implements Mailer.SendCancellation.
func (m *NoopMailer) SendCancellation(ctx context.Context, email, name string) error {
	logger.FromContext(ctx).Debug("mail disabled, dropping cancellation mail", "to", email)
	return nil
}
