package mocks

import (
	"context"
	"sync"

	"github.com/taskhive/taskhive-api/internal/platform/mail"
)

// Mailer implements mail.Mailer for testing, recording every send.
type Mailer struct {
	mu sync.Mutex

	// Welcomes and Cancellations record recipient emails in send order.
	Welcomes      []string
	Cancellations []string
}

var _ mail.Mailer = (*Mailer)(nil)

// NewMailer creates a new recording mailer.
func NewMailer() *Mailer {
	return &Mailer{}
}

// SendWelcome implements the Mailer interface.
func (m *Mailer) SendWelcome(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Welcomes = append(m.Welcomes, email)
	return nil
}

// SendCancellation implements the Mailer interface.
func (m *Mailer) SendCancellation(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancellations = append(m.Cancellations, email)
	return nil
}

// WelcomeCount returns the number of welcome mails sent so far. Safe to
// poll while handlers send in the background.
func (m *Mailer) WelcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Welcomes)
}

// CancellationCount returns the number of cancellation mails sent so far.
func (m *Mailer) CancellationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Cancellations)
}
