// Package email sends transactional mail through SendGrid when an API key is
// configured, otherwise through SES, otherwise a logging no-op. Delivery is
// always best effort; callers enqueue sends on the task queue and never fail
// a request on email errors.
package email

import (
	"context"

	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, toEmail, subject, html string) error
}

// NoopSender is used when no provider is configured; it logs and succeeds.
type NoopSender struct {
	Logger *zap.SugaredLogger
}

func (s *NoopSender) Send(ctx context.Context, toEmail, subject, html string) error {
	s.Logger.Infow("email provider not configured, dropping email", "to", toEmail, "subject", subject)
	return nil
}
