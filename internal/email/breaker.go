package email

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSender stops hammering a failing provider: after five consecutive
// failures the circuit opens for a minute and sends fail fast.
type BreakerSender struct {
	inner Sender
	cb    *gobreaker.CircuitBreaker
}

func WithBreaker(name string, inner Sender) *BreakerSender {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &BreakerSender{inner: inner, cb: cb}
}

func (s *BreakerSender) Send(ctx context.Context, toEmail, subject, html string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Send(ctx, toEmail, subject, html)
	})
	return err
}
