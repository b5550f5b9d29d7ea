package server

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/jonwraymond/mathproxy/observe"
)

// Reporter receives errors that became a 500.
//
// Contract:
//   - Concurrency: Report may be called from many handlers at once.
//   - Report must not block on the network.
type Reporter interface {
	Report(ctx context.Context, err error)
	Flush(timeout time.Duration) bool
}

// NopReporter discards reports.
func NopReporter() Reporter { return nopReporter{} }

type nopReporter struct{}

func (nopReporter) Report(context.Context, error) {}
func (nopReporter) Flush(time.Duration) bool      { return true }

// SentryReporter sends reports to Sentry, tagged with the request ID.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter creates a reporter with its own hub, leaving the
// global hub untouched.
func NewSentryReporter(opts sentry.ClientOptions) (*SentryReporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *SentryReporter) Report(ctx context.Context, err error) {
	hub := s.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if id := observe.RequestIDFromContext(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
	})
	hub.CaptureException(err)
}

// Flush waits up to timeout for queued events.
func (s *SentryReporter) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}
