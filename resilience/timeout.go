package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Timeout bounds how long an operation may run.
type Timeout struct {
	name    string
	timeout time.Duration
}

// NewTimeout creates a Timeout. A non-positive d disables the bound.
func NewTimeout(name string, d time.Duration) *Timeout {
	return &Timeout{name: name, timeout: d}
}

// Execute runs op with a derived deadline. When the deadline fires the
// returned error wraps ErrTimeout; op is expected to honor ctx and return.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	if t == nil || t.timeout <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	err := op(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrTimeout, t.name, t.timeout)
	}
	return err
}

// Duration returns the configured bound.
func (t *Timeout) Duration() time.Duration {
	return t.timeout
}
