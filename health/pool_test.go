package health

import (
	"context"
	"testing"

	"github.com/jonwraymond/mathproxy/token"
)

type stubStats struct{ st token.Stats }

func (s *stubStats) Stats() token.Stats { return s.st }

func TestTokenPoolChecker(t *testing.T) {
	src := &stubStats{st: token.Stats{Reboots: 2, Ready: 10, Running: true}}
	c := NewTokenPoolChecker(src)
	ctx := context.Background()

	if c.Name() != "token_pool" {
		t.Errorf("Name() = %q, want token_pool", c.Name())
	}

	// Reboots before construction are not reported.
	if r := c.Check(ctx); r.Status != StatusHealthy {
		t.Errorf("initial Status = %v (%s), want healthy", r.Status, r.Message)
	}

	src.st.Reboots = 3
	r := c.Check(ctx)
	if r.Status != StatusDegraded || r.Message != "token pool restarted" {
		t.Errorf("after reboot = %v %q, want degraded restarted", r.Status, r.Message)
	}
	if r.Details["reboots"] != int64(3) {
		t.Errorf("Details[reboots] = %v, want 3", r.Details["reboots"])
	}

	if r := c.Check(ctx); r.Status != StatusHealthy {
		t.Errorf("next check Status = %v, want healthy", r.Status)
	}

	src.st.Ready = 0
	if r := c.Check(ctx); r.Message != "token pool empty" {
		t.Errorf("empty pool Message = %q, want token pool empty", r.Message)
	}

	src.st.Running = false
	if r := c.Check(ctx); r.Message != "token pool not running" {
		t.Errorf("stopped pool Message = %q, want token pool not running", r.Message)
	}
}

func TestTokenPoolChecker_Supervisor(t *testing.T) {
	sup := token.NewSupervisor(token.HandshakeFunc(func(context.Context) (token.Token, error) {
		return "t", nil
	}), token.Config{})

	r := NewTokenPoolChecker(sup).Check(context.Background())
	if r.Status != StatusDegraded {
		t.Errorf("Status before Run = %v, want degraded", r.Status)
	}
}
