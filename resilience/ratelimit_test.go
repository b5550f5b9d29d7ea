package resilience

import (
	"testing"
	"time"
)

func newTestLimiter(cfg RateLimiterConfig) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(cfg)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }
	rl.refilled = now
	return rl, &now
}

func TestRateLimiter_Burst(t *testing.T) {
	rl, _ := newTestLimiter(RateLimiterConfig{Rate: 1, Burst: 3})

	for i := range 3 {
		if !rl.Allow() {
			t.Fatalf("Allow() #%d = false, want true", i+1)
		}
	}
	if rl.Allow() {
		t.Error("Allow() beyond burst = true, want false")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl, now := newTestLimiter(RateLimiterConfig{Rate: 2, Burst: 1})

	if !rl.Allow() {
		t.Fatal("first Allow() = false")
	}
	if d := rl.RetryAfter(); d != 500*time.Millisecond {
		t.Errorf("RetryAfter() = %v, want 500ms", d)
	}

	*now = now.Add(500 * time.Millisecond)
	if !rl.Allow() {
		t.Error("Allow() after refill = false, want true")
	}

	*now = now.Add(time.Hour)
	if got := rl.Tokens(); got != 1 {
		t.Errorf("Tokens() = %v, want capped at burst 1", got)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.config.Rate != 50 || rl.config.Burst != 100 {
		t.Errorf("defaults = %+v", rl.config)
	}
}
