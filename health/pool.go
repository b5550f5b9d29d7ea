package health

import (
	"context"
	"sync"

	"github.com/jonwraymond/mathproxy/token"
)

// StatsSource is satisfied by *token.Supervisor.
type StatsSource interface {
	Stats() token.Stats
}

// TokenPoolChecker watches the token pool supervisor.
type TokenPoolChecker struct {
	src StatsSource

	mu          sync.Mutex
	seenReboots int64
}

// NewTokenPoolChecker creates a checker over src. Reboots that happened
// before the first check are not reported.
func NewTokenPoolChecker(src StatsSource) *TokenPoolChecker {
	return &TokenPoolChecker{src: src, seenReboots: src.Stats().Reboots}
}

func (c *TokenPoolChecker) Name() string { return "token_pool" }

// Check is degraded when the pool restarted since the previous check, is
// between runs, or has no token ready.
func (c *TokenPoolChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	st := c.src.Stats()

	c.mu.Lock()
	restarted := st.Reboots - c.seenReboots
	c.seenReboots = st.Reboots
	c.mu.Unlock()

	details := map[string]any{
		"reboots":   st.Reboots,
		"ready":     st.Ready,
		"served":    st.Served,
		"exhausted": st.Exhausted,
		"running":   st.Running,
	}

	switch {
	case !st.Running:
		return Degraded("token pool not running").WithDetails(details)
	case restarted > 0:
		return Degraded("token pool restarted").WithDetails(details)
	case st.Ready == 0:
		return Degraded("token pool empty").WithDetails(details)
	}
	return Healthy("token pool ready").WithDetails(details)
}
