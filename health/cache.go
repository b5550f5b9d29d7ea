package health

import (
	"context"
	"fmt"
)

// Sizer is satisfied by cache.Store.
type Sizer interface {
	Len() int
}

// CacheChecker reports the size of the response cache.
type CacheChecker struct {
	cache Sizer

	// MaxEntries turns the check degraded once exceeded. Zero disables it.
	MaxEntries int
}

// NewCacheChecker creates a checker over cache.
func NewCacheChecker(cache Sizer, maxEntries int) *CacheChecker {
	return &CacheChecker{cache: cache, MaxEntries: maxEntries}
}

func (c *CacheChecker) Name() string { return "cache" }

func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	n := c.cache.Len()
	details := map[string]any{"entries": n}
	if c.MaxEntries > 0 {
		details["max_entries"] = c.MaxEntries
		if n > c.MaxEntries {
			return Degraded(fmt.Sprintf("cache holds %d entries, above %d", n, c.MaxEntries)).WithDetails(details)
		}
	}
	return Healthy(fmt.Sprintf("cache holds %d entries", n)).WithDetails(details)
}
