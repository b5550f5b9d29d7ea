package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-memory Store.
type MemoryCache[V any] struct {
	// mu guards entries.
	mu sync.RWMutex

	// entries holds at most one value per Key.
	entries map[Key]entry[V]

	// policy decides the expiry of new entries.
	policy Policy

	// now is the clock; replaced in tests.
	now func() time.Time
}

type entry[V any] struct {
	// value is the stored result.
	value V

	// expiresAt is zero for entries that never expire.
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryCache creates a new in-memory cache with the given policy.
func NewMemoryCache[V any](policy Policy) *MemoryCache[V] {
	return &MemoryCache[V]{
		entries: make(map[Key]entry[V]),
		policy:  policy,
		now:     time.Now,
	}
}

// Get retrieves a value. Expired entries are removed lazily.
func (c *MemoryCache[V]) Get(_ context.Context, key Key) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have replaced the entry.
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Set stores value under key. The last write wins.
func (c *MemoryCache[V]) Set(_ context.Context, key Key, value V) error {
	if c == nil {
		return ErrNilCache
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.policy.ExpiresAt(c.now()),
	}
	c.mu.Unlock()

	return nil
}

// Delete removes an entry. Idempotent.
func (c *MemoryCache[V]) Delete(_ context.Context, key Key) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len reports the number of unexpired entries.
func (c *MemoryCache[V]) Len() int {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

var _ Store[int] = (*MemoryCache[int])(nil)
