package cache

import (
	"context"
	"errors"
	"strings"
)

// Default colors substituted for absent request colors.
const (
	DefaultForeground = "#000000ff"
	DefaultBackground = "#00000000"
)

// Sentinel errors for cache operations.
var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
)

// Key is the canonical identity of a solve request. It is comparable and
// used directly as a map key.
type Key struct {
	// Query is the math query exactly as sent.
	Query string `json:"query"`

	// Foreground is the requested foreground color, DefaultForeground when
	// the request had none.
	Foreground string `json:"foreground"`

	// Background is the requested background color, DefaultBackground when
	// the request had none.
	Background string `json:"background"`
}

// NewKey builds a Key, replacing nil colors with DefaultForeground and
// DefaultBackground.
func NewKey(query string, foreground, background *string) Key {
	k := Key{
		Query:      query,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
	}
	if foreground != nil {
		k.Foreground = *foreground
	}
	if background != nil {
		k.Background = *background
	}
	return k
}

// ValidateKey rejects keys whose query is blank.
func ValidateKey(k Key) error {
	if strings.TrimSpace(k.Query) == "" {
		return ErrInvalidKey
	}
	return nil
}

// Store is the response cache.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must return quickly; the context is informational.
// - Errors: Get never errors; it returns the zero value and false on miss.
// - Ownership: values are stored and returned by value; callers must not
// rely on mutations of a returned value being visible to the store.
type Store[V any] interface {
	// Get retrieves a cached value.
	Get(ctx context.Context, key Key) (V, bool)

	// Set stores value under key, replacing any existing entry.
	Set(ctx context.Context, key Key, value V) error

	// Delete removes an entry. Idempotent.
	Delete(ctx context.Context, key Key) error

	// Len reports the number of live entries.
	Len() int
}
