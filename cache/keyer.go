package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives a short stable digest of a Key for logs and span
// attributes, so raw queries need not be emitted.
//
// Contract:
// - Determinism: equal keys must produce equal digests.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Digest(k Key) string
}

// DefaultKeyer generates SHA-256 based digests.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Digest returns "cache:" followed by the first 16 hex characters of
// SHA-256 over the key's JSON encoding.
func (DefaultKeyer) Digest(k Key) string {
	// Key has only string fields; Marshal cannot fail and field order is fixed.
	data, _ := json.Marshal(k)
	hash := sha256.Sum256(data)
	return "cache:" + hex.EncodeToString(hash[:8])
}

var _ Keyer = (*DefaultKeyer)(nil)
