package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// DefaultAPIKeyHeader carries API keys.
const DefaultAPIKeyHeader = "X-API-Key"

// HashedPrefix marks a configured key that is already a SHA-256 hex digest.
const HashedPrefix = "sha256:"

// APIKeyAuthenticator accepts requests whose key hashes to a configured
// digest. Plain keys are hashed on construction and never retained.
type APIKeyAuthenticator struct {
	header string
	hashes [][]byte
}

// NewAPIKeyAuthenticator creates an authenticator over keys. Each key is
// either plain text or HashedPrefix followed by a hex digest.
func NewAPIKeyAuthenticator(header string, keys []string) (*APIKeyAuthenticator, error) {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	a := &APIKeyAuthenticator{header: header}
	for _, k := range keys {
		if hexDigest, ok := strings.CutPrefix(k, HashedPrefix); ok {
			sum, err := hex.DecodeString(hexDigest)
			if err != nil || len(sum) != sha256.Size {
				return nil, ErrInvalidCredentials
			}
			a.hashes = append(a.hashes, sum)
			continue
		}
		sum := sha256.Sum256([]byte(k))
		a.hashes = append(a.hashes, sum[:])
	}
	return a, nil
}

// HashAPIKey returns the configuration form of a hashed key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return HashedPrefix + hex.EncodeToString(sum[:])
}

func (a *APIKeyAuthenticator) Name() string { return string(MethodAPIKey) }

func (a *APIKeyAuthenticator) Supports(h http.Header) bool {
	return h.Get(a.header) != ""
}

// Authenticate compares against every configured digest in constant time.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, h http.Header) (*Identity, error) {
	key := strings.TrimSpace(h.Get(a.header))
	if key == "" {
		return nil, ErrMissingCredentials
	}
	sum := sha256.Sum256([]byte(key))

	match := -1
	for i, want := range a.hashes {
		if subtle.ConstantTimeCompare(sum[:], want) == 1 {
			match = i
		}
	}
	if match < 0 {
		return nil, ErrInvalidCredentials
	}

	id := hex.EncodeToString(a.hashes[match][:4])
	return &Identity{
		Principal: "key:" + id,
		Method:    MethodAPIKey,
		Claims:    map[string]any{"key_id": id},
	}, nil
}

var _ Authenticator = (*APIKeyAuthenticator)(nil)
