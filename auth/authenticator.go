package auth

import (
	"context"
	"net/http"
)

// Authenticator validates one kind of credential.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Supports must not inspect the credential beyond its presence.
//   - Errors: Authenticate returns ErrMissingCredentials,
//     ErrInvalidCredentials, ErrTokenExpired or ErrTokenMalformed (possibly
//     wrapped) for rejected credentials.
type Authenticator interface {
	Name() string
	Supports(h http.Header) bool
	Authenticate(ctx context.Context, h http.Header) (*Identity, error)
}

// Chain tries its authenticators in order and accepts the first identity.
// An empty chain accepts every request with a nil identity.
type Chain struct {
	authenticators []Authenticator
}

// NewChain creates a chain.
func NewChain(auths ...Authenticator) *Chain {
	return &Chain{authenticators: auths}
}

// Enabled reports whether the chain checks anything.
func (c *Chain) Enabled() bool {
	return c != nil && len(c.authenticators) > 0
}

// Authenticate returns the identity of the first supporting authenticator
// that accepts h. With no supporting authenticator it returns
// ErrMissingCredentials; otherwise the last rejection.
func (c *Chain) Authenticate(ctx context.Context, h http.Header) (*Identity, error) {
	if !c.Enabled() {
		return nil, nil
	}

	err := ErrMissingCredentials
	for _, a := range c.authenticators {
		if !a.Supports(h) {
			continue
		}
		id, aerr := a.Authenticate(ctx, h)
		if aerr == nil {
			return id, nil
		}
		err = aerr
	}
	return nil, err
}
