package token

import "context"

// Capacity is the default number of tokens kept warm.
const Capacity = 10

// Token is an opaque upstream credential. It is never served twice.
type Token string

// String redacts the credential so a Token can be logged safely.
func (t Token) String() string {
	if t == "" {
		return ""
	}
	return "[REDACTED]"
}

// Handshaker obtains one fresh token from the upstream.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations must honor cancellation.
// - Errors: any error ends the current pool run.
type Handshaker interface {
	Handshake(ctx context.Context) (Token, error)
}

// HandshakeFunc adapts a function to Handshaker.
type HandshakeFunc func(ctx context.Context) (Token, error)

// Handshake calls f.
func (f HandshakeFunc) Handshake(ctx context.Context) (Token, error) {
	return f(ctx)
}

// Request is a pending demand for one token. Its reply slot is filled or
// closed exactly once by the pool.
type Request struct {
	reply     chan Token
	abandoned <-chan struct{}
}

// NewRequest creates a request. done signals that the caller no longer
// wants the token; it is usually ctx.Done().
func NewRequest(done <-chan struct{}) Request {
	return Request{
		reply:     make(chan Token, 1),
		abandoned: done,
	}
}

// Reply returns the slot the token is delivered on. It is closed without a
// value if the serving run dies first.
func (r Request) Reply() <-chan Token {
	return r.reply
}

// deliver fills the slot unless the caller has gone away.
func (r Request) deliver(t Token) bool {
	select {
	case <-r.abandoned:
		return false
	default:
	}
	r.reply <- t
	return true
}

func (r Request) fail() {
	close(r.reply)
}
