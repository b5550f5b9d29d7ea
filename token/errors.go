package token

import "errors"

// Sentinel errors for token operations.
var (
	// ErrPoolClosed is returned by Pool.Run when its request channel closes.
	// A pool is meant to run forever, so this is a failure like any other.
	ErrPoolClosed = errors.New("token: request channel closed")

	// ErrPoolRestarted is returned by Acquire when the run holding the
	// request died before delivering a token.
	ErrPoolRestarted = errors.New("token: pool restarted before delivery")

	// ErrStopped is returned by Acquire once the supervisor has stopped.
	ErrStopped = errors.New("token: supervisor stopped")

	// ErrNilHandshaker is returned when a pool has no token source.
	ErrNilHandshaker = errors.New("token: handshaker is nil")
)
