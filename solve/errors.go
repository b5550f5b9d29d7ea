package solve

import "errors"

// Sentinel errors for solve operations.
var (
	// ErrInternal wraps every failure past input validation. Callers outside
	// the process should only ever see a generic message for it.
	ErrInternal = errors.New("solve: internal error")

	// ErrInvalidQuery is returned for a blank query.
	ErrInvalidQuery = errors.New("solve: invalid query")
)
