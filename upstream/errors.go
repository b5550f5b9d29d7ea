package upstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream operations.
var (
	// ErrNoToken is returned when the handshake response carries no token cookie.
	ErrNoToken = errors.New("upstream: no token")

	// ErrStatus is wrapped by StatusError.
	ErrStatus = errors.New("upstream: unexpected status")

	// ErrDecode is returned when the solve response is not a valid document.
	ErrDecode = errors.New("upstream: invalid response document")
)

// StatusError reports a non-2xx solve response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("upstream: unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error {
	return ErrStatus
}
