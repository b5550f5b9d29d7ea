package secret

import "errors"

var (
	// ErrMissingEnv is returned when ${VAR} names an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrUnknownProvider is returned for a reference to an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider not registered")

	// ErrEmpty is returned by a strict resolver when a provider yields "".
	ErrEmpty = errors.New("secret: empty value")

	// ErrNotFound is returned by providers when the referenced secret does not exist.
	ErrNotFound = errors.New("secret: not found")
)
