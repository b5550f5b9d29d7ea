package health

import "errors"

var (
	// ErrCheckFailed is attached to unhealthy results produced by this package.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is attached when a check outlives the aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Aggregator.Check for unknown names.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
