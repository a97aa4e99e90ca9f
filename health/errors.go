package health

import "errors"

var (
	// ErrCheckFailed marks a check that ran and found a problem.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that did not finish before the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned when a named checker is not registered.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
