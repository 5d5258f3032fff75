package domain

import "errors"

var (
	// ErrInvalidArgument marks malformed caller input (bad percent window,
	// non-positive budget). It is returned before any exchange I/O starts.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSourceUnavailable marks a failed or timed-out exchange call. It is
	// recovered locally by dropping that source or leg from the cycle and is
	// never surfaced to the caller as a cycle failure.
	ErrSourceUnavailable = errors.New("source unavailable")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrLockHeld marks a distributed lock that is already held elsewhere.
	ErrLockHeld = errors.New("lock held")
)
