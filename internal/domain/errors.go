package domain

import "errors"

var (
	// ErrNotFound is returned by the store when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnknownDisplay marks operations referencing a display identity
	// the registry is not tracking. Callers treat it as a benign timing
	// race with a just-removed display, not a fault.
	ErrUnknownDisplay = errors.New("unknown display")
)
