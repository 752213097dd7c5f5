package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no snapshot exists for a run ID.
	ErrNotFound = errors.New("run not found")
)
