package sync

import "errors"

// Common errors returned by the reconciler.
var (
	// ErrNotAuthenticated is returned when migration is attempted
	// without an identity.
	ErrNotAuthenticated = errors.New("not authenticated")
)
