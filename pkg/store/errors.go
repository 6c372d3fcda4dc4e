package store

import "errors"

// Common errors returned by the persistence gateway.
var (
	// ErrEmptyKey is returned when a record key is empty.
	ErrEmptyKey = errors.New("record key cannot be empty")
)
