package watcher

import "errors"

// Common errors returned by the watcher.
var (
	// ErrEmptyPath is returned when no watch path is configured.
	ErrEmptyPath = errors.New("watch path cannot be empty")

	// ErrWatcherClosed is returned when the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("watcher already started")
)
