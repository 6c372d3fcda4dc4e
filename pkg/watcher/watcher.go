// Package watcher notifies when the cragtrack config file changes.
//
// The live view uses it to pick up grade-display setting changes without a
// restart. The watcher observes the file's parent directory, because most
// editors replace files on save rather than writing in place, and debounces
// bursts of events into a single notification.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cragtrack/cragtrack/pkg/logger"
)

// Watcher watches a single file for changes.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	path   string

	debounceInterval time.Duration

	events chan struct{}

	mu       sync.Mutex
	running  bool
	closed   bool
	stopChan chan struct{}

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// Config contains watcher configuration.
type Config struct {
	// Path is the file to watch. Required.
	Path string

	// DebounceInterval collapses event bursts (default: 250ms).
	DebounceInterval time.Duration
}

// New creates a file watcher for the configured path.
func New(cfg Config, log logger.Logger) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, ErrEmptyPath
	}
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 250 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsw:              fsw,
		logger:           log,
		path:             filepath.Clean(cfg.Path),
		debounceInterval: cfg.DebounceInterval,
		events:           make(chan struct{}, 1),
		stopChan:         make(chan struct{}),
	}, nil
}

// Start begins watching. The watch is on the parent directory so the file
// keeps being observed across editor rename-replace saves.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Debug("config watcher started", "path", w.path)

	go w.processEvents(ctx)

	return nil
}

// Events returns the notification channel. A receive means the file changed
// at least once since the last notification.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.running {
		close(w.stopChan)
		w.running = false
	}

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()

	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("config watcher closed")
	return nil
}

// processEvents filters fsnotify events down to the watched file.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopChan:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.debounce()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// debounce schedules a single notification for the current event burst.
func (w *Watcher) debounce() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceInterval, func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()

		if closed {
			return
		}

		select {
		case w.events <- struct{}{}:
		default:
			// A notification is already pending.
		}
	})
}
