// Package mirror provides the best-effort remote mirroring lane.
//
// Local mutations (adding a climb, starting or ending a session) commit
// locally and return; the matching remote write is enqueued here and drained
// by a dedicated goroutine. A mirror failure is logged and dropped; it is
// never surfaced to the originating call, and the sync reconciler is the
// mechanism that re-converges local and remote state afterwards.
package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/cragtrack/cragtrack/pkg/logger"
)

// Op is a single remote mirroring operation.
type Op func(ctx context.Context) error

// task pairs an operation with a name for logging.
type task struct {
	name string
	op   Op
}

// Config contains mirror configuration.
type Config struct {
	// QueueSize is the channel buffer (default: 64). When the queue is
	// full, new work is dropped and logged rather than blocking the
	// caller.
	QueueSize int

	// OpTimeout bounds each operation (default: 15 seconds).
	OpTimeout time.Duration
}

// Mirror drains enqueued remote operations in the background.
type Mirror struct {
	config Config
	logger logger.Logger

	tasks chan task
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// New creates a mirror and starts its drain loop.
func New(cfg Config, log logger.Logger) *Mirror {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 15 * time.Second
	}

	m := &Mirror{
		config: cfg,
		logger: log,
		tasks:  make(chan task, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	go m.drain()

	return m
}

// Enqueue schedules a remote operation. It never blocks: when the queue is
// full or the mirror is closed, the operation is dropped and logged.
func (m *Mirror) Enqueue(name string, op Op) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		m.logger.Warn("mirror closed, dropping operation", "op", name)
		return
	}

	select {
	case m.tasks <- task{name: name, op: op}:
	default:
		m.logger.Warn("mirror queue full, dropping operation", "op", name)
	}
}

// Close stops accepting work, drains outstanding operations, and waits for
// the drain loop to exit.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.tasks)
	m.mu.Unlock()

	<-m.done
}

// drain runs enqueued operations in order until the queue is closed.
func (m *Mirror) drain() {
	defer close(m.done)

	for t := range m.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.OpTimeout)
		err := t.op(ctx)
		cancel()

		if err != nil {
			// Outcome is observable only here; callers already
			// returned with local state committed.
			m.logger.Warn("remote mirror failed", "op", t.name, "error", err)
			continue
		}

		m.logger.Debug("remote mirror completed", "op", t.name)
	}
}
