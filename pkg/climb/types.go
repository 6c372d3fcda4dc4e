// Package climb holds the authoritative climb collection and its aggregates.
//
// Climbs are immutable logged events owned by exactly one session. The store
// keeps the collection in memory, persists every mutation through the
// persistence gateway, and mirrors single-record changes to the remote
// backend on a best-effort basis when an identity is active.
package climb

import (
	"context"
	"time"

	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/mirror"
	"github.com/cragtrack/cragtrack/pkg/store"
)

// Status is the outcome of a logged climb.
type Status string

const (
	// StatusSend marks a successfully completed climb.
	StatusSend Status = "send"

	// StatusAttempt marks an unsuccessful try.
	StatusAttempt Status = "attempt"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusSend || s == StatusAttempt
}

// Climb is an immutable logged climbing event.
type Climb struct {
	// ID is the opaque unique identifier.
	ID string `json:"id"`

	// Grade is the grade token, meaningful only relative to Type and the
	// vocabulary it was entered under.
	Grade string `json:"grade"`

	// Type is the climb type (boulder, sport, trad).
	Type grade.Type `json:"type"`

	// Status is send or attempt.
	Status Status `json:"status"`

	// Timestamp is the instant the climb was logged.
	Timestamp time.Time `json:"timestamp"`

	// SessionID is the owning session. Climbs without one are discarded
	// on load.
	SessionID string `json:"sessionId"`
}

// GradeCount aggregates sends and attempts for one grade within a type.
type GradeCount struct {
	// Grade is the grade token as stored.
	Grade string `json:"grade"`

	// Sends is the send count for this grade.
	Sends int `json:"sends"`

	// Attempts is the attempt count for this grade.
	Attempts int `json:"attempts"`
}

// Mirrorer mirrors individual climb mutations to the remote backend.
type Mirrorer interface {
	// UpsertClimbs upserts climbs by id.
	UpsertClimbs(ctx context.Context, climbs []Climb) error

	// DeleteClimb deletes a climb by id.
	DeleteClimb(ctx context.Context, id string) error
}

// Config contains climb store configuration.
type Config struct {
	// Gateway persists the climb collection. Required.
	Gateway store.Gateway

	// Remote receives best-effort mirror calls. Optional.
	Remote Mirrorer

	// Auth gates mirroring: no identity, no remote calls. Optional when
	// Remote is nil.
	Auth *identity.State

	// Mirror is the background lane mirror calls run on. Required when
	// Remote is set.
	Mirror *mirror.Mirror

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}
