// Package session governs the lifecycle of the single active climbing
// session.
//
// A session moves idle -> active -> (paused <-> active) -> idle. The tracker
// owns the one active-session slot per device, computes summaries on pause
// and end, and keeps the durable name side-table so a session's name
// survives after the session itself is gone.
package session

import (
	"context"
	"time"

	"github.com/cragtrack/cragtrack/pkg/achievement"
	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/mirror"
	"github.com/cragtrack/cragtrack/pkg/store"
)

// Session is a bounded time window of climbing activity.
type Session struct {
	// ID is the opaque unique identifier.
	ID string `json:"id"`

	// StartTime is the instant the session was created.
	StartTime time.Time `json:"startTime"`

	// EndTime is set only when the session is finalized.
	EndTime *time.Time `json:"endTime,omitempty"`

	// PausedDuration is cumulative time excluded from the active
	// duration. It only ever grows.
	PausedDuration time.Duration `json:"pausedDuration"`

	// PausedAt is the instant the session was paused. Present exactly
	// when the session is currently paused.
	PausedAt *time.Time `json:"pausedAt,omitempty"`

	// Name is the optional user-assigned label.
	Name string `json:"name,omitempty"`
}

// Paused reports whether the session is currently paused.
func (s *Session) Paused() bool {
	return s.PausedAt != nil
}

// DisplayName returns the user-assigned name, or a default derived from the
// start time's time-of-day.
func (s *Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}

	switch hour := s.StartTime.Hour(); {
	case hour >= 5 && hour < 12:
		return "Morning Session"
	case hour >= 12 && hour < 17:
		return "Afternoon Session"
	case hour >= 17 && hour < 21:
		return "Evening Session"
	default:
		return "Night Session"
	}
}

// Metadata is the durable per-session name override, keyed by session id.
// It outlives the ephemeral Session object so names survive app restarts
// after a session has ended.
type Metadata struct {
	// Name is the user-assigned session name.
	Name string `json:"name"`
}

// Summary is a derived, non-persisted snapshot produced on pause and end.
// A finalized session's authoritative stats are always recomputed from
// climbs, never from a cached summary.
type Summary struct {
	// SessionID identifies the summarized session.
	SessionID string

	// Duration is elapsed time minus paused time.
	Duration time.Duration

	// StartTime is the session start.
	StartTime time.Time

	// EndTime is the summary instant (pause time or end time).
	EndTime time.Time

	// TotalClimbs is the climb count.
	TotalClimbs int

	// Sends is the send count.
	Sends int

	// Attempts is the attempt count.
	Attempts int

	// MaxGradeByType is the hardest send per type, when any.
	MaxGradeByType map[grade.Type]*climb.Climb

	// GradesByType is the per-type grade aggregation, hardest first.
	GradesByType map[grade.Type][]climb.GradeCount

	// Achievements are the personal records set this session.
	Achievements []achievement.Achievement
}

// HistoryEntry is one row of the session history: a distinct session id
// referenced by climbs, joined with its metadata.
type HistoryEntry struct {
	// SessionID is the session identifier.
	SessionID string

	// Name is the stored name, or "" when unnamed.
	Name string

	// StartTime is the earliest climb timestamp in the session.
	StartTime time.Time

	// EndTime is the latest climb timestamp in the session.
	EndTime time.Time

	// Climbs is the number of climbs logged.
	Climbs int
}

// Mirrorer mirrors session records to the remote backend.
type Mirrorer interface {
	// UpsertSessions upserts session records by id.
	UpsertSessions(ctx context.Context, sessions []Session) error

	// DeleteSession deletes a session record by id.
	DeleteSession(ctx context.Context, id string) error
}

// Config contains tracker configuration.
type Config struct {
	// Gateway persists the active-session slot and the metadata table.
	// Required.
	Gateway store.Gateway

	// Climbs is the climb store summaries are computed from. Required.
	Climbs *climb.Store

	// Remote receives best-effort mirror calls. Optional.
	Remote Mirrorer

	// Auth gates mirroring. Optional when Remote is nil.
	Auth *identity.State

	// Mirror is the background lane mirror calls run on. Required when
	// Remote is set.
	Mirror *mirror.Mirror

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}
