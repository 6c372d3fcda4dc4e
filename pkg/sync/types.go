// Package sync reconciles the on-device climb and session collections with
// the remote backend.
//
// The merge policy is local-wins-for-new-records, remote-wins-for-existing
// records: local items whose ids the remote has never seen are uploaded and
// kept, while any id the remote already knows resolves to the remote copy.
// Nothing is ever deleted implicitly. Remote failures propagate to the
// caller; a partial upload is safe to retry because uploads are idempotent
// upserts keyed by id.
package sync

import (
	"context"

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/session"
)

// Backend is the remote store the reconciler talks to.
type Backend interface {
	// FetchClimbs returns the full remote climb collection.
	FetchClimbs(ctx context.Context) ([]climb.Climb, error)

	// FetchSessions returns the full remote session collection.
	FetchSessions(ctx context.Context) ([]session.Session, error)

	// UpsertClimbs upserts climbs by id as a single batch.
	UpsertClimbs(ctx context.Context, climbs []climb.Climb) error

	// UpsertSessions upserts session records by id as a single batch.
	UpsertSessions(ctx context.Context, sessions []session.Session) error
}

// Result is the reconciled state the caller must adopt wholesale: it
// replaces both local collections and persists them.
type Result struct {
	// Climbs is the merged climb collection.
	Climbs []climb.Climb

	// Sessions is the merged session collection.
	Sessions []session.Session
}
