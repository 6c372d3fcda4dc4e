package sync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/logger"
	"github.com/cragtrack/cragtrack/pkg/session"
)

// Reconciler merges local and remote collections.
//
// A Reconciler serializes itself: a Sync call while another is in flight is
// a no-op. It does not guard against two devices syncing the same identity
// simultaneously, an accepted limitation for single-user accounts.
type Reconciler struct {
	backend Backend
	auth    *identity.State
	logger  logger.Logger
	busy    atomic.Bool
}

// New creates a reconciler.
//
// Parameters:
//   - backend: Remote store
//   - auth: Identity state gating all remote work
//   - log: Logger instance
func New(backend Backend, auth *identity.State, log logger.Logger) *Reconciler {
	return &Reconciler{
		backend: backend,
		auth:    auth,
		logger:  log,
	}
}

// Sync reconciles the local collections against the remote store.
//
// Steps: fetch both remote collections, upload local records the remote has
// no id for (sessions before the climbs that reference them), and return
// the union with remote copies winning every shared id. The caller replaces
// its local collections with the result and persists them.
//
// Without an authenticated identity, or while another Sync is in flight,
// Sync is a no-op returning the inputs unchanged. Any remote failure
// propagates; no partial rollback is attempted, and a retry is safe because
// uploads are idempotent upserts.
func (r *Reconciler) Sync(ctx context.Context, localClimbs []climb.Climb, localSessions []session.Session) (Result, error) {
	unchanged := Result{Climbs: localClimbs, Sessions: localSessions}

	if !r.auth.Authenticated() {
		r.logger.Debug("sync skipped, not authenticated")
		return unchanged, nil
	}

	if !r.busy.CompareAndSwap(false, true) {
		r.logger.Debug("sync skipped, already in flight")
		return unchanged, nil
	}
	defer r.busy.Store(false)

	started := time.Now()

	var (
		remoteClimbs   []climb.Climb
		remoteSessions []session.Session
	)

	g, fetchCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		remoteClimbs, err = r.backend.FetchClimbs(fetchCtx)
		return err
	})
	g.Go(func() error {
		var err error
		remoteSessions, err = r.backend.FetchSessions(fetchCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return unchanged, fmt.Errorf("failed to fetch remote collections: %w", err)
	}

	remoteClimbIDs := make(map[string]struct{}, len(remoteClimbs))
	for _, c := range remoteClimbs {
		remoteClimbIDs[c.ID] = struct{}{}
	}
	remoteSessionIDs := make(map[string]struct{}, len(remoteSessions))
	for _, s := range remoteSessions {
		remoteSessionIDs[s.ID] = struct{}{}
	}

	var sessionsToUpload []session.Session
	for _, s := range localSessions {
		if _, ok := remoteSessionIDs[s.ID]; !ok {
			sessionsToUpload = append(sessionsToUpload, s)
		}
	}

	var climbsToUpload []climb.Climb
	for _, c := range localClimbs {
		if _, ok := remoteClimbIDs[c.ID]; !ok {
			climbsToUpload = append(climbsToUpload, c)
		}
	}

	// Sessions first: the remote side requires a session row before the
	// climbs that reference it.
	if len(sessionsToUpload) > 0 {
		if err := r.backend.UpsertSessions(ctx, sessionsToUpload); err != nil {
			return unchanged, fmt.Errorf("failed to upload sessions: %w", err)
		}
	}

	if len(climbsToUpload) > 0 {
		if err := r.backend.UpsertClimbs(ctx, climbsToUpload); err != nil {
			return unchanged, fmt.Errorf("failed to upload climbs: %w", err)
		}
	}

	// Remote wins for shared ids; only genuinely new local records
	// survive verbatim.
	result := Result{
		Climbs:   append(remoteClimbs, climbsToUpload...),
		Sessions: append(remoteSessions, sessionsToUpload...),
	}

	r.logger.Info("sync completed",
		"climbs_uploaded", len(climbsToUpload),
		"sessions_uploaded", len(sessionsToUpload),
		"climbs_total", len(result.Climbs),
		"sessions_total", len(result.Sessions),
		"elapsed", time.Since(started))

	return result, nil
}

// Migrate uploads the guest-mode collections to a freshly authenticated
// account.
//
// Sessions missing an explicit record are derived by grouping climbs by
// session id and taking the earliest and latest climb timestamps as start
// and end. Everything is uploaded unconditionally. Intended for a first
// sync; a second run duplicate-upserts harmlessly because uploads are keyed
// by id.
func (r *Reconciler) Migrate(ctx context.Context, localClimbs []climb.Climb, localSessions []session.Session) error {
	if !r.auth.Authenticated() {
		return ErrNotAuthenticated
	}

	sessions := deriveMissingSessions(localClimbs, localSessions)

	if len(sessions) > 0 {
		if err := r.backend.UpsertSessions(ctx, sessions); err != nil {
			return fmt.Errorf("failed to migrate sessions: %w", err)
		}
	}

	if len(localClimbs) > 0 {
		if err := r.backend.UpsertClimbs(ctx, localClimbs); err != nil {
			return fmt.Errorf("failed to migrate climbs: %w", err)
		}
	}

	r.logger.Info("migration completed",
		"climbs", len(localClimbs),
		"sessions", len(sessions))

	return nil
}

// deriveMissingSessions fills in session records for climbs whose session id
// has no explicit record, using the climb timestamps as the window.
func deriveMissingSessions(climbs []climb.Climb, sessions []session.Session) []session.Session {
	known := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		known[s.ID] = struct{}{}
	}

	type window struct {
		start time.Time
		end   time.Time
	}

	derivedOrder := make([]string, 0)
	derived := make(map[string]*window)

	for _, c := range climbs {
		if _, ok := known[c.SessionID]; ok {
			continue
		}

		w, ok := derived[c.SessionID]
		if !ok {
			derived[c.SessionID] = &window{start: c.Timestamp, end: c.Timestamp}
			derivedOrder = append(derivedOrder, c.SessionID)
			continue
		}

		if c.Timestamp.Before(w.start) {
			w.start = c.Timestamp
		}
		if c.Timestamp.After(w.end) {
			w.end = c.Timestamp
		}
	}

	result := make([]session.Session, 0, len(sessions)+len(derived))
	result = append(result, sessions...)

	for _, id := range derivedOrder {
		w := derived[id]
		end := w.end
		result = append(result, session.Session{
			ID:        id,
			StartTime: w.start,
			EndTime:   &end,
		})
	}

	return result
}
