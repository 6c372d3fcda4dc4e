package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cragtrack/cragtrack/pkg/achievement"
	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/logger"
	"github.com/cragtrack/cragtrack/pkg/mirror"
	"github.com/cragtrack/cragtrack/pkg/store"
)

// Tracker owns the single active-session slot and the metadata side-table.
//
// All transitions are synchronous: they return once local state is
// persisted. Remote mirroring runs on the mirror lane and never affects a
// transition's result.
type Tracker struct {
	gateway store.Gateway
	climbs  *climb.Store
	remote  Mirrorer
	auth    *identity.State
	mirror  *mirror.Mirror
	logger  logger.Logger
	now     func() time.Time

	mu     sync.Mutex
	active *Session
	meta   map[string]Metadata
}

// NewTracker creates a tracker and restores the persisted active session and
// metadata table. Load failures degrade to an idle tracker with an empty
// table; they are logged and never propagated.
func NewTracker(cfg Config, log logger.Logger) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	t := &Tracker{
		gateway: cfg.Gateway,
		climbs:  cfg.Climbs,
		remote:  cfg.Remote,
		auth:    cfg.Auth,
		mirror:  cfg.Mirror,
		logger:  log,
		now:     cfg.Now,
		meta:    make(map[string]Metadata),
	}

	var active Session
	if found, err := t.gateway.Load(store.KeyActiveSession, &active); err != nil {
		log.Error("failed to load active session, starting idle", "error", err)
	} else if found {
		t.active = &active
	}

	var meta map[string]Metadata
	if found, err := t.gateway.Load(store.KeySessions, &meta); err != nil {
		log.Error("failed to load session metadata, starting empty", "error", err)
	} else if found && meta != nil {
		t.meta = meta
	}

	return t
}

// Active returns a copy of the active session, or nil when idle.
func (t *Tracker) Active() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return nil
	}

	s := *t.active
	return &s
}

// Start begins a new session.
//
// Valid only when idle: when a session is already active or paused, Start is
// a no-op returning the existing session. There is only one active-session
// slot, and starting twice must not create a second one.
func (t *Tracker) Start() Session {
	t.mu.Lock()

	if t.active != nil {
		s := *t.active
		t.mu.Unlock()
		t.logger.Debug("start ignored, session already active", "session_id", s.ID)
		return s
	}

	s := Session{
		ID:        uuid.NewString(),
		StartTime: t.now(),
	}
	t.active = &s
	t.persistActive()

	copied := s
	t.mu.Unlock()

	t.logger.Info("session started", "session_id", copied.ID)

	t.mirrorUpsert(copied)

	return copied
}

// Pause pauses the active session and returns its summary as of now.
//
// A session with zero climbs cannot be paused; Pause returns nil and the
// session stays active. Pause is also a no-op when idle or already paused.
func (t *Tracker) Pause() *Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil || t.active.Paused() {
		return nil
	}

	sessionClimbs := t.climbs.ForSession(t.active.ID)
	if len(sessionClimbs) == 0 {
		return nil
	}

	now := t.now()
	summary := t.summarize(sessionClimbs, now)

	t.active.PausedAt = &now
	t.persistActive()

	t.logger.Info("session paused",
		"session_id", t.active.ID,
		"climbs", summary.TotalClimbs)

	return summary
}

// Resume clears the pause, folding the elapsed pause interval into the
// session's paused duration. No-op unless currently paused.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil || !t.active.Paused() {
		return
	}

	now := t.now()
	t.active.PausedDuration += now.Sub(*t.active.PausedAt)
	t.active.PausedAt = nil
	t.persistActive()

	t.logger.Info("session resumed",
		"session_id", t.active.ID,
		"paused_total", t.active.PausedDuration)
}

// End finalizes the active session, valid from active or paused.
//
// A session with zero climbs leaves no trace: the slot is cleared and End
// returns nil. Otherwise End computes the final summary, records the
// optional name in the metadata table, mirrors the finalized session, clears
// the slot, and returns the summary.
func (t *Tracker) End(name string) *Summary {
	t.mu.Lock()

	if t.active == nil {
		t.mu.Unlock()
		return nil
	}

	active := t.active
	sessionClimbs := t.climbs.ForSession(active.ID)

	if len(sessionClimbs) == 0 {
		t.active = nil
		t.clearActive()
		t.mu.Unlock()

		t.logger.Info("empty session discarded", "session_id", active.ID)
		return nil
	}

	now := t.now()
	summary := t.summarize(sessionClimbs, now)

	if name != "" {
		t.meta[active.ID] = Metadata{Name: name}
		t.persistMeta()
	}

	finalized := *active
	finalized.EndTime = &now
	finalized.PausedAt = nil
	finalized.Name = name

	t.active = nil
	t.clearActive()
	t.mu.Unlock()

	t.logger.Info("session ended",
		"session_id", finalized.ID,
		"duration", summary.Duration,
		"climbs", summary.TotalClimbs)

	t.mirrorUpsert(finalized)

	return summary
}

// summarize computes a summary for the active session as of now.
// Callers must hold mu.
//
// The duration subtracts accumulated paused time only; an in-progress pause
// is not subtracted, which is consistent because summaries are computed
// before PausedAt is set on pause, and an end-while-paused reports the pause
// tail as it was accumulated so far.
func (t *Tracker) summarize(sessionClimbs []climb.Climb, now time.Time) *Summary {
	active := t.active

	summary := &Summary{
		SessionID:      active.ID,
		Duration:       now.Sub(active.StartTime) - active.PausedDuration,
		StartTime:      active.StartTime,
		EndTime:        now,
		TotalClimbs:    len(sessionClimbs),
		MaxGradeByType: make(map[grade.Type]*climb.Climb),
		GradesByType:   climb.AggregateByType(sessionClimbs),
	}

	maxIdx := make(map[grade.Type]int)
	for _, c := range sessionClimbs {
		if c.Status == climb.StatusSend {
			summary.Sends++
		} else {
			summary.Attempts++
		}

		if c.Status != climb.StatusSend {
			continue
		}

		idx := grade.NormalizedIndex(c.Grade, c.Type)
		best, seen := maxIdx[c.Type]

		// Strictly greater: equal-index sends keep the first climb.
		if !seen || idx > best {
			maxIdx[c.Type] = idx
			c := c
			summary.MaxGradeByType[c.Type] = &c
		}
	}

	summary.Achievements = achievement.Detect(sessionClimbs, t.climbs.All(), active.ID)

	return summary
}

// SetName stores a durable name for a session id, past or active.
func (t *Tracker) SetName(sessionID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if name == "" {
		delete(t.meta, sessionID)
	} else {
		t.meta[sessionID] = Metadata{Name: name}
	}
	t.persistMeta()

	if t.active != nil && t.active.ID == sessionID {
		t.active.Name = name
		t.persistActive()
	}
}

// Name returns the stored name for a session id, or "".
func (t *Tracker) Name(sessionID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta[sessionID].Name
}

// DeleteSession removes a historical session: its climbs, its metadata
// entry, and (best-effort) its remote record.
func (t *Tracker) DeleteSession(sessionID string) {
	removed := t.climbs.DeleteAllForSession(sessionID)

	t.mu.Lock()
	_, hadMeta := t.meta[sessionID]
	if hadMeta {
		delete(t.meta, sessionID)
		t.persistMeta()
	}
	t.mu.Unlock()

	t.logger.Info("session deleted",
		"session_id", sessionID,
		"climbs_removed", removed)

	if t.remote != nil && t.mirror != nil && t.auth != nil && t.auth.Authenticated() {
		t.mirror.Enqueue("delete session", func(ctx context.Context) error {
			return t.remote.DeleteSession(ctx, sessionID)
		})
	}
}

// History lists the distinct sessions referenced by climbs, newest first,
// joined with stored names. Start and end are the earliest and latest climb
// timestamps within each session.
func (t *Tracker) History() []HistoryEntry {
	byID := make(map[string]*HistoryEntry)

	for _, c := range t.climbs.All() {
		e, ok := byID[c.SessionID]
		if !ok {
			e = &HistoryEntry{
				SessionID: c.SessionID,
				StartTime: c.Timestamp,
				EndTime:   c.Timestamp,
			}
			byID[c.SessionID] = e
		}

		if c.Timestamp.Before(e.StartTime) {
			e.StartTime = c.Timestamp
		}
		if c.Timestamp.After(e.EndTime) {
			e.EndTime = c.Timestamp
		}
		e.Climbs++
	}

	t.mu.Lock()
	for id, e := range byID {
		e.Name = t.meta[id].Name
	}
	t.mu.Unlock()

	entries := make([]HistoryEntry, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, *e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})

	return entries
}

// Records materializes the local session records for sync: one record per
// historical session plus the active session, names applied from the
// metadata table.
func (t *Tracker) Records() []Session {
	var records []Session

	for _, e := range t.History() {
		end := e.EndTime
		records = append(records, Session{
			ID:        e.SessionID,
			StartTime: e.StartTime,
			EndTime:   &end,
			Name:      e.Name,
		})
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		for i, r := range records {
			if r.ID == t.active.ID {
				// The live slot is more accurate than the
				// climb-derived window.
				records[i] = *t.active
				records[i].Name = t.meta[t.active.ID].Name
				return records
			}
		}
		records = append(records, *t.active)
	}

	return records
}

// ApplyMetadata merges names from reconciled session records into the
// metadata table. Used by the sync caller after a merge.
func (t *Tracker) ApplyMetadata(sessions []Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := false
	for _, s := range sessions {
		if s.Name == "" {
			continue
		}
		if t.meta[s.ID].Name != s.Name {
			t.meta[s.ID] = Metadata{Name: s.Name}
			changed = true
		}
	}

	if changed {
		t.persistMeta()
	}
}

// persistActive writes the active slot. Callers must hold mu.
func (t *Tracker) persistActive() {
	if err := t.gateway.Save(store.KeyActiveSession, t.active); err != nil {
		t.logger.Error("failed to persist active session", "error", err)
	}
}

// clearActive removes the active slot record. Callers must hold mu.
func (t *Tracker) clearActive() {
	if err := t.gateway.Delete(store.KeyActiveSession); err != nil {
		t.logger.Error("failed to clear active session", "error", err)
	}
}

// persistMeta writes the metadata table. Callers must hold mu.
func (t *Tracker) persistMeta() {
	if err := t.gateway.Save(store.KeySessions, t.meta); err != nil {
		t.logger.Error("failed to persist session metadata", "error", err)
	}
}

// mirrorUpsert enqueues a session upsert when authenticated.
func (t *Tracker) mirrorUpsert(s Session) {
	if t.remote == nil || t.mirror == nil || t.auth == nil || !t.auth.Authenticated() {
		return
	}

	t.mirror.Enqueue("upsert session", func(ctx context.Context) error {
		return t.remote.UpsertSessions(ctx, []Session{s})
	})
}
