package climb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/logger"
	"github.com/cragtrack/cragtrack/pkg/mirror"
	"github.com/cragtrack/cragtrack/pkg/store"
)

// Store owns the climb collection.
type Store struct {
	gateway store.Gateway
	remote  Mirrorer
	auth    *identity.State
	mirror  *mirror.Mirror
	logger  logger.Logger
	now     func() time.Time

	mu     sync.RWMutex
	climbs []Climb
}

// NewStore creates a climb store and loads the persisted collection.
//
// Climbs without a session id are pruned during load and the cleaned list is
// written back. A load failure degrades to an empty collection; it is logged
// and never propagated.
func NewStore(cfg Config, log logger.Logger) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Store{
		gateway: cfg.Gateway,
		remote:  cfg.Remote,
		auth:    cfg.Auth,
		mirror:  cfg.Mirror,
		logger:  log,
		now:     cfg.Now,
	}

	s.load()

	return s
}

// load reads the persisted collection, discarding loose climbs.
func (s *Store) load() {
	var persisted []Climb

	found, err := s.gateway.Load(store.KeyClimbs, &persisted)
	if err != nil {
		s.logger.Error("failed to load climbs, starting empty", "error", err)
		return
	}
	if !found {
		return
	}

	kept := make([]Climb, 0, len(persisted))
	for _, c := range persisted {
		if c.SessionID == "" {
			s.logger.Warn("discarding climb without session", "climb_id", c.ID)
			continue
		}
		kept = append(kept, c)
	}

	s.climbs = kept

	// Rewrite the persisted list when pruning dropped entries.
	if len(kept) != len(persisted) {
		s.persist()
	}
}

// Add logs a climb against the given session.
//
// The climb is appended and persisted before Add returns; the remote upsert,
// if an identity is active, runs on the mirror lane and its failure is only
// observable in logs.
func (s *Store) Add(sessionID, gradeToken string, t grade.Type, status Status) Climb {
	s.mu.Lock()

	c := Climb{
		ID:        uuid.NewString(),
		Grade:     gradeToken,
		Type:      t,
		Status:    status,
		Timestamp: s.now(),
		SessionID: sessionID,
	}

	s.climbs = append(s.climbs, c)
	s.persist()
	s.mu.Unlock()

	s.logger.Info("climb logged",
		"climb_id", c.ID,
		"grade", c.Grade,
		"type", c.Type,
		"status", c.Status,
		"session_id", sessionID)

	s.mirrorUpsert(c)

	return c
}

// Delete removes a climb by id. Unknown ids are a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()

	removed := false
	kept := s.climbs[:0]
	for _, c := range s.climbs {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.climbs = kept

	if removed {
		s.persist()
	}
	s.mu.Unlock()

	if !removed {
		return
	}

	s.logger.Info("climb deleted", "climb_id", id)

	if s.remote != nil && s.mirror != nil && s.auth != nil && s.auth.Authenticated() {
		s.mirror.Enqueue("delete climb", func(ctx context.Context) error {
			return s.remote.DeleteClimb(ctx, id)
		})
	}
}

// DeleteAllForSession removes every climb belonging to the session.
//
// Returns the number of climbs removed. Each removal is mirrored
// individually, matching the single-record remote contract.
func (s *Store) DeleteAllForSession(sessionID string) int {
	s.mu.Lock()

	var removedIDs []string
	kept := s.climbs[:0]
	for _, c := range s.climbs {
		if c.SessionID == sessionID {
			removedIDs = append(removedIDs, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	s.climbs = kept

	if len(removedIDs) > 0 {
		s.persist()
	}
	s.mu.Unlock()

	if len(removedIDs) == 0 {
		return 0
	}

	s.logger.Info("session climbs deleted",
		"session_id", sessionID,
		"count", len(removedIDs))

	if s.remote != nil && s.mirror != nil && s.auth != nil && s.auth.Authenticated() {
		for _, id := range removedIDs {
			id := id
			s.mirror.Enqueue("delete climb", func(ctx context.Context) error {
				return s.remote.DeleteClimb(ctx, id)
			})
		}
	}

	return len(removedIDs)
}

// All returns a copy of the climb collection in insertion order.
func (s *Store) All() []Climb {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Climb, len(s.climbs))
	copy(out, s.climbs)
	return out
}

// ForSession returns the climbs belonging to the session, in insertion order.
func (s *Store) ForSession(sessionID string) []Climb {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Climb
	for _, c := range s.climbs {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out
}

// ReplaceAll swaps in a new collection and persists it.
//
// Used by the sync caller, which replaces the local collection with the
// reconciled result.
func (s *Store) ReplaceAll(climbs []Climb) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.climbs = make([]Climb, len(climbs))
	copy(s.climbs, climbs)
	s.persist()
}

// persist writes the collection through the gateway. Failures are logged;
// in-memory state stands. Callers must hold mu.
func (s *Store) persist() {
	if err := s.gateway.Save(store.KeyClimbs, s.climbs); err != nil {
		s.logger.Error("failed to persist climbs", "error", err)
	}
}

// mirrorUpsert enqueues a single-record remote upsert when authenticated.
func (s *Store) mirrorUpsert(c Climb) {
	if s.remote == nil || s.mirror == nil || s.auth == nil || !s.auth.Authenticated() {
		return
	}

	s.mirror.Enqueue("upsert climb", func(ctx context.Context) error {
		return s.remote.UpsertClimbs(ctx, []Climb{c})
	})
}

// AggregateByType counts sends and attempts per distinct grade for every
// climb type present in the list.
//
// Each type's counts are ordered hardest first by normalized index; grades
// sharing an index fall back to the grade string so the order is stable.
func AggregateByType(climbs []Climb) map[grade.Type][]GradeCount {
	type bucket struct {
		order  []string
		counts map[string]*GradeCount
	}

	buckets := make(map[grade.Type]*bucket)

	for _, c := range climbs {
		b, ok := buckets[c.Type]
		if !ok {
			b = &bucket{counts: make(map[string]*GradeCount)}
			buckets[c.Type] = b
		}

		gc, ok := b.counts[c.Grade]
		if !ok {
			gc = &GradeCount{Grade: c.Grade}
			b.counts[c.Grade] = gc
			b.order = append(b.order, c.Grade)
		}

		if c.Status == StatusSend {
			gc.Sends++
		} else {
			gc.Attempts++
		}
	}

	result := make(map[grade.Type][]GradeCount, len(buckets))

	for t, b := range buckets {
		counts := make([]GradeCount, 0, len(b.order))
		for _, g := range b.order {
			counts = append(counts, *b.counts[g])
		}

		sort.SliceStable(counts, func(i, j int) bool {
			gi := grade.NormalizedIndex(counts[i].Grade, t)
			gj := grade.NormalizedIndex(counts[j].Grade, t)
			if gi != gj {
				return gi > gj
			}
			return counts[i].Grade < counts[j].Grade
		})

		result[t] = counts
	}

	return result
}
