package climb

import (
	"context"
	"sync"
	"testing"

	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/logger"
	"github.com/cragtrack/cragtrack/pkg/mirror"
	"github.com/cragtrack/cragtrack/pkg/store"
)

// fakeMirrorer records mirrored calls.
type fakeMirrorer struct {
	mu       sync.Mutex
	upserted []Climb
	deleted  []string
}

func (f *fakeMirrorer) UpsertClimbs(ctx context.Context, climbs []Climb) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, climbs...)
	return nil
}

func (f *fakeMirrorer) DeleteClimb(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func newMirroredStore(t *testing.T, auth *identity.State) (*Store, *fakeMirrorer, *mirror.Mirror) {
	t.Helper()

	remote := &fakeMirrorer{}
	lane := mirror.New(mirror.Config{}, logger.Noop())
	s := NewStore(Config{
		Gateway: store.NewMemory(),
		Remote:  remote,
		Auth:    auth,
		Mirror:  lane,
	}, logger.Noop())

	return s, remote, lane
}

func TestAddMirrorsWhenAuthenticated(t *testing.T) {
	t.Parallel()

	auth := identity.NewState()
	auth.SetIdentity(identity.Identity{UserID: "user-1"})
	s, remote, lane := newMirroredStore(t, auth)

	c := s.Add("session-1", "V4", grade.TypeBoulder, StatusSend)
	lane.Close()

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.upserted) != 1 || remote.upserted[0].ID != c.ID {
		t.Errorf("mirrored upserts = %v, want only %q", remote.upserted, c.ID)
	}
}

func TestAddDoesNotMirrorWithoutIdentity(t *testing.T) {
	t.Parallel()

	s, remote, lane := newMirroredStore(t, identity.NewState())

	s.Add("session-1", "V4", grade.TypeBoulder, StatusSend)
	lane.Close()

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.upserted) != 0 {
		t.Errorf("mirrored upserts = %v, want none", remote.upserted)
	}
}

func TestDeleteAllForSessionMirrorsEachRemoval(t *testing.T) {
	t.Parallel()

	auth := identity.NewState()
	auth.SetIdentity(identity.Identity{UserID: "user-1"})
	s, remote, lane := newMirroredStore(t, auth)

	a := s.Add("session-1", "V4", grade.TypeBoulder, StatusSend)
	b := s.Add("session-1", "V5", grade.TypeBoulder, StatusSend)
	s.DeleteAllForSession("session-1")
	lane.Close()

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.deleted) != 2 {
		t.Fatalf("mirrored deletes = %v, want 2", remote.deleted)
	}

	got := map[string]bool{remote.deleted[0]: true, remote.deleted[1]: true}
	if !got[a.ID] || !got[b.ID] {
		t.Errorf("mirrored deletes = %v, want %q and %q", remote.deleted, a.ID, b.ID)
	}
}

func TestLocalStateUnaffectedByMirrorlessConfig(t *testing.T) {
	t.Parallel()

	// No remote, no mirror: mutations still work locally.
	s := NewStore(Config{Gateway: store.NewMemory()}, logger.Noop())

	c := s.Add("session-1", "V4", grade.TypeBoulder, StatusSend)
	s.Delete(c.ID)

	if got := len(s.All()); got != 0 {
		t.Errorf("len(All()) = %d, want 0", got)
	}
}
