// Package identity tracks the current authenticated user for remote
// operations.
//
// The identity is an explicit, mutex-guarded state object passed to the
// components that mirror or sync data, with SetIdentity/ClearIdentity as the
// only transitions. Components consult it at call time: no identity means
// remote work is skipped, never failed.
package identity

import "sync"

// Identity identifies an authenticated user scope.
type Identity struct {
	// UserID is the backend's opaque user identifier.
	UserID string
}

// State holds the current identity, if any.
//
// The zero value is unauthenticated and ready to use. All methods are safe
// for concurrent use.
type State struct {
	mu      sync.RWMutex
	current *Identity
}

// NewState returns an unauthenticated identity state.
func NewState() *State {
	return &State{}
}

// SetIdentity transitions to the given identity.
func (s *State) SetIdentity(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &id
}

// ClearIdentity transitions back to the unauthenticated state.
func (s *State) ClearIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Current returns the active identity and whether one is set.
func (s *State) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// Authenticated reports whether an identity is set.
func (s *State) Authenticated() bool {
	_, ok := s.Current()
	return ok
}
