package latest

import (
	"sync"

	statusdomain "restroom-cloud/internal/status/domain"
)

// Store holds the most recently observed status snapshot. It is the explicit
// replacement for a module-level "last payload" global: created at process
// start, injected where needed, never persisted.
type Store struct {
	mu       sync.RWMutex
	snapshot statusdomain.Snapshot
	seen     bool
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the latest snapshot.
func (s *Store) Set(snapshot statusdomain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.seen = true
}

// Get returns the latest snapshot and whether one has been observed yet.
func (s *Store) Get() (statusdomain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.seen
}
