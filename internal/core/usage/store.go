package usage

import (
	"sync"

	"github.com/penwyp/go-claude-meter/internal/core/model"
)

// Store holds the most recent usage snapshot in a thread-safe manner
type Store struct {
	mu sync.RWMutex

	snapshot    model.UsageSnapshot
	hasSnapshot bool
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a new snapshot as a unit. Windows absent in the new
// snapshot are absent afterwards; nothing is merged with prior state.
func (s *Store) Replace(snapshot model.UsageSnapshot) {
	clone := snapshot.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = clone
	s.hasSnapshot = true
}

// Read returns a copy of the current snapshot, false before the first Replace
func (s *Store) Read() (model.UsageSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasSnapshot {
		return model.UsageSnapshot{}, false
	}
	return s.snapshot.Clone(), true
}
