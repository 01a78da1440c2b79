package store

import (
	"sync"

	"storefront-service/internal/models"
)

// Store holds the current catalog snapshot. Snapshots are replaced as a
// whole under the lock, so a reader either sees the prior snapshot or the
// new one, never a half-assembled catalog. Published snapshots are
// treated as immutable.
type Store struct {
	mu       sync.RWMutex
	snapshot *models.Snapshot
}

// New creates an empty store. Current returns nil until the first
// successful load publishes a snapshot.
func New() *Store {
	return &Store{}
}

// Current returns the latest published snapshot, or nil when no load has
// succeeded yet.
func (s *Store) Current() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Replace atomically installs a new snapshot.
func (s *Store) Replace(snapshot *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

// Ready reports whether a snapshot has been published.
func (s *Store) Ready() bool {
	return s.Current() != nil
}
