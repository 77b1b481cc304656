package tracker

import (
	"sync"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
)

// PositionStore holds the current batch of vessel positions. The ingestion
// pipeline is the only writer and always replaces the full record set, so
// readers never observe a partially-updated batch.
type PositionStore struct {
	mu        sync.RWMutex
	positions []domain.VesselPosition
}

// NewPositionStore creates an empty store.
func NewPositionStore() *PositionStore {
	return &PositionStore{}
}

// Replace swaps the store contents for a new batch. Implements ingest.Store.
func (s *PositionStore) Replace(positions []domain.VesselPosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = positions
}

// All returns the stored records in ingestion order. The returned slice is
// shared with the store and must not be mutated.
func (s *PositionStore) All() []domain.VesselPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions
}

// Len returns the number of stored records.
func (s *PositionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}

// Clear empties the store.
func (s *PositionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = nil
}
