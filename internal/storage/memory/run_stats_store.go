package memory

import (
	"context"
	"sync"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// RunStatsStore is an in-memory implementation of storage.RunStatsStore.
type RunStatsStore struct {
	mu   sync.RWMutex
	data []*domain.DiscoveryRunStat
}

// NewRunStatsStore creates a new in-memory run stats store.
func NewRunStatsStore() *RunStatsStore {
	return &RunStatsStore{}
}

// InsertBulk appends run stat rows.
func (s *RunStatsStore) InsertBulk(_ context.Context, stats []*domain.DiscoveryRunStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range stats {
		if st == nil || st.RunID == "" {
			return storage.ErrInvalidInput
		}
		statCopy := *st
		s.data = append(s.data, &statCopy)
	}
	return nil
}

// All returns a copy of every archived row, in insertion order.
func (s *RunStatsStore) All() []*domain.DiscoveryRunStat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.DiscoveryRunStat, 0, len(s.data))
	for _, st := range s.data {
		statCopy := *st
		result = append(result, &statCopy)
	}
	return result
}

// Verify interface compliance at compile time.
var _ storage.RunStatsStore = (*RunStatsStore)(nil)
