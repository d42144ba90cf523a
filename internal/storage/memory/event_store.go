package memory

import (
	"context"
	"sort"
	"sync"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.CanonicalEvent // user_id -> provider_event_id -> event
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]map[string]*domain.CanonicalEvent),
	}
}

// DeleteAll removes every stored event for a user.
func (s *EventStore) DeleteAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, userID)
	return nil
}

// Upsert inserts or replaces one event for a user.
func (s *EventStore) Upsert(_ context.Context, userID string, e *domain.CanonicalEvent) error {
	if userID == "" || e == nil || e.ProviderEventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, exists := s.data[userID]
	if !exists {
		events = make(map[string]*domain.CanonicalEvent)
		s.data[userID] = events
	}

	// Store a copy to prevent external mutation
	eventCopy := copyEvent(e)
	events[e.ProviderEventID] = eventCopy
	return nil
}

// ListAll retrieves all stored events for a user, ordered by date ASC.
func (s *EventStore) ListAll(_ context.Context, userID string) ([]*domain.CanonicalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CanonicalEvent
	for _, e := range s.data[userID] {
		result = append(result, copyEvent(e))
	}

	// Sort by date ASC, provider_event_id as tiebreaker for determinism
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].ProviderEventID < result[j].ProviderEventID
	})

	return result, nil
}

// copyEvent deep-copies an event including its pointer and slice fields.
func copyEvent(e *domain.CanonicalEvent) *domain.CanonicalEvent {
	eventCopy := *e
	if e.MinPrice != nil {
		v := *e.MinPrice
		eventCopy.MinPrice = &v
	}
	if e.MaxPrice != nil {
		v := *e.MaxPrice
		eventCopy.MaxPrice = &v
	}
	if e.Performers != nil {
		eventCopy.Performers = append([]string(nil), e.Performers...)
	}
	return &eventCopy
}

// Verify interface compliance at compile time.
var _ storage.EventStore = (*EventStore)(nil)
