package memory

import (
	"context"
	"sort"
	"sync"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// AttendanceStore is an in-memory implementation of storage.AttendanceStore.
type AttendanceStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Attendance // user_id -> provider_event_id -> entry
}

// NewAttendanceStore creates a new in-memory attendance store.
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{
		data: make(map[string]map[string]*domain.Attendance),
	}
}

// Upsert records a watchlist entry, overwriting any earlier status.
func (s *AttendanceStore) Upsert(_ context.Context, a *domain.Attendance) error {
	if a == nil || a.UserID == "" || a.ProviderEventID == "" || !a.Status.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, exists := s.data[a.UserID]
	if !exists {
		entries = make(map[string]*domain.Attendance)
		s.data[a.UserID] = entries
	}

	entryCopy := *a
	entries[a.ProviderEventID] = &entryCopy
	return nil
}

// Delete removes a watchlist entry.
func (s *AttendanceStore) Delete(_ context.Context, userID, providerEventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[userID], providerEventID)
	return nil
}

// Get retrieves one entry. Returns ErrNotFound if not exists.
func (s *AttendanceStore) Get(_ context.Context, userID, providerEventID string) (*domain.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[userID][providerEventID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	entryCopy := *a
	return &entryCopy, nil
}

// ListByStatus retrieves event IDs a user marked with the given status.
func (s *AttendanceStore) ListByStatus(_ context.Context, userID string, status domain.AttendanceStatus) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []string
	for _, a := range s.data[userID] {
		if a.Status == status {
			result = append(result, a.ProviderEventID)
		}
	}

	sort.Strings(result)
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.AttendanceStore = (*AttendanceStore)(nil)
