package memory

import (
	"context"
	"sort"
	"sync"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// PreferenceStore is an in-memory implementation of storage.PreferenceStore.
type PreferenceStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.ArtistPreference // user_id -> artist_name -> preference
}

// NewPreferenceStore creates a new in-memory preference store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{
		data: make(map[string]map[string]*domain.ArtistPreference),
	}
}

// Upsert records a verdict, overwriting any earlier one for the same artist.
func (s *PreferenceStore) Upsert(_ context.Context, p *domain.ArtistPreference) error {
	if p == nil || p.UserID == "" || p.ArtistName == "" || !p.Preference.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, exists := s.data[p.UserID]
	if !exists {
		prefs = make(map[string]*domain.ArtistPreference)
		s.data[p.UserID] = prefs
	}

	prefCopy := *p
	prefs[p.ArtistName] = &prefCopy
	return nil
}

// ListByPreference retrieves artist names holding the given verdict, ordered by name ASC.
func (s *PreferenceStore) ListByPreference(_ context.Context, userID string, value domain.Preference) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []string
	for _, p := range s.data[userID] {
		if p.Preference == value {
			result = append(result, p.ArtistName)
		}
	}

	sort.Strings(result)
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.PreferenceStore = (*PreferenceStore)(nil)
