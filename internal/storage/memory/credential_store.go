package memory

import (
	"context"
	"sync"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// CredentialStore is an in-memory implementation of storage.CredentialStore.
type CredentialStore struct {
	mu   sync.RWMutex
	data map[credKey]*domain.OAuthCredential
}

type credKey struct {
	userID   string
	provider string
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		data: make(map[credKey]*domain.OAuthCredential),
	}
}

// Get retrieves the credential for a user/provider pair. Returns ErrNotFound if not exists.
func (s *CredentialStore) Get(_ context.Context, userID, provider string) (*domain.OAuthCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[credKey{userID, provider}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	credCopy := *c
	return &credCopy, nil
}

// Put inserts or replaces the credential for its (user_id, provider) key.
func (s *CredentialStore) Put(_ context.Context, c *domain.OAuthCredential) error {
	if c == nil || c.UserID == "" || c.Provider == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	credCopy := *c
	s.data[credKey{c.UserID, c.Provider}] = &credCopy
	return nil
}

// Clear removes the credential entirely.
func (s *CredentialStore) Clear(_ context.Context, userID, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, credKey{userID, provider})
	return nil
}

// Verify interface compliance at compile time.
var _ storage.CredentialStore = (*CredentialStore)(nil)
