package postgres

import (
	"context"
	"fmt"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// CredentialStore implements storage.CredentialStore using PostgreSQL.
type CredentialStore struct {
	pool *Pool
}

// NewCredentialStore creates a new CredentialStore.
func NewCredentialStore(pool *Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CredentialStore = (*CredentialStore)(nil)

// Get retrieves the credential for a user/provider pair. Returns ErrNotFound if not exists.
func (s *CredentialStore) Get(ctx context.Context, userID, provider string) (*domain.OAuthCredential, error) {
	query := `
		SELECT user_id, provider, access_token, refresh_token, expires_at, connected, updated_at
		FROM catalog_credentials
		WHERE user_id = $1 AND provider = $2
	`

	var c domain.OAuthCredential
	err := s.pool.QueryRow(ctx, query, userID, provider).Scan(
		&c.UserID,
		&c.Provider,
		&c.AccessToken,
		&c.RefreshToken,
		&c.ExpiresAt,
		&c.Connected,
		&c.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &c, nil
}

// Put inserts or replaces the credential for its (user_id, provider) key.
func (s *CredentialStore) Put(ctx context.Context, c *domain.OAuthCredential) error {
	if c == nil || c.UserID == "" || c.Provider == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO catalog_credentials (
			user_id, provider, access_token, refresh_token, expires_at, connected, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			connected = EXCLUDED.connected,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		c.UserID,
		c.Provider,
		c.AccessToken,
		c.RefreshToken,
		c.ExpiresAt,
		c.Connected,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put credential: %w", err)
	}
	return nil
}

// Clear removes the credential entirely.
func (s *CredentialStore) Clear(ctx context.Context, userID, provider string) error {
	query := `DELETE FROM catalog_credentials WHERE user_id = $1 AND provider = $2`

	if _, err := s.pool.Exec(ctx, query, userID, provider); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
