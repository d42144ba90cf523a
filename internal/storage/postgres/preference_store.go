package postgres

import (
	"context"
	"fmt"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// PreferenceStore implements storage.PreferenceStore using PostgreSQL.
type PreferenceStore struct {
	pool *Pool
}

// NewPreferenceStore creates a new PreferenceStore.
func NewPreferenceStore(pool *Pool) *PreferenceStore {
	return &PreferenceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PreferenceStore = (*PreferenceStore)(nil)

// Upsert records a verdict, overwriting any earlier one for the same artist.
func (s *PreferenceStore) Upsert(ctx context.Context, p *domain.ArtistPreference) error {
	if p == nil || p.UserID == "" || p.ArtistName == "" || !p.Preference.IsValid() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO preferences (user_id, artist_name, preference, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, artist_name) DO UPDATE SET
			preference = EXCLUDED.preference,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, p.UserID, p.ArtistName, string(p.Preference), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

// ListByPreference retrieves artist names holding the given verdict, ordered by name ASC.
func (s *PreferenceStore) ListByPreference(ctx context.Context, userID string, value domain.Preference) ([]string, error) {
	query := `
		SELECT artist_name
		FROM preferences
		WHERE user_id = $1 AND preference = $2
		ORDER BY artist_name ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, string(value))
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		result = append(result, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preferences: %w", err)
	}
	return result, nil
}
