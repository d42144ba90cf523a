package storage

import (
	"context"

	"concert-scout/internal/domain"
)

// CredentialStore provides access to catalog_credentials storage.
// Records are keyed by (user_id, provider).
type CredentialStore interface {
	// Get retrieves the credential for a user/provider pair. Returns ErrNotFound if not exists.
	Get(ctx context.Context, userID, provider string) (*domain.OAuthCredential, error)

	// Put inserts or replaces the credential for its (user_id, provider) key.
	Put(ctx context.Context, c *domain.OAuthCredential) error

	// Clear removes the credential entirely. Clearing a missing record is not an error.
	Clear(ctx context.Context, userID, provider string) error
}

// EventStore provides access to concerts_discovered storage.
// Upserts conflict on (user_id, provider_event_id); each upsert is
// independently idempotent, so a failed mid-write run cannot mix old and new
// data for the same key.
type EventStore interface {
	// DeleteAll removes every stored event for a user.
	DeleteAll(ctx context.Context, userID string) error

	// Upsert inserts or replaces one event for a user.
	Upsert(ctx context.Context, userID string, e *domain.CanonicalEvent) error

	// ListAll retrieves all stored events for a user, ordered by date ASC.
	ListAll(ctx context.Context, userID string) ([]*domain.CanonicalEvent, error)
}

// PreferenceStore provides access to preferences storage.
type PreferenceStore interface {
	// Upsert records a verdict, overwriting any earlier one for the same artist.
	Upsert(ctx context.Context, p *domain.ArtistPreference) error

	// ListByPreference retrieves artist names holding the given verdict, ordered by name ASC.
	ListByPreference(ctx context.Context, userID string, value domain.Preference) ([]string, error)
}

// AttendanceStore provides access to concert_attendance storage.
type AttendanceStore interface {
	// Upsert records a watchlist entry, overwriting any earlier status.
	Upsert(ctx context.Context, a *domain.Attendance) error

	// Delete removes a watchlist entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, userID, providerEventID string) error

	// Get retrieves one entry. Returns ErrNotFound if not exists.
	Get(ctx context.Context, userID, providerEventID string) (*domain.Attendance, error)

	// ListByStatus retrieves event IDs a user marked with the given status.
	ListByStatus(ctx context.Context, userID string, status domain.AttendanceStatus) ([]string, error)
}

// RunStatsStore archives per-provider rows of finished aggregation runs.
type RunStatsStore interface {
	// InsertBulk appends run stat rows. The archive is append-only.
	InsertBulk(ctx context.Context, stats []*domain.DiscoveryRunStat) error
}
