package postgres

import (
	"context"
	"fmt"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// AttendanceStore implements storage.AttendanceStore using PostgreSQL.
type AttendanceStore struct {
	pool *Pool
}

// NewAttendanceStore creates a new AttendanceStore.
func NewAttendanceStore(pool *Pool) *AttendanceStore {
	return &AttendanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AttendanceStore = (*AttendanceStore)(nil)

// Upsert records a watchlist entry, overwriting any earlier status.
func (s *AttendanceStore) Upsert(ctx context.Context, a *domain.Attendance) error {
	if a == nil || a.UserID == "" || a.ProviderEventID == "" || !a.Status.IsValid() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO concert_attendance (user_id, provider_event_id, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, provider_event_id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, a.UserID, a.ProviderEventID, string(a.Status), a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// Delete removes a watchlist entry.
func (s *AttendanceStore) Delete(ctx context.Context, userID, providerEventID string) error {
	query := `DELETE FROM concert_attendance WHERE user_id = $1 AND provider_event_id = $2`

	if _, err := s.pool.Exec(ctx, query, userID, providerEventID); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// Get retrieves one entry. Returns ErrNotFound if not exists.
func (s *AttendanceStore) Get(ctx context.Context, userID, providerEventID string) (*domain.Attendance, error) {
	query := `
		SELECT user_id, provider_event_id, status, updated_at
		FROM concert_attendance
		WHERE user_id = $1 AND provider_event_id = $2
	`

	var a domain.Attendance
	var statusStr string
	err := s.pool.QueryRow(ctx, query, userID, providerEventID).Scan(
		&a.UserID,
		&a.ProviderEventID,
		&statusStr,
		&a.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}

	a.Status = domain.AttendanceStatus(statusStr)
	return &a, nil
}

// ListByStatus retrieves event IDs a user marked with the given status.
func (s *AttendanceStore) ListByStatus(ctx context.Context, userID string, status domain.AttendanceStatus) ([]string, error) {
	query := `
		SELECT provider_event_id
		FROM concert_attendance
		WHERE user_id = $1 AND status = $2
		ORDER BY provider_event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		result = append(result, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return result, nil
}
