package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// DeleteAll removes every stored event for a user.
func (s *EventStore) DeleteAll(ctx context.Context, userID string) error {
	query := `DELETE FROM concerts_discovered WHERE user_id = $1`

	if _, err := s.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

// Upsert inserts or replaces one event for a user.
// Conflicts resolve on (user_id, provider_event_id); each upsert is
// independently idempotent.
func (s *EventStore) Upsert(ctx context.Context, userID string, e *domain.CanonicalEvent) error {
	if userID == "" || e == nil || e.ProviderEventID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO concerts_discovered (
			user_id, provider_event_id, artist_name, event_name,
			venue_name, venue_address, city, state_code,
			event_date, event_time, min_price, max_price,
			ticket_url, image_url, source, priority_tier, popularity, performers
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (user_id, provider_event_id) DO UPDATE SET
			artist_name = EXCLUDED.artist_name,
			event_name = EXCLUDED.event_name,
			venue_name = EXCLUDED.venue_name,
			venue_address = EXCLUDED.venue_address,
			city = EXCLUDED.city,
			state_code = EXCLUDED.state_code,
			event_date = EXCLUDED.event_date,
			event_time = EXCLUDED.event_time,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			ticket_url = EXCLUDED.ticket_url,
			image_url = EXCLUDED.image_url,
			source = EXCLUDED.source,
			priority_tier = EXCLUDED.priority_tier,
			popularity = EXCLUDED.popularity,
			performers = EXCLUDED.performers
	`

	_, err := s.pool.Exec(ctx, query,
		userID,
		e.ProviderEventID,
		e.ArtistName,
		e.EventName,
		e.VenueName,
		e.VenueAddress,
		e.City,
		e.StateCode,
		e.Date,
		e.Time,
		e.MinPrice,
		e.MaxPrice,
		e.TicketURL,
		e.ImageURL,
		string(e.Source),
		e.PriorityTier,
		e.Popularity,
		e.Performers,
	)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// ListAll retrieves all stored events for a user, ordered by date ASC.
func (s *EventStore) ListAll(ctx context.Context, userID string) ([]*domain.CanonicalEvent, error) {
	query := `
		SELECT provider_event_id, artist_name, event_name,
			venue_name, venue_address, city, state_code,
			event_date, event_time, min_price, max_price,
			ticket_url, image_url, source, priority_tier, popularity, performers
		FROM concerts_discovered
		WHERE user_id = $1
		ORDER BY event_date ASC, provider_event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents scans all rows into CanonicalEvents.
func scanEvents(rows pgx.Rows) ([]*domain.CanonicalEvent, error) {
	var result []*domain.CanonicalEvent
	for rows.Next() {
		var e domain.CanonicalEvent
		var sourceStr string

		err := rows.Scan(
			&e.ProviderEventID,
			&e.ArtistName,
			&e.EventName,
			&e.VenueName,
			&e.VenueAddress,
			&e.City,
			&e.StateCode,
			&e.Date,
			&e.Time,
			&e.MinPrice,
			&e.MaxPrice,
			&e.TicketURL,
			&e.ImageURL,
			&sourceStr,
			&e.PriorityTier,
			&e.Popularity,
			&e.Performers,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		e.Source = domain.Source(sourceStr)
		result = append(result, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return result, nil
}
