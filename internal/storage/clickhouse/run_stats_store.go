package clickhouse

import (
	"context"
	"fmt"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// RunStatsStore implements storage.RunStatsStore using ClickHouse.
type RunStatsStore struct {
	conn *Conn
}

// NewRunStatsStore creates a new RunStatsStore.
func NewRunStatsStore(conn *Conn) *RunStatsStore {
	return &RunStatsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RunStatsStore = (*RunStatsStore)(nil)

// InsertBulk archives per-provider stats for a finished run in one batch.
func (s *RunStatsStore) InsertBulk(ctx context.Context, stats []*domain.DiscoveryRunStat) error {
	if len(stats) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO discovery_run_stats (
			run_id, user_id, source, requests, failures, events, started_at, finished_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, st := range stats {
		err = batch.Append(
			st.RunID, st.UserID, string(st.Source),
			uint64(st.Requests), uint64(st.Failures), uint64(st.Events),
			st.StartedAt, st.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// ListByUser retrieves all archived stats for a user, ordered by started_at ASC.
func (s *RunStatsStore) ListByUser(ctx context.Context, userID string) ([]*domain.DiscoveryRunStat, error) {
	query := `
		SELECT run_id, user_id, source, requests, failures, events, started_at, finished_at
		FROM discovery_run_stats
		WHERE user_id = ?
		ORDER BY started_at ASC, run_id ASC, source ASC
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query by user id: %w", err)
	}
	defer rows.Close()

	var stats []*domain.DiscoveryRunStat
	for rows.Next() {
		var st domain.DiscoveryRunStat
		var source string
		var requests, failures, events uint64

		err := rows.Scan(
			&st.RunID, &st.UserID, &source,
			&requests, &failures, &events,
			&st.StartedAt, &st.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run stats row: %w", err)
		}

		st.Source = domain.Source(source)
		st.Requests = int64(requests)
		st.Failures = int64(failures)
		st.Events = int64(events)
		stats = append(stats, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run stats rows: %w", err)
	}

	return stats, nil
}
