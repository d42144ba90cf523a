package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concert-scout/internal/domain"
)

func TestRunStatsStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRunStatsStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	stats := []*domain.DiscoveryRunStat{
		{
			RunID:      "run-1",
			UserID:     "user-1",
			Source:     domain.SourceTicketmaster,
			Requests:   12,
			Failures:   1,
			Events:     34,
			StartedAt:  1000,
			FinishedAt: 6000,
		},
		{
			RunID:      "run-1",
			UserID:     "user-1",
			Source:     domain.SourceSeatGeek,
			Requests:   12,
			Failures:   0,
			Events:     20,
			StartedAt:  1000,
			FinishedAt: 6000,
		},
	}

	err = store.InsertBulk(ctx, stats)
	require.NoError(t, err)

	got, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, "user-1", got[0].UserID)
	assert.Equal(t, domain.SourceSeatGeek, got[0].Source)
	assert.Equal(t, int64(12), got[0].Requests)
	assert.Equal(t, int64(0), got[0].Failures)
	assert.Equal(t, int64(20), got[0].Events)
	assert.Equal(t, int64(1000), got[0].StartedAt)
	assert.Equal(t, int64(6000), got[0].FinishedAt)

	assert.Equal(t, domain.SourceTicketmaster, got[1].Source)
	assert.Equal(t, int64(1), got[1].Failures)
}

func TestRunStatsStore_ListByUser_Ordering(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRunStatsStore(conn)
	ctx := context.Background()

	stats := []*domain.DiscoveryRunStat{
		{RunID: "run-2", UserID: "user-1", Source: domain.SourceTicketmaster, StartedAt: 5000, FinishedAt: 9000},
		{RunID: "run-1", UserID: "user-1", Source: domain.SourceTicketmaster, StartedAt: 1000, FinishedAt: 4000},
		{RunID: "run-3", UserID: "user-2", Source: domain.SourceSeatGeek, StartedAt: 2000, FinishedAt: 3000},
	}

	err := store.InsertBulk(ctx, stats)
	require.NoError(t, err)

	got, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, "run-2", got[1].RunID)

	got, err = store.ListByUser(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "run-3", got[0].RunID)

	got, err = store.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
