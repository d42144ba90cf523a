package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage/memory"
)

func TestRecommender_ForUser(t *testing.T) {
	events := memory.NewEventStore()
	prefs := memory.NewPreferenceStore()
	ctx := context.Background()

	stored := []*domain.CanonicalEvent{
		{ProviderEventID: "a", ArtistName: "Nobody", Date: "2026-01-01"},
		{ProviderEventID: "b", ArtistName: "Big Thief", Date: "2026-02-01"},
		{ProviderEventID: "c", ArtistName: "Somebody", Date: "2026-03-01", Popularity: 50},
	}
	for _, e := range stored {
		require.NoError(t, events.Upsert(ctx, "user-1", e))
	}
	require.NoError(t, prefs.Upsert(ctx, &domain.ArtistPreference{
		UserID:     "user-1",
		ArtistName: "Big Thief",
		Preference: domain.PreferenceLiked,
		UpdatedAt:  1000,
	}))

	rec := NewRecommender(RecommenderOptions{Events: events, Preferences: prefs})

	ranked, err := rec.ForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "b", ranked[0].Event.ProviderEventID)
	assert.Equal(t, 100.0, ranked[0].Score)
	assert.Equal(t, "c", ranked[1].Event.ProviderEventID)
	assert.Equal(t, 5.0, ranked[1].Score)
	assert.Equal(t, "a", ranked[2].Event.ProviderEventID)
}

func TestRecommender_ForUser_NoEvents(t *testing.T) {
	rec := NewRecommender(RecommenderOptions{
		Events:      memory.NewEventStore(),
		Preferences: memory.NewPreferenceStore(),
	})

	ranked, err := rec.ForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRecommender_ForUser_DislikedArtistsIgnored(t *testing.T) {
	events := memory.NewEventStore()
	prefs := memory.NewPreferenceStore()
	ctx := context.Background()

	require.NoError(t, events.Upsert(ctx, "user-1", &domain.CanonicalEvent{
		ProviderEventID: "a",
		ArtistName:      "Nickelback",
		Date:            "2026-01-01",
	}))
	require.NoError(t, prefs.Upsert(ctx, &domain.ArtistPreference{
		UserID:     "user-1",
		ArtistName: "Nickelback",
		Preference: domain.PreferenceDisliked,
		UpdatedAt:  1000,
	}))

	rec := NewRecommender(RecommenderOptions{Events: events, Preferences: prefs})

	ranked, err := rec.ForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].Score)
}
