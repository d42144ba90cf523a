package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concert-scout/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func event(id, artist, venue, date string, minPrice *float64, source domain.Source) *domain.CanonicalEvent {
	return &domain.CanonicalEvent{
		ProviderEventID: id,
		ArtistName:      artist,
		VenueName:       venue,
		Date:            date,
		MinPrice:        minPrice,
		Source:          source,
	}
}

func TestDedupe_CollapsesSameShowAcrossProviders(t *testing.T) {
	input := []*domain.CanonicalEvent{
		event("tm-1", "Queen", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster),
		event("sg_2", "queen ", "moody center", "2025-06-01", ptr(40.0), domain.SourceSeatGeek),
	}

	out := Dedupe(input)
	require.Len(t, out, 1)
	// The priced record wins regardless of arriving second
	assert.Equal(t, "sg_2", out[0].ProviderEventID)
	assert.Equal(t, 40.0, *out[0].MinPrice)
}

func TestDedupe_PricePreference_BothArrivalOrders(t *testing.T) {
	priced := event("a", "Queen", "Moody Center", "2025-06-01", ptr(45.0), domain.SourceSeatGeek)
	priceless := event("b", "Queen", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster)

	out := Dedupe([]*domain.CanonicalEvent{priceless, priced})
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ProviderEventID)

	out = Dedupe([]*domain.CanonicalEvent{priced, priceless})
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ProviderEventID)
}

func TestDedupe_FirstWinsWhenNeitherHasPrice(t *testing.T) {
	out := Dedupe([]*domain.CanonicalEvent{
		event("first", "Queen", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster),
		event("second", "Queen", "Moody Center", "2025-06-01", nil, domain.SourceSeatGeek),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "first", out[0].ProviderEventID)
}

func TestDedupe_FirstWinsWhenBothHavePrice(t *testing.T) {
	out := Dedupe([]*domain.CanonicalEvent{
		event("first", "Queen", "Moody Center", "2025-06-01", ptr(50.0), domain.SourceTicketmaster),
		event("second", "Queen", "Moody Center", "2025-06-01", ptr(40.0), domain.SourceSeatGeek),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "first", out[0].ProviderEventID)
}

func TestDedupe_ReplacementPreservesPosition(t *testing.T) {
	out := Dedupe([]*domain.CanonicalEvent{
		event("x-1", "Alvvays", "Scoot Inn", "2025-05-01", nil, domain.SourceTicketmaster),
		event("x-2", "Queen", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster),
		event("x-3", "Wilco", "Stubbs", "2025-07-01", nil, domain.SourceTicketmaster),
		event("x-4", "Queen", "Moody Center", "2025-06-01", ptr(40.0), domain.SourceSeatGeek),
	})
	require.Len(t, out, 3)
	assert.Equal(t, "x-1", out[0].ProviderEventID)
	assert.Equal(t, "x-4", out[1].ProviderEventID) // replaced in place, not moved to the end
	assert.Equal(t, "x-3", out[2].ProviderEventID)
}

func TestDedupe_DistinctKeysAllSurvive(t *testing.T) {
	out := Dedupe([]*domain.CanonicalEvent{
		event("a", "Queen", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster),
		event("b", "Queen", "Moody Center", "2025-06-02", nil, domain.SourceTicketmaster),
		event("c", "Queen", "Stubbs", "2025-06-01", nil, domain.SourceTicketmaster),
		event("d", "Wilco", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster),
	})
	assert.Len(t, out, 4)
}

func TestDedupe_Idempotent(t *testing.T) {
	input := []*domain.CanonicalEvent{
		event("a", "Queen", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster),
		event("b", "QUEEN", "Moody Center ", "2025-06-01", ptr(40.0), domain.SourceSeatGeek),
		event("c", "Wilco", "Stubbs", "2025-07-01", nil, domain.SourceTicketmaster),
		event("d", "wilco", "stubbs", "2025-07-01", nil, domain.SourceSeatGeek),
	}

	once := Dedupe(input)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestDedupe_KeyUniqueness(t *testing.T) {
	input := []*domain.CanonicalEvent{
		event("a", " Queen ", "Moody Center", "2025-06-01", nil, domain.SourceTicketmaster),
		event("b", "queen", "MOODY CENTER", "2025-06-01", ptr(10.0), domain.SourceSeatGeek),
		event("c", "Queen", "Moody Center", "2025-06-02", nil, domain.SourceTicketmaster),
		event("d", "Wilco", "Stubbs", "2025-07-01", nil, domain.SourceSeatGeek),
	}

	out := Dedupe(input)
	seen := make(map[string]bool)
	for _, e := range out {
		key := e.DedupKey()
		assert.False(t, seen[key], "duplicate key in output: %s", key)
		seen[key] = true
	}
}

func TestDedupe_EmptyInput(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	assert.Empty(t, Dedupe([]*domain.CanonicalEvent{}))
}
