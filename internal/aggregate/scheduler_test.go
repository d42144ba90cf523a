package aggregate

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concert-scout/internal/domain"
	"concert-scout/internal/providers"
)

// stubAdapter returns one event per searched artist, or fails for artists in
// failFor.
type stubAdapter struct {
	source  domain.Source
	failFor map[string]bool

	mu          sync.Mutex
	searched    []string
	inFlight    int
	maxInFlight int
}

func (a *stubAdapter) Source() domain.Source {
	return a.source
}

func (a *stubAdapter) Search(ctx context.Context, artistName string, geo domain.Geo) ([]*domain.CanonicalEvent, error) {
	a.mu.Lock()
	a.searched = append(a.searched, artistName)
	a.inFlight++
	if a.inFlight > a.maxInFlight {
		a.maxInFlight = a.inFlight
	}
	a.mu.Unlock()

	// Give batch-mates a chance to be in flight simultaneously
	time.Sleep(5 * time.Millisecond)

	a.mu.Lock()
	a.inFlight--
	a.mu.Unlock()

	if a.failFor[artistName] {
		return nil, &providers.ProviderError{Source: a.source, Kind: providers.ErrorTimeout}
	}

	return []*domain.CanonicalEvent{{
		ProviderEventID: fmt.Sprintf("%s-%s", a.source, artistName),
		ArtistName:      artistName,
		VenueName:       "Moody Center",
		Date:            "2026-06-01",
		Source:          a.source,
	}}, nil
}

func artistList(n int) []string {
	artists := make([]string, n)
	for i := range artists {
		artists[i] = fmt.Sprintf("Artist %02d", i)
	}
	return artists
}

func TestScheduler_Discover_AllProvidersAllArtists(t *testing.T) {
	tm := &stubAdapter{source: domain.SourceTicketmaster}
	sg := &stubAdapter{source: domain.SourceSeatGeek}

	sched := NewScheduler(SchedulerOptions{
		Adapters:   []providers.SourceAdapter{tm, sg},
		BatchSize:  5,
		BatchDelay: -1,
	})

	job := domain.NewSearchJob("user-1", artistList(12), domain.Geo{City: "Austin", StateCode: "TX", RadiusMiles: 50})

	err := sched.Discover(context.Background(), job, nil)
	require.NoError(t, err)

	// One event per (artist, provider) pair
	assert.Len(t, job.Events, 24)
	assert.Equal(t, 12, job.ArtistsSearched)
	assert.Len(t, tm.searched, 12)
	assert.Len(t, sg.searched, 12)

	tally := job.Tally(domain.SourceTicketmaster)
	assert.Equal(t, int64(12), tally.Requests)
	assert.Equal(t, int64(0), tally.Failures)
	assert.Equal(t, int64(12), tally.Events)
}

func TestScheduler_Discover_Progress(t *testing.T) {
	tm := &stubAdapter{source: domain.SourceTicketmaster}

	sched := NewScheduler(SchedulerOptions{
		Adapters:   []providers.SourceAdapter{tm},
		BatchSize:  5,
		BatchDelay: -1,
	})

	job := domain.NewSearchJob("user-1", artistList(12), domain.Geo{})

	var snapshots []Progress
	err := sched.Discover(context.Background(), job, func(p Progress) {
		snapshots = append(snapshots, p)
	})
	require.NoError(t, err)

	require.Len(t, snapshots, 3)
	assert.Equal(t, Progress{Batch: 1, TotalBatches: 3, ArtistsSearched: 5, TotalArtists: 12, EventsFound: 5}, snapshots[0])
	assert.Equal(t, Progress{Batch: 2, TotalBatches: 3, ArtistsSearched: 10, TotalArtists: 12, EventsFound: 10}, snapshots[1])
	assert.Equal(t, Progress{Batch: 3, TotalBatches: 3, ArtistsSearched: 12, TotalArtists: 12, EventsFound: 12}, snapshots[2])
}

func TestScheduler_Discover_FailedProviderIsZeroResults(t *testing.T) {
	tm := &stubAdapter{source: domain.SourceTicketmaster, failFor: map[string]bool{"Artist 01": true}}
	sg := &stubAdapter{source: domain.SourceSeatGeek}

	sched := NewScheduler(SchedulerOptions{
		Adapters:   []providers.SourceAdapter{tm, sg},
		BatchSize:  10,
		BatchDelay: -1,
	})

	job := domain.NewSearchJob("user-1", artistList(3), domain.Geo{})

	err := sched.Discover(context.Background(), job, nil)
	require.NoError(t, err)

	// 3 from seatgeek, 2 from ticketmaster
	assert.Len(t, job.Events, 5)

	tally := job.Tally(domain.SourceTicketmaster)
	assert.Equal(t, int64(3), tally.Requests)
	assert.Equal(t, int64(1), tally.Failures)
	assert.Equal(t, int64(2), tally.Events)
}

func TestScheduler_Discover_EmptyArtistList(t *testing.T) {
	sched := NewScheduler(SchedulerOptions{
		Adapters: []providers.SourceAdapter{&stubAdapter{source: domain.SourceTicketmaster}},
	})

	job := domain.NewSearchJob("user-1", nil, domain.Geo{})

	err := sched.Discover(context.Background(), job, nil)
	assert.ErrorIs(t, err, ErrNoArtists)
}

func TestScheduler_Discover_BatchConcurrency(t *testing.T) {
	tm := &stubAdapter{source: domain.SourceTicketmaster}

	sched := NewScheduler(SchedulerOptions{
		Adapters:   []providers.SourceAdapter{tm},
		BatchSize:  4,
		BatchDelay: -1,
	})

	job := domain.NewSearchJob("user-1", artistList(8), domain.Geo{})

	err := sched.Discover(context.Background(), job, nil)
	require.NoError(t, err)

	// Within a batch all searches run together; across batches never more
	// than one batch is in flight.
	assert.LessOrEqual(t, tm.maxInFlight, 4)
	assert.Greater(t, tm.maxInFlight, 1)
}

func TestScheduler_Discover_Cancellation(t *testing.T) {
	tm := &stubAdapter{source: domain.SourceTicketmaster}

	sched := NewScheduler(SchedulerOptions{
		Adapters:   []providers.SourceAdapter{tm},
		BatchSize:  2,
		BatchDelay: 50 * time.Millisecond,
	})

	job := domain.NewSearchJob("user-1", artistList(10), domain.Geo{})

	ctx, cancel := context.WithCancel(context.Background())
	var once sync.Once
	err := sched.Discover(ctx, job, func(p Progress) {
		// Cancel during the pacing delay after the first batch
		once.Do(cancel)
	})
	require.ErrorIs(t, err, context.Canceled)

	// The first batch completed before cancellation took effect
	assert.Equal(t, 2, job.ArtistsSearched)
	assert.Len(t, job.Events, 2)
}
