package aggregate

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"concert-scout/internal/domain"
	"concert-scout/internal/observability"
	"concert-scout/internal/providers"
)

// Default configuration values.
const (
	DefaultBatchSize  = 20
	DefaultBatchDelay = 500 * time.Millisecond
)

// ErrNoArtists means discovery was asked to run over an empty artist list.
// Distinct from a run that searched everything and found nothing.
var ErrNoArtists = errors.New("no artists to search")

// Progress is an observational snapshot emitted after each batch completes.
type Progress struct {
	Batch           int // 1-based index of the batch just finished
	TotalBatches    int
	ArtistsSearched int
	TotalArtists    int
	EventsFound     int
}

// ProgressFunc receives batch completion snapshots. It runs on the scheduler's
// goroutine between batches.
type ProgressFunc func(Progress)

// Scheduler fans provider searches out over the artist list in fixed-size
// batches with a join barrier and pacing delay between batches.
type Scheduler struct {
	adapters   []providers.SourceAdapter
	batchSize  int
	batchDelay time.Duration
	logger     *log.Logger
}

// SchedulerOptions contains configuration for creating a Scheduler.
type SchedulerOptions struct {
	Adapters []providers.SourceAdapter

	// BatchSize is the number of artists searched concurrently per batch.
	// Defaults to DefaultBatchSize.
	BatchSize int

	// BatchDelay is the flat pacing pause between batches, applied regardless
	// of observed rate-limit responses. Defaults to DefaultBatchDelay; a
	// negative value disables pacing.
	BatchDelay time.Duration

	Logger *log.Logger
}

// NewScheduler creates a batch scheduler over the given provider adapters.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchDelay := opts.BatchDelay
	if batchDelay == 0 {
		batchDelay = DefaultBatchDelay
	} else if batchDelay < 0 {
		batchDelay = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		adapters:   opts.Adapters,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		logger:     logger,
	}
}

// errorKind maps a search failure to its metric label. Empty means success.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var perr *providers.ProviderError
	if errors.As(err, &perr) {
		return string(perr.Kind)
	}
	return string(providers.ErrorHTTP)
}

// searchResult carries one (artist, provider) outcome back to the join point.
type searchResult struct {
	source domain.Source
	events []*domain.CanonicalEvent
	err    error
}

// Discover runs the full artist list through every adapter and accumulates
// results on the job. Provider failures count as zero results for that
// (artist, provider) pair. Events reach the job only at batch join points, so
// the job needs no locking.
func (s *Scheduler) Discover(ctx context.Context, job *domain.SearchJob, onProgress ProgressFunc) error {
	if len(job.Artists) == 0 {
		return ErrNoArtists
	}

	totalBatches := (len(job.Artists) + s.batchSize - 1) / s.batchSize

	for batch := 0; batch < totalBatches; batch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := batch * s.batchSize
		end := start + s.batchSize
		if end > len(job.Artists) {
			end = len(job.Artists)
		}
		artists := job.Artists[start:end]

		s.runBatch(ctx, job, artists)
		job.ArtistsSearched += len(artists)

		if onProgress != nil {
			onProgress(Progress{
				Batch:           batch + 1,
				TotalBatches:    totalBatches,
				ArtistsSearched: job.ArtistsSearched,
				TotalArtists:    len(job.Artists),
				EventsFound:     len(job.Events),
			})
		}

		// Pacing pause between batches, skipped after the last one.
		if batch < totalBatches-1 && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}
	}

	return nil
}

// runBatch launches one goroutine per (artist, adapter) pair and blocks until
// every search in the batch has finished. Each goroutine writes to its own
// slot of a preallocated results slice, so no mutex is needed.
func (s *Scheduler) runBatch(ctx context.Context, job *domain.SearchJob, artists []string) {
	results := make([]searchResult, len(artists)*len(s.adapters))

	var wg sync.WaitGroup
	for i, artist := range artists {
		for k, adapter := range s.adapters {
			wg.Add(1)
			go func(slot int, artist string, adapter providers.SourceAdapter) {
				defer wg.Done()
				start := time.Now()
				events, err := adapter.Search(ctx, artist, job.Geo)
				observability.RecordProviderRequest(adapter.Source().String(), len(events), time.Since(start).Seconds(), errorKind(err))
				results[slot] = searchResult{source: adapter.Source(), events: events, err: err}
			}(i*len(s.adapters)+k, artist, adapter)
		}
	}
	wg.Wait()

	for _, res := range results {
		tally := job.Tally(res.source)
		tally.Requests++
		if res.err != nil {
			tally.Failures++
			s.logger.Printf("[aggregate] provider %s search failed: %v", res.source, res.err)
			continue
		}
		tally.Events += int64(len(res.events))
		job.Events = append(job.Events, res.events...)
	}
}
