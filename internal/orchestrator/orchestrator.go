// Package orchestrator drives one end-to-end discovery run.
// It coordinates: token → liked artists → provider search → dedup → persistence
package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"concert-scout/internal/aggregate"
	"concert-scout/internal/auth"
	"concert-scout/internal/domain"
	"concert-scout/internal/observability"
	"concert-scout/internal/storage"
)

// LikedArtistSource harvests the artist names a user's catalog library holds.
type LikedArtistSource interface {
	LikedArtists(ctx context.Context, accessToken string) ([]string, error)
}

// Orchestrator coordinates a full discovery run for one user.
type Orchestrator struct {
	auth      *auth.Manager
	catalog   LikedArtistSource
	scheduler *aggregate.Scheduler

	eventStore storage.EventStore
	runStats   storage.RunStatsStore // optional, best-effort archive

	verbose bool
	now     func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	Auth      *auth.Manager
	Catalog   LikedArtistSource
	Scheduler *aggregate.Scheduler

	EventStore storage.EventStore

	// RunStats archives per-provider tallies after each run. Optional: a nil
	// store disables archiving, and archive failures never fail the run.
	RunStats storage.RunStatsStore

	Verbose bool

	// Now overrides the clock. Used in tests.
	Now func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		auth:       opts.Auth,
		catalog:    opts.Catalog,
		scheduler:  opts.Scheduler,
		eventStore: opts.EventStore,
		runStats:   opts.RunStats,
		verbose:    opts.Verbose,
		now:        now,
	}
}

// RunResult contains results from one discovery run.
type RunResult struct {
	RunID           string
	ArtistsSearched int
	EventsFound     int // before deduplication
	UniqueEvents    int
	EventsSaved     int
	Errors          []string // per-record persistence failures
}

// Run executes a full discovery run: obtains a valid catalog token, harvests
// the user's liked artists, searches every provider, deduplicates, and
// replaces the user's stored events. Auth failures abort the run; per-record
// persistence failures are collected on the result.
func (o *Orchestrator) Run(ctx context.Context, userID string, geo domain.Geo, onProgress aggregate.ProgressFunc) (*RunResult, error) {
	o.log("Phase 1: Obtaining catalog access token...")
	token, err := o.auth.GetValidAccessToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (access token) failed: %w", err)
	}

	o.log("Phase 2: Harvesting liked artists...")
	artists, err := o.catalog.LikedArtists(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (liked artists) failed: %w", err)
	}
	o.log("  Found %d unique artists", len(artists))

	return o.RunWithArtists(ctx, userID, artists, geo, onProgress)
}

// RunWithArtists executes a discovery run over an explicit artist list,
// skipping the catalog harvest. An empty list is an error, reported
// distinctly from a run that searched everything and found nothing.
func (o *Orchestrator) RunWithArtists(ctx context.Context, userID string, artists []string, geo domain.Geo, onProgress aggregate.ProgressFunc) (*RunResult, error) {
	started := o.now()
	result := &RunResult{RunID: newRunID(userID, started)}

	o.log("Phase 3: Searching providers for %d artists...", len(artists))
	job := domain.NewSearchJob(userID, artists, geo)

	var lastSearched int
	progress := func(p aggregate.Progress) {
		observability.RecordBatch(p.ArtistsSearched - lastSearched)
		lastSearched = p.ArtistsSearched
		if onProgress != nil {
			onProgress(p)
		}
	}

	if err := o.scheduler.Discover(ctx, job, progress); err != nil {
		observability.RecordDiscoveryRun("failed", o.now().Sub(started).Seconds())
		return nil, fmt.Errorf("phase 3 (search) failed: %w", err)
	}
	result.ArtistsSearched = job.ArtistsSearched
	result.EventsFound = len(job.Events)
	o.log("  Found %d events across providers", len(job.Events))

	o.log("Phase 4: Deduplicating...")
	unique := aggregate.Dedupe(job.Events)
	result.UniqueEvents = len(unique)
	observability.RecordDedup(len(job.Events), len(unique))
	o.log("  %d unique events after deduplication", len(unique))

	o.log("Phase 5: Persisting...")
	saved, saveErrs := o.persist(ctx, userID, unique)
	result.EventsSaved = saved
	result.Errors = append(result.Errors, saveErrs...)
	o.log("  Saved %d events (%d errors)", saved, len(saveErrs))

	o.archiveRunStats(ctx, result.RunID, job, started)

	observability.RecordDiscoveryRun("ok", o.now().Sub(started).Seconds())
	o.log("Run %s completed: %d artists, %d unique events, %d saved",
		result.RunID, result.ArtistsSearched, result.UniqueEvents, result.EventsSaved)

	return result, nil
}

// persist replaces the user's stored events with the deduplicated set. The
// delete happens once up front; each upsert is independently idempotent, so a
// mid-run failure cannot mix old and new data for the same key.
func (o *Orchestrator) persist(ctx context.Context, userID string, events []*domain.CanonicalEvent) (int, []string) {
	if err := o.eventStore.DeleteAll(ctx, userID); err != nil {
		return 0, []string{fmt.Sprintf("clear previous events: %v", err)}
	}

	var saved int
	var errs []string
	for _, e := range events {
		err := o.eventStore.Upsert(ctx, userID, e)
		observability.RecordEventSave(err)
		if err != nil {
			errs = append(errs, fmt.Sprintf("save event %s: %v", e.ProviderEventID, err))
			continue
		}
		saved++
	}
	return saved, errs
}

// archiveRunStats writes per-provider tallies to the analytics store.
// Best-effort: failures are logged, never surfaced.
func (o *Orchestrator) archiveRunStats(ctx context.Context, runID string, job *domain.SearchJob, started time.Time) {
	if o.runStats == nil || len(job.Tallies) == 0 {
		return
	}

	stats := make([]*domain.DiscoveryRunStat, 0, len(job.Tallies))
	for source, tally := range job.Tallies {
		stats = append(stats, &domain.DiscoveryRunStat{
			RunID:      runID,
			UserID:     job.UserID,
			Source:     source,
			Requests:   tally.Requests,
			Failures:   tally.Failures,
			Events:     tally.Events,
			StartedAt:  started.UnixMilli(),
			FinishedAt: o.now().UnixMilli(),
		})
	}

	if err := o.runStats.InsertBulk(ctx, stats); err != nil {
		log.Printf("[orchestrator] archive run stats: %v", err)
	}
}

// newRunID derives a short stable identifier for one run.
func newRunID(userID string, started time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", userID, started.UnixNano())))
	return hex.EncodeToString(sum[:])[:12]
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
