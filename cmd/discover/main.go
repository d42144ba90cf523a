// Command discover runs one concert discovery pass for a single user and
// prints a summary. It is the batch-mode entrypoint; cmd/server exposes the
// same pipeline over HTTP.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"concert-scout/internal/aggregate"
	"concert-scout/internal/auth"
	"concert-scout/internal/config"
	"concert-scout/internal/domain"
	"concert-scout/internal/observability"
	"concert-scout/internal/orchestrator"
	"concert-scout/internal/providers"
	"concert-scout/internal/spotify"
	"concert-scout/internal/storage"
	chstore "concert-scout/internal/storage/clickhouse"
	"concert-scout/internal/storage/memory"
	"concert-scout/internal/storage/migrations"
	pgstore "concert-scout/internal/storage/postgres"
)

func main() {
	var (
		configPath    = flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file (optional)")
		userID        = flag.String("user", os.Getenv("SCOUT_USER_ID"), "User ID to discover concerts for")
		city          = flag.String("city", "", "Search city (overrides config)")
		stateCode     = flag.String("state", "", "Search state code (overrides config)")
		radiusMiles   = flag.Int("radius", 0, "Search radius in miles (overrides config)")
		artistsFile   = flag.String("artists-file", "", "File with one artist name per line; skips the catalog harvest")
		postgresDSN   = flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (overrides config)")
		clickhouseDSN = flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (overrides config)")
		useMemory     = flag.Bool("use-memory", false, "Use in-memory stores instead of databases")
		metricsAddr   = flag.String("metrics-addr", "", "Serve /metrics on this address while the run is in flight (optional)")
		verbose       = flag.Bool("verbose", false, "Enable verbose phase logging")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[discover] ", log.LstdFlags)

	if *userID == "" {
		logger.Fatal("-user flag or SCOUT_USER_ID env var is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = *clickhouseDSN
	}

	geo := domain.Geo{
		City:        cfg.Search.City,
		StateCode:   cfg.Search.StateCode,
		RadiusMiles: cfg.Search.RadiusMiles,
	}
	if *city != "" {
		geo.City = *city
	}
	if *stateCode != "" {
		geo.StateCode = *stateCode
	}
	if *radiusMiles > 0 {
		geo.RadiusMiles = *radiusMiles
	}

	ctx := context.Background()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		go func() {
			logger.Printf("Serving metrics on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	stores, cleanup, err := createStores(ctx, cfg.Storage.PostgresDSN, cfg.Storage.ClickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	if cfg.Ticketmaster.APIKey == "" {
		logger.Fatal("ticketmaster.api_key is required in config")
	}
	if cfg.SeatGeek.ClientID == "" {
		logger.Fatal("seatgeek.client_id is required in config")
	}

	scheduler := aggregate.NewScheduler(aggregate.SchedulerOptions{
		Adapters: []providers.SourceAdapter{
			providers.NewTicketmasterAdapter(cfg.Ticketmaster.APIKey),
			providers.NewSeatGeekAdapter(cfg.SeatGeek.ClientID),
		},
		BatchSize:  cfg.Search.BatchSize,
		BatchDelay: cfg.Search.BatchDelay,
		Logger:     logger,
	})

	orch := orchestrator.New(orchestrator.Options{
		Auth: auth.NewManager(auth.ManagerOptions{
			Credentials: stores.credentials,
			Identity:    spotify.NewOAuthClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURI),
		}),
		Catalog:    spotify.NewCatalogClient(),
		Scheduler:  scheduler,
		EventStore: stores.events,
		RunStats:   stores.runStats,
		Verbose:    *verbose,
	})

	onProgress := func(p aggregate.Progress) {
		logger.Printf("Batch %d/%d: %d/%d artists searched, %d events found",
			p.Batch, p.TotalBatches, p.ArtistsSearched, p.TotalArtists, p.EventsFound)
	}

	start := time.Now()
	var result *orchestrator.RunResult
	if *artistsFile != "" {
		artists, err := readArtistsFile(*artistsFile)
		if err != nil {
			logger.Fatalf("Failed to read artists file: %v", err)
		}
		logger.Printf("Searching %d artists from %s...", len(artists), *artistsFile)
		result, err = orch.RunWithArtists(ctx, *userID, artists, geo, onProgress)
		if err != nil {
			logger.Fatalf("Discovery run failed: %v", err)
		}
	} else {
		result, err = orch.Run(ctx, *userID, geo, onProgress)
		if err != nil {
			logger.Fatalf("Discovery run failed: %v", err)
		}
	}

	logger.Printf("Run %s completed in %v", result.RunID, time.Since(start))
	logger.Printf("  Artists searched: %d", result.ArtistsSearched)
	logger.Printf("  Events found:     %d", result.EventsFound)
	logger.Printf("  Unique events:    %d", result.UniqueEvents)
	logger.Printf("  Events saved:     %d", result.EventsSaved)
	for _, e := range result.Errors {
		logger.Printf("  Save error: %s", e)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// allStores bundles every store the pipeline needs, regardless of backend.
type allStores struct {
	credentials storage.CredentialStore
	events      storage.EventStore
	preferences storage.PreferenceStore
	attendance  storage.AttendanceStore
	runStats    storage.RunStatsStore
}

// createStores wires either in-memory stores or the PostgreSQL + ClickHouse
// pair, running migrations on the database path. The returned cleanup closes
// whatever was opened.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		logger.Println("Using in-memory stores")
		return &allStores{
			credentials: memory.NewCredentialStore(),
			events:      memory.NewEventStore(),
			preferences: memory.NewPreferenceStore(),
			attendance:  memory.NewAttendanceStore(),
			runStats:    memory.NewRunStatsStore(),
		}, func() {}, nil
	}

	if postgresDSN == "" {
		return nil, nil, fmt.Errorf("postgres DSN is required (or pass -use-memory)")
	}
	if clickhouseDSN == "" {
		return nil, nil, fmt.Errorf("clickhouse DSN is required (or pass -use-memory)")
	}

	logger.Println("Connecting to PostgreSQL...")
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Println("Connecting to ClickHouse...")
	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect clickhouse: %w", err)
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}

	logger.Println("Running PostgreSQL migrations...")
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	logger.Println("Running ClickHouse migrations...")
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	return &allStores{
		credentials: pgstore.NewCredentialStore(pool),
		events:      pgstore.NewEventStore(pool),
		preferences: pgstore.NewPreferenceStore(pool),
		attendance:  pgstore.NewAttendanceStore(pool),
		runStats:    chstore.NewRunStatsStore(conn),
	}, cleanup, nil
}

// readArtistsFile loads one artist name per line, skipping blanks and
// #-prefixed comments.
func readArtistsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var artists []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		artists = append(artists, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, fmt.Errorf("no artists in %s", path)
	}
	return artists, nil
}
