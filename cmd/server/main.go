// Command server exposes the concert discovery pipeline over HTTP: OAuth
// connect/disconnect, on-demand discovery runs with WebSocket progress,
// stored-event browsing, recommendations, preferences, and attendance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concert-scout/internal/config"
	"concert-scout/internal/storage"
	chstore "concert-scout/internal/storage/clickhouse"
	"concert-scout/internal/storage/memory"
	"concert-scout/internal/storage/migrations"
	pgstore "concert-scout/internal/storage/postgres"
)

func main() {
	var (
		configPath    = flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file (optional)")
		listenAddr    = flag.String("listen", "", "HTTP listen address (overrides config)")
		postgresDSN   = flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (overrides config)")
		clickhouseDSN = flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (overrides config)")
		useMemory     = flag.Bool("use-memory", false, "Use in-memory stores instead of databases")
		verbose       = flag.Bool("verbose", false, "Enable verbose phase logging")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

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
	if *listenAddr != "" {
		cfg.Server.ListenAddress = *listenAddr
	}
	if cfg.Ticketmaster.APIKey == "" {
		logger.Fatal("ticketmaster.api_key is required in config")
	}
	if cfg.SeatGeek.ClientID == "" {
		logger.Fatal("seatgeek.client_id is required in config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, cfg.Storage.PostgresDSN, cfg.Storage.ClickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	srv := newServer(cfg, stores, logger, *verbose)

	httpServer := &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      srv.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Printf("Listening on %s", cfg.Server.ListenAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Println("Shutdown signal received, draining...")
	cancel()

	// Second signal forces immediate exit.
	go func() {
		<-sigCh
		logger.Println("Second signal received, forcing exit")
		os.Exit(1)
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	srv.hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}
	logger.Println("Server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// allStores bundles every store the server needs, regardless of backend.
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
