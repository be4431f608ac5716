/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fleet maintenance forecasting server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load config file if given
  2. Configure zerolog
  3. Initialize SQLite store
  4. Build the forecasting engine (default policy table + config overrides)
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file path (optional; flags win over file values)
  -addr    HTTP listen address (default: :8080)
  -db      SQLite database path (default: fleet.db)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/fleet.db"

  # Run with a config file carrying policy overrides
  ./server -config=config.yaml

ENVIRONMENT:
  ME_-prefixed variables override config file values, e.g.
  ME_SERVER__ADDR=:9090, ME_LOGGING__LEVEL=debug.

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: File + environment configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/maintenance-engine/api"
	"github.com/warp/maintenance-engine/config"
	"github.com/warp/maintenance-engine/fleet"
	"github.com/warp/maintenance-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file path")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := newLogger(cfg.Logging)

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	// Build the engine with the merged policy table
	policies := fleet.DefaultPolicies().Merge(cfg.PolicyOverrides())
	engine := fleet.NewEngine(store, policies, log)

	// Create router
	handler := api.NewHandler(engine, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("db", cfg.Database.Path).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
