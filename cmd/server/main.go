// Package main provides the entry point for the journal federation HTTP server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helixir/journal-federation-service/internal/config"
	"github.com/helixir/journal-federation-service/internal/database"
	"github.com/helixir/journal-federation-service/internal/federation"
	"github.com/helixir/journal-federation-service/internal/observability"
	"github.com/helixir/journal-federation-service/internal/repository"
	httpserver "github.com/helixir/journal-federation-service/internal/server/http"
	"github.com/helixir/journal-federation-service/internal/sources/sparql"
)

const metricsNamespace = "journal_federation"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("journal-federation-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(metricsNamespace)
	}

	engine := federation.New(
		federation.WithLogger(logger),
		federation.WithMetrics(metrics),
		federation.WithParallel(cfg.Federation.Parallel),
	)

	// Register one bibliographic reader per SPARQL mirror.
	for i, endpoint := range cfg.SPARQL.Endpoints {
		client := sparql.New(sparql.Config{
			Name:         fmt.Sprintf("sparql-%d", i),
			Endpoint:     endpoint,
			BaseURI:      cfg.SPARQL.BaseURI,
			JournalClass: cfg.SPARQL.JournalClass,
			LicenceMatch: sparql.LicenceMatch(cfg.Federation.LicenceMatch),
			Timeout:      cfg.SPARQL.Timeout,
			RateLimit:    cfg.SPARQL.RateLimit,
			MaxRetries:   cfg.SPARQL.MaxRetries,
			Username:     cfg.SPARQL.Username,
			Password:     cfg.SPARQL.Password,
		})
		engine.AddJournalSource(client)
		logger.Info().Str("source", client.Name()).Str("endpoint", endpoint).Msg("sparql source registered")
	}

	var checks []httpserver.ReadinessCheck

	// Register one category reader per SQLite file.
	for i, path := range cfg.SQLite.Paths {
		db, err := openSQLite(ctx, path, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		name := fmt.Sprintf("sqlite-%d", i)
		engine.AddCategorySource(repository.NewSQLiteCategoryRepository(db, name))
		checks = append(checks, httpserver.ReadinessCheck{Name: name, Check: db.PingContext})
		logger.Info().Str("source", name).Str("path", path).Msg("sqlite source registered")
	}

	// Register the PostgreSQL category reader if configured.
	if cfg.Database.Enabled {
		db, err := database.New(ctx, &cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		logger.Info().Msg("database connection established")

		if cfg.Database.MigrationAutoRun {
			if err := migrateUp(func() (*database.Migrator, error) {
				return database.NewMigrator(db, cfg.Database.MigrationPath, logger)
			}, logger); err != nil {
				return err
			}
		}

		engine.AddCategorySource(repository.NewPgCategoryRepository(db, "postgres"))
		checks = append(checks, httpserver.ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error {
			if health := db.Health(ctx); health.Status != "healthy" {
				return errors.New(health.Error)
			}
			return nil
		}})
	}

	httpCfg := httpserver.Config{
		Address:            cfg.Server.HTTPAddress(),
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        2 * time.Minute,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}
	httpSrv := httpserver.NewServer(httpCfg, engine, logger, metrics, checks...)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	go func() {
		logger.Info().
			Str("address", httpCfg.Address).
			Msg("HTTP API server starting")
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().
		Str("http_address", httpCfg.Address).
		Int("journal_sources", len(engine.JournalSources())).
		Int("category_sources", len(engine.CategorySources()))
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("journal-federation-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down journal-federation-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("journal-federation-service shutdown complete")
	return nil
}

// openSQLite opens one category store. When auto-run is enabled the
// migrations are applied first over a separate handle, which the migrator
// closes.
func openSQLite(ctx context.Context, path string, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	if cfg.SQLite.MigrationAutoRun {
		migrationDB, err := database.OpenSQLite(ctx, path, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		if err := migrateUp(func() (*database.Migrator, error) {
			return database.NewSQLiteMigrator(migrationDB, cfg.Database.MigrationPath, logger)
		}, logger); err != nil {
			migrationDB.Close()
			return nil, err
		}
	}

	db, err := database.OpenSQLite(ctx, path, logger)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

func migrateUp(newMigrator func() (*database.Migrator, error), logger zerolog.Logger) error {
	migrator, err := newMigrator()
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close migrator")
		}
	}()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
