// Package bootstrap handles application initialization and lifecycle management
// for the elastic-tool HTTP service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/metrics"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/profiling"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

// Start initializes and runs the HTTP service until it is signalled to stop.
func Start(ctx context.Context, configPath string) error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	profiling.StartPprofServer(log)
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	log.Info("Starting Elastic Tool Service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	// Phase 2: Build the registry and reach the clusters
	reg, err := SetupRegistry(cfg, log)
	if err != nil {
		return err
	}
	PingConnections(ctx, reg, log)

	// Phase 3: Operation journal
	journal, db, err := SetupJournal(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	if db != nil {
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("Failed to close database connection", logger.Error(closeErr))
			}
		}()
	}

	m := metrics.New()
	indexService := service.NewIndexService(journal, m, log)

	// Phase 3b: Warn about indices whose mapping lags the configured schema
	if _, driftErr := indexService.CheckSchemaDrift(ctx, reg.Indices()); driftErr != nil {
		log.Warn("Failed to check mapping version drift", logger.Error(driftErr))
	}

	// Phase 4: Run the HTTP server
	srv := SetupHTTPServer(cfg, reg, indexService, m, db, log)
	if runErr := srv.Run(ctx); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Elastic Tool Service stopped")
	return nil
}
