package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/database"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
)

// SetupJournal connects the operation journal. When the database is disabled
// it returns a no-op journal and a nil connection.
func SetupJournal(ctx context.Context, cfg *config.Config, log logger.Logger) (database.Journal, *database.Connection, error) {
	if !cfg.Database.Enabled {
		log.Info("Operation journal disabled")
		return database.NopJournal{}, nil, nil
	}

	db, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection: %w", err)
	}
	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Info("Database connection established",
		logger.String("host", cfg.Database.Host),
		logger.String("database", cfg.Database.Database),
	)
	return db, db, nil
}
