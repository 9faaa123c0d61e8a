// Package database stores the index operation journal in PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
)

const dbConnectionTimeout = 5 * time.Second

// Connection wraps the database connection.
type Connection struct {
	DB *sql.DB
}

// NewConnection opens the database, applies pool settings and verifies it answers.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*Connection, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbConnectionTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Connection{DB: db}, nil
}

// Close closes the database connection.
func (c *Connection) Close() error {
	return c.DB.Close()
}

const createOperationsTable = `
CREATE TABLE IF NOT EXISTS index_operations (
	id             BIGSERIAL PRIMARY KEY,
	index_id       TEXT        NOT NULL,
	index_name     TEXT        NOT NULL,
	action         TEXT        NOT NULL,
	schema_id      TEXT,
	schema_version TEXT,
	success        BOOLEAN     NOT NULL,
	error_message  TEXT,
	duration_ms    BIGINT      NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createOperationsIndex = `
CREATE INDEX IF NOT EXISTS idx_index_operations_index_action
	ON index_operations (index_id, action, created_at DESC)`

// Migrate creates the journal tables when they are missing.
func (c *Connection) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createOperationsTable, createOperationsIndex} {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
	}
	return nil
}
