package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Operation is one journaled index operation.
type Operation struct {
	IndexID       string
	IndexName     string
	Action        string
	SchemaID      string
	SchemaVersion string
	Success       bool
	Error         string
	Duration      time.Duration
	CreatedAt     time.Time
}

// Journal records index operations.
type Journal interface {
	Record(ctx context.Context, op Operation) error
	// LatestSchemaVersions returns, per index id, the schema version of the
	// last mapping that was applied successfully.
	LatestSchemaVersions(ctx context.Context) (map[string]string, error)
}

// NopJournal records nothing. It is used when the database is disabled.
type NopJournal struct{}

// Record does nothing.
func (NopJournal) Record(context.Context, Operation) error { return nil }

// LatestSchemaVersions returns no versions.
func (NopJournal) LatestSchemaVersions(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

// Record inserts op into the journal.
func (c *Connection) Record(ctx context.Context, op Operation) error {
	const query = `
		INSERT INTO index_operations
		(index_id, index_name, action, schema_id, schema_version, success, error_message, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	createdAt := op.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := c.DB.ExecContext(ctx, query,
		op.IndexID,
		op.IndexName,
		op.Action,
		nullString(op.SchemaID),
		nullString(op.SchemaVersion),
		op.Success,
		nullString(op.Error),
		op.Duration.Milliseconds(),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("record %s operation on %s: %w", op.Action, op.IndexID, err)
	}
	return nil
}

// LatestSchemaVersions implements Journal. Only successful operations that
// applied a mapping carry a schema version.
func (c *Connection) LatestSchemaVersions(ctx context.Context) (map[string]string, error) {
	const query = `
		SELECT DISTINCT ON (index_id) index_id, schema_version
		FROM index_operations
		WHERE success AND schema_version IS NOT NULL
		ORDER BY index_id, created_at DESC
	`

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query applied schema versions: %w", err)
	}
	defer rows.Close()

	versions := make(map[string]string)
	for rows.Next() {
		var id, version string
		if err = rows.Scan(&id, &version); err != nil {
			return nil, fmt.Errorf("scan applied schema version: %w", err)
		}
		versions[id] = version
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied schema versions: %w", err)
	}
	return versions, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
