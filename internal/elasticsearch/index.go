package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/mapping"
)

const readOnlySetting = "index.blocks.read_only_allow_delete"

// Settings are the configured index settings. Main applies to every
// settings operation, Create and Update are merged over it for theirs.
type Settings struct {
	Main   map[string]any
	Create map[string]any
	Update map[string]any
}

// Index is a configured index bound to its connection and optional schema.
type Index struct {
	ID       string
	Name     string
	Group    string
	Settings Settings
	// Schema is nil when the index declares none.
	Schema *mapping.Schema

	conn *Connection
}

// NewIndex binds an index declaration to a connection.
func NewIndex(id, name, group string, settings Settings, schema *mapping.Schema, conn *Connection) *Index {
	return &Index{ID: id, Name: name, Group: group, Settings: settings, Schema: schema, conn: conn}
}

// Connection returns the connection the index lives on.
func (i *Index) Connection() *Connection { return i.conn }

// SchemaID returns the schema id, or "" without a schema.
func (i *Index) SchemaID() string {
	if i.Schema == nil {
		return ""
	}
	return i.Schema.ID
}

// Exists checks whether the index exists in the cluster.
func (i *Index) Exists(ctx context.Context) (bool, error) {
	return i.conn.IndexExists(ctx, i.Name)
}

// IsOpen reports whether the index status is "open".
func (i *Index) IsOpen(ctx context.Context) (bool, error) {
	row, err := i.conn.CatIndex(ctx, i.Name)
	if err != nil {
		return false, err
	}
	return row.Status == "open", nil
}

// Open opens the index.
func (i *Index) Open(ctx context.Context) error { return i.conn.OpenIndex(ctx, i.Name) }

// Close closes the index.
func (i *Index) Close(ctx context.Context) error { return i.conn.CloseIndex(ctx, i.Name) }

// Refresh refreshes the index.
func (i *Index) Refresh(ctx context.Context) error { return i.conn.RefreshIndex(ctx, i.Name) }

// Delete deletes the index.
func (i *Index) Delete(ctx context.Context) error { return i.conn.DeleteIndex(ctx, i.Name) }

// CreateSettings returns Main merged with Create.
func (i *Index) CreateSettings() map[string]any {
	return mergeSettings(i.Settings.Main, i.Settings.Create)
}

// UpdateSettings returns Main merged with Update.
func (i *Index) UpdateSettings() map[string]any {
	return mergeSettings(i.Settings.Main, i.Settings.Update)
}

// Create creates the index with its create settings. The mapping is applied
// separately by UpdateMapping.
func (i *Index) Create(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{"settings": i.CreateSettings()})
	if err != nil {
		return fmt.Errorf("encode settings for index %s: %w", i.Name, err)
	}
	return i.conn.CreateIndex(ctx, i.Name, body)
}

// Update applies the update settings. It reports false when there is nothing to apply.
func (i *Index) Update(ctx context.Context) (bool, error) {
	settings := i.UpdateSettings()
	if len(settings) == 0 {
		return false, nil
	}
	return true, i.conn.PutSettings(ctx, i.Name, settings)
}

// UpdateMapping applies the schema mapping to the index.
func (i *Index) UpdateMapping(ctx context.Context) error {
	if i.Schema == nil {
		return fmt.Errorf("update mapping of index %s: %w", i.Name, ErrNoSchema)
	}
	body, err := i.Schema.Body()
	if err != nil {
		return err
	}
	return i.conn.PutMapping(ctx, i.Name, body)
}

// ReadOnly blocks writes to the index, or lifts the block when enabled is false.
func (i *Index) ReadOnly(ctx context.Context, enabled bool) error {
	var value any
	if enabled {
		value = true
	}
	return i.conn.PutSettings(ctx, i.Name, map[string]any{readOnlySetting: value})
}

// Stats summarizes the index state.
type Stats struct {
	Health      string
	Status      string
	DocsCount   string
	DocsDeleted string
	StoreSize   string
	Segments    int64
}

// Stats returns the cat indices summary and the segment count of the index.
func (i *Index) Stats(ctx context.Context) (Stats, error) {
	row, err := i.conn.CatIndex(ctx, i.Name)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		Health:      row.Health,
		Status:      row.Status,
		DocsCount:   row.DocsCount,
		DocsDeleted: row.DocsDeleted,
		StoreSize:   row.StoreSize,
	}
	// Closed indices report no stats.
	if row.Status != "open" {
		return stats, nil
	}
	if stats.Segments, err = i.conn.SegmentCount(ctx, i.Name); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// PutResult is the outcome of storing a document.
type PutResult struct {
	ID       string
	Document *document.Map
	Mapping  mapping.Stats
}

// PutDocument maps doc through the schema, when there is one, and stores it.
func (i *Index) PutDocument(ctx context.Context, id string, doc *document.Map, refresh bool) (PutResult, error) {
	result := PutResult{Document: doc}
	if i.Schema != nil {
		result.Document, result.Mapping = i.Schema.Mapper().MapWithStats(doc)
	}

	body, err := json.Marshal(result.Document)
	if err != nil {
		return PutResult{}, fmt.Errorf("encode document for index %s: %w", i.Name, err)
	}

	if result.ID, err = i.conn.IndexDocument(ctx, i.Name, id, body, refresh); err != nil {
		return PutResult{}, err
	}
	return result, nil
}

func mergeSettings(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
