package service

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/mapping"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/metrics"
)

// Lookup resolves schemas and indices by id.
type Lookup interface {
	Schema(id string) (*mapping.Schema, error)
	Index(id string) (*elasticsearch.Index, error)
}

// DocumentService maps documents through schemas and stores them.
type DocumentService struct {
	lookup  Lookup
	metrics metrics.Recorder
	log     logger.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(lookup Lookup, rec metrics.Recorder, log logger.Logger) *DocumentService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &DocumentService{lookup: lookup, metrics: rec, log: log}
}

// Map maps doc through the schema with the given id.
func (s *DocumentService) Map(schemaID string, doc *document.Map) (*document.Map, mapping.Stats, error) {
	schema, err := s.lookup.Schema(schemaID)
	if err != nil {
		return nil, mapping.Stats{}, err
	}

	out, stats := schema.Mapper().MapWithStats(doc)
	s.metrics.DocumentMapped(schema.ID, stats.Pruned)
	if stats.Pruned > 0 {
		s.log.Debug("Pruned undeclared fields",
			logger.String("schema_id", schema.ID),
			logger.Int("pruned", stats.Pruned),
		)
	}
	return out, stats, nil
}

// Refresh rebuilds the lookup table of a schema and returns the number of
// paths it resolves, aliases included.
func (s *DocumentService) Refresh(schemaID string) (int, error) {
	schema, err := s.lookup.Schema(schemaID)
	if err != nil {
		return 0, err
	}
	table := schema.Mapper().Refresh()
	s.log.Info("Schema mapper refreshed",
		logger.String("schema_id", schema.ID),
		logger.Int("paths", table.Len()),
		logger.Int("aliases", table.AliasCount()),
	)
	return table.Len(), nil
}

// Index maps doc through the schema of the index, when it has one, and stores
// it under docID. An empty docID lets Elasticsearch assign one.
func (s *DocumentService) Index(
	ctx context.Context, indexID, docID string, doc *document.Map, refresh bool,
) (elasticsearch.PutResult, error) {
	idx, err := s.lookup.Index(indexID)
	if err != nil {
		return elasticsearch.PutResult{}, err
	}

	result, err := idx.PutDocument(ctx, docID, doc, refresh)
	if err != nil {
		return elasticsearch.PutResult{}, fmt.Errorf("index document into %s: %w", idx.ID, err)
	}
	if idx.Schema != nil {
		s.metrics.DocumentMapped(idx.Schema.ID, result.Mapping.Pruned)
	}
	return result, nil
}
