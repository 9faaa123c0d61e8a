// Package registry assembles connections, schemas and indices from configuration.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/mapping"
)

// SelectAll selects every index.
const SelectAll = "all"

// Lookup errors.
var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrSchemaNotFound     = errors.New("schema not found")
	ErrIndexNotFound      = errors.New("index not found")
)

// Registry holds the configured connections, schemas and indices. It is
// read-only after Build.
type Registry struct {
	connections map[string]*elasticsearch.Connection
	schemas     map[string]*mapping.Schema
	indices     map[string]*elasticsearch.Index
}

// Build creates connections, then schemas, then indices from cfg.
func Build(cfg *config.Config, log logger.Logger, opts ...elasticsearch.Option) (*Registry, error) {
	r := &Registry{
		connections: make(map[string]*elasticsearch.Connection, len(cfg.Connections)),
		schemas:     make(map[string]*mapping.Schema, len(cfg.Schemas)),
		indices:     make(map[string]*elasticsearch.Index, len(cfg.Indices)),
	}

	for _, id := range sortedKeys(cfg.Connections) {
		conn, err := elasticsearch.NewConnection(id, cfg.Connections[id], log, opts...)
		if err != nil {
			return nil, err
		}
		r.connections[id] = conn
	}

	for _, id := range sortedKeys(cfg.Schemas) {
		schema, err := buildSchema(id, cfg.Schemas[id])
		if err != nil {
			return nil, err
		}
		r.schemas[id] = schema
	}

	for _, id := range sortedKeys(cfg.Indices) {
		idx, err := r.buildIndex(id, cfg.Indices[id])
		if err != nil {
			return nil, err
		}
		r.indices[id] = idx
	}

	return r, nil
}

func buildSchema(id string, sc config.SchemaConfig) (*mapping.Schema, error) {
	if strings.TrimSpace(sc.Name) == "" {
		return nil, &config.ValidationError{
			Field:   "schemas." + id + ".name",
			Message: fmt.Sprintf("could not create schema %q: name is required", id),
		}
	}

	err := sc.Properties.Walk(func(path string, f *mapping.Field) error {
		if _, ok := mapping.ParseFieldType(string(f.Type)); !ok {
			return &config.ValidationError{
				Field:   "schemas." + id + ".properties." + path,
				Message: fmt.Sprintf("unknown field type %q", f.Type),
			}
		}
		if strings.Contains(f.Name, ".") {
			return &config.ValidationError{
				Field:   "schemas." + id + ".properties." + path,
				Message: "field names must not contain \".\"",
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &mapping.Schema{
		ID:         id,
		Name:       sc.Name,
		Version:    sc.Version,
		Params:     sc.Params,
		Properties: sc.Properties,
		Aliases:    sc.Aliases,
	}, nil
}

func (r *Registry) buildIndex(id string, ic config.IndexConfig) (*elasticsearch.Index, error) {
	if strings.TrimSpace(ic.Name) == "" {
		return nil, &config.ValidationError{
			Field:   "indices." + id + ".name",
			Message: fmt.Sprintf("could not create index %q: name is required", id),
		}
	}

	conn, ok := r.connections[ic.Connection]
	if !ok {
		return nil, &config.ValidationError{
			Field:   "indices." + id + ".connection",
			Message: fmt.Sprintf("could not create index %q: connection with id %q is not defined", id, ic.Connection),
		}
	}

	var schema *mapping.Schema
	if ic.Schema != "" {
		if schema, ok = r.schemas[ic.Schema]; !ok {
			return nil, &config.ValidationError{
				Field:   "indices." + id + ".schema",
				Message: fmt.Sprintf("could not create index %q: schema with id %q is not defined", id, ic.Schema),
			}
		}
	}

	settings := elasticsearch.Settings{
		Main:   ic.Settings.Main,
		Create: ic.Settings.Create,
		Update: ic.Settings.Update,
	}
	return elasticsearch.NewIndex(id, ic.Name, ic.Group, settings, schema, conn), nil
}

// Connection returns a connection by id.
func (r *Registry) Connection(id string) (*elasticsearch.Connection, error) {
	if c, ok := r.connections[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
}

// Schema returns a schema by id.
func (r *Registry) Schema(id string) (*mapping.Schema, error) {
	if s, ok := r.schemas[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, id)
}

// Index returns an index by id.
func (r *Registry) Index(id string) (*elasticsearch.Index, error) {
	if i, ok := r.indices[id]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, id)
}

// Connections returns every connection sorted by id.
func (r *Registry) Connections() []*elasticsearch.Connection {
	out := make([]*elasticsearch.Connection, 0, len(r.connections))
	for _, id := range sortedKeys(r.connections) {
		out = append(out, r.connections[id])
	}
	return out
}

// Schemas returns every schema sorted by id.
func (r *Registry) Schemas() []*mapping.Schema {
	out := make([]*mapping.Schema, 0, len(r.schemas))
	for _, id := range sortedKeys(r.schemas) {
		out = append(out, r.schemas[id])
	}
	return out
}

// Indices returns every index sorted by id.
func (r *Registry) Indices() []*elasticsearch.Index {
	return r.InGroup("")
}

// InGroup returns the indices of group sorted by id; "" means every index.
func (r *Registry) InGroup(group string) []*elasticsearch.Index {
	out := make([]*elasticsearch.Index, 0, len(r.indices))
	for _, id := range sortedKeys(r.indices) {
		if idx := r.indices[id]; group == "" || idx.Group == group {
			out = append(out, idx)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
