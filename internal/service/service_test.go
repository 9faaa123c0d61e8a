package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/database"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch/estest"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
)

const serviceConfig = `
connections:
  default:
    hosts: ["http://es.test:9200"]
schemas:
  products:
    name: products
    version: "2"
    properties:
      id: keyword
      qty: integer
      stock:
        type: nested
        properties:
          warehouse: keyword
    aliases:
      uid: id
indices:
  products:
    name: products_v1
    schema: products
    group: catalog
    settings:
      main: {number_of_replicas: 1}
      update: {refresh_interval: 5s}
  logs:
    name: logs
    group: ops
`

type recordingJournal struct {
	mu       sync.Mutex
	ops      []database.Operation
	versions map[string]string
}

func (j *recordingJournal) Record(_ context.Context, op database.Operation) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op)
	return nil
}

func (j *recordingJournal) LatestSchemaVersions(context.Context) (map[string]string, error) {
	return j.versions, nil
}

type operation struct {
	action  string
	success bool
}

type recordingMetrics struct {
	mu     sync.Mutex
	mapped map[string]int
	pruned map[string]int
	ops    []operation
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{mapped: map[string]int{}, pruned: map[string]int{}}
}

func (m *recordingMetrics) DocumentMapped(schema string, pruned int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapped[schema]++
	m.pruned[schema] += pruned
}

func (m *recordingMetrics) IndexOperation(action string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, operation{action: action, success: success})
}

func newRegistry(t *testing.T, tr *estest.Transport) *registry.Registry {
	t.Helper()

	cfg, err := config.Parse[config.Config]([]byte(serviceConfig))
	require.NoError(t, err)
	config.SetDefaults(cfg)

	reg, err := registry.Build(cfg, logger.NewNop(), elasticsearch.WithTransport(tr))
	require.NoError(t, err)
	return reg
}

func mustIndex(t *testing.T, reg *registry.Registry, id string) *elasticsearch.Index {
	t.Helper()

	idx, err := reg.Index(id)
	require.NoError(t, err)
	return idx
}
