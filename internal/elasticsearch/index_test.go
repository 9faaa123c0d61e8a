package elasticsearch_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch/estest"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/mapping"
)

func newConnection(t *testing.T, tr *estest.Transport, cfg config.ConnectionConfig, log logger.Logger) *elasticsearch.Connection {
	t.Helper()

	if len(cfg.Hosts) == 0 {
		cfg.Hosts = []string{"es.test:9200"}
	}
	conn, err := elasticsearch.NewConnection("default", cfg, log, elasticsearch.WithTransport(tr))
	require.NoError(t, err)
	return conn
}

func productSchema(t *testing.T) *mapping.Schema {
	t.Helper()

	var props mapping.Properties
	require.NoError(t, yaml.Unmarshal([]byte("id: keyword\nqty: integer\n"), &props))
	return &mapping.Schema{
		ID:         "products",
		Name:       "products",
		Params:     map[string]any{"dynamic": "strict"},
		Properties: props,
		Aliases:    mapping.Aliases{"uid": "id"},
	}
}

func newIndex(t *testing.T, tr *estest.Transport, schema *mapping.Schema) *elasticsearch.Index {
	t.Helper()

	settings := elasticsearch.Settings{
		Main:   map[string]any{"number_of_replicas": 1},
		Create: map[string]any{"number_of_shards": 3},
		Update: map[string]any{"refresh_interval": "5s"},
	}
	return elasticsearch.NewIndex("products_v1", "products_v1", "catalog", settings, schema,
		newConnection(t, tr, config.ConnectionConfig{}, nil))
}

func TestNewConnection_NormalizesHosts(t *testing.T) {
	t.Parallel()

	conn := newConnection(t, estest.NewTransport(nil), config.ConnectionConfig{
		Hosts: []string{"es-1:9200", "https://es-2:9200"},
	}, nil)

	assert.Equal(t, "default", conn.ID())
	assert.Equal(t, []string{"http://es-1:9200", "https://es-2:9200"}, conn.Hosts())
	assert.NotNil(t, conn.Client())
}

func TestConnection_Ping(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{"HEAD /": {}})
	conn := newConnection(t, tr, config.ConnectionConfig{}, nil)

	require.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, []string{"HEAD /"}, tr.Routes())
}

func TestConnection_PingFailsOnErrorResponse(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"HEAD /": {Status: 401, Body: `{"error":"unauthorized"}`},
	})
	conn := newConnection(t, tr, config.ConnectionConfig{MaxRetries: 2}, nil)

	err := conn.Ping(context.Background())
	require.Error(t, err)
	assert.Len(t, tr.Requests(), 1, "client errors are not retried")
}

func TestConnection_EnableLoggingLogsRoundTrips(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	tr := estest.NewTransport(map[string]estest.Response{"HEAD /products_v1": {}})
	conn := newConnection(t, tr, config.ConnectionConfig{EnableLogging: true}, logger.NewFromZap(zap.New(core)))

	exists, err := conn.IndexExists(context.Background(), "products_v1")
	require.NoError(t, err)
	assert.True(t, exists)

	entries := logs.FilterMessage("Elasticsearch request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "HEAD", entries[0].ContextMap()["method"])
	assert.Equal(t, "default", entries[0].ContextMap()["connection"])
}

func TestIndex_ExistsNotFound(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, estest.NewTransport(nil), nil)

	exists, err := idx.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIndex_Create(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{"PUT /products_v1": {Body: `{"acknowledged":true}`}})
	idx := newIndex(t, tr, nil)

	require.NoError(t, idx.Create(context.Background()))

	reqs := tr.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"settings":{"number_of_replicas":1,"number_of_shards":3}}`, reqs[0].Body)
}

func TestIndex_CreateReportsElasticsearchError(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{"PUT /products_v1": {
		Status: 400,
		Body:   `{"error":{"type":"resource_already_exists_exception","reason":"index [products_v1] already exists"},"status":400}`,
	}})
	idx := newIndex(t, tr, nil)

	err := idx.Create(context.Background())

	var re *elasticsearch.ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 400, re.StatusCode)
	assert.Equal(t, "resource_already_exists_exception", re.Type)
	assert.Contains(t, err.Error(), "create index products_v1")
	assert.False(t, elasticsearch.IsNotFound(err))
}

func TestIndex_UpdateMergesMainAndUpdateSettings(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{"PUT /products_v1/_settings": {Body: `{"acknowledged":true}`}})
	idx := newIndex(t, tr, nil)

	applied, err := idx.Update(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.JSONEq(t, `{"number_of_replicas":1,"refresh_interval":"5s"}`, tr.Requests()[0].Body)

	empty := elasticsearch.NewIndex("x", "x", "", elasticsearch.Settings{}, nil, idx.Connection())
	applied, err = empty.Update(context.Background())
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Len(t, tr.Requests(), 1)
}

func TestIndex_UpdateMapping(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{"PUT /products_v1/_mapping": {Body: `{"acknowledged":true}`}})

	require.ErrorIs(t, newIndex(t, tr, nil).UpdateMapping(context.Background()), elasticsearch.ErrNoSchema)
	assert.Empty(t, tr.Requests())

	require.NoError(t, newIndex(t, tr, productSchema(t)).UpdateMapping(context.Background()))
	assert.JSONEq(t,
		`{"dynamic":"strict","properties":{"id":{"type":"keyword"},"qty":{"type":"integer"}}}`,
		tr.Requests()[0].Body)
}

func TestIndex_ReadOnly(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{"PUT /products_v1/_settings": {Body: `{"acknowledged":true}`}})
	idx := newIndex(t, tr, nil)

	require.NoError(t, idx.ReadOnly(context.Background(), true))
	require.NoError(t, idx.ReadOnly(context.Background(), false))

	reqs := tr.Requests()
	assert.JSONEq(t, `{"index.blocks.read_only_allow_delete":true}`, reqs[0].Body)
	assert.JSONEq(t, `{"index.blocks.read_only_allow_delete":null}`, reqs[1].Body)
}

func TestIndex_LifecycleRoutes(t *testing.T) {
	t.Parallel()

	ack := estest.Response{Body: `{"acknowledged":true}`}
	tr := estest.NewTransport(map[string]estest.Response{
		"POST /products_v1/_open":    ack,
		"POST /products_v1/_close":   ack,
		"POST /products_v1/_refresh": {Body: `{"_shards":{"total":1}}`},
		"DELETE /products_v1":        ack,
	})
	idx := newIndex(t, tr, nil)
	ctx := context.Background()

	require.NoError(t, idx.Close(ctx))
	require.NoError(t, idx.Open(ctx))
	require.NoError(t, idx.Refresh(ctx))
	require.NoError(t, idx.Delete(ctx))

	assert.Equal(t, []string{
		"POST /products_v1/_close",
		"POST /products_v1/_open",
		"POST /products_v1/_refresh",
		"DELETE /products_v1",
	}, tr.Routes())
}

func TestIndex_StatsAndIsOpen(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"GET /_cat/indices/products_v1": {Body: `[{"health":"yellow","status":"open","index":"products_v1",` +
			`"docs.count":"12","docs.deleted":"1","store.size":"4.2kb"}]`},
		"GET /products_v1/_stats/segments": {Body: `{"_all":{"total":{"segments":{"count":7}}}}`},
	})
	idx := newIndex(t, tr, nil)

	open, err := idx.IsOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, open)

	stats, err := idx.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, elasticsearch.Stats{
		Health: "yellow", Status: "open", DocsCount: "12", DocsDeleted: "1", StoreSize: "4.2kb", Segments: 7,
	}, stats)
}

func TestIndex_StatsOfClosedIndexSkipsSegments(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"GET /_cat/indices/products_v1": {Body: `[{"status":"close","index":"products_v1"}]`},
	})
	idx := newIndex(t, tr, nil)

	stats, err := idx.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "close", stats.Status)
	assert.Len(t, tr.Requests(), 1)
}

func TestIndex_PutDocumentMapsThroughSchema(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"PUT /products_v1/_doc/42": {Status: 201, Body: `{"_id":"42","result":"created"}`},
	})
	idx := newIndex(t, tr, productSchema(t))

	doc, err := document.ParseMap([]byte(`{"qty":"3","uid":42,"junk":true}`))
	require.NoError(t, err)

	res, err := idx.PutDocument(context.Background(), "42", doc, true)
	require.NoError(t, err)

	assert.Equal(t, "42", res.ID)
	assert.Equal(t, 1, res.Mapping.Pruned)
	assert.Equal(t, `{"id":"42","qty":3}`, tr.Requests()[0].Body)
	assert.Equal(t, "refresh=true", tr.Requests()[0].Query)

	out, err := json.Marshal(res.Document)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"42","qty":3}`, string(out))
}

func TestIndex_PutDocumentWithoutSchemaOrID(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"POST /products_v1/_doc": {Status: 201, Body: `{"_id":"generated"}`},
	})
	idx := newIndex(t, tr, nil)

	doc, err := document.ParseMap([]byte(`{"b":1,"a":2}`))
	require.NoError(t, err)

	res, err := idx.PutDocument(context.Background(), "", doc, false)
	require.NoError(t, err)
	assert.Equal(t, "generated", res.ID)
	assert.Equal(t, `{"b":1,"a":2}`, tr.Requests()[0].Body)
}

func TestConnection_ListIndicesSkipsSystemIndices(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"GET /_cat/indices/*": {Body: `[{"index":".kibana"},{"index":"products_v1","status":"open"}]`},
	})
	conn := newConnection(t, tr, config.ConnectionConfig{}, nil)

	rows, err := conn.ListIndices(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "products_v1", rows[0].Index)
}
