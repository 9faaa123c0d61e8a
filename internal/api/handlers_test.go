package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/api"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch/estest"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

const apiConfig = `
connections:
  default:
    hosts: ["http://es.test:9200"]
schemas:
  products:
    name: products
    version: "1"
    properties:
      id: keyword
      price: double
      tags:
        type: nested
        properties:
          name: keyword
    aliases:
      sku: id
indices:
  products: {name: products_v1, schema: products, group: catalog}
  logs: {name: logs, group: ops}
`

func newRouter(t *testing.T, tr *estest.Transport) *gin.Engine {
	t.Helper()

	cfg, err := config.Parse[config.Config]([]byte(apiConfig))
	require.NoError(t, err)
	config.SetDefaults(cfg)

	log := logger.NewNop()
	reg, err := registry.Build(cfg, log, elasticsearch.WithTransport(tr))
	require.NoError(t, err)

	handler := api.NewHandler(reg,
		service.NewIndexService(nil, nil, log),
		service.NewDocumentService(reg, nil, log),
		log)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api.SetupRoutes(router, handler)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetRegistry(t *testing.T) {
	t.Parallel()

	rec := do(newRouter(t, estest.NewTransport(nil)), http.MethodGet, "/api/v1/registry", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.RegistryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Connections, 1)
	assert.Equal(t, []string{"http://es.test:9200"}, resp.Connections[0].Hosts)
	require.Len(t, resp.Schemas, 1)
	// id, price, tags, tags.name and the sku alias.
	assert.Equal(t, api.SchemaInfo{ID: "products", Name: "products", Version: "1", Fields: 5, Aliases: 1}, resp.Schemas[0])
	assert.Equal(t, []api.IndexInfo{
		{ID: "logs", Name: "logs", Group: "ops", Connection: "default"},
		{ID: "products", Name: "products_v1", Group: "catalog", Connection: "default", Schema: "products"},
	}, resp.Indices)
}

func TestListIndices_ByGroup(t *testing.T) {
	t.Parallel()

	rec := do(newRouter(t, estest.NewTransport(nil)), http.MethodGet, "/api/v1/indices?group=ops", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1,"indices":[{"id":"logs","name":"logs","group":"ops","connection":"default"}]}`,
		rec.Body.String())
}

func TestMapDocument(t *testing.T) {
	t.Parallel()

	router := newRouter(t, estest.NewTransport(nil))
	rec := do(router, http.MethodPost, "/api/v1/schemas/products/map",
		`{"tags":[{"name":7,"x":1}],"price":"9.5","sku":12,"junk":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	// Declaration order, not input order.
	assert.Equal(t, `{"document":{"id":"12","price":9.5,"tags":[{"name":"7"}]},"pruned":2}`,
		strings.TrimSpace(rec.Body.String()))
}

func TestMapDocument_Errors(t *testing.T) {
	t.Parallel()

	router := newRouter(t, estest.NewTransport(nil))

	rec := do(router, http.MethodPost, "/api/v1/schemas/missing/map", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/schemas/products/map", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/schemas/products/map", `{"a":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshSchema(t *testing.T) {
	t.Parallel()

	rec := do(newRouter(t, estest.NewTransport(nil)), http.MethodPost, "/api/v1/schemas/products/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"schema":"products","paths":5}`, rec.Body.String())
}

func TestRunAction_Refresh(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"HEAD /products_v1":          {},
		"POST /products_v1/_refresh": {Body: `{"_shards":{"total":1,"successful":1,"failed":0}}`},
	})
	rec := do(newRouter(t, tr), http.MethodPost, "/api/v1/indices/products/actions/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Failed  int                  `json:"failed"`
		Reports []api.ReportResponse `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Failed)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, []string{"* Index exists: YES", "* Index was refreshed"}, resp.Reports[0].Summary)
	assert.Equal(t, service.StatusOK, resp.Reports[0].Status)
}

func TestRunAction_Failure(t *testing.T) {
	t.Parallel()

	rec := do(newRouter(t, estest.NewTransport(nil)), http.MethodPost,
		"/api/v1/indices/logs/actions/open", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Failed  int                  `json:"failed"`
		Reports []api.ReportResponse `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, service.StatusNotOK, resp.Reports[0].Status)
	assert.Contains(t, resp.Reports[0].Error, "index_not_found_exception")
}

func TestRunAction_BadRequests(t *testing.T) {
	t.Parallel()

	router := newRouter(t, estest.NewTransport(nil))

	rec := do(router, http.MethodPost, "/api/v1/indices/products/actions/reindex", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/indices/products/actions/open", `{"include":["mapping"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/indices/products/actions/create", `{"include":["aliases"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/indices/nope,products/actions/open", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `Index \"nope\" not found.`)

	rec = do(router, http.MethodPost, "/api/v1/indices/all/actions/open?group=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetIndexStats(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"GET /_cat/indices/products_v1": {Body: `[{"health":"green","status":"close","index":"products_v1"}]`},
	})
	rec := do(newRouter(t, tr), http.MethodGet, "/api/v1/indices/products/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1,"stats":[{"id":"products","name":"products_v1","schema":"products",`+
		`"health":"green","status":"close","segments":0}]}`, rec.Body.String())
}

func TestPutDocument(t *testing.T) {
	t.Parallel()

	tr := estest.NewTransport(map[string]estest.Response{
		"PUT /products_v1/_doc/p1": {Status: 201, Body: `{"_id":"p1","result":"created"}`},
	})
	rec := do(newRouter(t, tr), http.MethodPut, "/api/v1/indices/products/documents/p1?refresh=true",
		`{"price":3,"sku":"p1","other":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":"p1","document":{"id":"p1","price":3},"pruned":1}`, rec.Body.String())

	reqs := tr.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"id":"p1","price":3}`, reqs[0].Body)
}

func TestPutDocument_ElasticsearchError(t *testing.T) {
	t.Parallel()

	rec := do(newRouter(t, estest.NewTransport(nil)), http.MethodPut, "/api/v1/indices/logs/documents/1", `{"a":1}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
