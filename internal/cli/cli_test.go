package cli_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/cli"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch/estest"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
)

const cliConfig = `
connections:
  default:
    hosts: ["http://es.test:9200"]
schemas:
  products:
    name: products
    properties:
      id: keyword
      qty: integer
    aliases:
      uid: id
indices:
  products: {name: products_v1, schema: products, group: catalog}
  logs: {name: logs, group: ops}
`

type harness struct {
	out, err bytes.Buffer
	in       string
	tty      bool
	tr       *estest.Transport
	config   string
}

func newHarness(t *testing.T, routes map[string]estest.Response) *harness {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(cliConfig), 0o600))
	return &harness{tr: estest.NewTransport(routes), config: path}
}

func (h *harness) run(args ...string) error {
	root := cli.NewRootCommand(cli.Options{
		In:                   strings.NewReader(h.in),
		Out:                  &h.out,
		Err:                  &h.err,
		Interactive:          func() bool { return h.tty },
		ElasticsearchOptions: []elasticsearch.Option{elasticsearch.WithTransport(h.tr)},
		Logger:               logger.NewNop(),
	})
	root.SetArgs(append([]string{"--config", h.config}, args...))
	return root.Execute()
}

func TestList(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.run("list"))

	out := h.out.String()
	assert.Contains(t, out, "USING SCHEMA ID")
	assert.Regexp(t, `SCHEMA\s+│\s+-\s+│\s+products\s+│\s+products\s+│\s+-`, out)
	assert.Regexp(t, `INDEX\s+│\s+catalog\s+│\s+products\s+│\s+products_v1\s+│\s+products`, out)
	assert.Regexp(t, `INDEX\s+│\s+ops\s+│\s+logs\s+│\s+logs\s+│\s+-`, out)
	assert.Empty(t, h.tr.Requests())
}

func TestList_IndicesOnly(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.run("list", "indices"))
	assert.NotRegexp(t, `│\s+SCHEMA\s+│`, h.out.String())
	assert.Contains(t, h.out.String(), "products_v1")
}

func TestCreateIndex_WithMapping(t *testing.T) {
	h := newHarness(t, map[string]estest.Response{
		"PUT /products_v1":          {Body: `{"acknowledged":true}`},
		"PUT /products_v1/_mapping": {Body: `{"acknowledged":true}`},
	})
	require.NoError(t, h.run("create-index", "products", "--include", "mapping"))

	assert.Equal(t, []string{"HEAD /products_v1", "PUT /products_v1", "PUT /products_v1/_mapping"}, h.tr.Routes())
	out := h.out.String()
	assert.Contains(t, out, "Index exists: NO")
	assert.Contains(t, out, "Index mapping was applied")
	assert.Contains(t, out, "OK")
	assert.Contains(t, h.err.String(), "[products] Index was created")
}

func TestCreateIndex_UnknownInclude(t *testing.T) {
	h := newHarness(t, nil)
	err := h.run("create-index", "products", "-i", "aliases")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowed values are index,mapping")
	assert.Empty(t, h.tr.Requests())
}

func TestIndexCommand_NotFound(t *testing.T) {
	h := newHarness(t, nil)
	err := h.run("open-index", "products,nope", "--group", "catalog")
	require.ErrorIs(t, err, registry.ErrIndexNotFound)
	assert.Contains(t, h.err.String(), `Index "nope" not found in group catalog.`)
	assert.Empty(t, h.tr.Requests())
}

func TestIndexCommand_NoIndexFound(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.run("open-index", "all", "--group", "empty"))
	assert.Contains(t, h.err.String(), "No index found.")
}

func TestDeleteIndex_Confirmation(t *testing.T) {
	routes := map[string]estest.Response{
		"HEAD /logs":   {},
		"DELETE /logs": {Body: `{"acknowledged":true}`},
	}

	t.Run("declined", func(t *testing.T) {
		h := newHarness(t, routes)
		h.tty, h.in = true, "n\n"
		err := h.run("delete-index", "logs")
		require.ErrorIs(t, err, cli.ErrDeletionCancelled)
		assert.Contains(t, h.out.String(), "Do you wish to continue? (y/N)")
		assert.Empty(t, h.tr.Requests())
	})

	t.Run("not a terminal", func(t *testing.T) {
		h := newHarness(t, routes)
		err := h.run("delete-index", "logs")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")
		assert.Empty(t, h.tr.Requests())
	})

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t, routes)
		h.tty, h.in = true, "yes\n"
		require.NoError(t, h.run("delete-index", "logs"))
		assert.Equal(t, []string{"HEAD /logs", "DELETE /logs"}, h.tr.Routes())
	})

	t.Run("forced", func(t *testing.T) {
		h := newHarness(t, routes)
		require.NoError(t, h.run("delete-index", "logs", "--force"))
		assert.Contains(t, h.out.String(), "Index was deleted")
	})
}

func TestReadOnlyIndex_Off(t *testing.T) {
	h := newHarness(t, map[string]estest.Response{
		"HEAD /logs":          {},
		"PUT /logs/_settings": {Body: `{"acknowledged":true}`},
	})
	require.NoError(t, h.run("readonly-index", "logs", "--off"))

	reqs := h.tr.Requests()
	require.Len(t, reqs, 2)
	assert.JSONEq(t, `{"index.blocks.read_only_allow_delete":null}`, reqs[1].Body)
	assert.Contains(t, h.out.String(), "Index is writable")
}

func TestIndexCommand_FailureReturnsError(t *testing.T) {
	h := newHarness(t, nil)
	err := h.run("refresh-index", "logs")
	require.Error(t, err)
	assert.Contains(t, h.out.String(), "NOT OK")
	assert.Contains(t, h.err.String(), "logs: ")
}

func TestStatsIndex(t *testing.T) {
	h := newHarness(t, map[string]estest.Response{
		"GET /_cat/indices/products_v1": {Body: `[{"health":"yellow","status":"open","index":"products_v1",` +
			`"docs.count":"10","docs.deleted":"2","store.size":"8kb"}]`},
		"GET /products_v1/_stats/segments": {Body: `{"_all":{"total":{"segments":{"count":3}}}}`},
	})
	require.NoError(t, h.run("stats-index", "all"))

	out := h.out.String()
	assert.Contains(t, out, "DOCS DELETED")
	assert.Regexp(t, `products\s+│\s+products_v1\s+│\s+products\s+│\s+OK\s+│\s+YELLOW\s+│\s+10\s+│\s+2\s+│\s+3\s+│\s+8kb`, out)
	assert.Regexp(t, `logs\s+│\s+logs\s+│\s+-\s+│\s+NOT OK\s+│\s+UNKNOWN`, out)
}

func TestMap_Stdin(t *testing.T) {
	h := newHarness(t, nil)
	h.in = `{"qty":"3","uid":5,"x":1}`
	require.NoError(t, h.run("map", "products"))

	assert.JSONEq(t, `{"id":"5","qty":3}`, h.out.String())
	assert.Contains(t, h.err.String(), "1 field(s) pruned")
}

func TestMap_File(t *testing.T) {
	h := newHarness(t, nil)
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":1}`), 0o600))

	require.NoError(t, h.run("map", "products", path))
	assert.JSONEq(t, `{"id":"1"}`, h.out.String())
}

func TestMap_Errors(t *testing.T) {
	h := newHarness(t, nil)
	h.in = `{"id":1}`
	err := h.run("map", "missing")
	require.True(t, errors.Is(err, registry.ErrSchemaNotFound))

	h = newHarness(t, nil)
	h.in = `[]`
	require.Error(t, h.run("map", "products"))
}
