package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/metrics"
)

func TestMetrics_RecordsDocumentsAndOperations(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.DocumentMapped("products", 2)
	m.DocumentMapped("products", 0)
	m.IndexOperation("create", true, 20*time.Millisecond)
	m.IndexOperation("create", false, time.Millisecond)

	count, err := testutil.GatherAndCount(m.Gatherer(),
		"elastic_tool_documents_mapped_total",
		"elastic_tool_fields_pruned_total",
		"elastic_tool_index_operations_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `elastic_tool_documents_mapped_total{schema="products"} 2`)
	assert.Contains(t, body, `elastic_tool_fields_pruned_total{schema="products"} 2`)
	assert.Contains(t, body, `elastic_tool_index_operations_total{action="create",status="error"} 1`)
	assert.Contains(t, body, `elastic_tool_index_operation_duration_seconds_count{action="create"} 2`)
}

func TestMetrics_InstancesAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := metrics.New(), metrics.New()
	a.DocumentMapped("s", 0)

	count, err := testutil.GatherAndCount(b.Gatherer(), "elastic_tool_documents_mapped_total")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
