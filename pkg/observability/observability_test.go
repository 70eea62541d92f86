package observability_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/docsearch/pkg/observability"
)

func TestMetricsRegistered(t *testing.T) {
	observability.OperationsTotal.WithLabelValues("search", "ok").Inc()
	observability.Inconsistencies.WithLabelValues("delete").Add(0)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["docsearch_operations_total"])
	assert.True(t, names["docsearch_inconsistencies_total"])
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(observability.Metrics())
	r.GET("/documents/:id/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(observability.RequestsTotal.WithLabelValues("GET", "/documents/:id/", "2xx"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/42/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	after := testutil.ToFloat64(observability.RequestsTotal.WithLabelValues("GET", "/documents/:id/", "2xx"))
	assert.Equal(t, before+1, after)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, observability.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, observability.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, observability.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, observability.ParseLevel("nonsense"))
}
