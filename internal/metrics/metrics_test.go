package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTool(t *testing.T) {
	m := New(nil)

	m.ObserveTool("log_food", OutcomeOK, 0.01)
	m.ObserveTool("log_food", OutcomeOK, 0.02)
	m.ObserveTool("log_food", OutcomeThrottled, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("log_food", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("log_food", OutcomeThrottled)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ToolDuration))
}

func TestObserveHTTP(t *testing.T) {
	m := New(nil)
	m.ObserveHTTP(http.MethodGet, "/v1/users/:id/progress", 200, 0.003)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/v1/users/:id/progress", "200")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.NotPanics(t, func() { New(nil) })
	assert.Panics(t, func() { New(reg) }, "registering twice on one registry is a programming error")
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveTool("get_goal", OutcomeError, 0.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nutrisense_mcp_tool_calls_total{outcome="error",tool="get_goal"} 1`)
}
