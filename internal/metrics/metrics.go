// Package metrics holds the Prometheus instruments shared by the MCP and REST
// adapters.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "nutrisense"

// Tool call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeThrottled = "throttled"
)

// Metrics is a set of registered instruments.
//
// Metrics:
//   - nutrisense_mcp_tool_calls_total{tool,outcome}
//   - nutrisense_mcp_tool_duration_seconds{tool}
//   - nutrisense_http_requests_total{method,route,status}
//   - nutrisense_http_request_duration_seconds{method,route}
type Metrics struct {
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the instruments with reg. A nil reg uses a fresh private
// registry, which keeps tests and multiple servers from colliding.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "mcp",
			Name:      "tool_duration_seconds",
			Help:      "MCP tool handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "REST requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "REST request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
}

// ObserveTool records one tool call.
func (m *Metrics) ObserveTool(tool, outcome string, seconds float64) {
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	if outcome != OutcomeThrottled {
		m.ToolDuration.WithLabelValues(tool).Observe(seconds)
	}
}

// ObserveHTTP records one REST request. Route is the registered pattern,
// not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
