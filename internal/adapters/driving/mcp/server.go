package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/logger"
	"github.com/custodia-labs/nutrisense/internal/metrics"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for NutriSense.
type Server struct {
	ports     *Ports
	server    *mcp.Server
	locations *present.LocationResolver
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultLocation sets the timezone used when neither the request nor
// the user's profile names one.
func WithDefaultLocation(loc *time.Location) Option {
	return func(s *Server) { s.locations.Default = loc }
}

// WithRateLimit throttles tool calls to perSecond with the given burst.
// A non-positive rate disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records tool calls in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithClock overrides the clock used to default the progress date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "nutrisense",
		Version: Version,
	}

	s := &Server{
		ports:     ports,
		server:    mcp.NewServer(impl, nil),
		locations: &present.LocationResolver{Profiles: ports.Profile},
		limiter:   rate.NewLimiter(rate.Inf, 0),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("mcp server starting on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	mux.Handle("/", handler)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp http shutdown: %v", err)
		}
	}()

	logger.L().Info("mcp server listening", zap.String("addr", addr))
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// instrument wraps a tool handler with throttling, metrics and error
// classification.
func instrument[In, Out any](s *Server, tool string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		var zero Out
		if err := s.limiter.Wait(ctx); err != nil {
			s.metrics.ObserveTool(tool, metrics.OutcomeThrottled, 0)
			return nil, zero, fmt.Errorf("rate_limited: %w", err)
		}

		start := time.Now()
		result, out, err := h(ctx, req, in)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			s.metrics.ObserveTool(tool, metrics.OutcomeError, elapsed)
			logger.L().Debug("tool failed", zap.String("tool", tool), zap.Error(err))
			return nil, zero, toolError(err)
		}
		s.metrics.ObserveTool(tool, metrics.OutcomeOK, elapsed)
		return result, out, nil
	}
}
