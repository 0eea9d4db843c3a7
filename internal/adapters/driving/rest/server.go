// Package rest provides the REST API for NutriSense on echo.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
	"github.com/custodia-labs/nutrisense/internal/logger"
	"github.com/custodia-labs/nutrisense/internal/metrics"
)

// ErrMissingPorts is returned when a required service is not provided.
var ErrMissingPorts = errors.New("rest: goal, intake and progress services are required")

// Ports aggregates the driving ports served over REST.
type Ports struct {
	Goal     driving.GoalService
	Intake   driving.IntakeService
	Progress driving.ProgressService
	// Profile is optional; without it the profile routes answer 503.
	Profile driving.ProfileService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Goal == nil || p.Intake == nil || p.Progress == nil {
		return ErrMissingPorts
	}
	return nil
}

// Server serves the REST API.
type Server struct {
	echo      *echo.Echo
	ports     *Ports
	locations *present.LocationResolver
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultLocation sets the timezone used when neither the request nor
// the profile names one.
func WithDefaultLocation(loc *time.Location) Option {
	return func(s *Server) { s.locations.Default = loc }
}

// WithMetrics records requests in m and serves it on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithClock overrides the clock used for default dates and instants.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates the REST server and registers its routes.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		ports:     ports,
		locations: &present.LocationResolver{Profiles: ports.Profile},
		log:       logger.Named("rest"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.observe)

	s.registerRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting http server", zap.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// observe logs and measures every request.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		duration := time.Since(start)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().Status
		s.metrics.ObserveHTTP(c.Request().Method, route, status, duration.Seconds())

		s.log.Debug("http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	users := s.echo.Group("/v1/users/:id")

	users.POST("/goals", s.handleSetGoal)
	users.PATCH("/goals", s.handleUpdateGoal)
	users.GET("/goals", s.handleGoalHistory)
	users.GET("/goals/active", s.handleActiveGoal)

	users.POST("/logs", s.handleLogFood)
	users.GET("/logs", s.handleListLogs)
	users.POST("/logs/:entry/corrections", s.handleCorrect)
	users.DELETE("/logs/:entry", s.handleVoid)

	users.GET("/progress", s.handleProgress)
	users.GET("/progress/history", s.handleProgressHistory)

	users.GET("/profile", s.handleGetProfile)
	users.PUT("/profile", s.handlePutProfile)
}

// HealthResponse is the response body for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
