// Package httpcontroller exposes the session and species resolution services
// over a JSON HTTP API.
package httpcontroller

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/naturecast/naturecast-go/internal/conf"
	"github.com/naturecast/naturecast-go/internal/gbif"
	"github.com/naturecast/naturecast-go/internal/logging"
	"github.com/naturecast/naturecast-go/internal/session"
	"github.com/naturecast/naturecast-go/internal/species"
)

var (
	webLogger   *slog.Logger
	webLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	webLevelVar.Set(slog.LevelInfo)

	webLogger, _, err = logging.NewFileLogger("logs/web.log", "web", webLevelVar)
	if err != nil {
		logging.Error("Failed to initialize web file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: webLevelVar})
		webLogger = slog.New(fbHandler).With("service", "web")
	}
}

// BreakerReporter exposes circuit breaker state for the health endpoint.
// *gbif.Client satisfies it.
type BreakerReporter interface {
	BreakerState() gbif.State
}

// Server encapsulates the Echo server and the services behind the API.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings

	sessions *session.Service
	resolver *species.Resolver
	breaker  BreakerReporter
	registry *prometheus.Registry
}

// New builds the HTTP server and registers all routes. The breaker reporter
// and metrics registry may be nil.
func New(settings *conf.Settings, sessions *session.Service, resolver *species.Resolver, breaker BreakerReporter, registry *prometheus.Registry) *Server {
	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		sessions: sessions,
		resolver: resolver,
		breaker:  breaker,
		registry: registry,
	}

	s.Echo.HideBanner = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestID())
	if settings.WebServer.Debug {
		s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus: true,
			LogURI:    true,
			LogMethod: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				webLogger.Info("request",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status)
				return nil
			},
		}))
	}

	s.registerRoutes()
	return s
}

// registerRoutes wires every endpoint.
func (s *Server) registerRoutes() {
	s.Echo.GET("/healthz", s.handleHealth)

	if s.registry != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	v1 := s.Echo.Group("/api/v1")
	v1.POST("/sessions", s.handleCreateSession)
	v1.GET("/species/resolve", s.handleResolveSpecies)
	v1.POST("/cache/clear", s.handleClearCache)
}

// Start begins listening on the configured address. It blocks until the
// server stops.
func (s *Server) Start() error {
	addr := s.Settings.WebServer.Host + ":" + s.Settings.WebServer.Port
	webLogger.Info("HTTP server starting", "addr", addr)

	err := s.Echo.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	webLogger.Info("HTTP server shutting down")
	return s.Echo.Shutdown(ctx)
}
