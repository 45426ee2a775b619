// Package http assembles the claimtrack HTTP API: routes, middleware and
// the server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/internal/interfaces/http/handlers"
	"github.com/turtacn/claimtrack/internal/interfaces/http/middleware"
)

type RouterConfig struct {
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler

	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string
	Logging     middleware.LoggingConfig

	Logger logging.Logger

	// HTTPMetrics and MetricsHandler are optional. MetricsHandler is mounted
	// at MetricsPath, "/metrics" by default.
	HTTPMetrics    middleware.HTTPRecorder
	MetricsHandler http.Handler
	MetricsPath    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	}
	if cfg.HTTPMetrics != nil {
		r.Use(middleware.Metrics(cfg.HTTPMetrics))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerDashboardRoutes(api, cfg.DashboardHandler)
	})

	return r
}

func registerDashboardRoutes(r chi.Router, h *handlers.DashboardHandler) {
	if h == nil {
		return
	}
	r.Get("/claims/{externalId}/dashboard", h.GetDashboard)
	r.Post("/dashboard/classify", h.Classify)
	r.Get("/states", h.ListStates)
}
