package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MacroCompare/internal/interfaces/http/handlers"
	"github.com/turtacn/MacroCompare/internal/interfaces/http/middleware"
)

// DefaultMetricsPath is used when RouterConfig.MetricsPath is empty.
const DefaultMetricsPath = "/metrics"

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	ComparisonHandler *handlers.ComparisonHandler
	HealthHandler     *handlers.HealthHandler

	// Middleware
	Logging     middleware.LoggingConfig
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig

	// MaxBodyBytes caps /api/v1 request bodies; ≤ 0 disables the cap.
	MaxBodyBytes int64

	// Infrastructure
	Logger      logging.Logger
	Metrics     *prometheus.EngineMetrics
	MetricsPath string
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration.  Nil handlers leave their routes unregistered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	logCfg := cfg.Logging
	if logCfg.Metrics == nil {
		logCfg.Metrics = cfg.Metrics
	}
	r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	r.Use(chimw.Recoverer)

	// --- Probes ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/healthz/detail", cfg.HealthHandler.Detailed)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		r.Handle(path, cfg.Metrics.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		if cfg.RateLimiter != nil {
			api.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
		}
		registerComparisonRoutes(api, cfg.ComparisonHandler)
	})

	return r
}

// registerComparisonRoutes mounts the engine endpoints.
func registerComparisonRoutes(r chi.Router, h *handlers.ComparisonHandler) {
	if h == nil {
		return
	}
	r.Post("/compare", h.Compare)
	r.Post("/explain", h.Explain)
	r.Post("/features", h.Features)
}

//Personal.AI order the ending
