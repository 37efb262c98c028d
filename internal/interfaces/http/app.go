package http

import (
	"context"
	"net"
	"time"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
	"github.com/turtacn/MacroCompare/internal/config"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MacroCompare/internal/intelligence/ollama"
	"github.com/turtacn/MacroCompare/internal/interfaces/http/handlers"
	"github.com/turtacn/MacroCompare/internal/interfaces/http/middleware"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// App is the fully wired API server: backend client, engine, router and
// listener.
type App struct {
	cfg     *config.Config
	logger  logging.Logger
	backend ollama.Generator
	service *comparison.Service
	metrics *prometheus.EngineMetrics
	limiter *middleware.TokenBucketLimiter
	server  *Server
}

// AppOption customises NewApp.
type AppOption func(*appOptions)

type appOptions struct {
	version string
	backend ollama.Generator
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) AppOption {
	return func(o *appOptions) { o.version = v }
}

// WithBackend replaces the Ollama client built from cfg.Backend.
func WithBackend(g ollama.Generator) AppOption {
	return func(o *appOptions) { o.backend = g }
}

// NewApp wires every component from cfg.
func NewApp(cfg *config.Config, logger logging.Logger, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.InvalidParam("config is nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	o := appOptions{version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{cfg: cfg, logger: logger}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create metrics collector")
		}
		app.metrics = prometheus.NewEngineMetrics(collector)
	}

	app.backend = o.backend
	if app.backend == nil {
		client, err := ollama.NewClient(ollama.Config{
			BaseURL:   cfg.Backend.BaseURL,
			Model:     cfg.Backend.Model,
			Timeout:   cfg.Backend.Timeout,
			NumThread: cfg.Backend.NumThread,
			NumCtx:    cfg.Backend.NumCtx,
		}, ollama.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		app.backend = client
	}

	svc, err := comparison.NewServiceFromConfig(cfg, app.backend, app.metrics, logger)
	if err != nil {
		return nil, err
	}
	app.service = svc

	routerCfg := RouterConfig{
		ComparisonHandler: handlers.NewComparisonHandler(svc, logger),
		HealthHandler: handlers.NewHealthHandler(o.version, svc,
			handlers.NewBackendChecker("backend", app.backend)),
		Logging:      middleware.DefaultLoggingConfig(),
		MaxBodyBytes: cfg.Engine.MaxInputBytes,
		Logger:       logger,
		Metrics:      app.metrics,
		MetricsPath:  cfg.Metrics.Path,
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		app.limiter = middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.Burst, time.Minute)
		routerCfg.RateLimiter = app.limiter
		routerCfg.RateLimit = middleware.RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			BurstSize:         rl.Burst,
			KeyFunc:           middleware.ClientIPKeyFunc,
		}
	}

	app.server = NewServer(cfg.Server, NewRouter(routerCfg), logger)
	return app, nil
}

// Service exposes the comparison engine.
func (a *App) Service() *comparison.Service { return a.service }

// Server exposes the HTTP server.
func (a *App) Server() *Server { return a.server }

// Run listens on the configured address until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to listen").WithDetail(a.server.Addr())
	}
	return a.RunListener(ctx, ln)
}

// RunListener serves on ln until ctx is cancelled, then shuts down within
// server.shutdown_timeout.  The warm-up request runs in the background when
// backend.warmup_on_start is set.
func (a *App) RunListener(ctx context.Context, ln net.Listener) error {
	if a.limiter != nil {
		defer a.limiter.Stop()
	}

	if a.cfg.Backend.WarmupOnStart {
		// Warmup logs its own outcome; readiness does not depend on it.
		go func() { _ = a.service.Warmup(ctx) }()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := a.server.Shutdown(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

//Personal.AI order the ending
