// Health check HTTP handler: liveness, readiness and a detailed view.
//
// Liveness never touches the backend.  Readiness pings every registered
// checker and returns 503 when any of them fails.

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is an interface for components that can report their health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// Pinger is anything that can probe a remote dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WarmupReporter reports whether the model has been loaded by a warm-up call.
type WarmupReporter interface {
	WarmedUp() bool
}

// BackendChecker adapts the language model client to HealthChecker.
type BackendChecker struct {
	name   string
	pinger Pinger
}

// NewBackendChecker wraps p under the given component name.
func NewBackendChecker(name string, p Pinger) *BackendChecker {
	if name == "" {
		name = "backend"
	}
	return &BackendChecker{name: name, pinger: p}
}

// Name implements HealthChecker.
func (c *BackendChecker) Name() string { return c.name }

// Check implements HealthChecker.
func (c *BackendChecker) Check(ctx context.Context) error { return c.pinger.Ping(ctx) }

// HealthHandler handles health check HTTP requests.
type HealthHandler struct {
	checkers []HealthChecker
	warmup   WarmupReporter
	version  string
	startAt  time.Time

	readinessTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.  warmup may be nil.
func NewHealthHandler(version string, warmup WarmupReporter, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers:         checkers,
		warmup:           warmup,
		version:          version,
		startAt:          time.Now(),
		readinessTimeout: 5 * time.Second,
	}
}

// LivenessResponse is the response for liveness probe.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the response for readiness probe.
type ReadinessResponse struct {
	Status     string                    `json:"status"`
	ModelWarm  *bool                     `json:"model_warm,omitempty"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// DetailedResponse is the response for the detailed health view.
type DetailedResponse struct {
	Status     string                    `json:"status"`
	Version    string                    `json:"version"`
	Uptime     string                    `json:"uptime"`
	ModelWarm  *bool                     `json:"model_warm,omitempty"`
	Components map[string]ComponentCheck `json:"components"`
}

// ComponentCheck represents the health status of a single component.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz - Kubernetes liveness probe.
// Always returns 200 if the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  h.uptime(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// Readiness handles GET /readyz - Kubernetes readiness probe.
// Returns 200 if all dependencies are healthy, 503 otherwise.  A cold model
// does not fail readiness; comparisons still succeed through the fallback.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{ModelWarm: h.modelWarm()}
	if len(h.checkers) == 0 {
		resp.Status = "ready"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.readinessTimeout)
	defer cancel()

	resp.Components = h.checkAll(ctx)
	if allHealthy(resp.Components) {
		resp.Status = "ready"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, resp)
}

// Detailed handles GET /healthz/detail - detailed health status.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*h.readinessTimeout)
	defer cancel()

	components := h.checkAll(ctx)
	resp := DetailedResponse{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     h.uptime(),
		ModelWarm:  h.modelWarm(),
		Components: components,
	}

	code := http.StatusOK
	if !allHealthy(components) {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startAt).Truncate(time.Second).String()
}

func (h *HealthHandler) modelWarm() *bool {
	if h.warmup == nil {
		return nil
	}
	warm := h.warmup.WarmedUp()
	return &warm
}

// checkAll runs all health checkers concurrently and returns results.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]ComponentCheck {
	results := make(map[string]ComponentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)
			cc := ComponentCheck{
				Status:  "healthy",
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = "unhealthy"
				cc.Error = err.Error()
			}

			mu.Lock()
			results[c.Name()] = cc
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}

func allHealthy(components map[string]ComponentCheck) bool {
	for _, c := range components {
		if c.Status != "healthy" {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
