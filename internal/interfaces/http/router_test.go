package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MacroCompare/internal/intelligence/ollama"
	"github.com/turtacn/MacroCompare/internal/interfaces/http/handlers"
	"github.com/turtacn/MacroCompare/internal/interfaces/http/middleware"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

const (
	macroA = "Sub A()\n    For i = 1 To 10\n        total = total + Cells(i, 1).Value\n    Next i\nEnd Sub"
	macroB = "Sub B()\n    total = WorksheetFunction.Sum(Range(\"A1:A10\"))\nEnd Sub"
)

type routerFixture struct {
	server  *httptest.Server
	backend *ollama.MockGenerator
	metrics *prometheus.EngineMetrics
	down    *atomic.Bool
}

func newRouterFixture(t *testing.T, mutate func(*RouterConfig)) *routerFixture {
	t.Helper()

	backend := ollama.NewMockGenerator()
	backend.GenerateFunc = func(ctx context.Context, req *ollama.GenerateRequest) (*ollama.GenerateResponse, error) {
		if req.Options.NumPredict <= 16 {
			return &ollama.GenerateResponse{Response: "80", Done: true}, nil
		}
		return &ollama.GenerateResponse{Response: "Both add up a column.", Done: true}, nil
	}
	down := new(atomic.Bool)
	backend.PingFunc = func(ctx context.Context) error {
		if down.Load() {
			return errors.New(errors.ErrCodeBackendUnavailable, "down")
		}
		return nil
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "router"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewEngineMetrics(collector)

	scorer, err := comparison.NewSemanticScorer(backend, comparison.ScorerConfig{ScoreTimeout: time.Second, AnalysisTimeout: time.Second}, metrics, nil)
	require.NoError(t, err)
	svc, err := comparison.NewService(comparison.ServiceDeps{Semantic: scorer, Metrics: metrics})
	require.NoError(t, err)

	cfg := RouterConfig{
		ComparisonHandler: handlers.NewComparisonHandler(svc, nil),
		HealthHandler:     handlers.NewHealthHandler("test", svc, handlers.NewBackendChecker("ollama", backend)),
		Logging:           middleware.DefaultLoggingConfig(),
		MaxBodyBytes:      64 << 10,
		Logger:            logging.NewNopLogger(),
		Metrics:           metrics,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)
	return &routerFixture{server: srv, backend: backend, metrics: metrics, down: down}
}

func (f *routerFixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *routerFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func compareBody(t *testing.T, a, b string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"code1": a, "code2": b})
	require.NoError(t, err)
	return string(raw)
}

func TestNewRouter_Compare(t *testing.T) {
	f := newRouterFixture(t, nil)

	resp := f.post(t, "/api/v1/compare", compareBody(t, macroA, macroB))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var result comparison.ComparisonResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Both add up a column.", result.DetailedAnalysis)
	assert.Greater(t, result.LogicalSimilarity, result.SyntaxSimilarity)
	assert.NotNil(t, result.CommonElements)
	assert.Equal(t, 2, f.backend.Calls())
}

func TestNewRouter_CompareBlankInputs(t *testing.T) {
	f := newRouterFixture(t, nil)

	resp := f.post(t, "/api/v1/compare", `{"code1":"","code2":"  "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result comparison.ComparisonResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 100.0, result.OverallSimilarity)
	assert.Equal(t, comparison.AnalysisBothEmpty, result.DetailedAnalysis)
	assert.Zero(t, f.backend.Calls())
}

func TestNewRouter_ExplainAndFeatures(t *testing.T) {
	f := newRouterFixture(t, nil)

	resp := f.post(t, "/api/v1/explain", `{"code":"x = 1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var explained comparison.ExplainResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&explained))
	assert.Equal(t, "Both add up a column.", explained.Explanation)

	resp = f.post(t, "/api/v1/features", `{"code":"For i = 1 To 3\nNext i"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Contains(t, report, "features")
	assert.Contains(t, report, "summary")
}

func TestNewRouter_BodyTooLarge(t *testing.T) {
	f := newRouterFixture(t, func(cfg *RouterConfig) { cfg.MaxBodyBytes = 64 })

	resp := f.post(t, "/api/v1/compare", compareBody(t, strings.Repeat("x = 1\n", 50), "y = 2"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var body handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(errors.ErrCodeInputTooLarge), body.Code)
	assert.NotEmpty(t, body.RequestID)
	assert.Zero(t, f.backend.Calls())
}

func TestNewRouter_InvalidJSON(t *testing.T) {
	f := newRouterFixture(t, nil)

	resp := f.post(t, "/api/v1/compare", `{"code1":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewRouter_RateLimit(t *testing.T) {
	limiter := middleware.NewTokenBucketLimiter(0.001, 1, 0)
	f := newRouterFixture(t, func(cfg *RouterConfig) { cfg.RateLimiter = limiter })

	assert.Equal(t, http.StatusOK, f.post(t, "/api/v1/compare", `{"code1":"","code2":""}`).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, f.post(t, "/api/v1/compare", `{"code1":"","code2":""}`).StatusCode)

	// probes are outside the limited group
	assert.Equal(t, http.StatusOK, f.get(t, "/healthz").StatusCode)
}

func TestNewRouter_HealthEndpoints(t *testing.T) {
	f := newRouterFixture(t, nil)

	assert.Equal(t, http.StatusOK, f.get(t, "/healthz").StatusCode)
	assert.Equal(t, http.StatusOK, f.get(t, "/readyz").StatusCode)

	f.down.Store(true)
	assert.Equal(t, http.StatusServiceUnavailable, f.get(t, "/readyz").StatusCode)
	assert.Equal(t, http.StatusOK, f.get(t, "/healthz").StatusCode, "liveness ignores the backend")
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.post(t, "/api/v1/compare", `{"code1":"","code2":""}`)

	resp := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `router_comparisons_total{outcome="blank"} 1`)
	assert.Contains(t, body, `router_http_requests_total{method="POST",route="/api/v1/compare",status="200"} 1`)
}

func TestNewRouter_NilHandlers_NoPanic(t *testing.T) {
	var router http.Handler
	require.NotPanics(t, func() { router = NewRouter(RouterConfig{}) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_RecoversFromPanics(t *testing.T) {
	svc := &panickingService{}
	router := NewRouter(RouterConfig{ComparisonHandler: handlers.NewComparisonHandler(svc, nil)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/features", strings.NewReader(`{"code":"x"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panickingService struct{}

func (panickingService) Compare(context.Context, string, string) *comparison.ComparisonResult {
	panic("compare")
}

func (panickingService) Explain(context.Context, string) (*comparison.ExplainResult, error) {
	panic("explain")
}

func (panickingService) Features(string) *comparison.FeatureReport { panic("features") }

//Personal.AI order the ending
