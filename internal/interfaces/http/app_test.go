package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MacroCompare/internal/config"
	"github.com/turtacn/MacroCompare/internal/intelligence/ollama"
)

func newTestAppConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = "apptest"
	return cfg
}

func scoringBackend() *ollama.MockGenerator {
	backend := ollama.NewMockGenerator()
	backend.GenerateFunc = func(ctx context.Context, req *ollama.GenerateRequest) (*ollama.GenerateResponse, error) {
		if req.Options.NumPredict <= 16 {
			return &ollama.GenerateResponse{Response: "70", Done: true}, nil
		}
		return &ollama.GenerateResponse{Response: "Both sum a range.", Done: true}, nil
	}
	return backend
}

func TestNewApp_NilConfig(t *testing.T) {
	_, err := NewApp(nil, nil)
	require.Error(t, err)
}

func TestNewApp_InvalidBackendURL(t *testing.T) {
	cfg := newTestAppConfig()
	cfg.Backend.BaseURL = "ftp://localhost"
	_, err := NewApp(cfg, nil)
	require.Error(t, err)
}

func TestApp_RunListener_ServesAndStops(t *testing.T) {
	cfg := newTestAppConfig()
	cfg.Backend.WarmupOnStart = true
	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RequestsPerSecond = 100
	cfg.Server.RateLimit.Burst = 100

	backend := scoringBackend()
	app, err := NewApp(cfg, nil, WithBackend(backend), WithVersion("1.2.3"))
	require.NoError(t, err)
	require.NotNil(t, app.Service())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunListener(ctx, ln) }()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	var live map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&live))
	resp.Body.Close()
	assert.Equal(t, "1.2.3", live["version"])

	resp, err = http.Post(base+"/api/v1/compare", "application/json",
		strings.NewReader(`{"code1":"Sub A()\nx = 1\nEnd Sub","code2":"Sub B()\ny = 2\nEnd Sub"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))
	resp.Body.Close()

	resp, err = http.Get(base + cfg.Metrics.Path)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Eventually(t, func() bool { return app.Service().WarmedUp() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("RunListener did not return after cancel")
	}
}

//Personal.AI order the ending
