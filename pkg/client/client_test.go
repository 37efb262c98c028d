package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MacroCompare/pkg/errors"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	mu      sync.Mutex
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.mu.Lock()
	l.lastMsg = fmt.Sprintf(format, args...)
	l.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Constructor Tests
// ---------------------------------------------------------------------------

func TestNewClient_Success(t *testing.T) {
	c, err := NewClient("http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "macrocompare-go-sdk/")
	assert.Empty(t, c.apiKey)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://invalid", "invalid-url", "http://[::1"} {
		_, err := NewClient(raw)
		assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest), "baseURL %q", raw)
	}
}

func TestNewClient_BaseURLTrailingSlash(t *testing.T) {
	c, err := NewClient("https://compare.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://compare.example.com", c.BaseURL())
}

func TestNewClient_WithOptions(t *testing.T) {
	httpClient := &http.Client{Timeout: time.Second}
	logger := &testLogger{}
	c, err := NewClient("http://localhost",
		WithHTTPClient(httpClient),
		WithLogger(logger),
		WithRetryMax(1),
		WithRetryWait(time.Millisecond, 10*time.Millisecond),
		WithUserAgent("ci/1.0"),
		WithAPIKey("secret"),
	)
	require.NoError(t, err)
	assert.Same(t, httpClient, c.httpClient)
	assert.Equal(t, logger, c.logger)
	assert.Equal(t, 1, c.retryMax)
	assert.Equal(t, time.Millisecond, c.retryWaitMin)
	assert.Equal(t, "ci/1.0", c.userAgent)
	assert.Equal(t, "secret", c.apiKey)
}

// ---------------------------------------------------------------------------
// Transport Tests
// ---------------------------------------------------------------------------

func TestClient_Do_RequestHeaders(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "macrocompare-go-sdk/")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusOK)
	}
	c := newTestClient(t, handler, WithAPIKey("k"))
	require.NoError(t, c.get(context.Background(), "/test", nil))
}

func TestClient_Do_NoAPIKeyNoAuthorization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	})
	require.NoError(t, c.get(context.Background(), "test", nil))
}

func TestClient_Do_RequestID_Unique(t *testing.T) {
	ids := make(chan string, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-ID")
	})
	require.NoError(t, c.get(context.Background(), "/test", nil))
	require.NoError(t, c.get(context.Background(), "/test", nil))
	close(ids)

	assert.NotEqual(t, <-ids, <-ids)
}

func TestClient_Do_4xxError(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"code":"COMMON_017","message":"request body exceeds 65536 bytes","request_id":"srv-1"}`))
	}
	c := newTestClient(t, handler)
	err := c.post(context.Background(), "/api/v1/compare", map[string]string{}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsTooLarge())
	assert.Equal(t, "COMMON_017", apiErr.Code)
	assert.Equal(t, "srv-1", apiErr.RequestID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx is not retried")
}

func TestClient_Do_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("plain failure"))
	})
	err := c.get(context.Background(), "/test", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsBadRequest())
	assert.Equal(t, "plain failure", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestClient_Do_5xxRetry(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
	c := newTestClient(t, handler, WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, c.get(context.Background(), "/test", nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetryExhausted(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}
	c := newTestClient(t, handler, WithRetryMax(2), WithRetryWait(time.Millisecond, 2*time.Millisecond))
	err := c.get(context.Background(), "/test", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_429RetryAfter(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
	logger := &testLogger{}
	c := newTestClient(t, handler, WithLogger(logger))

	start := time.Now()
	require.NoError(t, c.get(context.Background(), "/test", nil))
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Positive(t, atomic.LoadInt32(&logger.count))
}

func TestClient_Do_429WithoutRetries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRetryMax(0))

	err := c.get(context.Background(), "/test", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
}

func TestClient_Do_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c, err := NewClient(server.URL, WithRetryMax(1), WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)
	assert.Error(t, c.get(context.Background(), "/test", nil))
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.ErrorIs(t, c.get(ctx, "/test", nil), context.Canceled)
}

func TestClient_Do_ContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, c.get(ctx, "/test", nil), context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

// ---------------------------------------------------------------------------
// API Methods
// ---------------------------------------------------------------------------

func TestClient_Compare(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/compare", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Sub A()\nEnd Sub", body["code1"])
		assert.Equal(t, "", body["code2"])

		w.Write([]byte(`{"syntax_similarity":0,"logical_similarity":0,"overall_similarity":0,` +
			`"detailed_analysis":"One of the snippets is empty; nothing to compare.","common_elements":[],"differences":[]}`))
	})

	res, err := c.Compare(context.Background(), "Sub A()\nEnd Sub", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.OverallSimilarity)
	assert.NotNil(t, res.CommonElements)
	assert.Equal(t, "Syntax similarity: 0.0%\nLogical similarity: 0.0%\nOverall similarity: 0.0%\n", res.Summary())
}

func TestClient_ExplainAndFeatures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/explain":
			w.Write([]byte(`{"explanation":"Sorts A1:C10.","summary":"purpose=sort data; io=[]; ops={}"}`))
		case "/api/v1/features":
			w.Write([]byte(`{"features":{"loops_for":1},"summary":{"purpose":"sum values","io":["Range(\"B1\")"],"ops":{"loop_for":1}},"compact":"c"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ex, err := c.Explain(context.Background(), "Range(\"A1:C10\").Sort")
	require.NoError(t, err)
	assert.Equal(t, "Sorts A1:C10.", ex.Explanation)

	fr, err := c.Features(context.Background(), "For i = 1 To 3")
	require.NoError(t, err)
	assert.Equal(t, 1.0, fr.Features["loops_for"])
	assert.Equal(t, "sum values", fr.Summary.Purpose)
	assert.Equal(t, 1, fr.Summary.Ops["loop_for"])
}

func TestClient_Ready(t *testing.T) {
	var down atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not_ready"}`))
			return
		}
		w.Write([]byte(`{"status":"ready","model_warm":true,"components":{"ollama":{"status":"healthy"}}}`))
	}, WithRetryMax(0))

	st, err := c.Ready(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", st.Status)
	require.NotNil(t, st.ModelWarm)
	assert.True(t, *st.ModelWarm)
	assert.Equal(t, "healthy", st.Components["ollama"].Status)

	down.Store(true)
	_, err = c.Ready(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestAPIError_Error(t *testing.T) {
	e := &APIError{StatusCode: 400, Code: "ENG_003", Message: "code is required", RequestID: "r1"}
	assert.Equal(t, "macrocompare: ENG_003 (HTTP 400): code is required [request_id=r1]", e.Error())
	assert.False(t, e.IsServerError())
}

//Personal.AI order the ending
