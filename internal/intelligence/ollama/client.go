// Package ollama is the HTTP client for an Ollama-compatible text generation
// backend.  It knows nothing about VBA or scoring: callers build a
// GenerateRequest, the client sends it non-streaming to /api/generate and maps
// every failure onto a typed *errors.AppError from the LLM code family.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

const (
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"

	// maxErrorBodyBytes bounds how much of a failed response is kept in the
	// error detail.
	maxErrorBodyBytes = 512
)

// Version is reported in the User-Agent header.
const Version = "0.1.0"

// Generator is the narrow surface the comparison engine depends on.
type Generator interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Ping(ctx context.Context) error
}

// Options carries the model runtime knobs nested under "options".
type Options struct {
	NumPredict int    `json:"num_predict"`
	NumThread  int    `json:"num_thread,omitempty"`
	NumCtx     int    `json:"num_ctx,omitempty"`
	KeepAlive  string `json:"keep_alive,omitempty"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	Options     Options `json:"options"`
}

// GenerateResponse is the non-streaming reply of /api/generate.  Durations
// are nanoseconds as reported by the backend.
type GenerateResponse struct {
	Model              string `json:"model"`
	Response           string `json:"response"`
	Done               bool   `json:"done"`
	TotalDuration      int64  `json:"total_duration"`
	LoadDuration       int64  `json:"load_duration"`
	PromptEvalCount    int    `json:"prompt_eval_count"`
	PromptEvalDuration int64  `json:"prompt_eval_duration"`
	EvalCount          int    `json:"eval_count"`
	EvalDuration       int64  `json:"eval_duration"`
}

// Config holds the connection settings of a Client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// NumThread of 0 resolves to runtime.NumCPU().
	NumThread int
	NumCtx    int
}

// Client implements Generator over net/http.
type Client struct {
	baseURL    string
	model      string
	numThread  int
	numCtx     int
	httpClient *http.Client
	userAgent  string
	logger     logging.Logger
}

var _ Generator = (*Client)(nil)

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "backend base URL is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid backend base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeValidation, "backend base URL scheme must be http or https").
			WithDetail(cfg.BaseURL)
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrCodeValidation, "backend model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	numThread := cfg.NumThread
	if numThread <= 0 {
		numThread = runtime.NumCPU()
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		numThread:  numThread,
		numCtx:     cfg.NumCtx,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  fmt.Sprintf("macrocompare/%s", Version),
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends req with stream=false.  Empty Model, NumThread and NumCtx
// are filled from the client configuration; req itself is not modified.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, errors.InvalidParam("generate request is nil")
	}
	body := *req
	body.Stream = false
	if body.Model == "" {
		body.Model = c.model
	}
	if body.Options.NumThread == 0 {
		body.Options.NumThread = c.numThread
	}
	if body.Options.NumCtx == 0 {
		body.Options.NumCtx = c.numCtx
	}

	payload, err := json.Marshal(&body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal generate request")
	}

	start := time.Now()
	raw, err := c.do(ctx, http.MethodPost, generatePath, payload)
	if err != nil {
		c.logger.Warn("generate request failed",
			logging.String("model", body.Model),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldErrorCode, string(errors.GetCode(err))),
			logging.Err(err))
		return nil, err
	}

	var resp GenerateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBackendMalformed, "failed to decode generate response").
			WithDetail(snippet(raw))
	}

	c.logger.Debug("generate request completed",
		logging.String("model", resp.Model),
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("prompt_eval_count", resp.PromptEvalCount),
		logging.Int("eval_count", resp.EvalCount))
	return &resp, nil
}

// Ping checks that the backend answers GET /api/tags with a 2xx status.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, tagsPath, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create backend request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if rid := logging.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Newf(errors.ErrCodeBackendStatus, "backend returned HTTP %d", resp.StatusCode).
			WithDetail(fmt.Sprintf("%s %s: %s", method, path, snippet(raw)))
	}
	return raw, nil
}

// classifyTransportError distinguishes deadlines from every other transport
// failure.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeBackendTimeout, "backend request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(err, errors.ErrCodeBackendTimeout, "backend request timed out")
	}
	return errors.Wrap(err, errors.ErrCodeBackendUnavailable, "backend is unreachable")
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}

//Personal.AI order the ending
