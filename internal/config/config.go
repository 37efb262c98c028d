// Package config defines all configuration structures for MacroCompare.  No
// I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles /api/v1 per client IP.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig mirrors logging.LogConfig in mapstructure form.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// BackendConfig describes the Ollama-compatible text generation backend.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`

	// Timeout bounds the HTTP client; ScoreTimeout and AnalysisTimeout bound
	// the individual calls and must not exceed it.
	Timeout         time.Duration `mapstructure:"timeout"`
	ScoreTimeout    time.Duration `mapstructure:"score_timeout"`
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`
	WarmupTimeout   time.Duration `mapstructure:"warmup_timeout"`

	// NumThread of 0 means runtime.NumCPU().
	NumThread     int  `mapstructure:"num_thread"`
	NumCtx        int  `mapstructure:"num_ctx"`
	WarmupOnStart bool `mapstructure:"warmup_on_start"`
}

// EngineConfig holds scoring engine tunables.
type EngineConfig struct {
	CacheCapacity        int    `mapstructure:"cache_capacity"`
	PromptSnippetChars   int    `mapstructure:"prompt_snippet_chars"`
	MaxInputBytes        int64  `mapstructure:"max_input_bytes"`
	MaxEditDistanceRunes int    `mapstructure:"max_edit_distance_runes"`
	WeightPolicy         string `mapstructure:"weight_policy"` // "default" | "alternate"
	SyntaxPolicy         string `mapstructure:"syntax_policy"` // "ngram" | "edit_distance"
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Backend BackendConfig `mapstructure:"backend"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("config: server.rate_limit.requests_per_second must be > 0")
		}
		if c.Server.RateLimit.Burst < 1 {
			return fmt.Errorf("config: server.rate_limit.burst must be ≥ 1, got %d", c.Server.RateLimit.Burst)
		}
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Backend
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend.base_url is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("config: backend.base_url %q must use http or https", c.Backend.BaseURL)
	}
	if c.Backend.Model == "" {
		return fmt.Errorf("config: backend.model is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("config: backend.timeout must be > 0")
	}
	if c.Backend.ScoreTimeout <= 0 || c.Backend.ScoreTimeout > c.Backend.Timeout {
		return fmt.Errorf("config: backend.score_timeout must be in (0, %s]", c.Backend.Timeout)
	}
	if c.Backend.AnalysisTimeout <= 0 || c.Backend.AnalysisTimeout > c.Backend.Timeout {
		return fmt.Errorf("config: backend.analysis_timeout must be in (0, %s]", c.Backend.Timeout)
	}
	if c.Backend.NumThread < 0 {
		return fmt.Errorf("config: backend.num_thread must be ≥ 0, got %d", c.Backend.NumThread)
	}
	if c.Backend.NumCtx < 256 {
		return fmt.Errorf("config: backend.num_ctx must be ≥ 256, got %d", c.Backend.NumCtx)
	}

	// Engine
	if c.Engine.CacheCapacity < 1 {
		return fmt.Errorf("config: engine.cache_capacity must be ≥ 1, got %d", c.Engine.CacheCapacity)
	}
	if c.Engine.PromptSnippetChars < 1 {
		return fmt.Errorf("config: engine.prompt_snippet_chars must be ≥ 1, got %d", c.Engine.PromptSnippetChars)
	}
	if c.Engine.MaxInputBytes < 1 {
		return fmt.Errorf("config: engine.max_input_bytes must be ≥ 1, got %d", c.Engine.MaxInputBytes)
	}
	if c.Engine.MaxEditDistanceRunes < 1 {
		return fmt.Errorf("config: engine.max_edit_distance_runes must be ≥ 1, got %d", c.Engine.MaxEditDistanceRunes)
	}
	switch c.Engine.WeightPolicy {
	case "default", "alternate":
	default:
		return fmt.Errorf("config: engine.weight_policy %q is invalid; expected default|alternate", c.Engine.WeightPolicy)
	}
	switch c.Engine.SyntaxPolicy {
	case "ngram", "edit_distance":
	default:
		return fmt.Errorf("config: engine.syntax_policy %q is invalid; expected ngram|edit_distance", c.Engine.SyntaxPolicy)
	}

	// Metrics
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path %q must start with /", c.Metrics.Path)
	}

	return nil
}

//Personal.AI order the ending
