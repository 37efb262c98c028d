package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerIdleTimeout     = 60 * time.Second
	DefaultServerShutdownTimeout = 30 * time.Second
	DefaultRateLimitRPS          = 5.0
	DefaultRateLimitBurst        = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultBackendBaseURL         = "http://localhost:11434"
	DefaultBackendModel           = "deepseek-coder:6.7b"
	DefaultBackendTimeout         = 30 * time.Second
	DefaultBackendScoreTimeout    = 15 * time.Second
	DefaultBackendAnalysisTimeout = 25 * time.Second
	DefaultBackendWarmupTimeout   = 30 * time.Second
	DefaultBackendNumCtx          = 2048

	DefaultEngineCacheCapacity        = 1000
	DefaultEnginePromptSnippetChars   = 1000
	DefaultEngineMaxInputBytes        = 64 << 10
	DefaultEngineMaxEditDistanceRunes = 20000
	DefaultEngineWeightPolicy         = "default"
	DefaultEngineSyntaxPolicy         = "ngram"

	DefaultMetricsNamespace = "macrocompare"
	DefaultMetricsPath      = "/metrics"
)

// NewDefaultConfig returns a Config populated entirely from defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Backend.WarmupOnStart = true
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling and before Validate().
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg.  Explicit values win.
// Booleans are not touched here; their defaults live in setViperDefaults.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultServerIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = DefaultRateLimitBurst
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Backend ───────────────────────────────────────────────────────────────
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBackendBaseURL
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = DefaultBackendModel
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}
	if cfg.Backend.ScoreTimeout == 0 {
		cfg.Backend.ScoreTimeout = DefaultBackendScoreTimeout
	}
	if cfg.Backend.AnalysisTimeout == 0 {
		cfg.Backend.AnalysisTimeout = DefaultBackendAnalysisTimeout
	}
	if cfg.Backend.WarmupTimeout == 0 {
		cfg.Backend.WarmupTimeout = DefaultBackendWarmupTimeout
	}
	if cfg.Backend.NumCtx == 0 {
		cfg.Backend.NumCtx = DefaultBackendNumCtx
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	if cfg.Engine.CacheCapacity == 0 {
		cfg.Engine.CacheCapacity = DefaultEngineCacheCapacity
	}
	if cfg.Engine.PromptSnippetChars == 0 {
		cfg.Engine.PromptSnippetChars = DefaultEnginePromptSnippetChars
	}
	if cfg.Engine.MaxInputBytes == 0 {
		cfg.Engine.MaxInputBytes = DefaultEngineMaxInputBytes
	}
	if cfg.Engine.MaxEditDistanceRunes == 0 {
		cfg.Engine.MaxEditDistanceRunes = DefaultEngineMaxEditDistanceRunes
	}
	if cfg.Engine.WeightPolicy == "" {
		cfg.Engine.WeightPolicy = DefaultEngineWeightPolicy
	}
	if cfg.Engine.SyntaxPolicy == "" {
		cfg.Engine.SyntaxPolicy = DefaultEngineSyntaxPolicy
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// setViperDefaults registers every key with viper so that AutomaticEnv can
// resolve it during Unmarshal even when no config file mentions it.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.requests_per_second", DefaultRateLimitRPS)
	v.SetDefault("server.rate_limit.burst", DefaultRateLimitBurst)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("backend.base_url", DefaultBackendBaseURL)
	v.SetDefault("backend.model", DefaultBackendModel)
	v.SetDefault("backend.timeout", DefaultBackendTimeout)
	v.SetDefault("backend.score_timeout", DefaultBackendScoreTimeout)
	v.SetDefault("backend.analysis_timeout", DefaultBackendAnalysisTimeout)
	v.SetDefault("backend.warmup_timeout", DefaultBackendWarmupTimeout)
	v.SetDefault("backend.num_thread", 0)
	v.SetDefault("backend.num_ctx", DefaultBackendNumCtx)
	v.SetDefault("backend.warmup_on_start", true)

	v.SetDefault("engine.cache_capacity", DefaultEngineCacheCapacity)
	v.SetDefault("engine.prompt_snippet_chars", DefaultEnginePromptSnippetChars)
	v.SetDefault("engine.max_input_bytes", DefaultEngineMaxInputBytes)
	v.SetDefault("engine.max_edit_distance_runes", DefaultEngineMaxEditDistanceRunes)
	v.SetDefault("engine.weight_policy", DefaultEngineWeightPolicy)
	v.SetDefault("engine.syntax_policy", DefaultEngineSyntaxPolicy)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)
}

//Personal.AI order the ending
