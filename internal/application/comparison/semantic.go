package comparison

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/MacroCompare/internal/infrastructure/cache"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MacroCompare/internal/intelligence/ollama"
	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// ---------------------------------------------------------------------------
// Outcome types
// ---------------------------------------------------------------------------

// Source records where a logical score came from.
type Source int

const (
	SourceBackend Source = iota
	SourceCache
	SourceFallback
	SourceShortCircuit
)

func (s Source) String() string {
	switch s {
	case SourceBackend:
		return "backend"
	case SourceCache:
		return "cache"
	case SourceFallback:
		return "fallback"
	case SourceShortCircuit:
		return "short_circuit"
	default:
		return "unknown"
	}
}

// SemanticOutcome is the logical half of a comparison.
type SemanticOutcome struct {
	// Score is the blended logical similarity in [0,100].
	Score float64
	// Analysis is never empty.
	Analysis  string
	Heuristic HeuristicScore
	Source    Source
	// Reason is the error code that forced a fallback, empty otherwise.
	Reason string
}

// Explanation is the outcome of a single-snippet explanation call.
type Explanation struct {
	Text   string
	Source Source
	Reason string
}

// FallbackAnalysis replaces any analysis or explanation the backend could
// not produce.
const FallbackAnalysis = "Detailed analysis is unavailable: the language model could not be reached."

// Logical score blend when the backend answered.
const (
	BackendScoreWeight   = 0.70
	HeuristicScoreWeight = 0.30
)

const (
	cacheKeySeparator      = "|||"
	explainKeyPrefix       = "explain:"
	defaultScoreTimeout    = 25 * time.Second
	defaultAnalysisTimeout = 25 * time.Second
	defaultWarmupTimeout   = 15 * time.Second
)

// semanticEntry is the cached value.  Only backend-sourced entries are ever
// stored, so source and reason describe transient results.
type semanticEntry struct {
	Score    float64
	Analysis string

	source Source
	reason string
}

type callResult struct {
	text  string
	value float64
	err   error
}

// CacheKey derives an order-independent key from two normalized snippets.
func CacheKey(n1, n2 string) string {
	a, b := vba.Fold(n1), vba.Fold(n2)
	if b < a {
		a, b = b, a
	}
	sum := sha256.Sum256([]byte(a + cacheKeySeparator + b))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// ExplainCacheKey derives the cache key of a single-snippet explanation.  It
// is kept apart from CacheKey(n, n) so that a pair whose normalized forms
// coincide still gets a real score.
func ExplainCacheKey(n string) string {
	return explainKeyPrefix + CacheKey(n, n)
}

// ---------------------------------------------------------------------------
// Scorer
// ---------------------------------------------------------------------------

// ScorerConfig tunes a SemanticScorer.  Zero values select defaults.
type ScorerConfig struct {
	ScoreTimeout       time.Duration
	AnalysisTimeout    time.Duration
	WarmupTimeout      time.Duration
	PromptSnippetChars int
	CacheCapacity      int
}

// SemanticScorer obtains logical similarity from the language model, blends
// it with the purpose heuristic and memoises successful results.
type SemanticScorer struct {
	backend  ollama.Generator
	cache    *cache.FIFO[semanticEntry]
	prompts  *PromptBuilder
	cfg      ScorerConfig
	metrics  *prometheus.EngineMetrics
	logger   logging.Logger
	warmedUp atomic.Bool
}

// NewSemanticScorer wires a scorer.  metrics may be nil.
func NewSemanticScorer(backend ollama.Generator, cfg ScorerConfig, metrics *prometheus.EngineMetrics, logger logging.Logger) (*SemanticScorer, error) {
	if backend == nil {
		return nil, errors.InvalidParam("semantic scorer requires a backend")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.ScoreTimeout <= 0 {
		cfg.ScoreTimeout = defaultScoreTimeout
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = defaultAnalysisTimeout
	}
	if cfg.WarmupTimeout <= 0 {
		cfg.WarmupTimeout = defaultWarmupTimeout
	}

	var opts []cache.Option[semanticEntry]
	if metrics != nil {
		opts = append(opts, cache.WithRecorder[semanticEntry](metrics))
	}

	return &SemanticScorer{
		backend: backend,
		cache:   cache.NewFIFO[semanticEntry](cfg.CacheCapacity, opts...),
		prompts: NewPromptBuilder(cfg.PromptSnippetChars),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.Named("semantic"),
	}, nil
}

// CacheLen reports the number of memoised comparisons.
func (s *SemanticScorer) CacheLen() int { return s.cache.Len() }

// WarmedUp reports whether the last warm-up succeeded.
func (s *SemanticScorer) WarmedUp() bool { return s.warmedUp.Load() }

// Score returns the logical similarity of two non-blank snippets.  It never
// fails: backend problems degrade to the heuristic score.
func (s *SemanticScorer) Score(ctx context.Context, raw1, raw2 string) SemanticOutcome {
	n1, n2 := vba.Normalize(raw1), vba.Normalize(raw2)
	sum1, sum2 := vba.ExtractSummary(raw1), vba.ExtractSummary(raw2)
	heuristic := HeuristicLogicalSimilarity(sum1, sum2)

	entry, hit, err := s.cache.GetOrLoad(ctx, CacheKey(n1, n2), func(ctx context.Context) (semanticEntry, bool, error) {
		e := s.query(ctx, raw1, raw2, sum1, sum2, heuristic)
		return e, e.source == SourceBackend && e.reason == "", nil
	})
	if err != nil {
		// The loader never fails; this only guards the cache contract.
		return s.fallback(ctx, heuristic, FallbackAnalysis, err)
	}
	if hit {
		return SemanticOutcome{
			Score:     entry.Score,
			Analysis:  entry.Analysis,
			Heuristic: heuristic,
			Source:    SourceCache,
		}
	}
	return SemanticOutcome{
		Score:     entry.Score,
		Analysis:  entry.Analysis,
		Heuristic: heuristic,
		Source:    entry.source,
		Reason:    entry.reason,
	}
}

// query runs the score and analysis calls concurrently and blends the
// result.  A non-empty reason on a SourceBackend entry means the analysis
// call failed while the score call succeeded.
func (s *SemanticScorer) query(ctx context.Context, raw1, raw2 string, sum1, sum2 vba.Summary, heuristic HeuristicScore) semanticEntry {
	var scoreRes, analysisRes callResult

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		prompt, err := s.prompts.ScorePrompt(raw1, raw2, sum1, sum2)
		if err != nil {
			scoreRes = callResult{err: err}
			return nil
		}
		scoreRes = s.generate(gCtx, prometheus.OperationScore, scoreRequest(prompt), s.cfg.ScoreTimeout)
		if scoreRes.err == nil {
			scoreRes.value, scoreRes.err = ollama.ParseScore(scoreRes.text)
		}
		return nil
	})
	g.Go(func() error {
		prompt, err := s.prompts.AnalysisPrompt(raw1, raw2)
		if err != nil {
			analysisRes = callResult{err: err}
			return nil
		}
		analysisRes = s.generate(gCtx, prometheus.OperationAnalysis, analysisRequest(prompt), s.cfg.AnalysisTimeout)
		return nil
	})
	_ = g.Wait()

	analysis := analysisRes.text
	if analysisRes.err != nil {
		analysis = FallbackAnalysis
		s.logger.WithContext(ctx).WithError(analysisRes.err).Warn("analysis unavailable")
	}

	if scoreRes.err != nil {
		out := s.fallback(ctx, heuristic, analysis, scoreRes.err)
		return semanticEntry{Score: out.Score, Analysis: out.Analysis, source: out.Source, reason: out.Reason}
	}

	e := semanticEntry{
		Score:    clampScore(scoreRes.value*BackendScoreWeight + heuristic.Total*HeuristicScoreWeight),
		Analysis: analysis,
		source:   SourceBackend,
	}
	if analysisRes.err != nil {
		e.reason = string(errors.GetCode(analysisRes.err))
	}
	return e
}

func (s *SemanticScorer) fallback(ctx context.Context, heuristic HeuristicScore, analysis string, cause error) SemanticOutcome {
	reason := string(errors.GetCode(cause))
	s.metrics.RecordFallback(reason)
	s.logger.WithContext(ctx).WithError(cause).Warn("logical score fell back to heuristic",
		logging.Float64("heuristic", heuristic.Total))
	return SemanticOutcome{
		Score:     heuristic.Total,
		Analysis:  analysis,
		Heuristic: heuristic,
		Source:    SourceFallback,
		Reason:    reason,
	}
}

// Explain describes a single snippet, falling back to FallbackAnalysis.
// Successful explanations are memoised alongside comparisons.
func (s *SemanticScorer) Explain(ctx context.Context, raw string) Explanation {
	entry, hit, err := s.cache.GetOrLoad(ctx, ExplainCacheKey(vba.Normalize(raw)), func(ctx context.Context) (semanticEntry, bool, error) {
		e := s.explain(ctx, raw)
		return e, e.source == SourceBackend, nil
	})
	if err != nil {
		return Explanation{Text: FallbackAnalysis, Source: SourceFallback, Reason: string(errors.GetCode(err))}
	}
	if hit {
		return Explanation{Text: entry.Analysis, Source: SourceCache}
	}
	return Explanation{Text: entry.Analysis, Source: entry.source, Reason: entry.reason}
}

func (s *SemanticScorer) explain(ctx context.Context, raw string) semanticEntry {
	prompt, err := s.prompts.ExplainPrompt(raw, vba.ExtractSummary(raw))
	var res callResult
	if err != nil {
		res.err = err
	} else {
		res = s.generate(ctx, prometheus.OperationExplain, explainRequest(prompt), s.cfg.AnalysisTimeout)
	}
	if res.err != nil {
		s.logger.WithContext(ctx).WithError(res.err).Warn("explanation unavailable")
		return semanticEntry{Analysis: FallbackAnalysis, source: SourceFallback, reason: string(errors.GetCode(res.err))}
	}
	return semanticEntry{Analysis: res.text, source: SourceBackend}
}

// Warmup sends a one-token request so the model is resident before the first
// comparison.  The outcome is recorded for WarmedUp.
func (s *SemanticScorer) Warmup(ctx context.Context) error {
	res := s.generate(ctx, prometheus.OperationWarmup, warmupRequest(), s.cfg.WarmupTimeout)
	if res.err != nil && !errors.IsCode(res.err, errors.ErrCodeEmptyResponse) {
		s.warmedUp.Store(false)
		s.logger.WithContext(ctx).WithError(res.err).Warn("model warm-up failed")
		return res.err
	}
	s.warmedUp.Store(true)
	s.logger.Info("model warmed up")
	return nil
}

// generate performs one bounded backend call and records its metrics.  An
// empty reply is an ErrCodeEmptyResponse error.
func (s *SemanticScorer) generate(ctx context.Context, operation string, req *ollama.GenerateRequest, timeout time.Duration) callResult {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.backend.Generate(callCtx, req)
	elapsed := time.Since(start)

	var text string
	var promptTokens, evalTokens int
	if err == nil && resp == nil {
		err = errors.New(errors.ErrCodeEmptyResponse, "backend returned no "+operation+" reply")
	}
	if err == nil {
		text = strings.TrimSpace(resp.Response)
		promptTokens, evalTokens = resp.PromptEvalCount, resp.EvalCount
		if text == "" {
			err = errors.New(errors.ErrCodeEmptyResponse, "backend returned an empty "+operation+" reply")
		}
	}
	s.metrics.RecordBackendCall(operation, err == nil, elapsed, promptTokens, evalTokens)
	s.logger.WithContext(ctx).Debug("backend call finished",
		logging.String("operation", operation),
		logging.Duration("elapsed", elapsed),
		logging.Bool("success", err == nil))

	return callResult{text: text, err: err}
}

//Personal.AI order the ending
