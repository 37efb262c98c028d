package comparison

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/MacroCompare/internal/config"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MacroCompare/internal/intelligence/ollama"
	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// ---------------------------------------------------------------------------
// Weights
// ---------------------------------------------------------------------------

// Weights splits the overall score between syntax and logical similarity.
type Weights struct {
	Syntax  float64 `json:"syntax"`
	Logical float64 `json:"logical"`
}

var (
	// DefaultWeights favours behaviour over surface form.
	DefaultWeights = Weights{Syntax: 0.35, Logical: 0.65}
	// AlternateWeights leans further on the logical score.
	AlternateWeights = Weights{Syntax: 0.20, Logical: 0.80}
)

// Weight policy names accepted by ParseWeightPolicy.
const (
	WeightPolicyDefault   = "default"
	WeightPolicyAlternate = "alternate"
)

const weightTolerance = 1e-9

// Validate rejects negative weights and pairs that do not sum to 1.
func (w Weights) Validate() error {
	if w.Syntax < 0 || w.Logical < 0 {
		return errors.Newf(errors.ErrCodeInvalidWeights, "weights must be non-negative, got syntax=%g logical=%g", w.Syntax, w.Logical)
	}
	if math.Abs(w.Syntax+w.Logical-1) > weightTolerance {
		return errors.Newf(errors.ErrCodeInvalidWeights, "weights must sum to 1, got %g", w.Syntax+w.Logical)
	}
	return nil
}

// Blend returns the clamped weighted overall score.
func (w Weights) Blend(syntax, logical float64) float64 {
	return clampScore(syntax*w.Syntax + logical*w.Logical)
}

// ParseWeightPolicy maps a policy name onto its Weights.  The empty string
// selects DefaultWeights.
func ParseWeightPolicy(name string) (Weights, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", WeightPolicyDefault:
		return DefaultWeights, nil
	case WeightPolicyAlternate:
		return AlternateWeights, nil
	default:
		return Weights{}, errors.Newf(errors.ErrCodeInvalidPolicy, "unknown weight policy %q", name)
	}
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// ServiceDeps holds the collaborators of a Service.  Syntax, Metrics and
// Logger are optional; a zero Weights means DefaultWeights.
type ServiceDeps struct {
	Semantic *SemanticScorer
	Syntax   *SyntaxScorer
	Weights  Weights
	Metrics  *prometheus.EngineMetrics
	Logger   logging.Logger
}

// Service is the comparison engine.  It is safe for concurrent use.
type Service struct {
	semantic *SemanticScorer
	syntax   *SyntaxScorer
	weights  Weights
	metrics  *prometheus.EngineMetrics
	logger   logging.Logger
}

// NewService validates deps and returns a Service.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Semantic == nil {
		return nil, errors.InvalidParam("comparison service requires a semantic scorer")
	}
	if deps.Syntax == nil {
		deps.Syntax = NewSyntaxScorer(PolicyNGram, DefaultMaxEditDistanceRunes)
	}
	if deps.Weights == (Weights{}) {
		deps.Weights = DefaultWeights
	}
	if err := deps.Weights.Validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	return &Service{
		semantic: deps.Semantic,
		syntax:   deps.Syntax,
		weights:  deps.Weights,
		metrics:  deps.Metrics,
		logger:   deps.Logger.Named("comparison"),
	}, nil
}

// NewServiceFromConfig builds the scorers from the engine and backend
// sections of cfg.
func NewServiceFromConfig(cfg *config.Config, backend ollama.Generator, metrics *prometheus.EngineMetrics, logger logging.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidParam("config is nil")
	}
	weights, err := ParseWeightPolicy(cfg.Engine.WeightPolicy)
	if err != nil {
		return nil, err
	}
	policy, err := ParseSyntaxPolicy(cfg.Engine.SyntaxPolicy)
	if err != nil {
		return nil, err
	}
	semantic, err := NewSemanticScorer(backend, ScorerConfig{
		ScoreTimeout:       cfg.Backend.ScoreTimeout,
		AnalysisTimeout:    cfg.Backend.AnalysisTimeout,
		WarmupTimeout:      cfg.Backend.WarmupTimeout,
		PromptSnippetChars: cfg.Engine.PromptSnippetChars,
		CacheCapacity:      cfg.Engine.CacheCapacity,
	}, metrics, logger)
	if err != nil {
		return nil, err
	}
	return NewService(ServiceDeps{
		Semantic: semantic,
		Syntax:   NewSyntaxScorer(policy, cfg.Engine.MaxEditDistanceRunes),
		Weights:  weights,
		Metrics:  metrics,
		Logger:   logger,
	})
}

// Weights returns the configured overall blend.
func (s *Service) Weights() Weights { return s.weights }

// WarmedUp reports whether the last warm-up succeeded.
func (s *Service) WarmedUp() bool { return s.semantic.WarmedUp() }

// Warmup primes the language model.  Callers usually run it in a goroutine
// and ignore the error, which is already logged.
func (s *Service) Warmup(ctx context.Context) error { return s.semantic.Warmup(ctx) }

// Compare scores two snippets.  It never fails and never returns nil:
// backend problems degrade the logical score to the purpose heuristic.
func (s *Service) Compare(ctx context.Context, code1, code2 string) *ComparisonResult {
	start := time.Now()
	ctx = logging.ContextWithComparisonID(ctx, uuid.NewString())
	log := s.logger.WithContext(ctx)

	result, outcome := s.compare(ctx, code1, code2)

	elapsed := time.Since(start)
	s.metrics.RecordComparison(outcome, elapsed)
	log.Info("comparison completed",
		logging.String("outcome", outcome),
		logging.Float64("syntax", result.SyntaxSimilarity),
		logging.Float64("logical", result.LogicalSimilarity),
		logging.Float64("overall", result.OverallSimilarity),
		logging.Duration("elapsed", elapsed))
	return result
}

func (s *Service) compare(ctx context.Context, code1, code2 string) (*ComparisonResult, string) {
	blank1, blank2 := isBlank(code1), isBlank(code2)
	switch {
	case blank1 && blank2:
		return newComparisonResult(100, 100, 100, AnalysisBothEmpty), prometheus.OutcomeBlank
	case blank1 || blank2:
		return newComparisonResult(0, 0, 0, AnalysisOneEmpty), prometheus.OutcomeBlank
	case strings.TrimSpace(code1) == strings.TrimSpace(code2):
		explanation := s.semantic.Explain(ctx, code1)
		result := newComparisonResult(100, 100, 100, explanation.Text)
		p := newSnippetProfile(code1)
		result.CommonElements = commonElements(p, p)
		return result, prometheus.OutcomeShortCircuit
	}

	var (
		syntax   float64
		semantic SemanticOutcome
		a, b     snippetProfile
	)
	var g errgroup.Group
	g.Go(func() error {
		syntax = s.syntax.Score(code1, code2)
		a, b = newSnippetProfile(code1), newSnippetProfile(code2)
		return nil
	})
	g.Go(func() error {
		semantic = s.semantic.Score(ctx, code1, code2)
		return nil
	})
	_ = g.Wait()

	result := newComparisonResult(syntax, semantic.Score, s.weights.Blend(syntax, semantic.Score), semantic.Analysis)
	result.CommonElements = commonElements(a, b)
	result.Differences = differences(a, b)
	return result, outcomeLabel(semantic.Source)
}

func outcomeLabel(src Source) string {
	switch src {
	case SourceCache:
		return prometheus.OutcomeCache
	case SourceFallback:
		return prometheus.OutcomeFallback
	case SourceShortCircuit:
		return prometheus.OutcomeShortCircuit
	default:
		return prometheus.OutcomeBackend
	}
}

// Explain describes a single snippet.  A blank snippet is rejected with
// ErrCodeInvalidInput; backend problems yield FallbackAnalysis.
func (s *Service) Explain(ctx context.Context, code string) (*ExplainResult, error) {
	if isBlank(code) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "code must not be empty")
	}
	explanation := s.semantic.Explain(ctx, code)
	return &ExplainResult{
		Explanation: explanation.Text,
		Summary:     vba.ExtractSummary(code).Compact(),
	}, nil
}

// Features exposes the extracted features and purpose summary of a snippet.
func (s *Service) Features(code string) *FeatureReport {
	summary := vba.ExtractSummary(code)
	return &FeatureReport{
		Features: vba.ExtractFeatures(code),
		Summary:  summary,
		Compact:  summary.Compact(),
	}
}

//Personal.AI order the ending
