package cli

import (
	"context"
	"fmt"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
	"github.com/turtacn/MacroCompare/internal/intelligence/ollama"
	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
	"github.com/turtacn/MacroCompare/pkg/client"
)

// Engine is what the compare, explain and features commands run against:
// either the in-process comparison service or a remote API server.
type Engine interface {
	Compare(ctx context.Context, code1, code2 string) (*comparison.ComparisonResult, error)
	Explain(ctx context.Context, code string) (*comparison.ExplainResult, error)
	Features(ctx context.Context, code string) (*comparison.FeatureReport, error)
}

// EngineFactory builds the Engine once the CLIContext is initialised.
type EngineFactory func(cliCtx *CLIContext) (Engine, error)

// DefaultEngineFactory returns a remote engine when --server is set and a
// local one backed by the configured Ollama instance otherwise.
func DefaultEngineFactory(cliCtx *CLIContext) (Engine, error) {
	if cliCtx.ServerAddr != "" {
		c, err := client.NewClient(cliCtx.ServerAddr,
			client.WithLogger(sdkLogger{cliCtx}),
		)
		if err != nil {
			return nil, err
		}
		return &remoteEngine{client: c}, nil
	}

	cfg := cliCtx.Config
	backend, err := ollama.NewClient(ollama.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Model:     cfg.Backend.Model,
		Timeout:   cfg.Backend.Timeout,
		NumThread: cfg.Backend.NumThread,
		NumCtx:    cfg.Backend.NumCtx,
	}, ollama.WithLogger(cliCtx.Logger))
	if err != nil {
		return nil, err
	}
	svc, err := comparison.NewServiceFromConfig(cfg, backend, nil, cliCtx.Logger)
	if err != nil {
		return nil, err
	}
	return &localEngine{svc: svc}, nil
}

type localEngine struct {
	svc *comparison.Service
}

func (e *localEngine) Compare(ctx context.Context, code1, code2 string) (*comparison.ComparisonResult, error) {
	return e.svc.Compare(ctx, code1, code2), nil
}

func (e *localEngine) Explain(ctx context.Context, code string) (*comparison.ExplainResult, error) {
	return e.svc.Explain(ctx, code)
}

func (e *localEngine) Features(_ context.Context, code string) (*comparison.FeatureReport, error) {
	return e.svc.Features(code), nil
}

type remoteEngine struct {
	client *client.Client
}

func (e *remoteEngine) Compare(ctx context.Context, code1, code2 string) (*comparison.ComparisonResult, error) {
	r, err := e.client.Compare(ctx, code1, code2)
	if err != nil {
		return nil, err
	}
	return &comparison.ComparisonResult{
		SyntaxSimilarity:  r.SyntaxSimilarity,
		LogicalSimilarity: r.LogicalSimilarity,
		OverallSimilarity: r.OverallSimilarity,
		DetailedAnalysis:  r.DetailedAnalysis,
		CommonElements:    nonNil(r.CommonElements),
		Differences:       nonNil(r.Differences),
	}, nil
}

func (e *remoteEngine) Explain(ctx context.Context, code string) (*comparison.ExplainResult, error) {
	r, err := e.client.Explain(ctx, code)
	if err != nil {
		return nil, err
	}
	return &comparison.ExplainResult{Explanation: r.Explanation, Summary: r.Summary}, nil
}

func (e *remoteEngine) Features(ctx context.Context, code string) (*comparison.FeatureReport, error) {
	r, err := e.client.Features(ctx, code)
	if err != nil {
		return nil, err
	}
	return &comparison.FeatureReport{
		Features: vba.Features(r.Features),
		Summary: vba.Summary{
			Purpose: vba.Purpose(r.Summary.Purpose),
			IO:      nonNil(r.Summary.IO),
			Ops:     r.Summary.Ops,
		},
		Compact: r.Compact,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// sdkLogger adapts the CLI logger to the printf-style SDK logger.
type sdkLogger struct {
	cliCtx *CLIContext
}

func (l sdkLogger) Debugf(format string, args ...interface{}) {
	l.cliCtx.Logger.Debug(fmt.Sprintf(format, args...))
}

func (l sdkLogger) Infof(format string, args ...interface{}) {
	l.cliCtx.Logger.Info(fmt.Sprintf(format, args...))
}

func (l sdkLogger) Errorf(format string, args ...interface{}) {
	l.cliCtx.Logger.Error(fmt.Sprintf(format, args...))
}

//Personal.AI order the ending
