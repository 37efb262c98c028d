package client

import (
	"context"
	"fmt"
	"strings"
)

// CompareResult mirrors the JSON returned by POST /api/v1/compare.
type CompareResult struct {
	SyntaxSimilarity  float64  `json:"syntax_similarity"`
	LogicalSimilarity float64  `json:"logical_similarity"`
	OverallSimilarity float64  `json:"overall_similarity"`
	DetailedAnalysis  string   `json:"detailed_analysis"`
	CommonElements    []string `json:"common_elements"`
	Differences       []string `json:"differences"`
}

// Summary renders the three scores with one decimal each.
func (r *CompareResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Syntax similarity: %.1f%%\n", r.SyntaxSimilarity)
	fmt.Fprintf(&sb, "Logical similarity: %.1f%%\n", r.LogicalSimilarity)
	fmt.Fprintf(&sb, "Overall similarity: %.1f%%\n", r.OverallSimilarity)
	return sb.String()
}

// ExplainResult mirrors the JSON returned by POST /api/v1/explain.
type ExplainResult struct {
	Explanation string `json:"explanation"`
	Summary     string `json:"summary"`
}

// MacroSummary is the heuristic description of one macro.
type MacroSummary struct {
	Purpose string         `json:"purpose"`
	IO      []string       `json:"io"`
	Ops     map[string]int `json:"ops"`
}

// FeatureReport mirrors the JSON returned by POST /api/v1/features.
type FeatureReport struct {
	Features map[string]float64 `json:"features"`
	Summary  MacroSummary       `json:"summary"`
	Compact  string             `json:"compact"`
}

// HealthStatus is the readiness probe body.
type HealthStatus struct {
	Status     string `json:"status"`
	ModelWarm  *bool  `json:"model_warm,omitempty"`
	Components map[string]struct {
		Status  string `json:"status"`
		Latency string `json:"latency,omitempty"`
		Error   string `json:"error,omitempty"`
	} `json:"components,omitempty"`
}

type compareRequest struct {
	Code1 string `json:"code1"`
	Code2 string `json:"code2"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// Compare scores the similarity of two VBA macros.
func (c *Client) Compare(ctx context.Context, code1, code2 string) (*CompareResult, error) {
	var out CompareResult
	if err := c.post(ctx, "/api/v1/compare", compareRequest{Code1: code1, Code2: code2}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Explain asks the server to describe one macro.
func (c *Client) Explain(ctx context.Context, code string) (*ExplainResult, error) {
	var out ExplainResult
	if err := c.post(ctx, "/api/v1/explain", codeRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Features returns the structural features and heuristic summary of one macro.
func (c *Client) Features(ctx context.Context, code string) (*FeatureReport, error) {
	var out FeatureReport
	if err := c.post(ctx, "/api/v1/features", codeRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready queries GET /readyz.  A not-ready server yields an *APIError with
// status 503.
func (c *Client) Ready(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.get(ctx, "/readyz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
