package comparison

import (
	"fmt"
	"strings"

	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
)

// Canned analyses for inputs that never reach the backend.
const (
	AnalysisBothEmpty = "Both snippets are empty."
	AnalysisOneEmpty  = "One of the snippets is empty; nothing to compare."
)

// ComparisonResult is the outcome of Service.Compare.  Scores are in
// [0,100]; the slices are never nil.
type ComparisonResult struct {
	SyntaxSimilarity  float64  `json:"syntax_similarity"`
	LogicalSimilarity float64  `json:"logical_similarity"`
	OverallSimilarity float64  `json:"overall_similarity"`
	DetailedAnalysis  string   `json:"detailed_analysis"`
	CommonElements    []string `json:"common_elements"`
	Differences       []string `json:"differences"`
}

func newComparisonResult(syntax, logical, overall float64, analysis string) *ComparisonResult {
	return &ComparisonResult{
		SyntaxSimilarity:  clampScore(syntax),
		LogicalSimilarity: clampScore(logical),
		OverallSimilarity: clampScore(overall),
		DetailedAnalysis:  analysis,
		CommonElements:    []string{},
		Differences:       []string{},
	}
}

// ExplainResult is the outcome of Service.Explain.
type ExplainResult struct {
	Explanation string `json:"explanation"`
	Summary     string `json:"summary"`
}

// FeatureReport is the outcome of Service.Features.
type FeatureReport struct {
	Features vba.Features `json:"features"`
	Summary  vba.Summary  `json:"summary"`
	Compact  string       `json:"compact"`
}

// FormatSummary renders the three scores with one decimal each.
func FormatSummary(r *ComparisonResult) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Syntax similarity: %.1f%%\n", r.SyntaxSimilarity)
	fmt.Fprintf(&sb, "Logical similarity: %.1f%%\n", r.LogicalSimilarity)
	fmt.Fprintf(&sb, "Overall similarity: %.1f%%\n", r.OverallSimilarity)
	return sb.String()
}

// FormatReport is FormatSummary followed by the common elements, the
// differences and the analysis.
func FormatReport(r *ComparisonResult) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(FormatSummary(r))
	writeList(&sb, "Common elements", r.CommonElements)
	writeList(&sb, "Differences", r.Differences)
	sb.WriteString("\nAnalysis:\n")
	sb.WriteString(r.DetailedAnalysis)
	sb.WriteString("\n")
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "  - %s\n", item)
	}
}

//Personal.AI order the ending
