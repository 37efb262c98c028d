// Package comparison is the MacroCompare engine: it scores two VBA snippets
// for surface (syntax) and behavioural (logical) similarity, blends the two
// and explains the result.  The Service type is the single entry point used
// by the HTTP and CLI interfaces.
package comparison

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// ---------------------------------------------------------------------------
// Policy
// ---------------------------------------------------------------------------

// SyntaxPolicy selects the syntax scoring formula.
type SyntaxPolicy string

const (
	// PolicyNGram blends token n-gram overlap with character similarity.
	PolicyNGram SyntaxPolicy = "ngram"
	// PolicyEditDistance scores on normalized edit distance alone.
	PolicyEditDistance SyntaxPolicy = "edit_distance"
)

// ParseSyntaxPolicy maps a configuration value onto a SyntaxPolicy.  The
// empty string selects PolicyNGram.
func ParseSyntaxPolicy(s string) (SyntaxPolicy, error) {
	switch SyntaxPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyNGram:
		return PolicyNGram, nil
	case PolicyEditDistance:
		return PolicyEditDistance, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidPolicy, "unknown syntax policy %q", s)
	}
}

// N-gram blend weights.
const (
	UnigramWeight   = 0.20
	BigramWeight    = 0.40
	TrigramWeight   = 0.30
	CharacterWeight = 0.10
)

const (
	// DefaultMaxEditDistanceRunes bounds the inputs of the O(n*m) distance.
	DefaultMaxEditDistanceRunes = 20000

	// shortInputRunes and shortInputPenalty implement the edit-distance
	// policy's damping of very short snippets.
	shortInputRunes   = 50
	shortInputPenalty = 0.8
)

// ---------------------------------------------------------------------------
// Scorer
// ---------------------------------------------------------------------------

// SyntaxScorer computes the syntax similarity of two raw snippets.
type SyntaxScorer struct {
	policy   SyntaxPolicy
	maxRunes int
}

// NewSyntaxScorer returns a scorer for policy.  A non-positive maxRunes uses
// DefaultMaxEditDistanceRunes.
func NewSyntaxScorer(policy SyntaxPolicy, maxRunes int) *SyntaxScorer {
	if policy == "" {
		policy = PolicyNGram
	}
	if maxRunes <= 0 {
		maxRunes = DefaultMaxEditDistanceRunes
	}
	return &SyntaxScorer{policy: policy, maxRunes: maxRunes}
}

// Policy returns the configured policy.
func (s *SyntaxScorer) Policy() SyntaxPolicy { return s.policy }

// Score returns a value in [0,100].  Two blank inputs score 100, exactly one
// blank input scores 0, and identical normalized forms always score 100.
func (s *SyntaxScorer) Score(raw1, raw2 string) float64 {
	blank1, blank2 := isBlank(raw1), isBlank(raw2)
	switch {
	case blank1 && blank2:
		return 100
	case blank1 || blank2:
		return 0
	}

	n1, n2 := vba.Normalize(raw1), vba.Normalize(raw2)
	if vba.Fold(n1) == vba.Fold(n2) {
		return 100
	}

	if s.policy == PolicyEditDistance {
		return editDistanceScore(n1, n2, s.maxRunes)
	}

	uni, bi, tri := vba.NgramSimilaritiesOfTokens(vba.Tokenize(n1), vba.Tokenize(n2))
	char := CharacterSimilarity(n1, n2, s.maxRunes)
	return clampScore(100 * (uni*UnigramWeight + bi*BigramWeight + tri*TrigramWeight + char*CharacterWeight))
}

// SyntaxSimilarity scores with the default n-gram policy.
func SyntaxSimilarity(raw1, raw2 string) float64 {
	return NewSyntaxScorer(PolicyNGram, DefaultMaxEditDistanceRunes).Score(raw1, raw2)
}

// EditDistanceSimilarity scores with the edit-distance policy.
func EditDistanceSimilarity(raw1, raw2 string) float64 {
	return NewSyntaxScorer(PolicyEditDistance, DefaultMaxEditDistanceRunes).Score(raw1, raw2)
}

// CharacterSimilarity returns 1 - lev/maxLen over the folded normalized
// forms, each cut to maxRunes runes first.  Two empty strings are identical.
func CharacterSimilarity(n1, n2 string, maxRunes int) float64 {
	a := truncateRunes(vba.Fold(n1), maxRunes)
	b := truncateRunes(vba.Fold(n2), maxRunes)
	if a == b {
		return 1
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	dist := levenshtein.ComputeDistance(a, b)
	sim := 1 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

func editDistanceScore(n1, n2 string, maxRunes int) float64 {
	sim := CharacterSimilarity(n1, n2, maxRunes)
	longest := max(utf8.RuneCountInString(n1), utf8.RuneCountInString(n2))
	if longest < shortInputRunes {
		sim *= shortInputPenalty
	}
	return clampScore(100 * sim)
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

//Personal.AI order the ending
