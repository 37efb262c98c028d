package comparison

import (
	"math"

	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
)

// Purpose sub-scores.
const (
	PurposeMatchScore    = 92.0
	PurposeUnknownScore  = 50.0
	PurposeMismatchScore = 20.0
)

const (
	// EmptyIOScore is the I/O sub-score when neither snippet references a
	// range, cell or sheet.
	EmptyIOScore = 70.0
	// ZeroOpsScore is the operator sub-score when either vector is all zero.
	ZeroOpsScore = 50.0
)

// Heuristic blend weights.
const (
	HeuristicPurposeWeight = 0.60
	HeuristicIOWeight      = 0.20
	HeuristicOpsWeight     = 0.20
)

// HeuristicScore carries the purpose/IO/operator sub-scores and their blend,
// all in [0,100].
type HeuristicScore struct {
	Purpose float64 `json:"purpose"`
	IO      float64 `json:"io"`
	Ops     float64 `json:"ops"`
	Total   float64 `json:"total"`
}

// HeuristicLogicalSimilarity compares two purpose summaries without the
// language model.  It is symmetric in its arguments.
func HeuristicLogicalSimilarity(s1, s2 vba.Summary) HeuristicScore {
	h := HeuristicScore{
		Purpose: PurposeScore(s1.Purpose, s2.Purpose),
		IO:      IOScore(s1, s2),
		Ops:     OpsScore(s1, s2),
	}
	h.Total = clampScore(h.Purpose*HeuristicPurposeWeight + h.IO*HeuristicIOWeight + h.Ops*HeuristicOpsWeight)
	return h
}

// PurposeScore is PurposeUnknownScore when either purpose is unknown,
// PurposeMatchScore when both agree and PurposeMismatchScore otherwise.
func PurposeScore(p1, p2 vba.Purpose) float64 {
	switch {
	case !p1.Known() || !p2.Known():
		return PurposeUnknownScore
	case p1 == p2:
		return PurposeMatchScore
	default:
		return PurposeMismatchScore
	}
}

// IOScore is the Jaccard similarity of the case-folded I/O reference sets,
// scaled to [0,100].
func IOScore(s1, s2 vba.Summary) float64 {
	if len(s1.IO) == 0 && len(s2.IO) == 0 {
		return EmptyIOScore
	}
	return clampScore(100 * vba.Jaccard(s1.IOSet(), s2.IOSet()))
}

// OpsScore is the cosine similarity of the operator count vectors, scaled to
// [0,100].
func OpsScore(s1, s2 vba.Summary) float64 {
	cos, ok := cosine(s1.OpVector(), s2.OpVector())
	if !ok {
		return ZeroOpsScore
	}
	return clampScore(100 * cos)
}

// cosine reports false when either vector has zero magnitude.
func cosine(a, b []float64) (float64, bool) {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

//Personal.AI order the ending
