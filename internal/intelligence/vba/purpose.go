package vba

import (
	"fmt"
	"regexp"
	"strings"
)

// Purpose is the coarse operation category of a snippet.
type Purpose string

const (
	PurposeSum         Purpose = "sum"
	PurposeAverage     Purpose = "average"
	PurposeCopy        Purpose = "copy"
	PurposeFilter      Purpose = "filter"
	PurposeSort        Purpose = "sort"
	PurposeFindReplace Purpose = "findReplace"
	PurposeUnknown     Purpose = "unknown"
)

var purposeDescriptions = map[Purpose]string{
	PurposeSum:         "sum values",
	PurposeAverage:     "average values",
	PurposeCopy:        "copy/paste range",
	PurposeFilter:      "filter data",
	PurposeSort:        "sort data",
	PurposeFindReplace: "find/replace",
	PurposeUnknown:     "unknown",
}

// Description returns the phrase used in prompts ("sum values").
func (p Purpose) Description() string {
	if d, ok := purposeDescriptions[p]; ok {
		return d
	}
	return string(PurposeUnknown)
}

// Known reports whether p is a classified purpose.
func (p Purpose) Known() bool {
	_, ok := purposeDescriptions[p]
	return ok && p != PurposeUnknown
}

// ---------------------------------------------------------------------------
// Signature table
// ---------------------------------------------------------------------------

var (
	sumKeywordRe    = regexp.MustCompile(`(?i)\b(sum|total|toplam)\b|WorksheetFunction\.Sum`)
	selfIncrementRe = regexp.MustCompile(`(?i)\b([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([A-Za-z_][A-Za-z0-9_]*)\s*\+`)
	averageRe       = regexp.MustCompile(`(?i)Average`)
	copyRe          = regexp.MustCompile(`(?i)\.Copy\b|\.Paste(Special)?\b`)
	filterRe        = regexp.MustCompile(`(?i)AutoFilter\b|AdvancedFilter\b`)
	sortRe          = regexp.MustCompile(`(?i)Sort\b|SortFields\b`)
	findReplaceRe   = regexp.MustCompile(`(?i)\.Find\(|Replace\(`)
	ioReferenceRe   = regexp.MustCompile(`(?i)Range\("[^"]+"\)|Cells\([^)]*\)|Worksheets?\([^)]*\)`)
	whileLoopRe     = regexp.MustCompile(`(?i)\bDo\s+While\b[\s\S]*?\bLoop\b|\bDo\b[\s\S]*?\bLoop\s+While\b`)
	assignmentRe    = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\s*=\s*`)
	addOperatorRe   = regexp.MustCompile(`\+`)
	mulOperatorRe   = regexp.MustCompile(`\*`)
)

// matchSum accepts the sum keywords or a self-increment "x = x + ...".
// RE2 has no backreferences, so identifier equality is checked here.
func matchSum(code string) bool {
	if sumKeywordRe.MatchString(code) {
		return true
	}
	for _, m := range selfIncrementRe.FindAllStringSubmatch(code, -1) {
		if strings.EqualFold(m[1], m[2]) {
			return true
		}
	}
	return false
}

type signature struct {
	purpose Purpose
	match   func(string) bool
}

// purposeTable is evaluated in order; the first match wins.
var purposeTable = []signature{
	{PurposeSum, matchSum},
	{PurposeAverage, averageRe.MatchString},
	{PurposeCopy, copyRe.MatchString},
	{PurposeFilter, filterRe.MatchString},
	{PurposeSort, sortRe.MatchString},
	{PurposeFindReplace, findReplaceRe.MatchString},
}

// ClassifyPurpose runs the signature table over normalized code.
func ClassifyPurpose(normalized string) Purpose {
	for _, sig := range purposeTable {
		if sig.match(normalized) {
			return sig.purpose
		}
	}
	return PurposeUnknown
}

// ---------------------------------------------------------------------------
// Summary
// ---------------------------------------------------------------------------

// Operator count keys, in rendering order.
const (
	OpLoopFor     = "loop_for"
	OpLoopWhile   = "loop_while"
	OpIfCount     = "if_count"
	OpAssignCount = "assign_count"
	OpAddOps      = "add_ops"
	OpMulOps      = "mul_ops"
)

// OpKeys lists the operator vector dimensions.
var OpKeys = []string{OpLoopFor, OpLoopWhile, OpIfCount, OpAssignCount, OpAddOps, OpMulOps}

// MaxIOReferences caps Summary.IO.
const MaxIOReferences = 10

// Summary is the per-snippet purpose digest.
type Summary struct {
	Purpose Purpose        `json:"purpose"`
	IO      []string       `json:"io"`
	Ops     map[string]int `json:"ops"`
}

// ExtractSummary classifies the snippet and extracts its I/O references and
// operator counts.  I/O references are read from the raw text so literals
// survive; everything else uses the normalized form.
func ExtractSummary(raw string) Summary {
	code := Normalize(raw)
	return Summary{
		Purpose: ClassifyPurpose(code),
		IO:      extractIO(raw),
		Ops: map[string]int{
			OpLoopFor:     countMatches(forLoopRe, code),
			OpLoopWhile:   countMatches(whileLoopRe, code),
			OpIfCount:     countMatches(ifBlockRe, code),
			OpAssignCount: countMatches(assignmentRe, code),
			OpAddOps:      countMatches(addOperatorRe, code),
			OpMulOps:      countMatches(mulOperatorRe, code),
		},
	}
}

func extractIO(raw string) []string {
	out := make([]string, 0, 4)
	seen := make(map[string]struct{})
	for _, m := range ioReferenceRe.FindAllString(raw, -1) {
		key := strings.ToLower(m)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
		if len(out) == MaxIOReferences {
			break
		}
	}
	return out
}

// OpVector returns the operator counts in OpKeys order.
func (s Summary) OpVector() []float64 {
	v := make([]float64, len(OpKeys))
	for i, k := range OpKeys {
		v[i] = float64(s.Ops[k])
	}
	return v
}

// IOSet returns the case-folded I/O references as a set.
func (s Summary) IOSet() Set {
	set := make(Set, len(s.IO))
	for _, ref := range s.IO {
		set[strings.ToLower(ref)] = struct{}{}
	}
	return set
}

// Compact renders "purpose=<p> | io=<a;b or -> | ops=<k=v,...>" for prompts.
func (s Summary) Compact() string {
	io := "-"
	if len(s.IO) > 0 {
		io = strings.Join(s.IO, ";")
	}
	ops := make([]string, len(OpKeys))
	for i, k := range OpKeys {
		ops[i] = fmt.Sprintf("%s=%d", k, s.Ops[k])
	}
	return fmt.Sprintf("purpose=%s | io=%s | ops=%s", s.Purpose.Description(), io, strings.Join(ops, ","))
}

//Personal.AI order the ending
