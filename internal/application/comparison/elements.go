package comparison

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
)

// MaxDiffLinesPerSide caps the line-level entries reported for each snippet.
const MaxDiffLinesPerSide = 5

type construct struct {
	feature string
	label   string
}

// constructs are reported in this order.
var constructs = []construct{
	{vba.FeatureHasSubOrFunction, "Sub/Function declaration"},
	{vba.FeatureLoopsFor, "For...Next loop"},
	{vba.FeatureLoopsDo, "Do...Loop"},
	{vba.FeatureConditionIf, "If block"},
	{vba.FeatureSelectCase, "Select Case"},
	{vba.FeatureArrayUsage, "array usage"},
	{vba.FeatureWorksheetOps, "worksheet operations"},
}

// snippetProfile bundles what the element builders read from one snippet.
type snippetProfile struct {
	raw      string
	summary  vba.Summary
	features vba.Features
}

func newSnippetProfile(raw string) snippetProfile {
	return snippetProfile{
		raw:      raw,
		summary:  vba.ExtractSummary(raw),
		features: vba.ExtractFeatures(raw),
	}
}

// CommonElements lists what two snippets share: purpose, I/O references and
// structural constructs.  The result is never nil.
func CommonElements(raw1, raw2 string) []string {
	return commonElements(newSnippetProfile(raw1), newSnippetProfile(raw2))
}

// Differences lists purpose and I/O mismatches, constructs present on one
// side only and a capped line-level diff.  The result is never nil.
func Differences(raw1, raw2 string) []string {
	return differences(newSnippetProfile(raw1), newSnippetProfile(raw2))
}

func commonElements(a, b snippetProfile) []string {
	out := make([]string, 0, 8)

	if a.summary.Purpose == b.summary.Purpose && a.summary.Purpose.Known() {
		out = append(out, "Shared purpose: "+a.summary.Purpose.Description())
	}

	ioB := b.summary.IOSet()
	for _, ref := range a.summary.IO {
		if ioB.Has(strings.ToLower(ref)) {
			out = append(out, "Shared reference: "+ref)
		}
	}

	for _, c := range constructs {
		if a.features[c.feature] > 0 && b.features[c.feature] > 0 {
			out = append(out, "Both use "+c.label)
		}
	}
	return out
}

func differences(a, b snippetProfile) []string {
	out := make([]string, 0, 8)

	if a.summary.Purpose != b.summary.Purpose {
		out = append(out, fmt.Sprintf("Purpose differs: %s vs %s",
			a.summary.Purpose.Description(), b.summary.Purpose.Description()))
	}

	for _, c := range constructs {
		inA, inB := a.features[c.feature] > 0, b.features[c.feature] > 0
		switch {
		case inA && !inB:
			out = append(out, "Only macro A uses "+c.label)
		case inB && !inA:
			out = append(out, "Only macro B uses "+c.label)
		}
	}

	out = append(out, uniqueReferences("A", a.summary, b.summary)...)
	out = append(out, uniqueReferences("B", b.summary, a.summary)...)
	out = append(out, lineDiff(a.raw, b.raw)...)
	return out
}

func uniqueReferences(side string, own, other vba.Summary) []string {
	var out []string
	otherSet := other.IOSet()
	for _, ref := range own.IO {
		if !otherSet.Has(strings.ToLower(ref)) {
			out = append(out, fmt.Sprintf("Only macro %s references %s", side, ref))
		}
	}
	return out
}

// lineDiff diffs the per-line normalized code in line mode.
func lineDiff(raw1, raw2 string) []string {
	t1, t2 := normalizedLines(raw1), normalizedLines(raw2)
	if t1 == t2 {
		return nil
	}

	dmp := diffmatchpatch.New()
	c1, c2, lines := dmp.DiffLinesToChars(t1, t2)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lines)

	var onlyA, onlyB []string
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			onlyA = append(onlyA, splitLines(d.Text)...)
		case diffmatchpatch.DiffInsert:
			onlyB = append(onlyB, splitLines(d.Text)...)
		}
	}

	out := make([]string, 0, 2*MaxDiffLinesPerSide+2)
	out = appendCapped(out, "A", onlyA)
	out = appendCapped(out, "B", onlyB)
	return out
}

func appendCapped(out []string, side string, lines []string) []string {
	for i, l := range lines {
		if i == MaxDiffLinesPerSide {
			out = append(out, fmt.Sprintf("... %d more lines only in macro %s", len(lines)-i, side))
			break
		}
		out = append(out, fmt.Sprintf("Only in macro %s: %s", side, l))
	}
	return out
}

// normalizedLines normalizes each logical line on its own and drops lines
// that become empty.  Every kept line is newline-terminated.
func normalizedLines(raw string) string {
	var sb strings.Builder
	for _, line := range strings.Split(vba.JoinContinuations(raw), "\n") {
		if n := vba.Normalize(line); n != "" {
			sb.WriteString(n)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

//Personal.AI order the ending
