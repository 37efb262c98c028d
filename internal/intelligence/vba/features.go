package vba

import "regexp"

// Feature names returned by ExtractFeatures.
const (
	FeatureLengthTokens     = "length_tokens"
	FeatureUniqUnigrams     = "uniq_unigrams"
	FeatureUniqBigrams      = "uniq_bigrams"
	FeatureUniqTrigrams     = "uniq_trigrams"
	FeatureHasSubOrFunction = "has_sub_or_function"
	FeatureLoopsFor         = "loops_for_count"
	FeatureLoopsDo          = "loops_do_count"
	FeatureConditionIf      = "condition_if_count"
	FeatureSelectCase       = "select_case_count"
	FeatureArrayUsage       = "array_usage"
	FeatureWorksheetOps     = "worksheet_ops"
)

// FeatureNames lists every feature in presentation order.
var FeatureNames = []string{
	FeatureLengthTokens,
	FeatureUniqUnigrams,
	FeatureUniqBigrams,
	FeatureUniqTrigrams,
	FeatureHasSubOrFunction,
	FeatureLoopsFor,
	FeatureLoopsDo,
	FeatureConditionIf,
	FeatureSelectCase,
	FeatureArrayUsage,
	FeatureWorksheetOps,
}

// Features maps feature name to value.
type Features map[string]float64

var (
	subOrFunctionRe = regexp.MustCompile(`(?i)\b(Sub|Function)\s+[A-Za-z_][A-Za-z0-9_]*`)
	forLoopRe       = regexp.MustCompile(`(?i)\bFor\b[\s\S]*?\bNext\b`)
	doLoopRe        = regexp.MustCompile(`(?i)\bDo\b[\s\S]*?\bLoop\b`)
	ifBlockRe       = regexp.MustCompile(`(?i)\bIf\b[\s\S]*?\bEnd\s*If\b`)
	selectCaseRe    = regexp.MustCompile(`(?i)\bSelect\s+Case\b[\s\S]*?\bEnd\s*Select\b`)
	arrayRe         = regexp.MustCompile(`(?i)\bReDim\b|\(\s*__NUM__\s*(?:,\s*__NUM__\s*)*\)`)
	worksheetRe     = regexp.MustCompile(`(?i)Worksheets?\(|Range\(|Cells\(|Columns?\(|Rows\(`)
)

func countMatches(re *regexp.Regexp, s string) int {
	return len(re.FindAllStringIndex(s, -1))
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ExtractFeatures derives n-gram cardinalities and structural counts from
// raw code.  The structural counts are non-overlapping lazy matches of
// balanced keyword pairs over the normalized form.
func ExtractFeatures(raw string) Features {
	code := Normalize(raw)
	tokens := Tokenize(code)

	return Features{
		FeatureLengthTokens:     float64(len(tokens)),
		FeatureUniqUnigrams:     float64(len(NewSet(tokens...))),
		FeatureUniqBigrams:      float64(len(NGrams(tokens, 2))),
		FeatureUniqTrigrams:     float64(len(NGrams(tokens, 3))),
		FeatureHasSubOrFunction: boolFeature(subOrFunctionRe.MatchString(code)),
		FeatureLoopsFor:         float64(countMatches(forLoopRe, code)),
		FeatureLoopsDo:          float64(countMatches(doLoopRe, code)),
		FeatureConditionIf:      float64(countMatches(ifBlockRe, code)),
		FeatureSelectCase:       float64(countMatches(selectCaseRe, code)),
		FeatureArrayUsage:       boolFeature(arrayRe.MatchString(code)),
		FeatureWorksheetOps:     float64(countMatches(worksheetRe, code)),
	}
}

// Jaccard returns |A∩B| / |A∪B|.  Two empty sets are identical (1.0).
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if large.Has(k) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// NgramSimilarities returns the unigram, bigram and trigram Jaccard
// similarities of two raw snippets.
func NgramSimilarities(raw1, raw2 string) (uni, bi, tri float64) {
	return NgramSimilaritiesOfTokens(Tokens(raw1), Tokens(raw2))
}

// NgramSimilaritiesOfTokens is NgramSimilarities over pre-computed streams.
func NgramSimilaritiesOfTokens(t1, t2 []string) (uni, bi, tri float64) {
	uni = Jaccard(NewSet(t1...), NewSet(t2...))
	bi = Jaccard(NGrams(t1, 2), NGrams(t2, 2))
	tri = Jaccard(NGrams(t1, 3), NGrams(t2, 3))
	return uni, bi, tri
}

//Personal.AI order the ending
