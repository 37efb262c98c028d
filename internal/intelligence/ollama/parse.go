package ollama

import (
	"regexp"
	"strconv"

	"github.com/turtacn/MacroCompare/pkg/errors"
)

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

var scoreRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParseScore extracts the first decimal number from a model reply and clamps
// it to [MinScore, MaxScore].  A reply without a number is an
// ErrCodeScoreNotFound error.
func ParseScore(text string) (float64, error) {
	m := scoreRe.FindString(text)
	if m == "" {
		return 0, errors.New(errors.ErrCodeScoreNotFound, "no numeric score in backend reply").
			WithDetail(snippet([]byte(text)))
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeScoreNotFound, "unparseable score in backend reply")
	}
	return ClampScore(v), nil
}

// ClampScore limits v to [MinScore, MaxScore].
func ClampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

//Personal.AI order the ending
