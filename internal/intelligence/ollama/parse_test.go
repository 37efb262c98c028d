package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MacroCompare/pkg/errors"
)

func TestParseScore(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"87", 87},
		{" 92.5\n", 92.5},
		{"Score: 75 out of 100", 75},
		{"150", 100},
		{"0", 0},
		{"The similarity is 40.25%.", 40.25},
	}
	for _, tc := range cases {
		got, err := ParseScore(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseScore_NoNumber(t *testing.T) {
	_, err := ParseScore("I cannot determine that.")
	assert.True(t, errors.IsCode(err, errors.ErrCodeScoreNotFound))

	_, err = ParseScore("")
	assert.True(t, errors.IsCode(err, errors.ErrCodeScoreNotFound))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-5))
	assert.Equal(t, 100.0, ClampScore(101))
	assert.Equal(t, 55.5, ClampScore(55.5))
}

//Personal.AI order the ending
