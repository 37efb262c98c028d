package comparison

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSummary(t *testing.T) {
	r := newComparisonResult(87.54, 92, 90.4, "analysis")
	assert.Equal(t,
		"Syntax similarity: 87.5%\nLogical similarity: 92.0%\nOverall similarity: 90.4%\n",
		FormatSummary(r))
	assert.Empty(t, FormatSummary(nil))
}

func TestFormatReport(t *testing.T) {
	r := newComparisonResult(10, 20, 30, "They differ.")
	r.Differences = []string{"Only macro A uses If block"}

	out := FormatReport(r)
	assert.Contains(t, out, "Overall similarity: 30.0%")
	assert.Contains(t, out, "Differences:\n  - Only macro A uses If block\n")
	assert.NotContains(t, out, "Common elements:")
	assert.Contains(t, out, "Analysis:\nThey differ.\n")
}

func TestComparisonResult_JSONShape(t *testing.T) {
	raw, err := json.Marshal(newComparisonResult(150, -3, 50, ""))
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, 100.0, m["syntax_similarity"])
	assert.Equal(t, 0.0, m["logical_similarity"])
	assert.Equal(t, []interface{}{}, m["common_elements"])
	assert.Equal(t, []interface{}{}, m["differences"])
	assert.Contains(t, m, "detailed_analysis")
}

//Personal.AI order the ending
