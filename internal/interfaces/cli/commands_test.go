package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
	"github.com/turtacn/MacroCompare/internal/config"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
	"github.com/turtacn/MacroCompare/internal/testutil"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

const (
	macroSum  = "Sub SumCol()\n    For i = 1 To 10\n        t = t + Cells(i, 1).Value\n    Next i\nEnd Sub\n"
	macroCopy = "Sub CopyIt()\n    Range(\"A1:A10\").Copy Range(\"B1\")\nEnd Sub\n"
)

func writeMacro(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func sampleResult() *comparison.ComparisonResult {
	return &comparison.ComparisonResult{
		SyntaxSimilarity:  42.25,
		LogicalSimilarity: 30,
		OverallSimilarity: 33.675,
		DetailedAnalysis:  "Different purposes.",
		CommonElements:    []string{"Both define a Sub or Function"},
		Differences:       []string{"Only snippet 1 uses For loops"},
	}
}

func TestCompareCmd_TextOutput(t *testing.T) {
	f1 := writeMacro(t, "a.bas", macroSum)
	f2 := writeMacro(t, "b.bas", macroCopy)

	engine := new(MockEngine)
	engine.On("Compare", mock.Anything, macroSum, macroCopy).Return(sampleResult(), nil).Once()

	res := runCLI(t, engine, "", "compare", f1, f2)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Syntax similarity: 42.2%")
	assert.Contains(t, res.stdout, "Logical similarity: 30.0%")
	assert.Contains(t, res.stdout, "Overall similarity: 33.7%")
	assert.Contains(t, res.stdout, "Analysis:\nDifferent purposes.")
	assert.NotContains(t, res.stdout, "Common elements")
	engine.AssertExpectations(t)
}

func TestCompareCmd_VerboseIncludesElements(t *testing.T) {
	f1 := writeMacro(t, "a.bas", macroSum)
	f2 := writeMacro(t, "b.bas", macroCopy)

	engine := new(MockEngine)
	engine.On("Compare", mock.Anything, macroSum, macroCopy).Return(sampleResult(), nil)

	res := runCLI(t, engine, "", "--verbose", "compare", f1, f2)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Common elements:\n  - Both define a Sub or Function")
	assert.Contains(t, res.stdout, "Differences:\n  - Only snippet 1 uses For loops")
}

func TestCompareCmd_JSONOutputAndStdin(t *testing.T) {
	f2 := writeMacro(t, "b.bas", macroCopy)

	engine := new(MockEngine)
	engine.On("Compare", mock.Anything, macroSum, macroCopy).Return(sampleResult(), nil)

	res := runCLI(t, engine, macroSum, "-o", "json", "compare", "-", f2)
	require.NoError(t, res.err)

	var got comparison.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, 42.25, got.SyntaxSimilarity)
	assert.Equal(t, []string{"Only snippet 1 uses For loops"}, got.Differences)
}

func TestCompareCmd_BothStdinRejected(t *testing.T) {
	engine := new(MockEngine)
	res := runCLI(t, engine, macroSum, "compare", "-", "-")
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeBadRequest))
	engine.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompareCmd_MissingFile(t *testing.T) {
	f1 := writeMacro(t, "a.bas", macroSum)
	res := runCLI(t, new(MockEngine), "", "compare", f1, filepath.Join(t.TempDir(), "nope.bas"))
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeNotFound))
}

func TestCompareCmd_ArgCount(t *testing.T) {
	res := runCLI(t, new(MockEngine), "", "compare", "only-one.bas")
	assert.Error(t, res.err)
}

func TestCompareCmd_EngineUnavailable(t *testing.T) {
	f1 := writeMacro(t, "a.bas", macroSum)
	f2 := writeMacro(t, "b.bas", macroCopy)
	res := runCLI(t, nil, "", "compare", f1, f2)
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeServiceUnavailable))
}

func TestReadSource_TooLarge(t *testing.T) {
	cmd := NewCompareCmd()
	cmd.SetIn(strings.NewReader(strings.Repeat("x", 11)))
	_, err := readSource(cmd, "-", 10)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInputTooLarge))

	cmd.SetIn(strings.NewReader(strings.Repeat("x", 10)))
	got, err := readSource(cmd, "-", 10)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestExplainCmd(t *testing.T) {
	f := writeMacro(t, "a.bas", macroSum)

	engine := new(MockEngine)
	engine.On("Explain", mock.Anything, macroSum).Return(&comparison.ExplainResult{
		Explanation: "Adds up the first ten cells of column A.",
		Summary:     "purpose=sum; io=-; ops=for:1",
	}, nil)

	res := runCLI(t, engine, "", "explain", f)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Summary: purpose=sum")
	assert.Contains(t, res.stdout, "Adds up the first ten cells of column A.")
}

func TestExplainCmd_EngineError(t *testing.T) {
	engine := new(MockEngine)
	engine.On("Explain", mock.Anything, "  ").
		Return(nil, errors.New(errors.ErrCodeInvalidInput, "code must not be empty"))

	res := runCLI(t, engine, "  ", "explain", "-")
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeInvalidInput))
}

func TestFeaturesCmd(t *testing.T) {
	f := writeMacro(t, "a.bas", macroSum)

	report := &comparison.FeatureReport{
		Features: vba.Features{
			vba.FeatureLengthTokens: 20,
			vba.FeatureLoopsFor:     1,
		},
		Summary: vba.Summary{Purpose: "sum", IO: []string{}, Ops: map[string]int{}},
		Compact: "purpose=sum",
	}
	engine := new(MockEngine)
	engine.On("Features", mock.Anything, macroSum).Return(report, nil)

	res := runCLI(t, engine, "", "features", f)
	require.NoError(t, res.err)
	lines := strings.Split(res.stdout, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "FEATURE"))
	assert.True(t, strings.HasPrefix(lines[2], vba.FeatureLengthTokens), "canonical order puts length first")
	assert.True(t, strings.HasPrefix(lines[3], vba.FeatureLoopsFor))
	assert.Contains(t, res.stdout, "Summary: purpose=sum")

	res = runCLI(t, engine, "", "--output", "json", "features", f)
	require.NoError(t, res.err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Contains(t, got, "features")
	assert.Equal(t, "purpose=sum", got["compact"])
}

func TestDefaultEngineFactory_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/compare":
			_, _ = w.Write([]byte(`{"syntax_similarity":10,"logical_similarity":20,"overall_similarity":17,"detailed_analysis":"remote","common_elements":null,"differences":["d"]}`))
		case "/api/v1/features":
			_, _ = w.Write([]byte(`{"features":{"length_tokens":3},"summary":{"purpose":"copy","io":null,"ops":{"for":0}},"compact":"purpose=copy"}`))
		case "/api/v1/explain":
			_, _ = w.Write([]byte(`{"explanation":"copies","summary":"purpose=copy"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	logger := testutil.NewMockLogger()
	cliCtx := &CLIContext{Config: config.NewDefaultConfig(), Logger: logger, ServerAddr: srv.URL}
	engine, err := DefaultEngineFactory(cliCtx)
	require.NoError(t, err)
	require.IsType(t, &remoteEngine{}, engine)

	ctx := context.Background()
	r, err := engine.Compare(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 17.0, r.OverallSimilarity)
	assert.Equal(t, []string{}, r.CommonElements)
	assert.Equal(t, []string{"d"}, r.Differences)
	assert.True(t, logger.HasMessage("debug", "POST /api/v1/compare 200"), "SDK diagnostics reach the CLI logger")

	fr, err := engine.Features(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, vba.Purpose("copy"), fr.Summary.Purpose)
	assert.Equal(t, []string{}, fr.Summary.IO)
	assert.Equal(t, 3.0, fr.Features[vba.FeatureLengthTokens])

	er, err := engine.Explain(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "copies", er.Explanation)
}

func TestDefaultEngineFactory_Local(t *testing.T) {
	cliCtx := &CLIContext{Config: config.NewDefaultConfig(), Logger: logging.NewNopLogger()}
	engine, err := DefaultEngineFactory(cliCtx)
	require.NoError(t, err)
	require.IsType(t, &localEngine{}, engine)

	report, err := engine.Features(context.Background(), macroSum)
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.Features[vba.FeatureLoopsFor])
}

func TestDefaultEngineFactory_InvalidServer(t *testing.T) {
	_, err := DefaultEngineFactory(&CLIContext{Config: config.NewDefaultConfig(), Logger: logging.NewNopLogger(), ServerAddr: "ftp://x"})
	require.Error(t, err)
}

//Personal.AI order the ending
