package comparison

import (
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/turtacn/MacroCompare/internal/intelligence/ollama"
	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// DefaultPromptSnippetChars is how much of each snippet a prompt embeds.
const DefaultPromptSnippetChars = 1000

// Request parameters per backend operation.
const (
	scoreTemperature = 0.0
	scoreNumPredict  = 16
	scoreKeepAlive   = "3m"

	analysisTemperature = 0.2
	analysisNumPredict  = 128
	analysisKeepAlive   = "2m"

	explainTemperature = 0.2
	explainNumPredict  = 160
	explainKeepAlive   = "2m"

	warmupPrompt     = "test"
	warmupNumPredict = 1
	warmupNumCtx     = 512
	warmupKeepAlive  = "5m"

	defaultTopP = 1.0
)

var scoreTemplate = template.Must(template.New("score").Parse(
	`You are an expert evaluating VBA macro logical similarity.
Score based on PURPOSE and RESULT equivalence. Ignore syntax and naming.
Return only a number between 0 and 100.

Examples:
Input: MacroA purpose=sum values using For loop; MacroB purpose=sum values using While loop
Output: 92

Input: MacroA purpose=copy/paste range; MacroB purpose=sort data
Output: 25

Heuristics:
A: {{.SummaryA}}
B: {{.SummaryB}}

Macro A:
{{.CodeA}}

Macro B:
{{.CodeB}}

Score:`))

var analysisTemplate = template.Must(template.New("analysis").Parse(
	`Compare these two VBA macros and provide a detailed analysis:

1. Purpose: What does each macro do?
2. Similarities: What do they have in common?
3. Differences: How do they differ?
4. Efficiency: Which approach is better?

Macro 1:
{{.CodeA}}

Macro 2:
{{.CodeB}}

Analysis:`))

var explainTemplate = template.Must(template.New("explain").Parse(
	`Explain what this VBA macro does:

1. Purpose: What is the macro for?
2. Inputs and outputs: Which ranges, cells or sheets does it read and write?
3. Structure: Which loops, conditions and worksheet operations does it use?

Heuristics:
{{.SummaryA}}

Macro:
{{.CodeA}}

Explanation:`))

type promptData struct {
	SummaryA, SummaryB string
	CodeA, CodeB       string
}

// PromptBuilder renders the backend prompts and requests.
type PromptBuilder struct {
	snippetChars int
}

// NewPromptBuilder returns a builder embedding at most snippetChars
// characters of each snippet.  A non-positive value uses
// DefaultPromptSnippetChars.
func NewPromptBuilder(snippetChars int) *PromptBuilder {
	if snippetChars <= 0 {
		snippetChars = DefaultPromptSnippetChars
	}
	return &PromptBuilder{snippetChars: snippetChars}
}

// ScorePrompt asks for a bare 0-100 logical similarity number.
func (p *PromptBuilder) ScorePrompt(raw1, raw2 string, s1, s2 vba.Summary) (string, error) {
	return render(scoreTemplate, promptData{
		SummaryA: s1.Compact(),
		SummaryB: s2.Compact(),
		CodeA:    TrimForPrompt(raw1, p.snippetChars),
		CodeB:    TrimForPrompt(raw2, p.snippetChars),
	})
}

// AnalysisPrompt asks for a free-text comparison.
func (p *PromptBuilder) AnalysisPrompt(raw1, raw2 string) (string, error) {
	return render(analysisTemplate, promptData{
		CodeA: TrimForPrompt(raw1, p.snippetChars),
		CodeB: TrimForPrompt(raw2, p.snippetChars),
	})
}

// ExplainPrompt asks for a description of a single snippet.
func (p *PromptBuilder) ExplainPrompt(raw string, s vba.Summary) (string, error) {
	return render(explainTemplate, promptData{
		SummaryA: s.Compact(),
		CodeA:    TrimForPrompt(raw, p.snippetChars),
	})
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to render "+t.Name()+" prompt")
	}
	return sb.String(), nil
}

// TrimForPrompt converts CRLF to LF and cuts s to limit runes, appending
// "..." when anything was dropped.
func TrimForPrompt(s string, limit int) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// Model, NumThread and NumCtx left zero are filled in by the ollama client.

func scoreRequest(prompt string) *ollama.GenerateRequest {
	return &ollama.GenerateRequest{
		Prompt:      prompt,
		Temperature: scoreTemperature,
		TopP:        defaultTopP,
		Options:     ollama.Options{NumPredict: scoreNumPredict, KeepAlive: scoreKeepAlive},
	}
}

func analysisRequest(prompt string) *ollama.GenerateRequest {
	return &ollama.GenerateRequest{
		Prompt:      prompt,
		Temperature: analysisTemperature,
		TopP:        defaultTopP,
		Options:     ollama.Options{NumPredict: analysisNumPredict, KeepAlive: analysisKeepAlive},
	}
}

func explainRequest(prompt string) *ollama.GenerateRequest {
	return &ollama.GenerateRequest{
		Prompt:      prompt,
		Temperature: explainTemperature,
		TopP:        defaultTopP,
		Options:     ollama.Options{NumPredict: explainNumPredict, KeepAlive: explainKeepAlive},
	}
}

func warmupRequest() *ollama.GenerateRequest {
	return &ollama.GenerateRequest{
		Prompt:      warmupPrompt,
		Temperature: 0,
		TopP:        defaultTopP,
		Options: ollama.Options{
			NumPredict: warmupNumPredict,
			NumCtx:     warmupNumCtx,
			KeepAlive:  warmupKeepAlive,
		},
	}
}

//Personal.AI order the ending
