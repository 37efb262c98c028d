// Package vba implements the shallow VBA analysis used by the comparison
// engine: normalisation, tokenisation, n-gram and structural features, and
// the purpose classifier.  Everything here is pure and safe for concurrent
// use; regular expressions are compiled once at package init.
package vba

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Placeholder tokens.
const (
	StrPlaceholder = "__STR__"
	NumPlaceholder = "__NUM__"
	IDPlaceholder  = "__ID__"
)

// punctuation lists the single-character tokens emitted verbatim.
const punctuation = "(),.:=<>+-*/"

// keywords is the fixed VBA keyword table, keyed and valued upper-case.
var keywords = func() map[string]string {
	words := []string{
		"Option", "Explicit", "Public", "Private", "Dim", "ReDim", "Static", "Const", "As", "ByRef", "ByVal",
		"Sub", "Function", "End", "If", "Then", "Else", "ElseIf", "Select", "Case", "For", "To", "Step",
		"Next", "Do", "While", "Wend", "Loop", "Until", "Each", "In", "With", "Exit", "GoTo", "On", "Error",
		"Resume", "Call", "Set", "New", "Not", "And", "Or", "Xor", "Mod", "Is", "Nothing", "True", "False",
		"Len", "Mid", "Left", "Right", "InStr", "Replace", "Split", "Join", "UCase", "LCase", "Trim",
		"CInt", "CLng", "CDbl", "CStr",
	}
	m := make(map[string]string, len(words))
	for _, w := range words {
		up := strings.ToUpper(w)
		m[up] = up
	}
	return m
}()

// IsKeyword reports whether word is in the keyword table, ignoring case.
func IsKeyword(word string) bool {
	_, ok := keywords[strings.ToUpper(word)]
	return ok
}

var (
	continuationRe = regexp.MustCompile(`[ \t]+_[ \t]*\n`)
	stringLitRe    = regexp.MustCompile(`"(?:""|[^"])*"`)
	numberLitRe    = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Normalize returns the canonical form of raw VBA code.  The steps run in a
// fixed order: unify line endings, join " _" continuations, strip comments,
// replace string and number literals with placeholders, then collapse
// whitespace.  Blank input yields "".
func Normalize(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}

	text := JoinContinuations(norm.NFC.String(code))
	text = stripComments(text)
	text = stringLitRe.ReplaceAllString(text, " "+StrPlaceholder+" ")
	text = numberLitRe.ReplaceAllString(text, " "+NumPlaceholder+" ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// JoinContinuations unifies line endings and folds " _" continuations into
// one logical line.
func JoinContinuations(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")
	return continuationRe.ReplaceAllString(code, " ")
}

// Fold lower-cases normalized code for case-insensitive comparison.
func Fold(normalized string) string {
	return strings.ToLower(normalized)
}

// stripComments removes ' comments and Rem statements from every line.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

// stripLineComment cuts line at the first comment marker that is outside a
// string literal.  Rem only counts at the start of a statement.
func stripLineComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inString = !inString
		case inString:
		case c == '\'':
			return line[:i]
		case (c == 'R' || c == 'r') && isRemAt(line, i):
			return line[:i]
		}
	}
	return line
}

func isRemAt(line string, i int) bool {
	if i+3 > len(line) || !strings.EqualFold(line[i:i+3], "rem") {
		return false
	}
	if i+3 < len(line) && isIdentPart(line[i+3]) {
		return false
	}
	before := strings.TrimRight(line[:i], " \t")
	return before == "" || strings.HasSuffix(before, ":")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Tokenize scans normalized code left to right.  Punctuation wins over
// placeholders, placeholders over identifiers; keywords are emitted
// upper-cased and every other identifier becomes __ID__.  Anything else is
// emitted as a single rune.
func Tokenize(normalized string) []string {
	tokens := make([]string, 0, len(normalized)/3)
	s := normalized
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		if strings.ContainsRune(punctuation, r) {
			tokens = append(tokens, string(r))
			i += size
			continue
		}
		if strings.HasPrefix(s[i:], StrPlaceholder) {
			tokens = append(tokens, StrPlaceholder)
			i += len(StrPlaceholder)
			continue
		}
		if strings.HasPrefix(s[i:], NumPlaceholder) {
			tokens = append(tokens, NumPlaceholder)
			i += len(NumPlaceholder)
			continue
		}
		if isIdentStart(s[i]) {
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			if kw, ok := keywords[strings.ToUpper(s[i:j])]; ok {
				tokens = append(tokens, kw)
			} else {
				tokens = append(tokens, IDPlaceholder)
			}
			i = j
			continue
		}
		tokens = append(tokens, string(r))
		i += size
	}
	return tokens
}

// Tokens is Tokenize(Normalize(raw)).
func Tokens(raw string) []string {
	return Tokenize(Normalize(raw))
}

// Set is a string set.
type Set map[string]struct{}

// NewSet builds a Set from items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// NGrams slides a window of n tokens over the stream and collects the
// space-joined windows.  Streams shorter than n yield an empty set.
func NGrams(tokens []string, n int) Set {
	set := make(Set)
	if n <= 0 || len(tokens) < n {
		return set
	}
	for i := 0; i+n <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return set
}

//Personal.AI order the ending
