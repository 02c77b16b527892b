// Package tokenize splits plain text into stemmed ASCII-alphanumeric
// tokens, the way pkg/autotemplate/tokenize.go in the teacher scans a log
// message into words: a single pass over runes with a builder accumulating
// the current span.
package tokenize

import (
	"sort"
	"strings"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// Result holds the output of tokenizing one piece of text: stemmed-token ->
// occurrence count, and stemmed-token -> sorted character offsets of each
// occurrence in the original input.
type Result struct {
	Counts map[string]int
	Starts map[string][]int
}

// Tokenize applies the token rules from the tokenizer contract: split on
// word/punctuation boundaries, reject empty/non-alphanumeric/non-ASCII
// spans, lowercase, stem, and accumulate counts and offsets. Deterministic
// for identical input.
func Tokenize(text string) Result {
	res := Result{Counts: make(map[string]int), Starts: make(map[string][]int)}
	if text == "" {
		return res
	}

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if !isWordRune(runes[i]) {
			i++
			continue
		}
		start := i
		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		span := runes[start:j]
		i = j

		if !isValidToken(span) {
			continue
		}

		lower := strings.ToLower(string(span))
		stemmed := porterstemmer.StemString(lower)
		if stemmed == "" {
			continue
		}

		res.Counts[stemmed]++
		res.Starts[stemmed] = append(res.Starts[stemmed], start)
	}

	for _, offsets := range res.Starts {
		sort.Ints(offsets)
	}

	return res
}

// isWordRune reports whether r can be part of a token span: letters and
// digits only, matching the "alphanumerics form words" splitting rule.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isValidToken rejects empty spans and any span containing a non-ASCII
// codepoint, per the tokenizer contract's rejection rules.
func isValidToken(span []rune) bool {
	if len(span) == 0 {
		return false
	}
	for _, r := range span {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Stem exposes the Porter stemmer as a pure string->string function,
// matching the shape the tokenizer contract (spec.md §4.B rule 4) and
// spec.md §9's "pure string->string function" description for the
// stemmer collaborator.
func Stem(token string) string {
	return porterstemmer.StemString(strings.ToLower(token))
}
