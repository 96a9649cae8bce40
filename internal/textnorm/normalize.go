// Package textnorm turns raw posting and resume text into a canonical lowercase token stream.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// minTokenLength drops single-character runs such as stray initials or bullets.
const minTokenLength = 2

// Normalize replaces every non-alphanumeric character with a space, collapses
// whitespace, trims and lowercases. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = nonAlnum.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokens normalizes s and returns its terms in order, skipping terms shorter
// than two characters.
func Tokens(s string) []string {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}

	fields := strings.Split(normalized, " ")
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Terms is Tokens with English stop words removed.
func Terms(s string) []string {
	tokens := Tokens(s)
	terms := tokens[:0]
	for _, t := range tokens {
		if !IsStopWord(t) {
			terms = append(terms, t)
		}
	}
	return terms
}
