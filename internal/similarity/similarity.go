// Package similarity provides the text-overlap score used for near-duplicate
// grievance detection. It is a total, deterministic function over all string
// inputs and never fails.
package similarity

import (
	"strings"
	"unicode"
)

// Score returns a normalized overlap score in [0,1] between two strings.
//
// Both inputs are normalized by stripping all whitespace and lower-casing,
// then compared as multisets of length-2 character windows (bigrams):
//
//	score = 2 * |intersection| / (|bigrams(a)| + |bigrams(b)|)
//
// where each bigram instance in a consumes at most one equal instance in b.
// Two strings that normalize to the same value score 1; this short-circuit
// also covers single-character inputs, which have no bigrams at all.
func Score(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	total := len(bigramsA) + len(bigramsB)
	if total == 0 {
		// Both are single characters and unequal.
		return 0
	}

	remaining := make(map[string]int, len(bigramsB))
	for _, bg := range bigramsB {
		remaining[bg]++
	}

	matches := 0
	for _, bg := range bigramsA {
		if remaining[bg] > 0 {
			remaining[bg]--
			matches++
		}
	}

	return 2 * float64(matches) / float64(total)
}

func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}

func bigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}
