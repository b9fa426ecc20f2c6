// Package departments reconciles free-form department names against the
// fixed department list. The AI parser and voice transcripts produce loose
// spellings; this is the single place they get mapped back to canonical names.
package departments

import (
	"strings"

	"grievgo/backend/internal/config"
)

// Reconcile maps a candidate department string onto the fixed department list.
//
// Matching order:
//  1. byte-identical match;
//  2. case-insensitive substring match in either direction (candidate
//     contains a known name, or a known name contains the candidate),
//     taking the first hit in declared department order;
//  3. no match: returns "" so the caller can force a manual pick instead of
//     rejecting the whole parse.
func Reconcile(candidate string) string {
	if candidate == "" {
		return ""
	}
	for _, d := range config.Departments {
		if candidate == d {
			return d
		}
	}

	lower := strings.ToLower(strings.TrimSpace(candidate))
	if lower == "" {
		return ""
	}
	for _, d := range config.Departments {
		known := strings.ToLower(d)
		if strings.Contains(lower, known) || strings.Contains(known, lower) {
			return d
		}
	}

	return ""
}
