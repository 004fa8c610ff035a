package mos

import (
	"regexp"
	"strings"
)

// DefaultMaxQueries is the query count used when a caller does not specify one.
const DefaultMaxQueries = 5

// errorCodePattern matches structured error identifiers of the ORA-00600 /
// TNS-12541 family: an uppercase prefix, a dash, and a numeric code. The
// pattern is deliberately generic so product-specific prefixes (RMAN, KUP,
// PLS, EXP, LRM, ...) all match without a maintained allowlist.
var errorCodePattern = regexp.MustCompile(`\b[A-Z]{2,8}-\d{3,6}\b`)

// phraseMarkers flag log lines likely to describe a failure worth searching.
var phraseMarkers = []string{"error", "exception", "fatal", "failed", "failure"}

// maxPhraseLen caps a derived free-text query; overly long phrases make poor
// portal searches.
const maxPhraseLen = 80

// DeriveQueries extracts candidate search queries from a raw log snippet.
//
// Structured error codes are collected first in order of first appearance,
// then, only if no codes were found, distinctive failure-describing lines.
// The returned list is deduplicated, ordered by first occurrence, and capped
// at maxQueries. The derivation is deterministic: identical input yields an
// identical query list.
func DeriveQueries(logText string, maxQueries int) []string {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}

	seen := make(map[string]bool)
	queries := []string{}

	for _, code := range errorCodePattern.FindAllString(logText, -1) {
		if seen[code] {
			continue
		}
		seen[code] = true
		queries = append(queries, code)
		if len(queries) >= maxQueries {
			return queries
		}
	}
	if len(queries) > 0 {
		return queries
	}

	// No structured codes: fall back to failure-describing lines.
	for _, line := range strings.Split(logText, "\n") {
		phrase := collapseWhitespace(line)
		if phrase == "" || !containsMarker(phrase) {
			continue
		}
		if runes := []rune(phrase); len(runes) > maxPhraseLen {
			phrase = strings.TrimSpace(string(runes[:maxPhraseLen]))
		}
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		queries = append(queries, phrase)
		if len(queries) >= maxQueries {
			break
		}
	}
	return queries
}

func containsMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range phraseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
