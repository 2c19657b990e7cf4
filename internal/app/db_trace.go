package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Matches placeholder lists of four or more, e.g. game id lists built for
	// ListByIDs and ListPicksByGames.
	placeholderListRegex = regexp.MustCompile(`\(\s*\$(\d+)(?:\s*,\s*\$\d+){2,}\s*,\s*\$(\d+)\s*\)`)
)

// formatDBQueryForTrace collapses whitespace and long placeholder lists so
// span names stay readable and bounded.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderListRegex.ReplaceAllString(normalized, "($$$1 .. $$$2)")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
