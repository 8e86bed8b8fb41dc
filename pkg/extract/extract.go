// Package extract provides heuristic dependency extraction from metric
// calculations. Extraction is lexical pattern matching, not SQL parsing;
// the Extractor interface keeps the strategy swappable.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Extractor extracts metric and table references from calculation text.
type Extractor interface {
	// ExtractReferences returns the deduplicated, sorted set of
	// qualified references (database.table tokens) found in text.
	ExtractReferences(text string) []string
}

// PatternExtractor finds qualified references via lexical pattern matching.
type PatternExtractor struct {
	pattern *regexp.Regexp
}

// NewPatternExtractor creates the default lexical extractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{
		pattern: regexp.MustCompile(`\b([a-z_]+\.[a-z_]+)\b`),
	}
}

// ExtractReferences returns all database.table tokens in text, lowercased,
// deduplicated and sorted.
func (e *PatternExtractor) ExtractReferences(text string) []string {
	matches := e.pattern.FindAllString(strings.ToLower(text), -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		refs = append(refs, m)
	}

	sort.Strings(refs)

	return refs
}

// LooksLikeSQL reports whether a calculation appears to be SQL. Used only
// to emit an advisory finding; a non-SQL calculation never blocks storage
// or scoring.
func LooksLikeSQL(calculation string) bool {
	return strings.Contains(strings.ToUpper(calculation), "SELECT")
}

// Ensure PatternExtractor implements Extractor
var _ Extractor = (*PatternExtractor)(nil)
