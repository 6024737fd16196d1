// internal/campus/locations/normalize.go
package locations

import (
	"regexp"
	"strings"
)

var (
	quoteRunes      = regexp.MustCompile("[“”\"'`]")
	punctuationSet  = regexp.MustCompile(`[,\.\(\)\[\]\{\}]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes free-form user text for alias matching: trim,
// lowercase, fold ё to е, strip quotes, turn list punctuation into spaces
// and collapse whitespace runs. Catalog aliases and incoming text go
// through the same function so lookups compare like with like.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ё", "е")
	s = quoteRunes.ReplaceAllString(s, "")
	s = punctuationSet.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
