// internal/campus/locations/extract.go
package locations

import (
	"regexp"
	"strconv"
	"strings"
)

// Building-number phrases arrive in several shapes: a bare "4", a suffixed
// "4-р байр" with any of the common dash runes, or the phrase buried inside
// a longer sentence (including the frequent байар typo). Patterns are tried
// strictest first against the raw trimmed text, not the normalized form,
// because normalization eats the punctuation the suffix patterns rely on.
var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(\d{1,2})\s*$`),
	regexp.MustCompile(`(?i)^\s*(\d{1,2})\s*[-‐-–—]?\s*р?\s*байр\s*$`),
	regexp.MustCompile(`(?i)(\d{1,2})\s*[-‐-–—]?\s*р?\s*бай[аa]р`),
}

// ExtractNumber pulls a one- or two-digit building number out of text.
func ExtractNumber(text string) (int, bool) {
	t := strings.TrimSpace(text)
	for _, pattern := range numberPatterns {
		m := pattern.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// MatchesNumberPattern reports whether the text reads as a building-number
// phrase at all. The resolver uses it to decide that a bare number is worth
// a disambiguation question rather than an alias lookup.
func MatchesNumberPattern(text string) bool {
	_, ok := ExtractNumber(text)
	return ok
}
