package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeName cleans a vehicle or city display name.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeLabel lowercases a label-like field (brand, model) for
// case-insensitive comparison.
func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}
