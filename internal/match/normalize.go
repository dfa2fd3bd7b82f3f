package match

import (
	"strings"
	"unicode"
)

// NormalizeRef folds a reference for fuzzy matching: lower case, with word
// separators (_, -, spaces) removed. Structural separators ('.', ':', '#',
// '/') are kept so that "pkg.metric.spec" never collapses into a different
// shape.
func NormalizeRef(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
