package parse

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// normalize folds full-width forms to half-width, case-folds and collapses whitespace.
// "Ｃｈｉｎａ  ＧＤＰ" becomes "china gdp".
func normalize(text string) string {
	folded := width.Fold.String(text)
	// Casers carry state and are not safe to share between goroutines
	folded = cases.Fold().String(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// containsAny reports whether text contains any of the terms
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
