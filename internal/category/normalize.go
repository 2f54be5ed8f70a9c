package category

import (
	"strings"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// Normalize maps free text, e.g. the category column of an imported file, to a
// catalog id.
//
// The text matches an id or label exactly (ignoring case) or, failing that,
// the first category with a label word that is contained in the text.
// Label words shorter than three characters ("&") are ignored.
// The second return value is false when nothing matched.
func Normalize(text string) (string, bool) {
	folded := fold.String(strings.TrimSpace(text))
	if folded == "" {
		return "", false
	}

	for _, c := range catalog {
		if folded == fold.String(c.ID) || folded == fold.String(c.Label) {
			return c.ID, true
		}
	}

	for _, c := range catalog {
		for _, word := range strings.Fields(fold.String(c.Label)) {
			if len(word) > 2 && strings.Contains(folded, word) {
				return c.ID, true
			}
		}
	}

	return "", false
}
