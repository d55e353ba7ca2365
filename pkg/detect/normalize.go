package detect

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds text into the canonical form scorers and extractors
// operate on: NFKC (collapses full-width and compatibility characters
// scammers use to dodge keyword filters) plus lowercasing and whitespace
// trimming.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(text)))
}
