package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minHighlightTokenLen is the shortest query token worth highlighting.
// Shorter tokens are almost always stopwords or noise.
const minHighlightTokenLen = 3

// emphasis markers wrapped around matched terms.
const emphasisMarker = "**"

// highlightTerms wraps whole-word, case-insensitive occurrences of the query
// terms in emphasis markers. Tokens are regexp-escaped before the pattern is
// built, so query text containing pattern metacharacters cannot malform the
// match. Empty query or text is returned unchanged. Display convenience only;
// never a ranking signal.
func highlightTerms(text, query string) string {
	if text == "" || query == "" {
		return text
	}

	var escaped []string
	for _, token := range strings.Fields(query) {
		if utf8.RuneCountInString(token) < minHighlightTokenLen {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(token))
	}
	if len(escaped) == 0 {
		return text
	}

	re, err := regexp.Compile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, emphasisMarker+"$1"+emphasisMarker)
}
