package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Highlight wraps the characters of word that match query in open and close.
// Adjacent matched characters share one pair of markers. word is returned
// unchanged when query is empty or does not match.
func Highlight(word, query, open, close string) string {
	if query == "" {
		return word
	}
	matches := fuzzy.Find(query, []string{word})
	if len(matches) == 0 {
		return word
	}
	matched := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, i := range matches[0].MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	in := false
	for i, r := range word {
		if matched[i] && !in {
			b.WriteString(open)
			in = true
		} else if !matched[i] && in {
			b.WriteString(close)
			in = false
		}
		b.WriteRune(r)
	}
	if in {
		b.WriteString(close)
	}
	return b.String()
}
