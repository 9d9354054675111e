package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hyperjump/kotoba/internal/models"
)

// SortResults orders results for query: exact matches first, then single
// tokens before phrases, then score descending, word ascending and category
// ascending. Rows that tie on every key keep their sense order.
func SortResults(results []models.WordResult, query string) {
	slices.SortStableFunc(results, func(a, b models.WordResult) int {
		return CompareResults(a, b, query)
	})
}

// CompareResults is the ordering used by SortResults.
func CompareResults(a, b models.WordResult, query string) int {
	if c := compareFirst(IsExact(a.Word, query), IsExact(b.Word, query)); c != 0 {
		return c
	}
	if c := compareFirst(IsSingleToken(a.Word), IsSingleToken(b.Word)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
		return c
	}
	if c := strings.Compare(a.Word, b.Word); c != 0 {
		return c
	}
	return strings.Compare(string(a.POS), string(b.POS))
}

// IsExact reports whether word equals query ignoring case.
func IsExact(word, query string) bool {
	return strings.EqualFold(word, query)
}

// IsSingleToken reports whether word has no space and no hyphen.
func IsSingleToken(word string) bool {
	return !strings.ContainsAny(word, " -")
}

// compareFirst sorts true before false.
func compareFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
