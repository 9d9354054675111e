// Package spell suggests dictionary words close to a misspelled term.
package spell

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Dictionary supplies the known words. *search.Engine satisfies it.
type Dictionary interface {
	Words() []string
}

// WordList adapts a plain slice to Dictionary.
type WordList []string

// Words returns the list itself.
func (w WordList) Words() []string { return w }

// Suggestion is a dictionary word close to the checked term.
type Suggestion struct {
	Term     string `json:"term"`
	Distance int    `json:"distance"`
	// Prefix is the number of leading characters shared with the checked term.
	Prefix int `json:"prefix"`
}

// SpellChecker finds dictionary words within a bounded edit distance.
type SpellChecker struct {
	dictionary     Dictionary
	maxDistance    int
	maxSuggestions int

	once    sync.Once
	lowered []string
	known   map[string]struct{}
}

// SpellCheckerOption is a functional option for configuring SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions returned.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a SpellChecker over dict.
func NewSpellChecker(dict Dictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		maxSuggestions: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SpellChecker) load() {
	s.once.Do(func() {
		words := s.dictionary.Words()
		s.lowered = make([]string, len(words))
		s.known = make(map[string]struct{}, len(words))
		for i, w := range words {
			l := strings.ToLower(w)
			s.lowered[i] = l
			s.known[l] = struct{}{}
		}
	})
}

// Known reports whether term is a dictionary word, ignoring case.
func (s *SpellChecker) Known(term string) bool {
	s.load()
	_, ok := s.known[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// Suggest returns dictionary words within the maximum edit distance of
// term, closest first. Ties go to the longer shared prefix, then to the
// word in ascending order. Exact matches are not suggested.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	s.load()

	words := s.dictionary.Words()
	termLen := utf8.RuneCountInString(term)
	var out []Suggestion
	for i, lower := range s.lowered {
		if lower == term {
			continue
		}
		// Length difference is a lower bound on the distance.
		if abs(utf8.RuneCountInString(lower)-termLen) > s.maxDistance {
			continue
		}
		d := edlib.LevenshteinDistance(term, lower)
		if d > s.maxDistance {
			continue
		}
		out = append(out, Suggestion{
			Term:     words[i],
			Distance: d,
			Prefix:   sharedPrefix(term, lower),
		})
	}

	slices.SortFunc(out, func(a, b Suggestion) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Prefix, a.Prefix); c != 0 {
			return c
		}
		return strings.Compare(a.Term, b.Term)
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// Terms returns only the words of Suggest(term).
func (s *SpellChecker) Terms(term string) []string {
	suggestions := s.Suggest(term)
	terms := make([]string, len(suggestions))
	for i, sg := range suggestions {
		terms[i] = sg.Term
	}
	return terms
}

func sharedPrefix(a, b string) int {
	n := 0
	for a != "" && b != "" {
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		if ra != rb {
			break
		}
		n++
		a, b = a[sa:], b[sb:]
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
