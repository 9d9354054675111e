// Package index builds the reverse mapping from sense ids to the words that reference them.
package index

import (
	"slices"

	"github.com/hyperjump/kotoba/internal/models"
)

// Reverse maps a sense id to the sorted, deduplicated words that list it
// under any part of speech. It is immutable once built.
type Reverse struct {
	buckets map[string][]string
}

// Build inverts the word table of lex in one pass.
func Build(lex *models.Lexicon) *Reverse {
	buckets := make(map[string][]string)
	for word, entry := range lex.Words {
		entry.Each(func(_ models.PartOfSpeech, ids []string) {
			for _, id := range ids {
				buckets[id] = append(buckets[id], word)
			}
		})
	}
	for id, words := range buckets {
		slices.Sort(words)
		buckets[id] = slices.Compact(words)
	}
	return &Reverse{buckets: buckets}
}

// Words returns the words that reference id. Unknown ids yield nil.
// The returned slice must not be modified.
func (r *Reverse) Words(id string) []string {
	return r.buckets[id]
}

// Resolve returns the sorted, deduplicated union of the words of every id.
// The result is never nil.
func (r *Reverse) Resolve(ids []string) []string {
	switch len(ids) {
	case 0:
		return []string{}
	case 1:
		return append([]string{}, r.buckets[ids[0]]...)
	}
	var out []string
	for _, id := range ids {
		out = append(out, r.buckets[id]...)
	}
	if out == nil {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Len returns the number of sense ids in the index.
func (r *Reverse) Len() int {
	return len(r.buckets)
}

// Contains reports whether id is referenced by at least one word.
func (r *Reverse) Contains(id string) bool {
	_, ok := r.buckets[id]
	return ok
}
