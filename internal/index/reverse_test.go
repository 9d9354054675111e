package index

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kotoba/internal/models"
)

func sampleLexicon() *models.Lexicon {
	lex := models.NewLexicon()
	lex.Synsets["s1"] = models.Sense{Definitions: models.TextList{"feeling joy"}, SynonymRefs: []string{"s2"}}
	lex.Synsets["s2"] = models.Sense{Definitions: models.TextList{"pleased"}, SynonymRefs: []string{"s1"}}
	lex.Words["happy"] = models.WordEntry{A: []string{"s1"}}
	lex.Words["glad"] = models.WordEntry{A: []string{"s2"}, S: []string{"s2"}}
	lex.Words["felicitous"] = models.WordEntry{S: []string{"s1", "s2"}}
	lex.Words["cheerful"] = models.WordEntry{A: []string{"s1"}, N: []string{"orphan"}}
	return lex
}

func TestBuild_SortedDeduplicated(t *testing.T) {
	r := Build(sampleLexicon())

	assert.Equal(t, []string{"cheerful", "felicitous", "happy"}, r.Words("s1"))
	// glad lists s2 under two categories; it appears once.
	assert.Equal(t, []string{"felicitous", "glad"}, r.Words("s2"))
	assert.Equal(t, 3, r.Len())
}

func TestBuild_EveryReferencedSenseIsAKey(t *testing.T) {
	lex := sampleLexicon()
	r := Build(lex)
	for word, entry := range lex.Words {
		entry.Each(func(pos models.PartOfSpeech, ids []string) {
			for _, id := range ids {
				require.True(t, r.Contains(id), "%s/%s references %s", word, pos, id)
				assert.Contains(t, r.Words(id), word)
			}
		})
	}
	// "orphan" has no synset but is still indexed.
	assert.Equal(t, []string{"cheerful"}, r.Words("orphan"))
}

func TestReverse_Resolve(t *testing.T) {
	r := Build(sampleLexicon())

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"no ids", nil, []string{}},
		{"unknown id", []string{"missing"}, []string{}},
		{"single id", []string{"s2"}, []string{"felicitous", "glad"}},
		{"union deduplicated", []string{"s1", "s2"}, []string{"cheerful", "felicitous", "glad", "happy"}},
		{"repeated id", []string{"s2", "s2"}, []string{"felicitous", "glad"}},
		{"known and unknown", []string{"missing", "s2"}, []string{"felicitous", "glad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.ids))
		})
	}
}

func TestReverse_ResolveDoesNotAliasBuckets(t *testing.T) {
	r := Build(sampleLexicon())
	got := r.Resolve([]string{"s2"})
	got[0] = "mutated"
	assert.Equal(t, []string{"felicitous", "glad"}, r.Words("s2"))
}

func TestBuild_EmptyLexicon(t *testing.T) {
	r := Build(models.NewLexicon())
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Words("anything"))
	assert.Equal(t, []string{}, r.Resolve([]string{"anything"}))
}

func TestBuild_MatchesNaiveInversion(t *testing.T) {
	lex := models.NewLexicon()
	for i := 0; i < 200; i++ {
		word := fmt.Sprintf("w%03d", i)
		lex.Words[word] = models.WordEntry{
			N: []string{fmt.Sprintf("s%d", i%7), fmt.Sprintf("s%d", i%11)},
			V: []string{fmt.Sprintf("s%d", i%7)},
		}
	}
	r := Build(lex)

	for id := 0; id < 11; id++ {
		sid := fmt.Sprintf("s%d", id)
		var want []string
		for word, entry := range lex.Words {
			if slices.Contains(entry.N, sid) || slices.Contains(entry.V, sid) {
				want = append(want, word)
			}
		}
		slices.Sort(want)
		assert.Equal(t, want, r.Words(sid), sid)
	}
}
