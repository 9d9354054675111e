// Package e2e provides end-to-end tests over a generated lexicon and a set of lookups.
package e2e

import (
	"fmt"
	"html"
	"strings"

	"github.com/hyperjump/kotoba/internal/models"
)

// QueryTestCase defines a lookup and the word that must appear in its results.
type QueryTestCase struct {
	Query        string
	ExpectedWord string
	// First requires ExpectedWord to be the first row.
	First bool
	// Synonyms and Antonyms, when set, must be included in the first row.
	Synonyms    []string
	Antonyms    []string
	Description string
}

// Corpus holds a lexicon and query test cases for E2E tests.
type Corpus struct {
	Lexicon      *models.Lexicon
	TestCases    []QueryTestCase
	TotalWords   int
	TotalSynsets int
	TotalQueries int
}

type group struct {
	pos        models.PartOfSpeech
	definition string
	example    string
	words      []string
	antonymOf  int
}

var groups = []group{
	{models.Adjective, "feeling or showing pleasure", "a happy smile", []string{"happy", "glad", "joyful", "cheerful"}, 1},
	{models.Adjective, "feeling or showing sorrow", "a sad farewell", []string{"sad", "unhappy", "sorrowful"}, 0},
	{models.Noun, "a frozen dessert made from cream", "a bowl of ice cream", []string{"ice cream", "gelato"}, -1},
	{models.Noun, "water frozen solid", "ice on the pond", []string{"ice"}, -1},
	{models.Noun, "a large floating mass of ice", "the ship struck an iceberg", []string{"iceberg"}, -1},
	{models.Verb, "move fast on foot", "run to the store", []string{"run", "sprint", "dash"}, 6},
	{models.Verb, "move at a slow pace on foot", "walk to school", []string{"walk", "stroll", "amble"}, 5},
	{models.Noun, "a domesticated canine", "the dog barked", []string{"dog", "hound"}, -1},
	{models.Noun, "a small domesticated feline", "the cat purred", []string{"cat", "kitty"}, -1},
	{models.Adjective, "having great size", "a big house", []string{"big", "large", "huge"}, 10},
	{models.Adjective, "having little size", "a small room", []string{"small", "little", "tiny"}, 9},
	{models.Adverb, "at a fast speed", "she ran quickly", []string{"quickly", "rapidly", "fast"}, -1},
	{models.Noun, "a motor vehicle with four wheels", "he parked the car", []string{"car", "automobile"}, -1},
	{models.Noun, "a building for people to live in", "a house by the sea", []string{"house", "home", "dwelling"}, -1},
	{models.Noun, "a celebration held on a birthday", "a surprise birthday party", []string{"birthday party", "party"}, -1},
	{models.Noun, "the loud noise after lightning", "a clap of thunder", []string{"thunder", "thunderclap"}, -1},
}

// abbreviations are queries whose letters appear in order in the expected word.
var abbreviations = []struct {
	query string
	word  string
}{
	{"chrfl", "cheerful"},
	{"srwfl", "sorrowful"},
	{"icbg", "iceberg"},
	{"autmbl", "automobile"},
	{"dwlng", "dwelling"},
	{"brthdy", "birthday party"},
	{"thndrclp", "thunderclap"},
	{"rpdly", "rapidly"},
}

// SynsetID returns the synset id of the i-th word in group g.
func SynsetID(g, i int) string {
	return fmt.Sprintf("%03d%02d-%s", g, i, groups[g].pos)
}

// BuildCorpus returns a lexicon with one synset per word. Words in a group
// reference each other as synonyms; antonym groups reference each other's words.
func BuildCorpus() *Corpus {
	lex := models.NewLexicon()
	for g, grp := range groups {
		for i, w := range grp.words {
			sense := models.Sense{
				Definitions: models.TextList{grp.definition},
				Examples:    models.TextList{grp.example},
				SynonymRefs: []string{},
				AntonymRefs: []string{},
			}
			for j := range grp.words {
				if j != i {
					sense.SynonymRefs = append(sense.SynonymRefs, SynsetID(g, j))
				}
			}
			if grp.antonymOf >= 0 {
				for j := range groups[grp.antonymOf].words {
					sense.AntonymRefs = append(sense.AntonymRefs, SynsetID(grp.antonymOf, j))
				}
			}
			id := SynsetID(g, i)
			lex.Synsets[id] = sense
			entry := lex.Words[w]
			entry.SetSenses(grp.pos, append(entry.Senses(grp.pos), id))
			lex.Words[w] = entry
		}
	}

	cases := buildQueryTestCases()
	return &Corpus{
		Lexicon:      lex,
		TestCases:    cases,
		TotalWords:   len(lex.Words),
		TotalSynsets: len(lex.Synsets),
		TotalQueries: len(cases),
	}
}

func buildQueryTestCases() []QueryTestCase {
	var cases []QueryTestCase
	for _, grp := range groups {
		head := grp.words[0]
		tc := QueryTestCase{
			Query:        head,
			ExpectedWord: head,
			First:        true,
			Synonyms:     grp.words[1:],
			Description:  fmt.Sprintf("exact %q ranks first", head),
		}
		if grp.antonymOf >= 0 {
			tc.Antonyms = groups[grp.antonymOf].words
		}
		cases = append(cases, tc)

		upper := strings.ToUpper(head)
		cases = append(cases, QueryTestCase{
			Query:        upper,
			ExpectedWord: head,
			First:        true,
			Description:  fmt.Sprintf("exact %q ignores case", upper),
		})
	}
	for _, a := range abbreviations {
		cases = append(cases, QueryTestCase{
			Query:        a.query,
			ExpectedWord: a.word,
			Description:  fmt.Sprintf("abbreviation %q finds %q", a.query, a.word),
		})
	}
	return cases
}

// LMF renders the corpus as a WordNet LMF document whose ids carry prefix.
func (c *Corpus) LMF(prefix string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<LexicalResource xmlns:dc="https://globalwordnet.github.io/schemas/dc/">` + "\n")
	b.WriteString(`  <Lexicon id="e2e" label="E2E WordNet" language="en" version="1">` + "\n")
	n := 0
	for g, grp := range groups {
		for i, w := range grp.words {
			n++
			fmt.Fprintf(&b, "    <LexicalEntry id=\"%sentry-%d\">\n", prefix, n)
			fmt.Fprintf(&b, "      <Lemma writtenForm=%q partOfSpeech=\"%s\"/>\n", html.EscapeString(w), grp.pos)
			fmt.Fprintf(&b, "      <Sense id=\"%ssense-%d\" synset=\"%s%s\"/>\n", prefix, n, prefix, SynsetID(g, i))
			b.WriteString("    </LexicalEntry>\n")
		}
	}
	for id, sense := range c.Lexicon.Synsets {
		fmt.Fprintf(&b, "    <Synset id=\"%s%s\">\n", prefix, id)
		for _, d := range sense.Definitions {
			fmt.Fprintf(&b, "      <Definition>%s</Definition>\n", html.EscapeString(d))
		}
		for _, ref := range sense.SynonymRefs {
			fmt.Fprintf(&b, "      <SynsetRelation relType=\"similar\" target=\"%s%s\"/>\n", prefix, ref)
		}
		for _, ref := range sense.AntonymRefs {
			fmt.Fprintf(&b, "      <SynsetRelation relType=\"antonym\" target=\"%s%s\"/>\n", prefix, ref)
		}
		for _, ex := range sense.Examples {
			fmt.Fprintf(&b, "      <Example>%s</Example>\n", html.EscapeString(ex))
		}
		b.WriteString("    </Synset>\n")
	}
	b.WriteString("  </Lexicon>\n</LexicalResource>\n")
	return b.String()
}
