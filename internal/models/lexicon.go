// Package models defines core data structures for lexicons, lookups, and results.
package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PartOfSpeech is the single-letter category code used in lexicon documents.
type PartOfSpeech string

const (
	Pronoun            PartOfSpeech = "p"
	Noun               PartOfSpeech = "n"
	Unclassified       PartOfSpeech = "u"
	Verb               PartOfSpeech = "v"
	Other              PartOfSpeech = "x"
	Adjective          PartOfSpeech = "a"
	Adverb             PartOfSpeech = "r"
	AdjectiveSatellite PartOfSpeech = "s"
)

// AllPartsOfSpeech lists every category in the order senses are expanded.
var AllPartsOfSpeech = []PartOfSpeech{
	Pronoun, Noun, Unclassified, Verb, Other, Adjective, Adverb, AdjectiveSatellite,
}

// LongName returns the human-readable name of the category.
func (p PartOfSpeech) LongName() string {
	switch p {
	case Pronoun:
		return "pronoun"
	case Noun:
		return "noun"
	case Unclassified:
		return "unclassified"
	case Verb:
		return "verb"
	case Other:
		return "other"
	case Adjective:
		return "adjective"
	case Adverb:
		return "adverb"
	case AdjectiveSatellite:
		return "adjective satellite"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the eight known categories.
func (p PartOfSpeech) Valid() bool {
	for _, known := range AllPartsOfSpeech {
		if p == known {
			return true
		}
	}
	return false
}

// Sense is one synset: a meaning shared by all words that reference it.
type Sense struct {
	Definitions TextList `json:"defs" yaml:"defs"`
	Examples    TextList `json:"ex" yaml:"ex"`
	SynonymRefs []string `json:"syns" yaml:"syns"`
	AntonymRefs []string `json:"ants" yaml:"ants"`
}

// WordEntry maps a surface word to its sense ids, partitioned by category.
// A nil list means the word has no senses in that category.
type WordEntry struct {
	P []string `json:"p,omitempty" yaml:"p,omitempty"`
	N []string `json:"n,omitempty" yaml:"n,omitempty"`
	U []string `json:"u,omitempty" yaml:"u,omitempty"`
	V []string `json:"v,omitempty" yaml:"v,omitempty"`
	X []string `json:"x,omitempty" yaml:"x,omitempty"`
	A []string `json:"a,omitempty" yaml:"a,omitempty"`
	R []string `json:"r,omitempty" yaml:"r,omitempty"`
	S []string `json:"s,omitempty" yaml:"s,omitempty"`
}

// Senses returns the sense ids listed under pos.
func (w *WordEntry) Senses(pos PartOfSpeech) []string {
	switch pos {
	case Pronoun:
		return w.P
	case Noun:
		return w.N
	case Unclassified:
		return w.U
	case Verb:
		return w.V
	case Other:
		return w.X
	case Adjective:
		return w.A
	case Adverb:
		return w.R
	case AdjectiveSatellite:
		return w.S
	}
	return nil
}

// SetSenses replaces the sense ids listed under pos. Unknown categories are ignored.
func (w *WordEntry) SetSenses(pos PartOfSpeech, ids []string) {
	switch pos {
	case Pronoun:
		w.P = ids
	case Noun:
		w.N = ids
	case Unclassified:
		w.U = ids
	case Verb:
		w.V = ids
	case Other:
		w.X = ids
	case Adjective:
		w.A = ids
	case Adverb:
		w.R = ids
	case AdjectiveSatellite:
		w.S = ids
	}
}

// Each calls fn for every populated category in canonical order.
func (w *WordEntry) Each(fn func(pos PartOfSpeech, ids []string)) {
	for _, pos := range AllPartsOfSpeech {
		if ids := w.Senses(pos); len(ids) > 0 {
			fn(pos, ids)
		}
	}
}

// SenseCount returns the total number of sense ids across all categories.
func (w *WordEntry) SenseCount() int {
	n := 0
	w.Each(func(_ PartOfSpeech, ids []string) { n += len(ids) })
	return n
}

// Lexicon is one language's complete word and sense tables.
type Lexicon struct {
	Synsets map[string]Sense     `json:"synsets" yaml:"synsets"`
	Words   map[string]WordEntry `json:"words" yaml:"words"`
}

// NewLexicon returns an empty lexicon with initialized tables.
func NewLexicon() *Lexicon {
	return &Lexicon{
		Synsets: make(map[string]Sense),
		Words:   make(map[string]WordEntry),
	}
}

// TextList is an ordered list of strings. Lexicon documents carry text in
// three shapes: a list of strings, a single string, or a list of objects
// with a "text" field. All three decode to the same list.
type TextList []string

type textItem struct {
	Text string `json:"text" yaml:"text"`
}

// UnmarshalJSON accepts a string, a list of strings, or a list of {"text": ...} objects.
func (t *TextList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TextList{single}
		return nil
	}
	var items []textItem
	if err := json.Unmarshal(data, &items); err == nil {
		out := make(TextList, 0, len(items))
		for _, it := range items {
			out = append(out, it.Text)
		}
		*t = out
		return nil
	}
	return fmt.Errorf("text list: unsupported value %s", truncateRaw(data))
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (t *TextList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*t = nil
			return nil
		}
		if node.ShortTag() != "!!str" {
			return fmt.Errorf("text list: line %d: expected string, got %s", node.Line, node.ShortTag())
		}
		*t = TextList{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make(TextList, 0, len(node.Content))
		for _, child := range node.Content {
			switch child.Kind {
			case yaml.ScalarNode:
				if child.ShortTag() != "!!str" {
					return fmt.Errorf("text list: line %d: expected string, got %s", child.Line, child.ShortTag())
				}
				out = append(out, child.Value)
			case yaml.MappingNode:
				var it textItem
				if err := child.Decode(&it); err != nil {
					return err
				}
				out = append(out, it.Text)
			default:
				return fmt.Errorf("text list: line %d: unsupported item", child.Line)
			}
		}
		*t = out
		return nil
	}
	return fmt.Errorf("text list: line %d: unsupported value", node.Line)
}

func truncateRaw(data []byte) string {
	const maxLen = 40
	if len(data) <= maxLen {
		return string(data)
	}
	return string(data[:maxLen]) + "..."
}
