// Package lmf converts WordNet LMF XML into lexicon documents.
package lmf

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/hyperjump/kotoba/internal/models"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultMaxExamples    = 2
	DefaultMaxLemmaSpaces = 2
)

// progressEvery is how many elements pass between progress callbacks and
// context checks.
const progressEvery = 500

// Options controls the conversion.
type Options struct {
	// IDPrefix is removed from synset ids and sense targets, e.g. "oewn-".
	IDPrefix string
	// MaxExamples caps the examples kept per synset.
	MaxExamples int
	// MaxLemmaSpaces skips lemmas containing more spaces than this.
	MaxLemmaSpaces int
	// Progress, when set, is called periodically and once at the end.
	Progress func(Progress)
}

func (o *Options) applyDefaults() {
	if o.MaxExamples == 0 {
		o.MaxExamples = DefaultMaxExamples
	}
	if o.MaxLemmaSpaces == 0 {
		o.MaxLemmaSpaces = DefaultMaxLemmaSpaces
	}
}

// Progress reports how far a conversion has read.
type Progress struct {
	Offset  int64 // bytes consumed
	Size    int64 // total bytes, or 0 when unknown
	Synsets int
	Entries int
}

// Result is a converted lexicon plus conversion counters.
type Result struct {
	Lexicon *models.Lexicon
	// POSTags lists the part-of-speech codes seen on lemmas, sorted.
	POSTags []string
	Synsets int
	Entries int
	Skipped int
}

type xmlSynset struct {
	ID          string        `xml:"id,attr"`
	Definitions []string      `xml:"Definition"`
	Examples    []string      `xml:"Example"`
	Relations   []xmlRelation `xml:"SynsetRelation"`
}

type xmlRelation struct {
	RelType string `xml:"relType,attr"`
	Target  string `xml:"target,attr"`
}

type xmlEntry struct {
	Lemma struct {
		WrittenForm  string `xml:"writtenForm,attr"`
		PartOfSpeech string `xml:"partOfSpeech,attr"`
	} `xml:"Lemma"`
	Senses []struct {
		Synset string `xml:"synset,attr"`
	} `xml:"Sense"`
}

// ConvertFile converts the LMF document at path.
func ConvertFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return convert(ctx, f, info.Size(), opts)
}

// Convert reads an LMF document from r.
func Convert(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	return convert(ctx, r, 0, opts)
}

func convert(ctx context.Context, r io.Reader, size int64, opts Options) (*Result, error) {
	opts.applyDefaults()
	c := &converter{
		opts: opts,
		res:  &Result{Lexicon: models.NewLexicon()},
		tags: make(map[string]struct{}),
	}
	dec := xml.NewDecoder(r)

	report := func() {
		if opts.Progress != nil {
			opts.Progress(Progress{
				Offset:  dec.InputOffset(),
				Size:    size,
				Synsets: c.res.Synsets,
				Entries: c.res.Entries,
			})
		}
	}

	seen := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read LMF: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "Synset":
			var s xmlSynset
			if err := dec.DecodeElement(&s, &start); err != nil {
				return nil, fmt.Errorf("failed to decode synset: %w", err)
			}
			c.addSynset(&s)
		case "LexicalEntry":
			var e xmlEntry
			if err := dec.DecodeElement(&e, &start); err != nil {
				return nil, fmt.Errorf("failed to decode lexical entry: %w", err)
			}
			c.addEntry(&e)
		default:
			continue
		}
		seen++
		if seen%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report()
		}
	}
	report()

	for tag := range c.tags {
		c.res.POSTags = append(c.res.POSTags, tag)
	}
	slices.Sort(c.res.POSTags)
	return c.res, nil
}

type converter struct {
	opts Options
	res  *Result
	tags map[string]struct{}
}

func (c *converter) stripID(id string) string {
	return strings.TrimPrefix(id, c.opts.IDPrefix)
}

func (c *converter) addSynset(s *xmlSynset) {
	sense := models.Sense{
		Definitions: phrases(s.Definitions, -1),
		Examples:    phrases(s.Examples, c.opts.MaxExamples),
		SynonymRefs: []string{},
		AntonymRefs: []string{},
	}
	for _, rel := range s.Relations {
		switch rel.RelType {
		case "similar":
			sense.SynonymRefs = append(sense.SynonymRefs, c.stripID(rel.Target))
		case "antonym":
			sense.AntonymRefs = append(sense.AntonymRefs, c.stripID(rel.Target))
		}
	}
	c.res.Lexicon.Synsets[c.stripID(s.ID)] = sense
	c.res.Synsets++
}

func (c *converter) addEntry(e *xmlEntry) {
	c.res.Entries++
	word := strings.TrimSpace(e.Lemma.WrittenForm)
	if strings.Count(word, " ") > c.opts.MaxLemmaSpaces {
		c.res.Skipped++
		return
	}
	tag := e.Lemma.PartOfSpeech
	c.tags[tag] = struct{}{}
	if word == "" || len(e.Senses) == 0 {
		c.res.Skipped++
		return
	}
	ids := make([]string, 0, len(e.Senses))
	for _, s := range e.Senses {
		ids = append(ids, c.stripID(s.Synset))
	}

	pos := models.PartOfSpeech(tag)
	if !pos.Valid() {
		pos = models.Other
	}
	entry := c.res.Lexicon.Words[word]
	// A later entry for the same lemma and category replaces the earlier list.
	entry.SetSenses(pos, ids)
	c.res.Lexicon.Words[word] = entry
}

// phrases keeps trimmed texts that contain a space, at most limit of them
// when limit is positive.
func phrases(texts []string, limit int) models.TextList {
	out := models.TextList{}
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if !strings.Contains(t, " ") {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, t)
	}
	return out
}
