// Package search runs fuzzy lookups against one language's lexicon.
package search

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/index"
	"github.com/hyperjump/kotoba/internal/lexicon"
	"github.com/hyperjump/kotoba/internal/models"
)

// Engine answers lookups over a single lexicon. It is immutable after
// NewEngine returns and safe for concurrent use.
type Engine struct {
	lexicon    *models.Lexicon
	reverse    *index.Reverse
	words      []string
	source     *lexicon.Source
	generation string
	loadedAt   time.Time
	logger     *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSource records where the lexicon was loaded from.
func WithSource(src *lexicon.Source) EngineOption {
	return func(e *Engine) { e.source = src }
}

// WithLogger sets a logger for build output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine indexes lex. lex must not be modified afterwards.
func NewEngine(lex *models.Lexicon, opts ...EngineOption) *Engine {
	if lex == nil {
		lex = models.NewLexicon()
	}
	e := &Engine{
		lexicon:    lex,
		generation: uuid.NewString(),
		loadedAt:   time.Now(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	start := time.Now()
	e.reverse = index.Build(lex)
	e.words = sortedWords(lex)
	e.logger.Debug("engine built",
		zap.String("generation", e.generation),
		zap.Int("words", len(e.words)),
		zap.Int("synsets", len(lex.Synsets)),
		zap.Int("index_keys", e.reverse.Len()),
		zap.Duration("took", time.Since(start)))
	return e
}

// Search returns up to limit results for query, best first.
func (e *Engine) Search(query string, limit int) []models.WordResult {
	if limit <= 0 {
		return []models.WordResult{}
	}
	matches := e.match(query)
	results := make([]models.WordResult, 0, len(matches))
	for _, m := range matches {
		results = e.expand(results, m.Str, m.Score)
	}
	SortResults(results, query)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// match scores every word against query. An empty query matches every
// word with score 0.
func (e *Engine) match(query string) fuzzy.Matches {
	if query == "" {
		all := make(fuzzy.Matches, len(e.words))
		for i, w := range e.words {
			all[i] = fuzzy.Match{Str: w, Index: i}
		}
		return all
	}
	return fuzzy.FindNoSort(query, e.words)
}

// expand appends one row per (category, sense) of word. Sense ids that are
// missing from the synset table produce no row.
func (e *Engine) expand(dst []models.WordResult, word string, score int) []models.WordResult {
	entry := e.lexicon.Words[word]
	entry.Each(func(pos models.PartOfSpeech, ids []string) {
		for _, id := range ids {
			sense, ok := e.lexicon.Synsets[id]
			if !ok {
				continue
			}
			dst = append(dst, models.WordResult{
				Word:        word,
				POS:         pos,
				Definitions: copyList(sense.Definitions),
				Examples:    copyList(sense.Examples),
				Synonyms:    e.reverse.Resolve(sense.SynonymRefs),
				Antonyms:    e.reverse.Resolve(sense.AntonymRefs),
				MatchScore:  score,
			})
		}
	})
	return dst
}

// Words returns the lexicon's words in ascending order. The slice is shared
// and must not be modified.
func (e *Engine) Words() []string {
	return e.words
}

// Stats describes an engine.
type Stats struct {
	Words       int       `json:"words"`
	Synsets     int       `json:"synsets"`
	IndexKeys   int       `json:"index_keys"`
	Path        string    `json:"path,omitempty"`
	Format      string    `json:"format,omitempty"`
	Fingerprint uint64    `json:"fingerprint,omitempty"`
	Size        int64     `json:"size_bytes,omitempty"`
	Generation  string    `json:"generation"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Stats reports sizes and provenance of the engine.
func (e *Engine) Stats() Stats {
	s := Stats{
		Words:      len(e.words),
		Synsets:    len(e.lexicon.Synsets),
		IndexKeys:  e.reverse.Len(),
		Generation: e.generation,
		LoadedAt:   e.loadedAt,
	}
	if e.source != nil {
		s.Path = e.source.Path
		s.Format = string(e.source.Format)
		s.Fingerprint = e.source.Fingerprint
		s.Size = e.source.Size
	}
	return s
}

// Source returns the source the engine was built from, or nil.
func (e *Engine) Source() *lexicon.Source {
	return e.source
}

func sortedWords(lex *models.Lexicon) []string {
	words := make([]string, 0, len(lex.Words))
	for w := range lex.Words {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

func copyList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
