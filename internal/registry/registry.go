// Package registry holds one search engine per language code.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/kotoba/internal/config"
	"github.com/hyperjump/kotoba/internal/lexicon"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/search"
)

// defaultConcurrency bounds parallel loads in InitializeAll.
const defaultConcurrency = 4

// Registry maps language codes to engines. The zero value is not usable; use New.
//
// Installing or fetching an engine takes the lock briefly. Searches run
// against the fetched engine without holding it.
type Registry struct {
	mu          sync.RWMutex
	engines     map[string]*search.Engine
	logger      *zap.Logger
	concurrency int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets a logger for load and swap events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConcurrency bounds how many lexicons InitializeAll loads at once.
func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		engines:     make(map[string]*search.Engine),
		logger:      zap.NewNop(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize loads the lexicon at source and installs it under code,
// replacing any engine already there. On failure the slot is left as it was
// and the *lexicon.LoadError is returned.
func (r *Registry) Initialize(ctx context.Context, code, source string) error {
	engine, err := r.build(ctx, code, source)
	if err != nil {
		return err
	}
	r.install(code, engine)
	return nil
}

// Install places a prebuilt engine under code.
func (r *Registry) Install(code string, engine *search.Engine) {
	r.install(code, engine)
}

func (r *Registry) build(ctx context.Context, code, source string) (*search.Engine, error) {
	start := time.Now()
	src, err := lexicon.Load(ctx, source)
	if err != nil {
		r.logger.Warn("lexicon load failed",
			zap.String("language", code),
			zap.String("source", source),
			zap.Error(err))
		return nil, err
	}
	engine := search.NewEngine(src.Lexicon,
		search.WithSource(src),
		search.WithLogger(r.logger.With(zap.String("language", code))))
	stats := engine.Stats()
	r.logger.Info("lexicon loaded",
		zap.String("language", code),
		zap.String("source", source),
		zap.String("format", stats.Format),
		zap.Int("words", stats.Words),
		zap.Int("synsets", stats.Synsets),
		zap.Duration("took", time.Since(start)))
	return engine, nil
}

func (r *Registry) install(code string, engine *search.Engine) {
	r.mu.Lock()
	prev, replaced := r.engines[code]
	r.engines[code] = engine
	r.mu.Unlock()

	if replaced {
		r.logger.Info("engine swapped",
			zap.String("language", code),
			zap.String("previous", prev.Stats().Generation),
			zap.String("generation", engine.Stats().Generation))
	}
}

// Query searches the engine for code. It returns an empty slice, never an
// error, when no engine is installed for code.
func (r *Registry) Query(text, code string, limit int) []models.WordResult {
	engine, ok := r.Engine(code)
	if !ok {
		return []models.WordResult{}
	}
	return engine.Search(text, limit)
}

// Engine returns the engine installed for code.
func (r *Registry) Engine(code string) (*search.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[code]
	return e, ok
}

// Languages returns the installed language codes in ascending order.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	codes := make([]string, 0, len(r.engines))
	for code := range r.engines {
		codes = append(codes, code)
	}
	r.mu.RUnlock()
	slices.Sort(codes)
	return codes
}

// LanguageStats pairs a language code with its engine stats.
type LanguageStats struct {
	Code string `json:"code"`
	search.Stats
}

// Stats reports every installed engine, ordered by code.
func (r *Registry) Stats() []LanguageStats {
	r.mu.RLock()
	out := make([]LanguageStats, 0, len(r.engines))
	for code, e := range r.engines {
		out = append(out, LanguageStats{Code: code, Stats: e.Stats()})
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b LanguageStats) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// InitializeAll loads langs concurrently. Every language that loads is
// installed even when others fail; the failures are joined into the
// returned error.
func (r *Registry) InitializeAll(ctx context.Context, langs []config.LanguageConfig) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, lang := range langs {
		g.Go(func() error {
			// A failed language must not cancel the others, so errors are
			// collected rather than returned to the group.
			if err := r.Initialize(gctx, lang.Code, lang.Path); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("language %s: %w", lang.Code, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Refresh reloads code from source only when the file's fingerprint differs
// from the installed engine's. It reports whether an engine was installed.
func (r *Registry) Refresh(ctx context.Context, code, source string) (bool, error) {
	if current, ok := r.Engine(code); ok {
		if src := current.Source(); src != nil && src.Path == source {
			fp, err := lexicon.Fingerprint(source)
			if err != nil {
				return false, &lexicon.LoadError{Source: source, Op: lexicon.OpRead, Err: err}
			}
			if fp == src.Fingerprint {
				r.logger.Debug("lexicon unchanged",
					zap.String("language", code),
					zap.String("source", source))
				return false, nil
			}
		}
	}
	if err := r.Initialize(ctx, code, source); err != nil {
		return false, err
	}
	return true, nil
}
