// Package server provides the HTTP API for kotoba.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/config"
	"github.com/hyperjump/kotoba/internal/registry"
	"github.com/hyperjump/kotoba/internal/spell"
)

// WatchService is the part of the lexicon watcher the API uses. Optional.
type WatchService interface {
	Add(code, path string) error
}

// Server is the HTTP server for the kotoba API.
type Server struct {
	registry *registry.Registry
	config   *config.Config
	logger   *zap.Logger
	watch    WatchService
	server   *http.Server

	spellMu  sync.Mutex
	checkers map[string]cachedChecker
}

type cachedChecker struct {
	generation string
	checker    *spell.SpellChecker
}

// NewServer creates a server over reg. watch may be nil.
func NewServer(reg *registry.Registry, cfg *config.Config, logger *zap.Logger, watch WatchService) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry: reg,
		config:   cfg,
		logger:   logger,
		watch:    watch,
		checkers: make(map[string]cachedChecker),
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearchGet)
		r.Post("/search", s.handleSearchPost)
		r.Get("/languages", s.handleLanguages)
		r.Post("/languages/{code}/reload", s.handleReload)
		r.Get("/pos", s.handlePartsOfSpeech)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("took", time.Since(start)))
	})
}

// spellChecker returns a checker for the engine currently installed under
// code, rebuilding it when the engine has been swapped.
func (s *Server) spellChecker(code string) *spell.SpellChecker {
	engine, ok := s.registry.Engine(code)
	if !ok {
		return nil
	}
	gen := engine.Stats().Generation

	s.spellMu.Lock()
	defer s.spellMu.Unlock()
	if c, ok := s.checkers[code]; ok && c.generation == gen {
		return c.checker
	}
	checker := spell.NewSpellChecker(engine,
		spell.WithMaxDistance(s.config.Search.SuggestMaxDistance),
		spell.WithMaxSuggestions(s.config.Search.Suggestions))
	s.checkers[code] = cachedChecker{generation: gen, checker: checker}
	return checker
}
