package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/lexicon"
	"github.com/hyperjump/kotoba/internal/models"
)

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := models.LookupQuery{
		Query:    params.Get("q"),
		Language: params.Get("lang"),
	}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		query.Limit = limit
	}
	s.lookup(w, &query)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var query models.LookupQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.lookup(w, &query)
}

func (s *Server) lookup(w http.ResponseWriter, query *models.LookupQuery) {
	if err := query.Normalize(s.config.Search.DefaultLimit, s.config.Search.MaxLimit); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.String("language", query.Language),
		zap.Int("limit", query.Limit))

	start := time.Now()
	results := s.registry.Query(query.Query, query.Language, query.Limit)
	response := &models.LookupResponse{
		Results:  results,
		Total:    len(results),
		Query:    query.Query,
		Language: query.Language,
	}
	if len(results) == 0 && query.Query != "" {
		if checker := s.spellChecker(query.Language); checker != nil {
			response.Suggestions = checker.Terms(query.Query)
		}
	}
	response.QueryTime = time.Since(start).Milliseconds()
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"languages": s.registry.Stats()})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	langs, err := s.config.ResolveLanguages()
	if err != nil {
		s.logger.Error("resolve languages failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	path := ""
	for _, l := range langs {
		if l.Code == code {
			path = l.Path
			break
		}
	}
	if path == "" {
		s.respondError(w, http.StatusNotFound, "language not configured")
		return
	}

	s.logger.Debug("reload request", zap.String("language", code), zap.String("path", path))
	if err := s.registry.Initialize(r.Context(), code, path); err != nil {
		var le *lexicon.LoadError
		if errors.As(err, &le) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("reload failed", zap.String("language", code), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.watch != nil {
		if err := s.watch.Add(code, path); err != nil {
			s.logger.Warn("failed to watch lexicon", zap.String("language", code), zap.Error(err))
		}
	}
	engine, _ := s.registry.Engine(code)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":   code,
		"status": "loaded",
		"stats":  engine.Stats(),
	})
}

type posInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) handlePartsOfSpeech(w http.ResponseWriter, r *http.Request) {
	out := make([]posInfo, 0, len(models.AllPartsOfSpeech))
	for _, p := range models.AllPartsOfSpeech {
		out = append(out, posInfo{Code: string(p), Name: p.LongName()})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"languages": s.registry.Languages(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
