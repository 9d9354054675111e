package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/config"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/registry"
)

const happyJSON = `{
  "synsets": {
    "S1": {"defs": ["feeling joy"], "ex": ["a happy smile"], "syns": ["S2"], "ants": []},
    "S2": {"defs": ["pleased"], "ex": [], "syns": ["S1"], "ants": []}
  },
  "words": {
    "happy": {"a": ["S1"]},
    "glad": {"a": ["S2"]},
    "gladden": {"v": ["S2"]}
  }
}`

type mockWatchService struct {
	added map[string]string
	err   error
}

func (m *mockWatchService) Add(code, path string) error {
	if m.err != nil {
		return m.err
	}
	if m.added == nil {
		m.added = map[string]string{}
	}
	m.added[code] = path
	return nil
}

type fixture struct {
	dir    string
	cfg    *config.Config
	reg    *registry.Registry
	watch  *mockWatchService
	server *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	enPath := filepath.Join(dir, "en_wordnet.json")
	if err := os.WriteFile(enPath, []byte(happyJSON), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Languages: []config.LanguageConfig{
			{Code: "en", Path: enPath},
			{Code: "lv", Path: filepath.Join(dir, "lv_wordnet.json")},
		},
	}
	config.ApplyDefaults(cfg)

	reg := registry.New()
	if err := reg.Initialize(t.Context(), "en", enPath); err != nil {
		t.Fatal(err)
	}
	watch := &mockWatchService{}
	return &fixture{
		dir:    dir,
		cfg:    cfg,
		reg:    reg,
		watch:  watch,
		server: NewServer(reg, cfg, zap.NewNop(), watch),
	}
}

func (f *fixture) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, r)
	return w
}

func decodeLookup(t *testing.T, w *httptest.ResponseRecorder) models.LookupResponse {
	t.Helper()
	var resp models.LookupResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHandleSearch_Get(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/search?q=happy&lang=en&limit=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeLookup(t, w)
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("results: got %+v", resp.Results)
	}
	r := resp.Results[0]
	if r.Word != "happy" || r.POS != models.Adjective {
		t.Errorf("unexpected result: %+v", r)
	}
	if !reflect.DeepEqual(r.Synonyms, []string{"glad", "gladden"}) {
		t.Errorf("synonyms: got %v", r.Synonyms)
	}
	if resp.Query != "happy" || resp.Language != "en" {
		t.Errorf("echo fields: got query=%q language=%q", resp.Query, resp.Language)
	}
}

func TestHandleSearch_Post(t *testing.T) {
	f := newFixture(t)
	body, _ := json.Marshal(models.LookupQuery{Query: "  glad ", Language: "en", Limit: 1})
	w := f.do(t, http.MethodPost, "/api/v1/search", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	resp := decodeLookup(t, w)
	if len(resp.Results) != 1 || resp.Results[0].Word != "glad" {
		t.Errorf("results: got %+v", resp.Results)
	}
	if resp.Query != "glad" {
		t.Errorf("query should be trimmed, got %q", resp.Query)
	}
}

func TestHandleSearch_LimitPolicy(t *testing.T) {
	f := newFixture(t)
	f.cfg.Search.DefaultLimit = 1
	f.cfg.Search.MaxLimit = 2

	resp := decodeLookup(t, f.do(t, http.MethodGet, "/api/v1/search?q=&lang=en", nil))
	if len(resp.Results) != 1 {
		t.Errorf("default limit: got %d results", len(resp.Results))
	}
	resp = decodeLookup(t, f.do(t, http.MethodGet, "/api/v1/search?q=&lang=en&limit=50", nil))
	if len(resp.Results) != 2 {
		t.Errorf("capped limit: got %d results", len(resp.Results))
	}
}

func TestHandleSearch_UnknownLanguage(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/search?q=happy&lang=zz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	resp := decodeLookup(t, w)
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("results: got %#v, want empty list", resp.Results)
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("no suggestions expected for unloaded language, got %v", resp.Suggestions)
	}
}

func TestHandleSearch_Suggestions(t *testing.T) {
	f := newFixture(t)
	resp := decodeLookup(t, f.do(t, http.MethodGet, "/api/v1/search?q=hapyp&lang=en", nil))
	if len(resp.Results) != 0 {
		t.Fatalf("expected no results, got %+v", resp.Results)
	}
	if len(resp.Suggestions) == 0 || resp.Suggestions[0] != "happy" {
		t.Errorf("suggestions: got %v", resp.Suggestions)
	}
}

func TestHandleSearch_BadRequests(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		method string
		target string
		body   []byte
	}{
		{"missing language", http.MethodGet, "/api/v1/search?q=happy", nil},
		{"bad limit", http.MethodGet, "/api/v1/search?q=happy&lang=en&limit=abc", nil},
		{"invalid body", http.MethodPost, "/api/v1/search", []byte("{")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.target, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", w.Code)
			}
			var out map[string]string
			_ = json.NewDecoder(w.Body).Decode(&out)
			if out["error"] == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestHandleLanguages(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/languages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Languages []struct {
			Code  string `json:"code"`
			Words int    `json:"words"`
		} `json:"languages"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Languages) != 1 || out.Languages[0].Code != "en" || out.Languages[0].Words != 3 {
		t.Errorf("languages: got %+v", out.Languages)
	}
}

func TestHandleReload(t *testing.T) {
	f := newFixture(t)
	before, _ := f.reg.Engine("en")

	w := f.do(t, http.MethodPost, "/api/v1/languages/en/reload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	after, _ := f.reg.Engine("en")
	if before == after {
		t.Error("engine should have been replaced")
	}
	if f.watch.added["en"] == "" {
		t.Error("reloaded lexicon should be watched")
	}
}

func TestHandleReload_NotConfigured(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/languages/zz/reload", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestHandleReload_LoadError(t *testing.T) {
	f := newFixture(t)
	// lv is configured but its file does not exist.
	w := f.do(t, http.MethodPost, "/api/v1/languages/lv/reload", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "load lexicon") {
		t.Errorf("body: %s", w.Body.String())
	}

	// A broken file keeps the previous engine.
	if err := os.WriteFile(f.cfg.Languages[0].Path, []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	before, _ := f.reg.Engine("en")
	w = f.do(t, http.MethodPost, "/api/v1/languages/en/reload", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", w.Code)
	}
	after, _ := f.reg.Engine("en")
	if before != after {
		t.Error("failed reload must keep the installed engine")
	}
}

func TestHandleReload_WatchFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.watch.err = errors.New("boom")
	w := f.do(t, http.MethodPost, "/api/v1/languages/en/reload", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
}

func TestHandlePartsOfSpeech(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/pos", nil)
	var out []posInfo
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 8 || out[0].Code != "p" || out[7].Name != "adjective satellite" {
		t.Errorf("pos table: got %+v", out)
	}
}

func TestHandleHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	var out struct {
		Status    string   `json:"status"`
		Languages []string `json:"languages"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Status != "ok" || len(out.Languages) != 1 {
		t.Errorf("health: got %+v", out)
	}
}

func TestSpellChecker_RebuiltAfterSwap(t *testing.T) {
	f := newFixture(t)
	first := f.server.spellChecker("en")
	if first == nil || first != f.server.spellChecker("en") {
		t.Fatal("checker should be cached per engine")
	}
	if err := f.reg.Initialize(t.Context(), "en", f.cfg.Languages[0].Path); err != nil {
		t.Fatal(err)
	}
	if f.server.spellChecker("en") == first {
		t.Error("checker should be rebuilt for a new engine")
	}
	if f.server.spellChecker("zz") != nil {
		t.Error("no checker for an unloaded language")
	}
}
