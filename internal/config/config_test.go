package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  host: "127.0.0.1"
  port: 9000
languages:
  - code: en
    path: /data/en_wordnet.json
search:
  default_limit: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0].Code != "en" || cfg.Languages[0].Path != "/data/en_wordnet.json" {
		t.Errorf("unexpected languages: %+v", cfg.Languages)
	}
	if cfg.Search.DefaultLimit != 20 {
		t.Errorf("default_limit = %d, want 20", cfg.Search.DefaultLimit)
	}
	if cfg.Search.MaxLimit != 100 {
		t.Errorf("max_limit should default to 100, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, "config.yaml", "debug: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
debug = true

[server]
port = 7070

[[languages]]
code = "lv"
path = "/data/lv_wordnet.json"

[watch]
enabled = true
debounce_ms = 250
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug || cfg.Server.Port != 7070 || cfg.Server.Host != "localhost" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if l, ok := cfg.Language("lv"); !ok || l.Path != "/data/lv_wordnet.json" {
		t.Errorf("Language(lv) = %+v, %v", l, ok)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce() != 250*time.Millisecond {
		t.Errorf("unexpected watch config: %+v", cfg.Watch)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "bad.yaml", "server: [\n")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	if _, err := Load(writeConfig(t, "bad.toml", "server = = 1\n")); err == nil {
		t.Error("expected error for malformed toml")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KOTOBA_SERVER_PORT", "9191")
	t.Setenv("KOTOBA_DEBUG", "true")
	t.Setenv("KOTOBA_SEARCH_MAX_LIMIT", "25")

	path := writeConfig(t, "config.yaml", "server:\n  port: 9000\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191 from env", cfg.Server.Port)
	}
	if !cfg.Debug {
		t.Error("debug should be set from env")
	}
	if cfg.Search.MaxLimit != 25 {
		t.Errorf("max_limit = %d, want 25 from env", cfg.Search.MaxLimit)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("KOTOBA_DISCOVER_PATTERN", "/srv/lexicons/*.json")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Discover.Pattern != "/srv/lexicons/*.json" {
		t.Errorf("pattern = %q", cfg.Discover.Pattern)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port should default to 8080, got %d", cfg.Server.Port)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
languages:
  - code: en
    path: ./lexicons/en_wordnet.json
discover:
  pattern: ./lexicons/*_wordnet*.json
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "lexicons", "en_wordnet.json")
	if cfg.Languages[0].Path != want {
		t.Errorf("language path = %s, want %s", cfg.Languages[0].Path, want)
	}
	wantPattern := filepath.Join(dir, "lexicons", "*_wordnet*.json")
	if cfg.Discover.Pattern != wantPattern {
		t.Errorf("discover pattern = %s, want %s", cfg.Discover.Pattern, wantPattern)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("default limits: got %+v", cfg.Search)
	}
	if cfg.Search.Suggestions != 5 || cfg.Search.SuggestMaxDistance != 2 {
		t.Errorf("default suggestions: got %+v", cfg.Search)
	}
	if cfg.Watch.Enabled {
		t.Error("watch should be disabled by default")
	}
	if cfg.Watch.Debounce() != 400*time.Millisecond {
		t.Errorf("default debounce: got %v", cfg.Watch.Debounce())
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{"saved.yaml", "saved.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := &Config{
				Server:    ServerConfig{Host: "localhost", Port: 9090},
				Languages: []LanguageConfig{{Code: "en", Path: "/tmp/en_wordnet.json"}},
			}
			if err := Save(path, cfg); err != nil {
				t.Fatal(err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if loaded.Server.Port != 9090 {
				t.Errorf("loaded port: got %d", loaded.Server.Port)
			}
			if len(loaded.Languages) != 1 || loaded.Languages[0].Code != "en" {
				t.Errorf("loaded languages: got %+v", loaded.Languages)
			}
		})
	}
}
