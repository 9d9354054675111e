// Package config provides configuration loading and structs for the kotoba server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool             `yaml:"debug" toml:"debug" env:"KOTOBA_DEBUG"`
	Server    ServerConfig     `yaml:"server" toml:"server"`
	Languages []LanguageConfig `yaml:"languages" toml:"languages"`
	Discover  DiscoverConfig   `yaml:"discover" toml:"discover"`
	Search    SearchConfig     `yaml:"search" toml:"search"`
	Watch     WatchConfig      `yaml:"watch" toml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" toml:"host" env:"KOTOBA_SERVER_HOST"`
	Port int    `yaml:"port" toml:"port" env:"KOTOBA_SERVER_PORT"`
}

// LanguageConfig binds a language code to a lexicon file.
type LanguageConfig struct {
	Code string `yaml:"code" toml:"code"`
	Path string `yaml:"path" toml:"path"`
}

// DiscoverConfig finds lexicon files by glob. The language code of a match is
// the file name up to its first underscore.
type DiscoverConfig struct {
	Pattern string `yaml:"pattern" toml:"pattern" env:"KOTOBA_DISCOVER_PATTERN"`
}

// SearchConfig holds lookup limits and suggestion settings.
type SearchConfig struct {
	DefaultLimit       int `yaml:"default_limit" toml:"default_limit" env:"KOTOBA_SEARCH_DEFAULT_LIMIT"`
	MaxLimit           int `yaml:"max_limit" toml:"max_limit" env:"KOTOBA_SEARCH_MAX_LIMIT"`
	Suggestions        int `yaml:"suggestions" toml:"suggestions" env:"KOTOBA_SEARCH_SUGGESTIONS"`
	SuggestMaxDistance int `yaml:"suggest_max_distance" toml:"suggest_max_distance" env:"KOTOBA_SEARCH_SUGGEST_MAX_DISTANCE"`
}

// WatchConfig controls reloading lexicons when their files change.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled" env:"KOTOBA_WATCH_ENABLED"`
	DebounceMS int  `yaml:"debounce_ms" toml:"debounce_ms" env:"KOTOBA_WATCH_DEBOUNCE_MS"`
}

// Load reads the config file at path (YAML, or TOML when the extension is
// .toml), applies KOTOBA_* environment overrides and defaults, and expands
// relative paths against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Languages {
		cfg.Languages[i].Path = expandPath(cfg.Languages[i].Path, configDir)
	}
	if cfg.Discover.Pattern != "" {
		cfg.Discover.Pattern = expandPath(cfg.Discover.Pattern, configDir)
	}
	return &cfg, nil
}

// FromEnv builds a config from KOTOBA_* environment variables and defaults only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path as YAML, or TOML when the extension is .toml.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Language returns the configured language with code.
func (c *Config) Language(code string) (LanguageConfig, bool) {
	for _, l := range c.Languages {
		if l.Code == code {
			return l, true
		}
	}
	return LanguageConfig{}, false
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
