package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LanguageCode derives a language code from a lexicon file name:
// "en_wordnet_2024.json" is "en". A name without an underscore yields its
// base name without extension.
func LanguageCode(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '_'); i > 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover expands the discover pattern into language bindings, sorted by
// code. When several files map to one code, the lexically last path wins.
func Discover(pattern string) ([]LanguageConfig, error) {
	if pattern == "" {
		return nil, nil
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid discover pattern %q: %w", pattern, err)
	}
	slices.Sort(matches)

	byCode := make(map[string]string, len(matches))
	for _, m := range matches {
		if code := LanguageCode(m); code != "" {
			byCode[code] = m
		}
	}
	langs := make([]LanguageConfig, 0, len(byCode))
	for code, path := range byCode {
		langs = append(langs, LanguageConfig{Code: code, Path: path})
	}
	slices.SortFunc(langs, func(a, b LanguageConfig) int { return strings.Compare(a.Code, b.Code) })
	return langs, nil
}

// ResolveLanguages returns the configured languages plus those found by the
// discover pattern. Explicit entries take precedence over discovered ones.
func (c *Config) ResolveLanguages() ([]LanguageConfig, error) {
	out := slices.Clone(c.Languages)
	discovered, err := Discover(c.Discover.Pattern)
	if err != nil {
		return nil, err
	}
	for _, d := range discovered {
		if _, ok := c.Language(d.Code); !ok {
			out = append(out, d)
		}
	}
	return out, nil
}
