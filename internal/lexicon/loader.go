// Package lexicon loads lexicon documents (JSON, YAML, or SQLite snapshots) into models.Lexicon.
package lexicon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotoba/internal/models"
)

// Format is the encoding of a lexicon source.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat picks the format from the file extension. Unknown extensions are read as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}

// Source is a loaded lexicon together with where it came from.
type Source struct {
	Lexicon     *models.Lexicon
	Path        string
	Format      Format
	Fingerprint uint64
	Size        int64
}

// document mirrors the top-level shape of a lexicon file. Both tables are
// required; other top-level keys (e.g. pos_tags) are ignored.
type document struct {
	Synsets map[string]models.Sense     `json:"synsets" yaml:"synsets"`
	Words   map[string]models.WordEntry `json:"words" yaml:"words"`
}

// Load reads and validates the lexicon at path. Every failure is a *LoadError.
func Load(ctx context.Context, path string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadErr(path, OpRead, err)
	}
	format := DetectFormat(path)
	if format == FormatSQLite {
		return loadSQLite(ctx, path)
	}

	data, unmap, err := readMapped(path)
	if err != nil {
		return nil, loadErr(path, OpRead, err)
	}
	defer unmap()

	lex, err := decode(data, format)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Source = path
			return nil, le
		}
		return nil, loadErr(path, OpParse, err)
	}
	return &Source{
		Lexicon:     lex,
		Path:        path,
		Format:      format,
		Fingerprint: xxhash.Sum64(data),
		Size:        int64(len(data)),
	}, nil
}

// Parse decodes a lexicon document held in memory.
func Parse(data []byte, format Format) (*models.Lexicon, error) {
	if format == FormatSQLite {
		return nil, loadErr("<memory>", OpParse, fmt.Errorf("sqlite snapshots cannot be parsed from memory"))
	}
	lex, err := decode(data, format)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, le
		}
		return nil, loadErr("<memory>", OpParse, err)
	}
	return lex, nil
}

func decode(data []byte, format Format) (*models.Lexicon, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	if doc.Synsets == nil {
		return nil, loadErr("", OpValidate, fmt.Errorf("missing required field %q", "synsets"))
	}
	if doc.Words == nil {
		return nil, loadErr("", OpValidate, fmt.Errorf("missing required field %q", "words"))
	}
	return &models.Lexicon{Synsets: doc.Synsets, Words: doc.Words}, nil
}

// readMapped maps the file read-only. Decoders copy what they keep, so the
// mapping is released as soon as decoding is done.
func readMapped(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return []byte{}, func() {}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: %w", err)
	}
	return m, func() { _ = m.Unmap() }, nil
}

// Fingerprint hashes the raw bytes of the source at path without decoding it.
func Fingerprint(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}
