package lexicon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotoba/internal/models"
)

// WriteJSON writes lex as a lexicon document.
func WriteJSON(w io.Writer, lex *models.Lexicon) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(document{Synsets: lex.Synsets, Words: lex.Words})
}

// WriteYAML writes lex as a YAML lexicon document.
func WriteYAML(w io.Writer, lex *models.Lexicon) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Synsets: lex.Synsets, Words: lex.Words}); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile stores lex at path in the format implied by its extension.
func WriteFile(ctx context.Context, path string, lex *models.Lexicon) error {
	format := DetectFormat(path)
	if format == FormatSQLite {
		store, err := OpenSQLite(path)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, lex); err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return store.Close()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if format == FormatYAML {
		err = WriteYAML(f, lex)
	} else {
		err = WriteJSON(f, lex)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write lexicon: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename so watchers never observe a half-written file.
	return os.Rename(tmp, path)
}
