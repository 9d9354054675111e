package lexicon

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotoba/internal/models"
)

// SQLiteStore keeps a lexicon snapshot in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a snapshot database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// openSQLiteExisting opens an existing snapshot without touching its schema.
func openSQLiteExisting(dbPath string) (*SQLiteStore, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS synsets (
		id TEXT PRIMARY KEY,
		defs TEXT NOT NULL,
		ex TEXT NOT NULL,
		syns TEXT NOT NULL,
		ants TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS word_senses (
		word TEXT NOT NULL,
		pos TEXT NOT NULL,
		position INTEGER NOT NULL,
		synset_id TEXT NOT NULL,
		PRIMARY KEY (word, pos, position)
	);

	CREATE INDEX IF NOT EXISTS idx_word_senses_synset ON word_senses(synset_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the stored snapshot with lex in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, lex *models.Lexicon) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM word_senses`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM synsets`); err != nil {
		return err
	}

	synStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO synsets (id, defs, ex, syns, ants) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer synStmt.Close()
	for id, sense := range lex.Synsets {
		cols, err := encodeLists(sense.Definitions, sense.Examples, sense.SynonymRefs, sense.AntonymRefs)
		if err != nil {
			return fmt.Errorf("failed to encode synset %s: %w", id, err)
		}
		if _, err := synStmt.ExecContext(ctx, id, cols[0], cols[1], cols[2], cols[3]); err != nil {
			return fmt.Errorf("failed to insert synset %s: %w", id, err)
		}
	}

	wordStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO word_senses (word, pos, position, synset_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer wordStmt.Close()
	for word, entry := range lex.Words {
		var execErr error
		entry.Each(func(pos models.PartOfSpeech, ids []string) {
			for i, id := range ids {
				if execErr != nil {
					return
				}
				_, execErr = wordStmt.ExecContext(ctx, word, string(pos), i, id)
			}
		})
		if execErr != nil {
			return fmt.Errorf("failed to insert word %s: %w", word, execErr)
		}
	}
	return tx.Commit()
}

// Load reads the stored snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Lexicon, error) {
	lex := models.NewLexicon()

	rows, err := s.db.QueryContext(ctx, `SELECT id, defs, ex, syns, ants FROM synsets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, defs, ex, syns, ants string
		if err := rows.Scan(&id, &defs, &ex, &syns, &ants); err != nil {
			return nil, err
		}
		var sense models.Sense
		if err := json.Unmarshal([]byte(defs), &sense.Definitions); err != nil {
			return nil, fmt.Errorf("synset %s defs: %w", id, err)
		}
		if err := json.Unmarshal([]byte(ex), &sense.Examples); err != nil {
			return nil, fmt.Errorf("synset %s ex: %w", id, err)
		}
		if err := json.Unmarshal([]byte(syns), &sense.SynonymRefs); err != nil {
			return nil, fmt.Errorf("synset %s syns: %w", id, err)
		}
		if err := json.Unmarshal([]byte(ants), &sense.AntonymRefs); err != nil {
			return nil, fmt.Errorf("synset %s ants: %w", id, err)
		}
		lex.Synsets[id] = sense
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	wrows, err := s.db.QueryContext(ctx,
		`SELECT word, pos, synset_id FROM word_senses ORDER BY word, pos, position`)
	if err != nil {
		return nil, err
	}
	defer wrows.Close()
	for wrows.Next() {
		var word, pos, id string
		if err := wrows.Scan(&word, &pos, &id); err != nil {
			return nil, err
		}
		p := models.PartOfSpeech(pos)
		if !p.Valid() {
			return nil, fmt.Errorf("word %s: unknown part of speech %q", word, pos)
		}
		entry := lex.Words[word]
		entry.SetSenses(p, append(entry.Senses(p), id))
		lex.Words[word] = entry
	}
	if err := wrows.Err(); err != nil {
		return nil, err
	}
	return lex, nil
}

// Counts returns the number of stored synsets and distinct words.
func (s *SQLiteStore) Counts(ctx context.Context) (synsets, words int64, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM synsets`).Scan(&synsets); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT word) FROM word_senses`).Scan(&words); err != nil {
		return 0, 0, err
	}
	return synsets, words, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func loadSQLite(ctx context.Context, path string) (*Source, error) {
	store, err := openSQLiteExisting(path)
	if err != nil {
		return nil, loadErr(path, OpRead, err)
	}
	defer store.Close()

	lex, err := store.Load(ctx)
	if err != nil {
		return nil, loadErr(path, OpParse, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, loadErr(path, OpRead, err)
	}
	fp, err := Fingerprint(path)
	if err != nil {
		return nil, loadErr(path, OpRead, err)
	}
	return &Source{
		Lexicon:     lex,
		Path:        path,
		Format:      FormatSQLite,
		Fingerprint: fp,
		Size:        info.Size(),
	}, nil
}

func encodeLists(lists ...[]string) ([]string, error) {
	out := make([]string, len(lists))
	for i, l := range lists {
		if l == nil {
			l = []string{}
		}
		b, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		out[i] = string(b)
	}
	return out, nil
}
