// Package persist gives history entries durability across restarts: entry
// metadata and text payloads live in a SQLite database, image payloads as
// PNG files in a captures/ directory next to it. The engine treats this
// store as advisory: a failed durable write is logged and the in-memory
// history stands.
package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"grabd/internal/classify"
	"grabd/internal/history"
)

// currentSchemaVersion is the latest schema version. Bump when adding
// migrations.
const currentSchemaVersion = 1

// Store is the durable side of the history store.
type Store struct {
	db          *sql.DB
	capturesDir string
}

// Open initializes the database at baseDir/grabd.db and the payload
// directory at baseDir/captures, creating both as needed. The baseDir
// parameter lets tests use t.TempDir().
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	capturesDir := filepath.Join(baseDir, "captures")
	if err := os.MkdirAll(capturesDir, 0o700); err != nil {
		return nil, fmt.Errorf("create captures directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "grabd.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(dbPath, 0o600)

	return &Store{db: db, capturesDir: capturesDir}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Append durably records e. Image payloads are written to the captures
// directory first so a crash between the two writes leaves at worst an
// orphaned file, never a row pointing at nothing.
func (s *Store) Append(e history.Entry) error {
	payloadFile := ""
	if len(e.Payload) > 0 {
		payloadFile = e.ID + ".png"
		path := filepath.Join(s.capturesDir, payloadFile)
		if err := os.WriteFile(path, e.Payload, 0o600); err != nil {
			return fmt.Errorf("write payload %s: %w", payloadFile, err)
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO entries (id, category, content, payload_file, source_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Category), e.Content, payloadFile, e.SourceSize, e.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", e.ID, err)
	}
	return nil
}

// LoadAll returns every stored entry, oldest first, ready to be replayed
// into the in-memory store at startup. An entry whose payload file has
// gone missing is returned without its payload rather than dropped.
func (s *Store) LoadAll() ([]history.Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, category, content, payload_file, source_size, created_at
		FROM entries ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []history.Entry
	for rows.Next() {
		var (
			e           history.Entry
			category    string
			payloadFile string
			createdAt   int64
		)
		if err := rows.Scan(&e.ID, &category, &e.Content, &payloadFile, &e.SourceSize, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Category = classify.Category(category)
		e.Timestamp = time.Unix(0, createdAt)
		if payloadFile != "" {
			data, err := os.ReadFile(filepath.Join(s.capturesDir, payloadFile))
			if err == nil {
				e.Payload = data
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the entry row and its payload file, if any.
func (s *Store) Delete(id string) error {
	var payloadFile string
	err := s.db.QueryRow(`SELECT payload_file FROM entries WHERE id = ?`, id).Scan(&payloadFile)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup entry %s: %w", id, err)
	}
	if _, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if payloadFile != "" {
		_ = os.Remove(filepath.Join(s.capturesDir, payloadFile))
	}
	return nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		_, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS entries (
				id           TEXT PRIMARY KEY,
				category     TEXT NOT NULL,
				content      TEXT NOT NULL DEFAULT '',
				payload_file TEXT NOT NULL DEFAULT '',
				source_size  INTEGER NOT NULL,
				created_at   INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
		`)
		if err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
