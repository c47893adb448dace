package memo

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the alternative persistent backend, keeping the cache in
// a single SQLite file under the generation directory.
type SQLiteStore struct {
	dir string
	db  *sql.DB
}

func openSQLiteStore(dir string) (*SQLiteStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(abs, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cache_entries (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &SQLiteStore{dir: abs, db: db}, nil
}

func (s *SQLiteStore) Get(key Key) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM cache_entries WHERE key = ?`, string(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key Key, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO cache_entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		string(key), value,
	)
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("sqlite clear: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Location() string { return s.dir }
