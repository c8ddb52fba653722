// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists named baseline payloads in SQLite so delta
// summaries can compare against a saved snapshot instead of an inline
// baseline document.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
)

// ErrNotFound reports a baseline name with no stored snapshot.
var ErrNotFound = errors.New("baseline not found")

// Baseline is one stored snapshot.
type Baseline struct {
	Name      string    `json:"name"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store manages the baselines SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the baselines database at path, creating the
// parent directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS baselines (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Save stores payload under name, replacing any previous snapshot with
// that name. The created timestamp of an existing row is preserved.
func (s *Store) Save(name string, payload any) error {
	if name == "" {
		return errors.New("baseline name is empty")
	}
	raw, err := jsontree.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding baseline payload: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO baselines (name, payload, bytes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			bytes = excluded.bytes,
			updated_at = excluded.updated_at`,
		name, string(raw), len(raw), now, now,
	)
	if err != nil {
		return fmt.Errorf("saving baseline %q: %w", name, err)
	}
	return nil
}

// Get returns the decoded payload stored under name.
func (s *Store) Get(name string) (any, error) {
	var raw string
	err := s.db.QueryRow(`SELECT payload FROM baselines WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("baseline %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading baseline %q: %w", name, err)
	}
	payload, err := jsontree.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding baseline %q: %w", name, err)
	}
	return payload, nil
}

// List returns all stored baselines ordered by name.
func (s *Store) List() ([]Baseline, error) {
	rows, err := s.db.Query(
		`SELECT name, bytes, created_at, updated_at FROM baselines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing baselines: %w", err)
	}
	defer rows.Close()

	var out []Baseline
	for rows.Next() {
		var b Baseline
		var created, updated string
		if err := rows.Scan(&b.Name, &b.Bytes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning baseline row: %w", err)
		}
		if b.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if b.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes the named baseline. Deleting a missing baseline
// returns ErrNotFound.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM baselines WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting baseline %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting baseline %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("baseline %q: %w", name, ErrNotFound)
	}
	return nil
}
