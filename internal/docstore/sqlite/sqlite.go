// Package sqlite is an optional SQLite-backed doc_id -> URL store, an
// alternative to docmap's single flat JSON file for corpora too large to
// hold their whole mapping comfortably in one JSON object at query time.
// Grounded on internal/storage/sqlite/store.go's connection-and-pragma
// idiom in the teacher, trimmed to this domain's much smaller schema (one
// table, no batched async writer — a build run writes its doc mapping once,
// in order, at the end of a single process).
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS doc_mapping (
		doc_id INTEGER PRIMARY KEY,
		url TEXT NOT NULL
	)
`

// Store is a SQLite-backed doc_id -> URL mapping.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the doc_mapping table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite doc mapping %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating doc_mapping table: %w", err)
	}
	return &Store{db: db}, nil
}

// WriteAll replaces the doc_mapping table's contents with urls, keyed by
// doc_id, inside a single transaction.
func (s *Store) WriteAll(urls map[int]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning doc mapping transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM doc_mapping"); err != nil {
		return fmt.Errorf("clearing doc_mapping: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO doc_mapping (doc_id, url) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing doc_mapping insert: %w", err)
	}
	defer stmt.Close()

	for docID, url := range urls {
		if _, err := stmt.Exec(docID, url); err != nil {
			return fmt.Errorf("inserting doc_mapping row %d: %w", docID, err)
		}
	}
	return tx.Commit()
}

// URL looks up the URL for docID. The bool is false if docID is absent.
func (s *Store) URL(docID int) (string, bool, error) {
	var url string
	err := s.db.QueryRow("SELECT url FROM doc_mapping WHERE doc_id = ?", docID).Scan(&url)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying doc_mapping for doc_id %d: %w", docID, err)
	}
	return url, true, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
