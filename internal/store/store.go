// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists reviews, experiments, generated search strings,
// and the Scopus result titles each string retrieved.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the sesg SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			min_publication_year INTEGER NOT NULL DEFAULT 0,
			max_publication_year INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS experiments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			review_id INTEGER NOT NULL REFERENCES reviews(id),
			name TEXT NOT NULL,
			UNIQUE(review_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS search_strings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			experiment_id INTEGER NOT NULL REFERENCES experiments(id),
			string TEXT NOT NULL,
			strategy TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_strings_experiment
			ON search_strings(experiment_id)`,
		`CREATE TABLE IF NOT EXISTS scopus_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_string_id INTEGER NOT NULL UNIQUE REFERENCES search_strings(id),
			total_results INTEGER NOT NULL,
			titles BLOB NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
