// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/demetrius-mp/sesg/pkg/types"
)

// ErrNotFound is returned when a named review or experiment does not exist.
var ErrNotFound = errors.New("store: not found")

// CreateReview inserts a review and returns it with its assigned ID.
func (s *Store) CreateReview(ctx context.Context, name string, minYear, maxYear int) (types.Review, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (name, min_publication_year, max_publication_year) VALUES (?, ?, ?)`,
		name, minYear, maxYear)
	if err != nil {
		return types.Review{}, fmt.Errorf("inserting review %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Review{}, fmt.Errorf("inserting review %q: %w", name, err)
	}
	return types.Review{ID: id, Name: name, MinPublicationYear: minYear, MaxPublicationYear: maxYear}, nil
}

// ReviewByName looks a review up by its unique name.
func (s *Store) ReviewByName(ctx context.Context, name string) (types.Review, error) {
	var r types.Review
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, min_publication_year, max_publication_year FROM reviews WHERE name = ?`,
		name).Scan(&r.ID, &r.Name, &r.MinPublicationYear, &r.MaxPublicationYear)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Review{}, fmt.Errorf("review %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return types.Review{}, fmt.Errorf("querying review %q: %w", name, err)
	}
	return r, nil
}

// CreateExperiment inserts an experiment under the given review.
func (s *Store) CreateExperiment(ctx context.Context, reviewID int64, name string) (types.Experiment, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO experiments (review_id, name) VALUES (?, ?)`, reviewID, name)
	if err != nil {
		return types.Experiment{}, fmt.Errorf("inserting experiment %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Experiment{}, fmt.Errorf("inserting experiment %q: %w", name, err)
	}
	return types.Experiment{ID: id, ReviewID: reviewID, Name: name}, nil
}

// ExperimentByName looks an experiment up within a review.
func (s *Store) ExperimentByName(ctx context.Context, reviewID int64, name string) (types.Experiment, error) {
	var e types.Experiment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, review_id, name FROM experiments WHERE review_id = ? AND name = ?`,
		reviewID, name).Scan(&e.ID, &e.ReviewID, &e.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Experiment{}, fmt.Errorf("experiment %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return types.Experiment{}, fmt.Errorf("querying experiment %q: %w", name, err)
	}
	return e, nil
}

// AddSearchStrings bulk-inserts generated strings for an experiment.
func (s *Store) AddSearchStrings(ctx context.Context, experimentID int64, strategy string, strings []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO search_strings (experiment_id, string, strategy) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, str := range strings {
		if _, err := stmt.ExecContext(ctx, experimentID, str, strategy); err != nil {
			return fmt.Errorf("inserting search string: %w", err)
		}
	}
	return tx.Commit()
}

// PendingSearchStrings returns the experiment's strings that have no
// stored Scopus result yet, in insertion order. This is what lets an
// interrupted batch resume where it stopped.
func (s *Store) PendingSearchStrings(ctx context.Context, experimentID int64, strategy string) ([]types.SearchString, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ss.id, ss.experiment_id, ss.string, ss.strategy
		 FROM search_strings ss
		 LEFT JOIN scopus_results sr ON sr.search_string_id = ss.id
		 WHERE ss.experiment_id = ? AND ss.strategy = ? AND sr.id IS NULL
		 ORDER BY ss.id`,
		experimentID, strategy)
	if err != nil {
		return nil, fmt.Errorf("querying pending strings: %w", err)
	}
	defer rows.Close()

	var out []types.SearchString
	for rows.Next() {
		var ss types.SearchString
		if err := rows.Scan(&ss.ID, &ss.ExperimentID, &ss.String, &ss.Strategy); err != nil {
			return nil, fmt.Errorf("scanning search string: %w", err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// CompletedResult pairs a search string with its stored Scopus result.
type CompletedResult struct {
	SearchString types.SearchString
	TotalResults int
	Titles       []string
}

// CompletedResults returns the experiment's strings that have a stored
// result, titles decompressed, in insertion order. The complement of
// PendingSearchStrings; this is what evaluation runs over.
func (s *Store) CompletedResults(ctx context.Context, experimentID int64, strategy string) ([]CompletedResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ss.id, ss.experiment_id, ss.string, ss.strategy, sr.total_results, sr.titles
		 FROM search_strings ss
		 JOIN scopus_results sr ON sr.search_string_id = ss.id
		 WHERE ss.experiment_id = ? AND ss.strategy = ?
		 ORDER BY ss.id`,
		experimentID, strategy)
	if err != nil {
		return nil, fmt.Errorf("querying completed results: %w", err)
	}
	defer rows.Close()

	var out []CompletedResult
	for rows.Next() {
		var cr CompletedResult
		var blob []byte
		if err := rows.Scan(&cr.SearchString.ID, &cr.SearchString.ExperimentID,
			&cr.SearchString.String, &cr.SearchString.Strategy, &cr.TotalResults, &blob); err != nil {
			return nil, fmt.Errorf("scanning completed result: %w", err)
		}
		if cr.Titles, err = decompressTitles(blob); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// SaveResultTitles records the titles a search string retrieved,
// compressed, along with the total hit count Scopus reported.
func (s *Store) SaveResultTitles(ctx context.Context, searchStringID int64, totalResults int, titles []string) error {
	blob, err := compressTitles(titles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scopus_results (search_string_id, total_results, titles) VALUES (?, ?, ?)
		 ON CONFLICT(search_string_id) DO UPDATE SET
			total_results=excluded.total_results, titles=excluded.titles`,
		searchStringID, totalResults, blob)
	if err != nil {
		return fmt.Errorf("saving result titles: %w", err)
	}
	return nil
}

// ResultTitles loads and decompresses the stored titles for a search
// string. It returns ErrNotFound when the string has no result yet.
func (s *Store) ResultTitles(ctx context.Context, searchStringID int64) ([]string, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT titles FROM scopus_results WHERE search_string_id = ?`,
		searchStringID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results for string %d: %w", searchStringID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying result titles: %w", err)
	}
	return decompressTitles(blob)
}
