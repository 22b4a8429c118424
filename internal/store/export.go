// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportExperiment is the YAML shape of one experiment in an export.
type ExportExperiment struct {
	Name    string         `yaml:"name"`
	Strings []ExportString `yaml:"strings"`
}

// ExportString is the YAML shape of one search string and its results.
type ExportString struct {
	String       string   `yaml:"string"`
	Strategy     string   `yaml:"strategy,omitempty"`
	TotalResults *int     `yaml:"total_results,omitempty"`
	Titles       []string `yaml:"titles,omitempty"`
}

// ExportReview is the YAML document root for a review export.
type ExportReview struct {
	Name               string             `yaml:"name"`
	MinPublicationYear int                `yaml:"min_publication_year,omitempty"`
	MaxPublicationYear int                `yaml:"max_publication_year,omitempty"`
	Experiments        []ExportExperiment `yaml:"experiments"`
}

// ExportYAML writes a review, its experiments, its search strings, and
// any retrieved titles to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, reviewName string, w io.Writer) error {
	review, err := s.ReviewByName(ctx, reviewName)
	if err != nil {
		return err
	}

	doc := ExportReview{
		Name:               review.Name,
		MinPublicationYear: review.MinPublicationYear,
		MaxPublicationYear: review.MaxPublicationYear,
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM experiments WHERE review_id = ? ORDER BY id`, review.ID)
	if err != nil {
		return fmt.Errorf("querying experiments: %w", err)
	}
	defer rows.Close()

	type expRow struct {
		id   int64
		name string
	}
	var exps []expRow
	for rows.Next() {
		var e expRow
		if err := rows.Scan(&e.id, &e.name); err != nil {
			return fmt.Errorf("scanning experiment: %w", err)
		}
		exps = append(exps, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, e := range exps {
		exp := ExportExperiment{Name: e.name}

		srows, err := s.db.QueryContext(ctx,
			`SELECT ss.string, ss.strategy, sr.total_results, sr.titles
			 FROM search_strings ss
			 LEFT JOIN scopus_results sr ON sr.search_string_id = ss.id
			 WHERE ss.experiment_id = ?
			 ORDER BY ss.id`, e.id)
		if err != nil {
			return fmt.Errorf("querying search strings: %w", err)
		}

		for srows.Next() {
			var es ExportString
			var total *int
			var blob []byte
			if err := srows.Scan(&es.String, &es.Strategy, &total, &blob); err != nil {
				srows.Close()
				return fmt.Errorf("scanning search string: %w", err)
			}
			es.TotalResults = total
			if blob != nil {
				titles, err := decompressTitles(blob)
				if err != nil {
					srows.Close()
					return err
				}
				es.Titles = titles
			}
			exp.Strings = append(exp.Strings, es)
		}
		if err := srows.Err(); err != nil {
			srows.Close()
			return err
		}
		srows.Close()

		doc.Experiments = append(doc.Experiments, exp)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
