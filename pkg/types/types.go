// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the sesg pipeline:
// persistence records for systematic reviews, experiments, and search
// strings, plus the configuration blocks each stage consumes.
package types

// Review represents one systematic literature review under study.
type Review struct {
	// ID is the database primary key.
	ID int64 `json:"id" yaml:"id"`

	// Name uniquely identifies the review (e.g. "code-smells-slr").
	Name string `json:"name" yaml:"name"`

	// MinPublicationYear and MaxPublicationYear bound the publication
	// window appended to every search string. Zero means unbounded.
	MinPublicationYear int `json:"min_publication_year,omitempty" yaml:"min_publication_year,omitempty"`
	MaxPublicationYear int `json:"max_publication_year,omitempty" yaml:"max_publication_year,omitempty"`
}

// Experiment represents one search-string generation run within a review.
type Experiment struct {
	// ID is the database primary key.
	ID int64 `json:"id" yaml:"id"`

	// ReviewID links the experiment to its review.
	ReviewID int64 `json:"review_id" yaml:"review_id"`

	// Name uniquely identifies the experiment within its review.
	Name string `json:"name" yaml:"name"`
}

// SearchString is one generated query awaiting (or holding) Scopus results.
type SearchString struct {
	// ID is the database primary key.
	ID int64 `json:"id" yaml:"id"`

	// ExperimentID links the string to its experiment.
	ExperimentID int64 `json:"experiment_id" yaml:"experiment_id"`

	// String is the raw generated search string, before the
	// TITLE-ABS-KEY wrapper and publication-year boundaries are applied.
	String string `json:"string" yaml:"string"`

	// Strategy names the topic-extraction strategy that produced the
	// string (e.g. "lda", "bertopic").
	Strategy string `json:"strategy" yaml:"strategy"`
}
