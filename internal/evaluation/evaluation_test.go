// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocessTitle(t *testing.T) {
	assert.Equal(t, "a string here.", PreprocessTitle(" A string Here.  \n"))
}

func TestMatchTitles(t *testing.T) {
	tests := []struct {
		name      string
		gold      []string
		retrieved []string
		want      []int
	}{
		{
			name:      "case and whitespace differences match",
			gold:      []string{"Machine Learning", "Databases", "Search Strings"},
			retrieved: []string{"databases, an introduction", "machine learning", "search string"},
			want:      []int{0, 2},
		},
		{
			name:      "near-identical punctuation variants match",
			gold:      []string{"Code smells: a survey"},
			retrieved: []string{"Code Smells - A Survey"},
			want:      []int{0},
		},
		{
			name:      "unrelated titles do not match",
			gold:      []string{"A study on technical debt"},
			retrieved: []string{"Neural networks for image segmentation"},
			want:      nil,
		},
		{
			name:      "empty retrieved set matches nothing",
			gold:      []string{"Anything"},
			retrieved: nil,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchTitles(tt.gold, tt.retrieved))
		})
	}
}

func TestMetrics(t *testing.T) {
	m := Metrics{GSSize: 15, ScopusResults: 13, GSStudiesInScopus: 2}

	assert.InDelta(t, 2.0/13.0, m.Precision(), 1e-9)
	assert.InDelta(t, 2.0/15.0, m.Recall(), 1e-9)

	precision, recall := m.Precision(), m.Recall()
	assert.InDelta(t, 2*precision*recall/(precision+recall), m.F1Score(), 1e-9)
}

func TestMetricsCapsReportedTotal(t *testing.T) {
	// Precision divides by the delivery cap, not the raw total.
	m := Metrics{GSSize: 10, ScopusResults: 10000, GSStudiesInScopus: 5}
	assert.InDelta(t, 5.0/5000.0, m.Precision(), 1e-9)
}

func TestMetricsZeroCases(t *testing.T) {
	assert.Zero(t, Metrics{GSSize: 10}.Precision(), "no results means zero precision")
	assert.Zero(t, Metrics{ScopusResults: 10}.Recall(), "empty gold standard means zero recall")
	assert.Zero(t, Metrics{GSSize: 10, ScopusResults: 10}.F1Score(), "zero precision and recall mean zero F1")
}

func TestScore(t *testing.T) {
	gold := []string{"Machine Learning", "Search Strings", "Unfound Study"}
	retrieved := []string{"machine learning", "search string", "something else"}

	m := Score(gold, retrieved, 120)
	assert.Equal(t, Metrics{GSSize: 3, ScopusResults: 120, GSStudiesInScopus: 2}, m)
}
