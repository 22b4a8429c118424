// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluation scores a search string's retrieved titles against a
// gold standard, the set of studies a systematic review is known to
// include. A string that retrieves many gold-standard studies with few
// total results is a good string.
package evaluation

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/demetrius-mp/sesg/internal/scopus"
)

// maxTitleDistance is the Levenshtein ceiling under which two
// preprocessed titles are considered the same study. Titles differ
// across databases in punctuation and casing, rarely in more.
const maxTitleDistance = 10

// PreprocessTitle normalises a title for comparison: surrounding
// whitespace stripped, every character lowered.
func PreprocessTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchTitles reports which gold-standard titles appear among the
// retrieved ones. The returned slice holds the indexes into gold of the
// matched titles, in order. A gold title matches when some retrieved
// title is within maxTitleDistance edits of its preprocessed form.
func MatchTitles(gold, retrieved []string) []int {
	processed := make([]string, len(retrieved))
	for i, title := range retrieved {
		processed[i] = PreprocessTitle(title)
	}

	var matched []int
	for i, title := range gold {
		want := PreprocessTitle(title)
		for _, have := range processed {
			if levenshtein.ComputeDistance(want, have) < maxTitleDistance {
				matched = append(matched, i)
				break
			}
		}
	}
	return matched
}

// Metrics holds the counts a search string's scores derive from.
type Metrics struct {
	// GSSize is the number of studies in the gold standard.
	GSSize int

	// ScopusResults is the total hit count Scopus reported, before the
	// delivery cap.
	ScopusResults int

	// GSStudiesInScopus is the number of gold-standard studies found
	// among the retrieved titles.
	GSStudiesInScopus int
}

// Score evaluates retrieved titles against the gold standard.
// totalResults is the hit count Scopus reported for the string.
func Score(gold, retrieved []string, totalResults int) Metrics {
	return Metrics{
		GSSize:            len(gold),
		ScopusResults:     totalResults,
		GSStudiesInScopus: len(MatchTitles(gold, retrieved)),
	}
}

// cappedResults bounds the reported total at the delivery cap, since no
// string retrieves more titles than Scopus will hand over.
func (m Metrics) cappedResults() int {
	if m.ScopusResults > scopus.MaxResults {
		return scopus.MaxResults
	}
	return m.ScopusResults
}

// Precision is the share of retrieved results that are gold-standard
// studies. Zero results means zero precision.
func (m Metrics) Precision() float64 {
	if m.cappedResults() == 0 {
		return 0
	}
	return float64(m.GSStudiesInScopus) / float64(m.cappedResults())
}

// Recall is the share of the gold standard the string retrieved. An
// empty gold standard means zero recall.
func (m Metrics) Recall() float64 {
	if m.GSSize == 0 {
		return 0
	}
	return float64(m.GSStudiesInScopus) / float64(m.GSSize)
}

// F1Score is the harmonic mean of precision and recall, or zero when
// both are zero.
func (m Metrics) F1Score() float64 {
	precision := m.Precision()
	recall := m.Recall()
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
