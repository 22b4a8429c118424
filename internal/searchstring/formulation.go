// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searchstring assembles Scopus search strings from extracted
// topics: words within a topic are joined with AND, topics with OR, and
// optional similar-word groups widen each word into an OR cluster.
package searchstring

import (
	"fmt"
	"strings"
)

// joinTokens joins tokens with the given boolean operator, optionally
// double-quoting or parenthesising each token first.
func joinTokens(tokens []string, operator string, quote, parens bool) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if quote {
			tok = `"` + tok + `"`
		}
		if parens {
			tok = "(" + tok + ")"
		}
		parts[i] = tok
	}
	return strings.Join(parts, " "+operator+" ")
}

// JoinTopics builds a search string from topics without similar words:
// words within a topic are ANDed, topics are ORed.
//
//	JoinTopics([][]string{{"machine", "learning"}, {"code", "smell"}})
//	// ("machine" AND "learning") OR ("code" AND "smell")
func JoinTopics(topics [][]string) string {
	parts := make([]string, len(topics))
	for i, words := range topics {
		parts[i] = joinTokens(words, "AND", true, false)
	}
	return joinTokens(parts, "OR", false, true)
}

// JoinTopicsWithSimilarWords builds a search string from topics whose
// words have been widened into similar-word groups: similar words are
// ORed, word groups within a topic are ANDed, topics are ORed.
//
//	JoinTopicsWithSimilarWords([][][]string{
//		{{"machine", "computer"}, {"learning", "knowledge"}},
//	})
//	// (("machine" OR "computer") AND ("learning" OR "knowledge"))
func JoinTopicsWithSimilarWords(topics [][][]string) string {
	topicParts := make([]string, len(topics))
	for i, topic := range topics {
		groups := make([]string, len(topic))
		for j, similar := range topic {
			groups[j] = joinTokens(similar, "OR", true, false)
		}
		topicParts[i] = joinTokens(groups, "AND", false, true)
	}
	return joinTokens(topicParts, "OR", false, true)
}

// ReduceTopics keeps at most n words per topic, preserving order. The
// topic-extraction stage ranks words by weight, so truncation keeps the
// most representative ones.
func ReduceTopics(topics [][]string, n int) [][]string {
	out := make([][]string, len(topics))
	for i, words := range topics {
		if len(words) > n {
			words = words[:n]
		}
		out[i] = words
	}
	return out
}

// SetPubYearBoundaries appends PUBYEAR boundaries to a search string.
// A zero year means unbounded on that side. minYear must be below
// maxYear when both are set.
func SetPubYearBoundaries(s string, minYear, maxYear int) (string, error) {
	if minYear != 0 && maxYear != 0 && minYear >= maxYear {
		return "", fmt.Errorf("min year %d must be below max year %d", minYear, maxYear)
	}
	if minYear != 0 {
		s += fmt.Sprintf(" AND PUBYEAR > %d", minYear)
	}
	if maxYear != 0 {
		s += fmt.Sprintf(" AND PUBYEAR < %d", maxYear)
	}
	return s, nil
}

// WrapTitleAbsKey scopes a search string to title, abstract, and
// keyword fields, the form the Scopus stage submits.
func WrapTitleAbsKey(s string) string {
	return "TITLE-ABS-KEY(" + s + ")"
}
