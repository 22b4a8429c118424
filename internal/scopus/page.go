// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// PageSize is the fixed number of entries per Scopus result page.
	PageSize = 25

	// MaxResults is the most results Scopus delivers for one query,
	// regardless of the reported total.
	MaxResults = 5000

	// MaxPages is the page ceiling implied by MaxResults.
	MaxPages = 200
)

// Entry is one study returned by the search API. Entries without a title
// are dropped during parsing.
type Entry struct {
	// Identifier is the Scopus identifier (dc:identifier), when present.
	Identifier string

	// Title is the study title (dc:title). Never empty.
	Title string

	// CitedByCount is the citation count, or -1 when the API omitted it.
	CitedByCount int

	// Raw carries every upstream field of the entry untouched, for
	// consumers that need more than the extracted columns.
	Raw map[string]any
}

// Page is one batch of up to PageSize results plus pagination metadata.
// Pages are immutable once parsed.
type Page struct {
	// TotalResults is the total hit count reported by Scopus for the
	// query, independent of the MaxResults delivery cap.
	TotalResults int

	// NumberOfPages is min(ceil(min(MaxResults, TotalResults)/PageSize), MaxPages).
	NumberOfPages int

	// CurrentPage is the 1-based index of this page.
	CurrentPage int

	// Entries are the titled studies on this page.
	Entries []Entry
}

// Scopus wraps every payload in a "search-results" envelope. Totals come
// back as JSON strings on some gateway versions and as numbers on
// others, hence flexInt.
type searchEnvelope struct {
	SearchResults *searchResults `json:"search-results"`
}

type searchResults struct {
	TotalResults *flexInt         `json:"opensearch:totalResults"`
	StartIndex   *flexInt         `json:"opensearch:startIndex"`
	Entries      []map[string]any `json:"entry"`
}

// flexInt decodes a JSON integer given either as a number or as a
// quoted string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	*f = flexInt(n)
	return nil
}

// parsePage decodes a Scopus response body into a Page. A body that is
// not JSON, or that lacks the search-results envelope or its totals, is
// a malformed payload and returns an error.
func parsePage(body []byte) (Page, error) {
	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, fmt.Errorf("decoding response body: %w", err)
	}
	if env.SearchResults == nil {
		return Page{}, fmt.Errorf("response missing search-results envelope")
	}
	sr := env.SearchResults
	if sr.TotalResults == nil || sr.StartIndex == nil {
		return Page{}, fmt.Errorf("search-results missing opensearch totals")
	}

	total := int(*sr.TotalResults)
	start := int(*sr.StartIndex)

	delivered := total
	if delivered > MaxResults {
		delivered = MaxResults
	}
	pages := (delivered + PageSize - 1) / PageSize
	if pages > MaxPages {
		pages = MaxPages
	}

	page := Page{
		TotalResults:  total,
		NumberOfPages: pages,
		CurrentPage:   start/PageSize + 1,
	}

	for _, raw := range sr.Entries {
		title, _ := raw["dc:title"].(string)
		if title == "" {
			// Untitled entries carry nothing worth keeping.
			continue
		}
		e := Entry{
			Title:        title,
			CitedByCount: -1,
			Raw:          raw,
		}
		if id, ok := raw["dc:identifier"].(string); ok {
			e.Identifier = id
		}
		if c, ok := citedByCount(raw["citedby-count"]); ok {
			e.CitedByCount = c
		}
		page.Entries = append(page.Entries, e)
	}

	return page, nil
}

// citedByCount extracts a citation count that Scopus serialises either
// as a string or as a number.
func citedByCount(v any) (int, bool) {
	switch c := v.(type) {
	case string:
		n, err := strconv.Atoi(c)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return int(c), true
	default:
		return 0, false
	}
}
