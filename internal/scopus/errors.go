// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import "errors"

// Terminal errors returned by a search. Callers distinguish them with
// errors.Is: an invalid query means skip this string and continue with
// the next, while exhausted API keys mean the whole batch should stop.
var (
	// ErrOutOfAPIKeys is returned when every API key in the pool has
	// been removed after hitting its quota.
	ErrOutOfAPIKeys = errors.New("scopus: all API keys exhausted")

	// ErrInvalidQuery is returned on HTTP 400 or 413: the search string
	// is malformed or too large. Never retried and never rotates keys.
	ErrInvalidQuery = errors.New("scopus: invalid or oversized query")

	// ErrTooManyServerErrors is returned when consecutive HTTP 500
	// responses exceed the retry ceiling.
	ErrTooManyServerErrors = errors.New("scopus: too many server errors")

	// ErrTooManyMalformedPayloads is returned when consecutive
	// unparsable response bodies exceed the retry ceiling.
	ErrTooManyMalformedPayloads = errors.New("scopus: too many malformed payloads")
)
