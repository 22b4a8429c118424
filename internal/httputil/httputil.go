// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"io"
	"net/http"
	"time"
)

// NewClient returns an *http.Client for API scraping. A zero timeout
// leaves the transport defaults in place, which is what the Scopus stage
// wants: upstream 429 responses, not client-side timeouts, drive its
// retry policy.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// DrainClose discards any unread response body and closes it so the
// underlying connection can be reused. Safe to call with a nil response.
func DrainClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
