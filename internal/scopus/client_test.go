// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/demetrius-mp/sesg/pkg/types"
)

// scopusBody builds a minimal search-results payload for the page at
// start, with one titled entry per delivered result slot.
func scopusBody(total, start int) string {
	remaining := total - start
	if remaining > PageSize {
		remaining = PageSize
	}
	entries := ""
	for i := 0; i < remaining; i++ {
		if i > 0 {
			entries += ","
		}
		entries += fmt.Sprintf(`{"dc:identifier": "SCOPUS_ID:%d", "dc:title": "Study %d"}`, start+i, start+i)
	}
	return fmt.Sprintf(
		`{"search-results": {"opensearch:totalResults": "%d", "opensearch:startIndex": "%d", "entry": [%s]}}`,
		total, start, entries)
}

// newTestClient builds a client pointed at ts with an uncapped rate
// limiter so tests finish quickly.
func newTestClient(t *testing.T, ts *httptest.Server, keys ...string) *Client {
	t.Helper()

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	c, err := New(types.ScopusConfig{APIKeys: keys})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.httpClient = ts.Client()
	c.limiter.SetLimit(rate.Inf)
	return c
}

// collect drains a search stream into pages and the terminal error.
func collect(ch <-chan Result) ([]Page, error) {
	var pages []Page
	for r := range ch {
		if r.Err != nil {
			return pages, r.Err
		}
		pages = append(pages, r.Page)
	}
	return pages, nil
}

func TestSearchSinglePage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		fmt.Fprint(w, scopusBody(10, start))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1")
	pages, err := collect(c.Search(context.Background(), "machine learning"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if pages[0].CurrentPage != 1 || len(pages[0].Entries) != 10 {
		t.Errorf("page 1 = %d entries (page %d), want 10 entries page 1",
			len(pages[0].Entries), pages[0].CurrentPage)
	}
}

func TestSearchRotatesExpiredKey(t *testing.T) {
	// k1 always answers 429; k2 serves a 27-result query. The search
	// must deliver both pages, shrink the pool to k2 alone, and report
	// no error.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") == "k1" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		fmt.Fprint(w, scopusBody(27, start))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1", "k2")
	pages, err := collect(c.Search(context.Background(), "code smells"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if got := c.Pool().Len(); got != 1 {
		t.Errorf("pool size = %d, want 1", got)
	}
	if keys := c.Pool().Keys(); len(keys) != 1 || keys[0] != "k2" {
		t.Errorf("surviving keys = %v, want [k2]", keys)
	}
}

func TestSearchOutOfAPIKeys(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1")
	pages, err := collect(c.Search(context.Background(), "anything"))
	if !errors.Is(err, ErrOutOfAPIKeys) {
		t.Fatalf("Search error = %v, want ErrOutOfAPIKeys", err)
	}
	if len(pages) != 0 {
		t.Errorf("got %d pages before failure, want 0", len(pages))
	}
}

func TestSearchInvalidQuery(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(status)
			}))
			defer ts.Close()

			c := newTestClient(t, ts, "k1", "k2")
			_, err := collect(c.Search(context.Background(), "TITLE-ABS-KEY(((("))
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("Search error = %v, want ErrInvalidQuery", err)
			}
			// Never retried, never rotates keys.
			if n := atomic.LoadInt32(&calls); n != 1 {
				t.Errorf("%d requests, want 1", n)
			}
			if got := c.Pool().Len(); got != 2 {
				t.Errorf("pool size = %d, want 2", got)
			}
		})
	}
}

func TestSearchServerErrorCeiling(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1")
	_, err := collect(c.Search(context.Background(), "anything"))
	if !errors.Is(err, ErrTooManyServerErrors) {
		t.Fatalf("Search error = %v, want ErrTooManyServerErrors", err)
	}
	// Exactly the attempt ceiling, no more, no fewer.
	if n := atomic.LoadInt32(&calls); n != defaultRetryAttempts {
		t.Errorf("%d requests, want %d", n, defaultRetryAttempts)
	}
}

func TestSearchMalformedPayloadCeiling(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `<html>proxy error</html>`)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1")
	_, err := collect(c.Search(context.Background(), "anything"))
	if !errors.Is(err, ErrTooManyMalformedPayloads) {
		t.Fatalf("Search error = %v, want ErrTooManyMalformedPayloads", err)
	}
	if n := atomic.LoadInt32(&calls); n != defaultRetryAttempts {
		t.Errorf("%d requests, want %d", n, defaultRetryAttempts)
	}
}

func TestSearchTransientThenSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		fmt.Fprint(w, scopusBody(5, start))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1")
	pages, err := collect(c.Search(context.Background(), "anything"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(pages) != 1 || len(pages[0].Entries) != 5 {
		t.Errorf("got %d pages, want 1 with 5 entries", len(pages))
	}
}

func TestSearchFanOutDeliversAllPages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		fmt.Fprint(w, scopusBody(80, start))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1", "k2")

	ch := c.Search(context.Background(), "testing")
	first, ok := <-ch
	if !ok || first.Err != nil {
		t.Fatalf("first result: %+v", first)
	}
	// The first page always arrives first, before fan-out.
	if first.Page.CurrentPage != 1 {
		t.Fatalf("first delivered page = %d, want 1", first.Page.CurrentPage)
	}

	seen := map[int]bool{1: true}
	for r := range ch {
		if r.Err != nil {
			t.Fatalf("fan-out error: %v", r.Err)
		}
		seen[r.Page.CurrentPage] = true
	}
	// 80 results = 4 pages; fan-out order is unspecified.
	for p := 1; p <= 4; p++ {
		if !seen[p] {
			t.Errorf("page %d never delivered", p)
		}
	}
	if len(seen) != 4 {
		t.Errorf("delivered %d distinct pages, want 4", len(seen))
	}
}

func TestSearchAbortsFanOutOnTerminalError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		if start == 50 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, scopusBody(100, start))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1")
	pages, err := collect(c.Search(context.Background(), "anything"))
	if !errors.Is(err, ErrTooManyServerErrors) {
		t.Fatalf("Search error = %v, want ErrTooManyServerErrors", err)
	}
	// Pages delivered before the failure stay valid.
	for _, p := range pages {
		if len(p.Entries) == 0 {
			t.Errorf("delivered page %d has no entries", p.CurrentPage)
		}
	}
}

func TestSearchShrinksRateCeilingOnKeyLoss(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") == "k1" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		fmt.Fprint(w, scopusBody(10, start))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, "k1", "k2", "k3")
	if _, err := collect(c.Search(context.Background(), "anything")); err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Losing k1 mid-search must pull the shared ceiling down to the two
	// surviving keys, overriding the test's uncapped limiter.
	if got := c.limiter.Limit(); got != poolLimit(2) {
		t.Errorf("limiter limit = %v, want %v", got, poolLimit(2))
	}
	if got := c.limiter.Burst(); got != 2 {
		t.Errorf("limiter burst = %d, want 2", got)
	}
}

func TestSearchCancelClosesStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		time.Sleep(5 * time.Millisecond) // keep fan-out requests in flight
		fmt.Fprint(w, scopusBody(5000, start))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, ts, "k1")

	ch := c.Search(ctx, "anything")
	first, ok := <-ch
	if !ok || first.Err != nil {
		t.Fatalf("first result: %+v", first)
	}

	// Abandon the search: cancel, then drain. The producer must close
	// the channel instead of blocking on undelivered pages.
	cancel()
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not close after cancellation")
	}
}

func TestPageOffsets(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  []int
	}{
		{"fits in first page", 10, nil},
		{"exactly one page", 25, nil},
		{"two pages", 27, []int{25}},
		{"three pages", 54, []int{25, 50}},
		{"zero results", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageOffsets(tt.total)
			if len(got) != len(tt.want) {
				t.Fatalf("pageOffsets(%d) = %v, want %v", tt.total, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pageOffsets(%d)[%d] = %d, want %d", tt.total, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPageOffsetsCappedAt5000(t *testing.T) {
	// A reported total of 10000 still yields 200 pages: 199 offsets
	// after the first page, the last at 4975.
	got := pageOffsets(10000)
	if len(got) != 199 {
		t.Fatalf("len = %d, want 199", len(got))
	}
	if got[0] != 25 || got[len(got)-1] != 4975 {
		t.Errorf("offsets span %d..%d, want 25..4975", got[0], got[len(got)-1])
	}
}

func TestNewRequiresKeys(t *testing.T) {
	if _, err := New(types.ScopusConfig{}); err == nil {
		t.Error("New with no keys succeeded, want error")
	}
}
