// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scopus retrieves up to 5000 results per query from the Scopus
// Search API. The client rotates API keys when one hits its quota,
// retries transient failures, and fans page requests out concurrently
// under a rate ceiling scaled by the number of surviving keys.
package scopus

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/demetrius-mp/sesg/internal/httputil"
	"github.com/demetrius-mp/sesg/pkg/types"
)

// perKeyRate is the sustained request rate one API key supports,
// in requests per second.
const perKeyRate = 8

// defaultRetryAttempts bounds consecutive server errors and consecutive
// malformed payloads, each on its own counter.
const defaultRetryAttempts = 5

// poolLimit converts a live key count into the shared rate ceiling.
func poolLimit(keys int) rate.Limit {
	return rate.Limit(keys * perKeyRate)
}

// Client is a Scopus Search API client. It is safe for concurrent use;
// one client may serve interleaved searches and key probes, all drawing
// from the same key pool and rate budget.
type Client struct {
	httpClient     *http.Client
	pool           *KeyPool
	limiter        *rate.Limiter
	retryAttempts  int
	maxConcurrency int
	userAgent      string
	logger         zerolog.Logger
}

// New creates a Client from cfg. At least one API key is required.
func New(cfg types.ScopusConfig) (*Client, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("scopus: no API keys configured")
	}

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}

	return &Client{
		httpClient:     httputil.NewClient(cfg.Timeout),
		pool:           NewKeyPool(cfg.APIKeys),
		limiter:        rate.NewLimiter(poolLimit(len(cfg.APIKeys)), len(cfg.APIKeys)),
		retryAttempts:  attempts,
		maxConcurrency: cfg.MaxConcurrency,
		userAgent:      cfg.UserAgent,
		logger:         zerolog.Nop(),
	}, nil
}

// SetLogger replaces the client's logger (a no-op logger by default).
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// Pool exposes the key pool, letting callers report how many keys
// survived a run.
func (c *Client) Pool() *KeyPool {
	return c.pool
}

// Result is one element of a search stream: a page, or the terminal
// error that ended the search.
type Result struct {
	Page Page
	Err  error
}

// Search streams the result pages for query. The first page is fetched
// before fan-out begins and is always delivered first; the remaining
// pages arrive in completion order, not page order, so callers needing
// order must sort by Page.CurrentPage.
//
// The first terminal error (ErrInvalidQuery, ErrOutOfAPIKeys,
// ErrTooManyServerErrors, ErrTooManyMalformedPayloads) stops the search
// and is delivered as the final Result before the channel closes; pages
// already delivered remain valid. To abandon a search early, cancel ctx
// and drain the channel.
func (c *Client) Search(ctx context.Context, query string) <-chan Result {
	out := make(chan Result)

	go func() {
		defer close(out)

		sctx, cancel := context.WithCancel(ctx)
		defer cancel()

		first, err := c.fetch(sctx, fetchParams{query: query, start: 0})
		if err != nil {
			c.deliver(ctx, out, Result{Err: err})
			return
		}
		if !c.deliver(ctx, out, Result{Page: first}) {
			return
		}

		offsets := pageOffsets(first.TotalResults)
		if len(offsets) == 0 {
			return
		}

		workers := c.maxConcurrency
		if workers <= 0 || workers > len(offsets) {
			workers = len(offsets)
		}

		fanout := make(chan Result)
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup

		for _, start := range offsets {
			wg.Add(1)
			go func(start int) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-sctx.Done():
					return
				}
				page, err := c.fetch(sctx, fetchParams{query: query, start: start})
				select {
				case fanout <- Result{Page: page, Err: err}:
				case <-sctx.Done():
				}
			}(start)
		}

		go func() {
			wg.Wait()
			close(fanout)
		}()

		aborted := false
		for r := range fanout {
			if aborted {
				continue // search already failed; discard stragglers
			}
			if r.Err != nil {
				if sctx.Err() != nil {
					continue
				}
				aborted = true
				cancel()
				c.deliver(ctx, out, r)
				continue
			}
			if !c.deliver(ctx, out, r) {
				return
			}
		}
	}()

	return out
}

// deliver sends r to out unless ctx is cancelled. It reports whether the
// send happened.
func (c *Client) deliver(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// pageOffsets returns the start offsets for every page after the first,
// honouring the MaxResults delivery cap regardless of the reported total.
func pageOffsets(totalResults int) []int {
	capped := totalResults
	if capped > MaxResults {
		capped = MaxResults
	}
	var offsets []int
	for start := PageSize; start < capped; start += PageSize {
		offsets = append(offsets, start)
	}
	return offsets
}
