// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/demetrius-mp/sesg/internal/httputil"
)

// apiBase is the Scopus Search API endpoint. Declared as a var so tests
// can substitute an httptest server.
var apiBase = "https://api.elsevier.com/content/search/scopus"

// fetchParams identify one page request.
type fetchParams struct {
	query string
	start int
}

// fetch issues one search request and collapses the response into either
// a Page or a terminal error. Recoverable conditions never escape:
//
//   - 429 removes the drawn key from the pool and loops with a fresh
//     key; pool exhaustion bounds the loop with ErrOutOfAPIKeys.
//   - 500 and transport failures retry up to the attempt ceiling, then
//     become ErrTooManyServerErrors.
//   - An unparsable body retries up to the same ceiling on its own
//     counter, then becomes ErrTooManyMalformedPayloads.
//
// 400 and 413 fail immediately with ErrInvalidQuery: retrying a bad
// query wastes quota on every key in the pool.
func (c *Client) fetch(ctx context.Context, p fetchParams) (Page, error) {
	serverErrors := 0
	malformed := 0

	for {
		key, err := c.pool.Next()
		if err != nil {
			return Page{}, fmt.Errorf("fetching page at offset %d: %w", p.start, err)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return Page{}, err
		}

		resp, err := c.do(ctx, key, p)
		if err != nil {
			if ctx.Err() != nil {
				return Page{}, ctx.Err()
			}
			serverErrors++
			c.logger.Warn().Err(err).Int("start", p.start).
				Int("attempt", serverErrors).Msg("request failed, retrying")
			if serverErrors >= c.retryAttempts {
				return Page{}, fmt.Errorf("%w (offset %d, %d attempts, last: %v)",
					ErrTooManyServerErrors, p.start, serverErrors, err)
			}
			continue
		}

		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
			httputil.DrainClose(resp)
			return Page{}, fmt.Errorf("%w (HTTP %d)", ErrInvalidQuery, resp.StatusCode)

		case http.StatusTooManyRequests:
			httputil.DrainClose(resp)
			c.dropKey(key)
			c.logger.Info().Int("keys_left", c.pool.Len()).
				Msg("API key quota exhausted, rotating")
			continue

		case http.StatusInternalServerError:
			httputil.DrainClose(resp)
			serverErrors++
			c.logger.Warn().Int("start", p.start).
				Int("attempt", serverErrors).Msg("server error, retrying")
			if serverErrors >= c.retryAttempts {
				return Page{}, fmt.Errorf("%w (offset %d, %d attempts)",
					ErrTooManyServerErrors, p.start, serverErrors)
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err == nil {
			var page Page
			if page, err = parsePage(body); err == nil {
				return page, nil
			}
		}

		malformed++
		c.logger.Warn().Err(err).Int("start", p.start).
			Int("attempt", malformed).Msg("malformed payload, retrying")
		if malformed >= c.retryAttempts {
			return Page{}, fmt.Errorf("%w (offset %d, %d attempts, last: %v)",
				ErrTooManyMalformedPayloads, p.start, malformed, err)
		}
	}
}

// do issues the GET with the key attached as a query parameter.
func (c *Client) do(ctx context.Context, key string, p fetchParams) (*http.Response, error) {
	params := url.Values{
		"query":  {p.query},
		"apiKey": {key},
		"start":  {strconv.Itoa(p.start)},
	}
	reqURL := apiBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return c.httpClient.Do(req)
}

// dropKey removes key from the pool and shrinks the shared rate ceiling
// to match the surviving keys. Requests already in flight are not
// retroactively throttled.
func (c *Client) dropKey(key string) {
	c.pool.Remove(key)
	n := c.pool.Len()
	if n == 0 {
		// Leave the limiter alone; the next draw fails before waiting.
		return
	}
	c.limiter.SetLimit(poolLimit(n))
	c.limiter.SetBurst(n)
}
