// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/demetrius-mp/sesg/internal/httputil"
)

// probeQuery is the throwaway query used to test whether a key still has
// quota. Any short valid query works; each probe spends one request of
// the key's budget.
const probeQuery = "software"

// ExpiredKeys probes every key in the pool concurrently with one
// lightweight request each and returns the keys that answered 429. It
// touches no pagination state and removes nothing; pair it with
// PurgeExpiredKeys for maintenance between batches.
func (c *Client) ExpiredKeys(ctx context.Context) ([]string, error) {
	keys := c.pool.Keys()
	expired := make([]bool, len(keys))
	errs := make([]error, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			if err := c.limiter.Wait(ctx); err != nil {
				errs[i] = err
				return
			}
			resp, err := c.do(ctx, key, fetchParams{query: probeQuery})
			if err != nil {
				errs[i] = fmt.Errorf("probing key %d: %w", i+1, err)
				return
			}
			httputil.DrainClose(resp)
			expired[i] = resp.StatusCode == http.StatusTooManyRequests
		}(i, key)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var out []string
	for i, key := range keys {
		if expired[i] {
			out = append(out, key)
		}
	}
	return out, nil
}

// PurgeExpiredKeys removes every expired key from the pool, shrinking
// the rate ceiling to match, and returns the removed keys.
func (c *Client) PurgeExpiredKeys(ctx context.Context) ([]string, error) {
	expired, err := c.ExpiredKeys(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range expired {
		c.dropKey(key)
	}
	if len(expired) > 0 {
		c.logger.Info().Int("purged", len(expired)).
			Int("keys_left", c.pool.Len()).Msg("purged expired API keys")
	}
	return expired, nil
}
