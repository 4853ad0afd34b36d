package scrape

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/cache"
)

// Cached puts a content cache in front of a Scraper. Results are stored
// under "scrape:<url>" exactly as the wrapped scraper returned them, so a
// hit is indistinguishable from a fresh fetch. Cache backend failures never
// fail a scrape: read errors count as misses and write errors are logged.
type Cached struct {
	next  Scraper
	store cache.Cache

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps next with store.
func NewCached(next Scraper, store cache.Cache) *Cached {
	return &Cached{next: next, store: store}
}

func (c *Cached) Name() string             { return c.next.Name() }
func (c *Cached) Supports(url string) bool { return c.next.Supports(url) }

// Scrape returns the cached result for url or fetches and caches it.
func (c *Cached) Scrape(ctx context.Context, url string) (*Result, error) {
	key := cache.Key(cache.NamespaceScrape, url)

	cached, ok, err := cache.GetJSON[Result](ctx, c.store, key)
	if err != nil {
		zap.L().Warn("scrape: cache read failed, fetching", zap.String("key", key), zap.Error(err))
	}
	if ok {
		c.hits.Add(1)
		return &cached, nil
	}
	c.misses.Add(1)

	result, err := c.next.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.store, key, result); err != nil {
		zap.L().Warn("scrape: cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// Stats returns the hit and miss counts since creation.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
