package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/idea-research/internal/model"
)

// Chain tries scrapers in priority order and returns the first success.
type Chain struct {
	matcher  *PathMatcher
	scrapers []Scraper
}

// NewChain creates a Chain. A nil matcher excludes nothing beyond
// malformed URLs.
func NewChain(matcher *PathMatcher, scrapers ...Scraper) *Chain {
	return &Chain{matcher: matcher, scrapers: scrapers}
}

func (c *Chain) Name() string { return "chain" }

// Supports reports whether the URL passes the exclusion rules.
func (c *Chain) Supports(u string) bool { return !c.matcher.IsExcluded(u) }

// Scrape tries each supporting scraper in order for a single URL.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if c.matcher.IsExcluded(targetURL) {
		return nil, eris.Errorf("scrape: url excluded: %s", targetURL)
	}

	var lastErr error
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		result, err := s.Scrape(ctx, targetURL)
		if err == nil && result != nil {
			return result, nil
		}
		if err != nil {
			zap.L().Debug("scrape: scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrapf(lastErr, "scrape: all scrapers failed for %s", targetURL)
	}
	return nil, eris.Errorf("scrape: no suitable scraper for %s", targetURL)
}

// FanOut bounds ScrapeAll. A nil Limiter disables pacing.
type FanOut struct {
	MaxParallel int
	Limiter     *rate.Limiter
}

// ScrapeAll fetches urls through s with at most MaxParallel requests in
// flight. Duplicate URLs are fetched once, failures are logged and skipped,
// and the returned pages keep the order of urls.
func ScrapeAll(ctx context.Context, s Scraper, urls []string, fo FanOut) []model.Page {
	unique := dedupe(urls)
	slots := make([]*model.Page, len(unique))

	limit := fo.MaxParallel
	if limit < 1 {
		limit = 1
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, u := range unique {
		g.Go(func() error {
			if fo.Limiter != nil {
				if err := fo.Limiter.Wait(gCtx); err != nil {
					return nil
				}
			}
			result, err := s.Scrape(gCtx, u)
			if err != nil || result == nil {
				zap.L().Warn("scrape: url failed", zap.String("url", u), zap.Error(err))
				return nil
			}
			page := result.Page
			if page.Source == "" {
				page.Source = result.Source
			}
			slots[i] = &page
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]model.Page, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			pages = append(pages, *p)
		}
	}
	zap.L().Info("scrape: fan-out complete",
		zap.Int("requested", len(unique)),
		zap.Int("scraped", len(pages)),
	)
	return pages
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
