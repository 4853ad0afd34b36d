// Package scrape fetches research sources and turns them into pages. A
// Chain tries scrapers in priority order, Cached puts the content cache in
// front of any scraper, and ScrapeAll fans out over many URLs.
package scrape

import (
	"context"

	"github.com/sells-group/idea-research/internal/model"
)

// Result holds a scraped page with the scraper that produced it.
type Result struct {
	Page   model.Page `json:"page"`
	Source string     `json:"source"` // e.g. "local_http", "jina"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}
