package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/scrape"
	"github.com/sells-group/idea-research/internal/search"
	"github.com/sells-group/idea-research/internal/state"
)

// SourceFinder discovers candidate URLs for an idea.
type SourceFinder interface {
	Find(ctx context.Context, idea model.Idea) ([]search.Hit, error)
}

// Scraping resolves sources and fetches them. Zero usable pages ends the
// run; fewer than MinPages degrades it.
type Scraping struct {
	finder   SourceFinder
	scraper  scrape.Scraper
	fanOut   scrape.FanOut
	minPages int
}

// NewScraping creates the scraping handler. finder may be nil when every
// idea carries explicit sources.
func NewScraping(finder SourceFinder, scraper scrape.Scraper, fo scrape.FanOut, minPages int) *Scraping {
	return &Scraping{finder: finder, scraper: scraper, fanOut: fo, minPages: minPages}
}

func (h *Scraping) Stage() model.PipelineState { return model.StateScraping }

func (h *Scraping) Handle(ctx context.Context, rs *state.RunState) {
	idea := ideaOf(rs)
	log := runLogger(rs)

	urls := idea.Sources
	if len(urls) == 0 && h.finder != nil {
		hits, err := h.finder.Find(ctx, idea)
		if err != nil {
			log.Warn("workflow: source discovery failed", zap.Error(err))
		}
		urls = search.URLs(hits)
	}

	pages := scrape.ScrapeAll(ctx, h.scraper, urls, h.fanOut)
	log.Info("workflow: scraping complete", zap.Int("sources", len(urls)), zap.Int("pages", len(pages)))

	if len(pages) == 0 {
		fail(rs, model.StageScraping, fmt.Sprintf("no usable pages scraped from %d sources", len(urls)))
		return
	}
	if len(pages) < h.minPages {
		warn(rs, model.StageScraping, fmt.Sprintf("only %d of %d required pages scraped", len(pages), h.minPages))
	}
	if err := rs.AddData(state.KeyScrapedContent, pages); err != nil {
		log.Warn("workflow: store scraped pages", zap.Error(err))
	}
}
