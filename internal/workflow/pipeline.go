package workflow

import (
	"golang.org/x/time/rate"

	"github.com/sells-group/idea-research/internal/analysis"
	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/consolidate"
	"github.com/sells-group/idea-research/internal/extract"
	"github.com/sells-group/idea-research/internal/report"
	"github.com/sells-group/idea-research/internal/scrape"
)

// Stages builds the five stage handlers in pipeline order from cfg.
func Stages(cfg *config.Config, finder SourceFinder, scraper scrape.Scraper) ([]Handler, error) {
	renderer, err := report.New(cfg.Report)
	if err != nil {
		return nil, err
	}

	fo := scrape.FanOut{MaxParallel: cfg.Scrape.MaxParallel}
	if cfg.Scrape.RequestsPerSecond > 0 {
		burst := max(cfg.Scrape.MaxParallel, 1)
		fo.Limiter = rate.NewLimiter(rate.Limit(cfg.Scrape.RequestsPerSecond), burst)
	}

	return []Handler{
		NewScraping(finder, scraper, fo, cfg.Scrape.MinPages),
		NewExtraction(extract.New(cfg.Extraction)),
		NewAnalysis(
			analysis.NewFinancial(cfg.Analysis.Financial),
			analysis.NewCompetitive(cfg.Analysis.Competitive),
			analysis.NewMarket(cfg.Analysis.Market),
		),
		NewConsolidation(consolidate.New(cfg.Consolidation)),
		NewReporting(renderer),
	}, nil
}
