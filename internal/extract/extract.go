// Package extract turns scraped pages into structured signals: named
// organizations, contextual financial figures and frequent keywords.
package extract

import (
	"sort"

	"golang.org/x/text/cases"

	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/model"
)

// Extractor is stateless and safe for concurrent use.
type Extractor struct {
	cfg config.ExtractionConfig
}

// New creates an Extractor.
func New(cfg config.ExtractionConfig) *Extractor {
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 20
	}
	if cfg.MaxOrganizations <= 0 {
		cfg.MaxOrganizations = 20
	}
	return &Extractor{cfg: cfg}
}

// LowYield reports whether ex retained fewer keywords than the configured
// minimum for useful downstream analysis.
func (e *Extractor) LowYield(ex model.Extraction) bool {
	return len(ex.Keywords) < e.cfg.MinUsefulKeywords
}

// Extract processes every page with text. The keyword cutoff is chosen from
// the keyword table by the number of pages, and only keywords whose
// frequency strictly exceeds it are kept.
func (e *Extractor) Extract(pages []model.Page) model.Extraction {
	out := model.EmptyExtraction()
	orgs := newCounter()
	words := newCounter()
	fin := newSignalSet()
	fold := cases.Fold()

	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		out.PagesUsed++
		for _, o := range Organizations(p.Text) {
			orgs.add(o, 1)
		}
		fin.addAll(Financials(p.Text))
		for _, w := range Words(fold.String(p.Text)) {
			words.add(w, 1)
		}
	}

	out.Entities.Organizations = orgs.top(e.cfg.MaxOrganizations, 0)
	out.Financials = fin.signals()
	out.KeywordCutoff = e.cfg.Keywords.Cutoff(len(pages))
	for _, term := range words.top(e.cfg.MaxKeywords, out.KeywordCutoff) {
		out.Keywords = append(out.Keywords, model.Keyword{Term: term, Count: words.counts[term]})
	}
	return out
}

// counter counts string occurrences and remembers first-seen order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(s string, n int) {
	if _, ok := c.counts[s]; !ok {
		c.order = append(c.order, s)
	}
	c.counts[s] += n
}

// top returns up to limit entries whose count exceeds minExclusive, most
// frequent first, ties in first-seen order.
func (c *counter) top(limit, minExclusive int) []string {
	keys := make([]string, 0, len(c.order))
	for _, k := range c.order {
		if c.counts[k] > minExclusive {
			keys = append(keys, k)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool { return c.counts[keys[i]] > c.counts[keys[j]] })
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
