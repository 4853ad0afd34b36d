// Package search discovers research sources for an idea by running its
// queries through a web searcher and ranking the hits.
package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/pkg/jina"
)

// Hit is a single search result.
type Hit struct {
	Query   string  `json:"query"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Searcher runs one web search query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Hit, error)
}

// JinaSearcher adapts the Jina Search API.
type JinaSearcher struct {
	client jina.Client
}

// NewJinaSearcher creates a Searcher backed by Jina.
func NewJinaSearcher(client jina.Client) *JinaSearcher {
	return &JinaSearcher{client: client}
}

func (s *JinaSearcher) Search(ctx context.Context, query string) ([]Hit, error) {
	resp, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "search: query %q", query)
	}
	hits := make([]Hit, 0, len(resp.Data))
	for _, r := range resp.Data {
		snippet := r.Description
		if snippet == "" {
			snippet = r.Content
		}
		hits = append(hits, Hit{Query: query, Title: r.Title, URL: r.URL, Snippet: snippet})
	}
	return hits, nil
}

// Score is the share of query terms found in the hit's title and snippet,
// len(overlap)/(len(terms)+1), rounded to three decimals.
func Score(query string, h Hit) float64 {
	terms := termSet(query)
	if len(terms) == 0 {
		return 0
	}
	text := termSet(h.Title + " " + h.Snippet)
	overlap := 0
	for t := range terms {
		if text[t] {
			overlap++
		}
	}
	score := float64(overlap) / float64(len(terms)+1)
	return math.Round(score*1000) / 1000
}

// Rank scores hits against query and sorts them best first. Ties keep their
// original order.
func Rank(query string, hits []Hit) []Hit {
	out := make([]Hit, len(hits))
	for i, h := range hits {
		h.Score = Score(query, h)
		out[i] = h
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func termSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		set[f] = true
	}
	return set
}

// Discoverer turns an idea's queries into a ranked list of source URLs.
type Discoverer struct {
	searcher   Searcher
	maxSources int
}

// NewDiscoverer creates a Discoverer returning at most maxSources hits.
func NewDiscoverer(searcher Searcher, maxSources int) *Discoverer {
	return &Discoverer{searcher: searcher, maxSources: maxSources}
}

// Find runs every query of idea, ranks all hits together, drops duplicate
// URLs and caps the list. A failing query is logged and skipped; an error is
// returned only when every query failed.
func (d *Discoverer) Find(ctx context.Context, idea model.Idea) ([]Hit, error) {
	var all []Hit
	var failed int
	var lastErr error
	for _, q := range idea.Queries {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "search: find")
		}
		hits, err := d.searcher.Search(ctx, q)
		if err != nil {
			failed++
			lastErr = err
			zap.L().Warn("search: query failed", zap.String("query", q), zap.Error(err))
			continue
		}
		all = append(all, Rank(q, hits)...)
	}
	if failed > 0 && failed == len(idea.Queries) {
		return nil, eris.Wrap(lastErr, "search: every query failed")
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	seen := make(map[string]bool, len(all))
	out := make([]Hit, 0, len(all))
	for _, h := range all {
		if h.URL == "" || seen[h.URL] {
			continue
		}
		seen[h.URL] = true
		out = append(out, h)
		if d.maxSources > 0 && len(out) == d.maxSources {
			break
		}
	}
	zap.L().Info("search: sources discovered",
		zap.Int("queries", len(idea.Queries)),
		zap.Int("hits", len(all)),
		zap.Int("sources", len(out)),
	)
	return out, nil
}

// URLs returns the URL of each hit.
func URLs(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.URL)
	}
	return out
}
