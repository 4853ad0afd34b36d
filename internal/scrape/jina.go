package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/resilience"
	"github.com/sells-group/idea-research/pkg/jina"
)

// JinaAdapter wraps the Jina Reader as a Scraper. Three consecutive
// failures open its breaker for a minute, during which the chain skips it.
type JinaAdapter struct {
	client  jina.Client
	breaker *resilience.Breaker
}

// NewJinaAdapter creates a JinaAdapter from a Jina client.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{
		client:  client,
		breaker: resilience.NewBreaker(3, time.Minute),
	}
}

func (j *JinaAdapter) Name() string { return "jina" }

// Supports is false while the breaker is open.
func (j *JinaAdapter) Supports(_ string) bool {
	return !j.breaker.Open()
}

// Scrape reads a URL through Jina and rejects challenge pages or thin
// content so the chain can try another scraper.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := resilience.Call(ctx, j.breaker, func(ctx context.Context) (*jina.ReadResponse, error) {
		resp, err := j.client.Read(ctx, targetURL)
		if err != nil {
			return nil, err
		}
		if needsFallback(resp) {
			return nil, eris.Errorf("jina: unusable content for %s", targetURL)
		}
		return resp, nil
	})
	if err != nil {
		if j.breaker.Open() {
			zap.L().Warn("scrape: jina breaker open", zap.Error(err))
		}
		return nil, err
	}

	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}
	return &Result{
		Page: model.Page{
			URL:        pageURL,
			Title:      resp.Data.Title,
			Text:       resp.Data.Content,
			Headings:   markdownHeadings(resp.Data.Content),
			StatusCode: 200,
			FetchedAt:  time.Now().UTC(),
		},
		Source: j.Name(),
	}, nil
}

var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
}

// needsFallback reports whether a Jina response lacks usable content.
func needsFallback(resp *jina.ReadResponse) bool {
	if resp == nil || (resp.Code != 0 && resp.Code != 200) {
		return true
	}
	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < minBodyBytes {
		return true
	}
	if len(content) < 1000 {
		lower := strings.ToLower(content)
		for _, sig := range challengeSignatures {
			if strings.Contains(lower, sig) {
				return true
			}
		}
	}
	return false
}

// markdownHeadings collects ATX headings ("## Title") from markdown.
func markdownHeadings(md string) []model.Heading {
	var out []model.Heading
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		level := 0
		for level < len(line) && level < 6 && line[level] == '#' {
			level++
		}
		if level == 0 || level >= len(line) || line[level] != ' ' {
			continue
		}
		if text := strings.TrimSpace(line[level:]); text != "" {
			out = append(out, model.Heading{Level: level, Text: text})
		}
	}
	return out
}
