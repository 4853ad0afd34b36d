package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/model"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; idea-research/1.0)"
	maxBodyBytes     = 1 << 20
	minBodyBytes     = 100
)

// LocalScraper fetches HTML over net/http, detects anti-bot blocks and
// reduces the page to plain text. Blocked pages fall through to the next
// scraper in the chain.
type LocalScraper struct {
	client    *http.Client
	userAgent string
}

// NewLocalScraper creates a LocalScraper. Zero timeout or empty userAgent
// fall back to defaults.
func NewLocalScraper(timeout time.Duration, userAgent string) *LocalScraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &LocalScraper{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL and converts the HTML body to text.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", kind)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}
	if len(body) < minBodyBytes {
		return nil, eris.New("local_http: empty page")
	}

	return &Result{
		Page: model.Page{
			URL:        targetURL,
			Title:      extractTitle(body),
			Text:       stripHTML(string(body)),
			Headings:   extractHeadings(body),
			StatusCode: resp.StatusCode,
			FetchedAt:  time.Now().UTC(),
		},
		Source: l.Name(),
	}, nil
}

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	headingRe  = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	spaceRe    = regexp.MustCompile(`[ \t]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
	blockRes   = func() []*regexp.Regexp {
		var out []*regexp.Regexp
		for _, tag := range []string{"script", "style", "nav", "footer"} {
			out = append(out, regexp.MustCompile(`(?is)<`+tag+`[^>]*>.*?</`+tag+`>`))
		}
		return out
	}()
	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

func extractTitle(body []byte) string {
	if m := titleRe.FindSubmatch(body); len(m) > 1 {
		return strings.TrimSpace(entityReplacer.Replace(string(m[1])))
	}
	return ""
}

func extractHeadings(body []byte) []model.Heading {
	var out []model.Heading
	for _, m := range headingRe.FindAllSubmatch(body, -1) {
		text := strings.TrimSpace(entityReplacer.Replace(tagRe.ReplaceAllString(string(m[2]), " ")))
		if text == "" {
			continue
		}
		out = append(out, model.Heading{Level: int(m[1][0] - '0'), Text: spaceRe.ReplaceAllString(text, " ")})
	}
	return out
}

// stripHTML drops script, style, nav and footer blocks, removes tags,
// decodes common entities and collapses whitespace.
func stripHTML(html string) string {
	for _, re := range blockRes {
		html = re.ReplaceAllString(html, "")
	}
	html = tagRe.ReplaceAllString(html, " ")
	html = entityReplacer.Replace(html)
	html = spaceRe.ReplaceAllString(html, " ")
	html = newlinesRe.ReplaceAllString(html, "\n\n")
	return strings.TrimSpace(html)
}
