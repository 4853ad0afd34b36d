package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/idea-research/internal/model"
)

func TestLocalScraper_CleanHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Meal Kits &amp; More</title></head>
<body><nav>Menu</nav><h1>Meal kit market</h1><h2>Growth <em>outlook</em></h2>
<p>The meal kit market is expanding with rising demand.</p>
<script>var x = 1;</script><footer>Copyright 2024</footer></body></html>`))
	}))
	defer srv.Close()

	result, err := NewLocalScraper(time.Second, "test-agent").Scrape(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "local_http", result.Source)
	assert.Equal(t, "Meal Kits & More", result.Page.Title)
	assert.Equal(t, http.StatusOK, result.Page.StatusCode)
	assert.Contains(t, result.Page.Text, "rising demand")
	assert.NotContains(t, result.Page.Text, "Menu")
	assert.NotContains(t, result.Page.Text, "Copyright 2024")
	assert.NotContains(t, result.Page.Text, "var x")
	assert.Equal(t, []model.Heading{{Level: 1, Text: "Meal kit market"}, {Level: 2, Text: "Growth outlook"}}, result.Page.Headings)
	assert.False(t, result.Page.FetchedAt.IsZero())
}

func TestLocalScraper_Failures(t *testing.T) {
	long := strings.Repeat("x", 200)
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{"cloudflare", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Cf-Ray", "abc123")
			w.WriteHeader(http.StatusForbidden)
		}, "blocked"},
		{"captcha", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><body>Solve the captcha " + long + "</body></html>"))
		}, "blocked"},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(long))
		}, "status 404"},
		{"empty", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		}, "empty page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewLocalScraper(0, "").Scrape(context.Background(), srv.URL)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocalScraper_Defaults(t *testing.T) {
	s := NewLocalScraper(0, "")
	assert.Equal(t, 15*time.Second, s.client.Timeout)
	assert.Equal(t, defaultUserAgent, s.userAgent)
	assert.Equal(t, "local_http", s.Name())
	assert.True(t, s.Supports("anything"))
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<div>A&nbsp;&lt;b&gt;</div>\n\n\n\n<style>.x{}</style><p>B   C</p>")
	assert.Equal(t, "A <b> \n\n B C", got)
}
