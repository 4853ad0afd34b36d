package scrape

import (
	"net/url"
	"path"
	"strings"
)

// PathMatcher excludes URLs whose path matches a glob pattern. A pattern
// ending in "/*" also matches deeper paths, so "/blog/*" excludes
// "/blog/2024/post".
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a matcher. Patterns are matched case-insensitively.
func NewPathMatcher(patterns []string) *PathMatcher {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		lowered = append(lowered, strings.ToLower(p))
	}
	return &PathMatcher{patterns: lowered}
}

// IsExcluded reports whether rawURL should be skipped. Unparseable URLs
// and non-http(s) schemes are always excluded.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return true
	}
	if m == nil {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(pattern, p) {
			return true
		}
	}
	return false
}

func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/")
	}
	return false
}
