package extract

import (
	"regexp"
	"strings"
)

var (
	// A run of capitalised words ending in a corporate suffix.
	suffixedOrgRe = regexp.MustCompile(`\b((?:[A-Z][A-Za-z0-9&'-]*\s+){0,3}[A-Z][A-Za-z0-9&'-]*)\s+(?:Inc|Ltd|Corp|LLC|PLC|Company|Co)\b\.?`)
	// "competitors such as A, B and C" style lists.
	competitorListRe = regexp.MustCompile(`(?i)\b(?:competitors|rivals|players)\s+(?:such as|including|like)\s+([^.;:!?\n]+)`)
	listSplitRe      = regexp.MustCompile(`\s*(?:,|\band\b|\bor\b)\s*`)
	leadingNameRe    = regexp.MustCompile(`^[A-Z][A-Za-z0-9&'-]*(?:\s+[A-Z][A-Za-z0-9&'-]*){0,3}`)
)

var orgSuffixes = map[string]bool{
	"inc": true, "inc.": true, "ltd": true, "ltd.": true, "corp": true, "corp.": true,
	"llc": true, "plc": true, "company": true, "co": true, "co.": true,
}

// NormalizeOrg lower-cases a name and drops a leading article and a
// trailing corporate suffix, so "The Stripe Inc." and "stripe" count as one
// organization.
func NormalizeOrg(name string) string {
	words := strings.Fields(strings.ToLower(name))
	if len(words) > 1 && words[0] == "the" {
		words = words[1:]
	}
	if n := len(words); n > 1 && orgSuffixes[words[n-1]] {
		words = words[:n-1]
	}
	return strings.Join(words, " ")
}

// Organizations finds organization mentions in text, normalized, in order
// of appearance and with repeats.
func Organizations(text string) []string {
	var out []string
	for _, m := range suffixedOrgRe.FindAllStringSubmatch(text, -1) {
		if n := NormalizeOrg(m[1]); n != "" {
			out = append(out, n)
		}
	}
	for _, m := range competitorListRe.FindAllStringSubmatch(text, -1) {
		for _, part := range listSplitRe.Split(m[1], -1) {
			name := leadingNameRe.FindString(strings.TrimSpace(part))
			if name == "" {
				continue
			}
			if n := NormalizeOrg(name); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}
