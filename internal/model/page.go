package model

import "time"

// Heading is a section heading found on a page.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Page is the parsed content of one scraped source.
type Page struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Headings   []Heading `json:"headings,omitempty"`
	StatusCode int       `json:"status_code"`
	Source     string    `json:"source"` // scraper that produced the page
	FetchedAt  time.Time `json:"fetched_at"`
}
