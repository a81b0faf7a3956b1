// Package news holds the canonical article model shared by every provider,
// the search filter, the paginator and the error taxonomy of the aggregator.
package news

import "time"

const (
	// DefaultAuthor is used when a provider omits the byline
	DefaultAuthor = "Unknown"
	// DefaultCategory is used when a provider omits the section
	DefaultCategory = "General"
	// DefaultDescription is the placeholder for articles without a summary
	DefaultDescription = "No description available"
)

// Article is the normalized, provider-agnostic article record.
// URL is the identity key: every write is an upsert keyed on it.
type Article struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Source      Source    `json:"source"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}

// HasTag reports whether the article carries tag, ignoring case
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if equalFold(t, tag) {
			return true
		}
	}
	return false
}
