package newsapi

import (
	"strings"
	"time"

	"github.com/amityadav/newsagg/internal/news"
)

// removedTitle marks articles News API has withdrawn; they carry no usable data
const removedTitle = "[Removed]"

// Hints carries the request context News API does not echo back in its payload
type Hints struct {
	Query    string
	Category string
}

// Normalize maps a News API article into the canonical model
func Normalize(a Article, h Hints, now func() time.Time) news.Article {
	out := news.Article{
		URL:         strings.TrimSpace(a.URL),
		Title:       strings.TrimSpace(a.Title),
		Author:      strings.TrimSpace(a.Author),
		Description: strings.TrimSpace(a.Description),
		Source:      news.SourceNewsAPI,
		Category:    strings.TrimSpace(h.Category),
		Tags:        []string{},
		PublishedAt: news.ParsePublishedAt(a.PublishedAt, now),
	}
	if out.Author == "" {
		out.Author = news.DefaultAuthor
	}
	if out.Description == "" {
		out.Description = news.DefaultDescription
	}
	if out.Category == "" {
		out.Category = news.DefaultCategory
	}
	if q := strings.TrimSpace(h.Query); q != "" {
		out.Tags = []string{q}
	}
	return out
}

// usable reports whether the article can be stored at all
func usable(a Article) bool {
	return strings.TrimSpace(a.URL) != "" &&
		strings.TrimSpace(a.Title) != "" &&
		a.Title != removedTitle
}
