package nyt

import (
	"strings"
	"time"

	"github.com/amityadav/newsagg/internal/news"
)

const untitled = "No Title"

// Normalize maps a search document into the canonical model
func Normalize(d Doc, now func() time.Time) news.Article {
	out := news.Article{
		URL:         strings.TrimSpace(d.WebURL),
		Title:       strings.TrimSpace(d.Headline.Main),
		Author:      stripBy(d.Byline.Original),
		Description: strings.TrimSpace(d.Abstract),
		Source:      news.SourceNYT,
		Category:    strings.TrimSpace(d.SectionName),
		Tags:        keywordValues(d.Keywords),
		PublishedAt: news.ParsePublishedAt(d.PubDate, now),
	}
	if out.Title == "" {
		out.Title = untitled
	}
	if out.Author == "" {
		out.Author = news.DefaultAuthor
	}
	if out.Description == "" {
		out.Description = strings.TrimSpace(d.Snippet)
	}
	if out.Description == "" {
		out.Description = news.DefaultDescription
	}
	if out.Category == "" {
		out.Category = news.DefaultCategory
	}
	return out
}

func stripBy(byline string) string {
	byline = strings.TrimSpace(byline)
	if len(byline) > 3 && strings.EqualFold(byline[:3], "by ") {
		return strings.TrimSpace(byline[3:])
	}
	return byline
}

func keywordValues(keywords []Keyword) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if v := strings.TrimSpace(k.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}
