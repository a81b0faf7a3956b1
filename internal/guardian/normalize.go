package guardian

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/amityadav/newsagg/internal/news"
)

const (
	defaultPillar  = "News"
	contributorTag = "contributor"
)

// Normalize maps a Guardian content item into the canonical model
func Normalize(r Result, now func() time.Time) news.Article {
	out := news.Article{
		URL:         strings.TrimSpace(r.WebURL),
		Title:       strings.TrimSpace(r.WebTitle),
		Author:      author(r),
		Description: plainText(r.Fields.TrailText),
		Source:      news.SourceGuardian,
		Category:    strings.TrimSpace(r.SectionName),
		Tags:        []string{defaultPillar},
		PublishedAt: news.ParsePublishedAt(r.WebPublicationDate, now),
	}
	if out.Title == "" {
		out.Title = strings.TrimSpace(r.Fields.Headline)
	}
	if out.Description == "" {
		out.Description = news.DefaultDescription
	}
	if out.Category == "" {
		out.Category = news.DefaultCategory
	}
	if p := strings.TrimSpace(r.PillarName); p != "" {
		out.Tags = []string{p}
	}
	return out
}

// author prefers the byline and falls back to the contributor tags
func author(r Result) string {
	if b := strings.TrimSpace(r.Fields.Byline); b != "" {
		return b
	}
	var names []string
	for _, t := range r.Tags {
		if t.Type == contributorTag && strings.TrimSpace(t.WebTitle) != "" {
			names = append(names, strings.TrimSpace(t.WebTitle))
		}
	}
	if len(names) == 0 {
		return news.DefaultAuthor
	}
	return strings.Join(names, ", ")
}

// plainText strips the markup Guardian puts in trail text
func plainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
