package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/amityadav/newsagg/internal/news"
)

// Store persists articles keyed by URL. Every failure wraps
// news.ErrStoreUnavailable, except Upsert of an article without a URL.
type Store interface {
	// Upsert inserts the article or replaces every mutable field of the stored one
	Upsert(ctx context.Context, a news.Article) error
	// UpsertAll upserts a batch in one transaction
	UpsertAll(ctx context.Context, articles []news.Article) error

	Query(ctx context.Context, f news.Filter) ([]news.Article, error)
	Count(ctx context.Context, f news.Filter) (int, error)
	Page(ctx context.Context, f news.Filter, page, pageSize int) (news.Page, error)

	Ping(ctx context.Context) error
	Close()
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var errEmptyURL = errors.New("article has no url")

// canonical prepares an article for storage
func canonical(a news.Article) news.Article {
	a.PublishedAt = news.Canonical(a.PublishedAt)
	a.Tags = slices.Clone(a.Tags)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a
}

// sortArticles orders by publication time, newest first, then by the
// provider merge order and the URL
func sortArticles(items []news.Article) {
	slices.SortStableFunc(items, func(a, b news.Article) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Source.Rank(), b.Source.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.URL, b.URL)
	})
}
