package provider

import (
	"context"

	"github.com/amityadav/newsagg/internal/news"
)

// Adapter is the interface all news providers must implement.
// Implementations return already normalized articles and never touch the store.
type Adapter interface {
	// Source returns the provenance stamped on every article of this adapter
	Source() news.Source

	// FetchLatest pulls the provider's current headline feed
	FetchLatest(ctx context.Context) ([]news.Article, error)

	// SearchByFilter maps the filter to the provider's native search request
	SearchByFilter(ctx context.Context, f news.Filter) ([]news.Article, error)
}

// Result is the outcome of one adapter call: either articles or an error
type Result struct {
	Source   news.Source
	Articles []news.Article
	Err      error
}

// OK reports whether the call succeeded
func (r Result) OK() bool {
	return r.Err == nil
}
