package main

import (
	"context"
	"encoding/json"

	"github.com/amityadav/newsagg/internal/core"
	"github.com/amityadav/newsagg/internal/news"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	search   string
	source   string
	category string
	author   string
	tags     []string
	from     string
	to       string
	page     int
	perPage  int
}

func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search stored articles, falling back to a live provider search",
		Example: `  newsctl search --search election
  newsctl search --search climate --source "The Guardian" --from 2024-03-01 --tags Environment,Science`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			return withAggregator(cmd.Context(), func(ctx context.Context, agg *core.Aggregator) error {
				page, err := agg.Search(ctx, filter)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.search, "search", "s", "", "text to match in article titles (required)")
	f.StringVar(&opts.source, "source", "", `only this provider: "News API", "The Guardian" or "New York Times API"`)
	f.StringVar(&opts.category, "category", "", "exact category")
	f.StringVar(&opts.author, "author", "", "author substring, case-insensitive")
	f.StringSliceVar(&opts.tags, "tags", nil, "comma separated tags, any of which must match")
	f.StringVar(&opts.from, "from", "", "earliest publication date (YYYY-MM-DD)")
	f.StringVar(&opts.to, "to", "", "latest publication date (YYYY-MM-DD)")
	f.IntVar(&opts.page, "page", 1, "page number")
	f.IntVar(&opts.perPage, "per-page", news.DefaultPerPage, "articles per page")
	_ = cmd.MarkFlagRequired("search")

	return cmd
}

// filter validates the flags before any store or provider is touched
func (o *searchOptions) filter() (news.Filter, error) {
	f := news.Filter{
		Search:   o.search,
		Source:   news.Source(o.source),
		Category: o.category,
		Author:   o.author,
		Tags:     o.tags,
		Page:     o.page,
		PerPage:  o.perPage,
	}

	var err error
	if f.From, err = news.ParseDate("from", o.from); err != nil {
		return news.Filter{}, err
	}
	if f.To, err = news.ParseDate("to", o.to); err != nil {
		return news.Filter{}, err
	}
	if err := f.Validate(); err != nil {
		return news.Filter{}, err
	}
	return f, nil
}
