package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/amityadav/newsagg/internal/core"
	"github.com/spf13/cobra"
)

var errPartialRefresh = errors.New("some news sources failed")

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the latest articles from every provider",
		Long: `Fetch pulls the latest headlines from every configured provider and stores them.

The command exits non-zero when any provider fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAggregator(cmd.Context(), func(ctx context.Context, agg *core.Aggregator) error {
				ok, err := agg.FetchAll(ctx)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Failed to fetch some news sources.")
					return errPartialRefresh
				}
				fmt.Fprintln(cmd.OutOrStdout(), "News articles updated successfully!")
				return nil
			})
		},
	}
}
