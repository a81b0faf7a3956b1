package main

import (
	"context"
	"fmt"
	"time"

	"github.com/amityadav/newsagg/internal/core"
	appfx "github.com/amityadav/newsagg/internal/fx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	envFile string
	timeout time.Duration
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsctl",
		Short: "News aggregator command line",
		Long: `newsctl drives the news aggregator without the HTTP server.

Example usage:
  newsctl fetch                                 # refresh every configured provider
  newsctl search --search election --per-page 5 # search stored or live articles`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env file is fine, the environment is used as is
			_ = godotenv.Load(envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall command timeout")

	cmd.AddCommand(newFetchCmd(), newSearchCmd())
	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// withAggregator builds the application graph, hands the aggregator to fn
// and tears the graph down again
func withAggregator(ctx context.Context, fn func(context.Context, *core.Aggregator) error) error {
	var agg *core.Aggregator
	app := fx.New(appfx.Core, fx.Populate(&agg))
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, agg)
}
