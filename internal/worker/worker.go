package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher runs one full refresh across every provider
type Refresher interface {
	FetchAll(ctx context.Context) (bool, error)
}

// Worker runs the scheduled news refresh
type Worker struct {
	refresher Refresher
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
	runs      atomic.Int64
}

// NewWorker creates a new refresh worker. schedule is a standard 5-field
// cron spec or a descriptor such as "@hourly" or "@every 15m".
func NewWorker(refresher Refresher, schedule string, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	return &Worker{
		refresher: refresher,
		schedule:  schedule,
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:    logger,
	}
}

// Start schedules the refresh job and starts the scheduler
func (w *Worker) Start() error {
	w.logger.Info("starting refresh scheduler", zap.String("schedule", w.schedule))

	if _, err := w.cron.AddFunc(w.schedule, func() {
		w.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule refresh job %q: %w", w.schedule, err)
	}

	w.cron.Start()
	w.logger.Info("scheduled news refresh", zap.String("schedule", w.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (w *Worker) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
		w.logger.Info("stopped")
	case <-ctx.Done():
		w.logger.Warn("stopped before the running refresh finished")
	}
}

// RunOnce runs a single refresh and reports whether every provider succeeded
func (w *Worker) RunOnce(ctx context.Context) bool {
	w.runs.Add(1)
	w.logger.Info("running news refresh job")

	ok, err := w.refresher.FetchAll(ctx)
	switch {
	case err != nil:
		w.logger.Error("news refresh failed", zap.Error(err))
		return false
	case !ok:
		w.logger.Warn("Failed to fetch some news sources.")
		return false
	default:
		w.logger.Info("News articles updated successfully.")
		return true
	}
}

// Runs is the number of refreshes started so far
func (w *Worker) Runs() int64 {
	return w.runs.Load()
}

// cronLogger routes scheduler events through zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
