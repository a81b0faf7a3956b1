package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/amityadav/newsagg/internal/metrics"
	"github.com/amityadav/newsagg/internal/news"
	"github.com/amityadav/newsagg/internal/provider"
	"github.com/amityadav/newsagg/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultProviderTimeout = 20 * time.Second

const (
	pathStore = "store"
	pathLive  = "live"
)

// Aggregator runs full refreshes and searches across every registered adapter
type Aggregator struct {
	store    store.Store
	registry *provider.Registry
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAggregator creates a new Aggregator. A timeout <= 0 uses DefaultProviderTimeout.
func NewAggregator(st store.Store, registry *provider.Registry, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:    st,
		registry: registry,
		timeout:  timeout,
		logger:   logger,
	}
}

// FetchAll pulls the latest articles from every adapter and upserts them.
// It reports true only when every adapter succeeded. Adapter failures are
// logged, not returned; the error is non-nil only when the store fails.
func (a *Aggregator) FetchAll(ctx context.Context) (bool, error) {
	adapters := a.registry.GetAll()
	a.logger.Info("refresh started", zap.Int("providers", len(adapters)))

	results := a.fanOut(ctx, adapters, func(ctx context.Context, p provider.Adapter) ([]news.Article, error) {
		return p.FetchLatest(ctx)
	})

	for _, r := range results {
		if !r.OK() {
			continue
		}
		if err := a.upsert(ctx, r); err != nil {
			metrics.RecordRefresh(false)
			return false, err
		}
	}

	ok := allSucceeded(results)
	metrics.RecordRefresh(ok)
	if ok {
		a.logger.Info("refresh completed", zap.Int("providers", len(results)))
	} else {
		a.logger.Warn("refresh completed with failures", zap.Strings("failed", failedSources(results)))
	}
	return ok, nil
}

// Search answers a filter from the store when it has matches, otherwise
// from a live search across the selected adapters. Live results are stored
// so that the next identical search is answered by the store.
func (a *Aggregator) Search(ctx context.Context, f news.Filter) (news.Page, error) {
	if err := f.Validate(); err != nil {
		return news.Page{}, err
	}
	f = f.Normalized()

	total, err := a.store.Count(ctx, f)
	if err != nil {
		return news.Page{}, err
	}
	if total > 0 {
		metrics.RecordSearch(pathStore)
		a.logger.Debug("search answered from store", zap.String("search", f.Search), zap.Int("total", total))
		return a.store.Page(ctx, f, f.Page, f.PerPage)
	}

	adapters := a.registry.Select(f.Source)
	a.logger.Info("store has no matches, searching live",
		zap.String("search", f.Search),
		zap.String("source", f.Source.String()),
		zap.Int("providers", len(adapters)),
	)

	results := a.fanOut(ctx, adapters, func(ctx context.Context, p provider.Adapter) ([]news.Article, error) {
		return p.SearchByFilter(ctx, f)
	})

	for _, r := range results {
		if !r.OK() {
			continue
		}
		if err := a.upsert(ctx, r); err != nil {
			return news.Page{}, err
		}
	}

	merged := merge(results)
	if f.Author != "" {
		merged = slices.DeleteFunc(merged, func(art news.Article) bool {
			return !f.MatchesAuthor(art)
		})
	}

	metrics.RecordSearch(pathLive)
	a.logger.Info("live search completed",
		zap.String("search", f.Search),
		zap.Int("merged", len(merged)),
		zap.Strings("failed", failedSources(results)),
	)
	return news.Paginate(merged, f.Page, f.PerPage), nil
}

// fanOut calls every adapter concurrently under the provider deadline. Each
// goroutine writes only its own slot, so results keep adapter order no
// matter which call finishes first.
func (a *Aggregator) fanOut(ctx context.Context, adapters []provider.Adapter, call func(context.Context, provider.Adapter) ([]news.Article, error)) []provider.Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]provider.Result, len(adapters))
	var g errgroup.Group
	for i, p := range adapters {
		i, p := i, p
		g.Go(func() error {
			articles, err := call(ctx, p)
			if err == nil {
				// a result that arrives after the deadline still counts as a timeout
				err = ctx.Err()
			}
			if err != nil {
				a.logAdapterFailure(p.Source(), err)
				results[i] = provider.Result{Source: p.Source(), Err: err}
				return nil
			}
			results[i] = provider.Result{Source: p.Source(), Articles: articles}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Aggregator) upsert(ctx context.Context, r provider.Result) error {
	if len(r.Articles) == 0 {
		return nil
	}
	if err := a.store.UpsertAll(ctx, r.Articles); err != nil {
		a.logger.Error("failed to store articles", zap.String("source", r.Source.String()), zap.Error(err))
		if errors.Is(err, news.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", news.ErrStoreUnavailable, err)
	}
	metrics.RecordUpserted(r.Source.String(), len(r.Articles))
	return nil
}

func (a *Aggregator) logAdapterFailure(source news.Source, err error) {
	fields := []zap.Field{zap.String("source", source.String()), zap.Error(err)}
	switch {
	case errors.Is(err, news.ErrProviderMalformedResponse):
		a.logger.Warn("provider returned a malformed response", fields...)
	case errors.Is(err, context.DeadlineExceeded):
		a.logger.Warn("provider timed out", fields...)
	default:
		a.logger.Warn("provider unavailable", fields...)
	}
}

// allSucceeded is the refresh reduction: true only if no adapter failed
func allSucceeded(results []provider.Result) bool {
	for _, r := range results {
		if !r.OK() {
			return false
		}
	}
	return true
}

// merge is the search reduction: failed adapters contribute nothing. The
// concatenation follows adapter order, duplicates by URL keep their first
// occurrence and the stable sort leaves ties in adapter order.
func merge(results []provider.Result) []news.Article {
	seen := make(map[string]struct{})
	var merged []news.Article
	for _, r := range results {
		if !r.OK() {
			continue
		}
		for _, art := range r.Articles {
			if _, dup := seen[art.URL]; dup {
				continue
			}
			seen[art.URL] = struct{}{}
			art.PublishedAt = news.Canonical(art.PublishedAt)
			merged = append(merged, art)
		}
	}
	slices.SortStableFunc(merged, func(x, y news.Article) int {
		return y.PublishedAt.Compare(x.PublishedAt)
	})
	return merged
}

func failedSources(results []provider.Result) []string {
	var out []string
	for _, r := range results {
		if !r.OK() {
			out = append(out, r.Source.String())
		}
	}
	return out
}
