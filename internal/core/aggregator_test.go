package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amityadav/newsagg/internal/news"
	"github.com/amityadav/newsagg/internal/provider"
	"github.com/amityadav/newsagg/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	source   news.Source
	articles []news.Article
	err      error
	delay    time.Duration

	latestCalls atomic.Int32
	searchCalls atomic.Int32
	lastFilter  news.Filter
}

func (f *fakeAdapter) Source() news.Source { return f.source }

func (f *fakeAdapter) FetchLatest(ctx context.Context) ([]news.Article, error) {
	f.latestCalls.Add(1)
	return f.respond(ctx)
}

func (f *fakeAdapter) SearchByFilter(ctx context.Context, filter news.Filter) ([]news.Article, error) {
	f.searchCalls.Add(1)
	f.lastFilter = filter
	return f.respond(ctx)
}

func (f *fakeAdapter) respond(ctx context.Context) ([]news.Article, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func (f *fakeAdapter) calls() int {
	return int(f.latestCalls.Load() + f.searchCalls.Load())
}

// failingStore fails every call
type failingStore struct {
	store.MemoryStore
}

var errDown = fmt.Errorf("%w: connection refused", news.ErrStoreUnavailable)

func (*failingStore) Count(context.Context, news.Filter) (int, error) { return 0, errDown }
func (*failingStore) UpsertAll(context.Context, []news.Article) error { return errDown }

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func article(source news.Source, url, title, author string, hoursAgo int) news.Article {
	return news.Article{
		URL:         url,
		Title:       title,
		Author:      author,
		Description: news.DefaultDescription,
		Source:      source,
		Category:    news.DefaultCategory,
		Tags:        []string{},
		PublishedAt: base.Add(-time.Duration(hoursAgo) * time.Hour),
	}
}

func newAggregator(st store.Store, adapters ...provider.Adapter) *Aggregator {
	return NewAggregator(st, provider.NewRegistry(adapters...), time.Second, nil)
}

func TestFetchAllAllSucceed(t *testing.T) {
	st := store.NewMemoryStore()
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{article(news.SourceNewsAPI, "https://n/1", "One", "A", 1)}}
	a2 := &fakeAdapter{source: news.SourceGuardian, articles: []news.Article{article(news.SourceGuardian, "https://g/1", "Two", "B", 2)}}
	a3 := &fakeAdapter{source: news.SourceNYT}

	ok, err := newAggregator(st, a1, a2, a3).FetchAll(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, st.Len())
	for _, a := range []*fakeAdapter{a1, a2, a3} {
		assert.Equal(t, int32(1), a.latestCalls.Load())
	}
}

func TestFetchAllOneFailureStillStoresOthers(t *testing.T) {
	st := store.NewMemoryStore()
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{article(news.SourceNewsAPI, "https://n/1", "One", "A", 1)}}
	a2 := &fakeAdapter{source: news.SourceGuardian, err: fmt.Errorf("%w: 503", news.ErrProviderUnavailable)}
	a3 := &fakeAdapter{source: news.SourceNYT, articles: []news.Article{article(news.SourceNYT, "https://y/1", "Three", "C", 3)}}

	ok, err := newAggregator(st, a1, a2, a3).FetchAll(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, st.Len())
	for _, a := range []*fakeAdapter{a1, a2, a3} {
		assert.Equal(t, int32(1), a.latestCalls.Load())
	}
}

func TestFetchAllFirstFailureDoesNotStopOthers(t *testing.T) {
	st := store.NewMemoryStore()
	a1 := &fakeAdapter{source: news.SourceNewsAPI, err: news.ErrProviderMalformedResponse}
	a2 := &fakeAdapter{source: news.SourceGuardian, articles: []news.Article{article(news.SourceGuardian, "https://g/1", "Two", "B", 2)}}
	a3 := &fakeAdapter{source: news.SourceNYT, articles: []news.Article{article(news.SourceNYT, "https://y/1", "Three", "C", 3)}}

	ok, err := newAggregator(st, a1, a2, a3).FetchAll(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, int32(1), a1.latestCalls.Load())
	assert.Equal(t, int32(1), a2.latestCalls.Load())
	assert.Equal(t, int32(1), a3.latestCalls.Load())
}

func TestFetchAllStoreFailureIsFatal(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{article(news.SourceNewsAPI, "https://n/1", "One", "A", 1)}}

	ok, err := newAggregator(&failingStore{}, a1).FetchAll(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, news.ErrStoreUnavailable)
}

func TestFetchAllTimeoutFailsOnlySlowAdapter(t *testing.T) {
	st := store.NewMemoryStore()
	fast := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{article(news.SourceNewsAPI, "https://n/1", "One", "A", 1)}}
	slow := &fakeAdapter{source: news.SourceNYT, delay: time.Second, articles: []news.Article{article(news.SourceNYT, "https://y/1", "Three", "C", 3)}}

	agg := NewAggregator(st, provider.NewRegistry(fast, slow), 50*time.Millisecond, nil)
	ok, err := agg.FetchAll(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestFetchAllIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{
		article(news.SourceNewsAPI, "https://n/1", "One", "A", 1),
		article(news.SourceNewsAPI, "https://n/2", "Two", "A", 2),
	}}
	agg := newAggregator(st, a1)

	_, err := agg.FetchAll(context.Background())
	require.NoError(t, err)
	_, err = agg.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Len())
}

func TestSearchLivePartialFailure(t *testing.T) {
	st := store.NewMemoryStore()
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{
		article(news.SourceNewsAPI, "https://n/1", "Election one", "A", 1),
		article(news.SourceNewsAPI, "https://n/2", "Election two", "A", 4),
		article(news.SourceNewsAPI, "https://n/3", "Election three", "A", 5),
	}}
	a2 := &fakeAdapter{source: news.SourceGuardian, err: fmt.Errorf("%w: timeout", news.ErrProviderUnavailable)}
	a3 := &fakeAdapter{source: news.SourceNYT, articles: []news.Article{
		article(news.SourceNYT, "https://y/1", "Election four", "C", 2),
		article(news.SourceNYT, "https://y/2", "Election five", "C", 3),
	}}

	page, err := newAggregator(st, a1, a2, a3).Search(context.Background(), news.Filter{Search: "election", PerPage: 2, Page: 1})
	require.NoError(t, err)

	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.LastPage)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "https://n/1", page.Items[0].URL)
	assert.Equal(t, "https://y/1", page.Items[1].URL)

	// live results are stored, so the next search is answered by the store
	assert.Equal(t, 5, st.Len())
	again, err := newAggregator(st, a1, a2, a3).Search(context.Background(), news.Filter{Search: "election", PerPage: 2, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, page, again)
	assert.Equal(t, 1, a1.calls())
}

func TestSearchCompletionOrderDoesNotLeak(t *testing.T) {
	tie := base
	a1 := &fakeAdapter{source: news.SourceNewsAPI, delay: 40 * time.Millisecond, articles: []news.Article{
		{URL: "https://n/1", Title: "Tie", Author: "A", Source: news.SourceNewsAPI, PublishedAt: tie},
	}}
	a2 := &fakeAdapter{source: news.SourceGuardian, delay: 20 * time.Millisecond, articles: []news.Article{
		{URL: "https://g/1", Title: "Tie", Author: "B", Source: news.SourceGuardian, PublishedAt: tie},
	}}
	a3 := &fakeAdapter{source: news.SourceNYT, articles: []news.Article{
		{URL: "https://y/1", Title: "Tie", Author: "C", Source: news.SourceNYT, PublishedAt: tie},
	}}

	// registration order is deliberately reversed
	page, err := newAggregator(store.NewMemoryStore(), a3, a2, a1).Search(context.Background(), news.Filter{Search: "tie"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, news.SourceNewsAPI, page.Items[0].Source)
	assert.Equal(t, news.SourceGuardian, page.Items[1].Source)
	assert.Equal(t, news.SourceNYT, page.Items[2].Source)
}

func TestSearchDedupesByURL(t *testing.T) {
	shared := "https://example.com/shared"
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{article(news.SourceNewsAPI, shared, "Election", "A", 1)}}
	a3 := &fakeAdapter{source: news.SourceNYT, articles: []news.Article{article(news.SourceNYT, shared, "Election", "C", 0)}}

	page, err := newAggregator(store.NewMemoryStore(), a1, a3).Search(context.Background(), news.Filter{Search: "election"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, news.SourceNewsAPI, page.Items[0].Source)
}

func TestSearchAuthorPostFilter(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{
		article(news.SourceNewsAPI, "https://n/1", "Election", "Jane Doe", 1),
		article(news.SourceNewsAPI, "https://n/2", "Election", "JANE SMITH", 2),
		article(news.SourceNewsAPI, "https://n/3", "Election", "Bob", 3),
	}}

	page, err := newAggregator(store.NewMemoryStore(), a1).Search(context.Background(), news.Filter{Search: "election", Author: "jane"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "Jane Doe", page.Items[0].Author)
	assert.Equal(t, "JANE SMITH", page.Items[1].Author)
}

func TestSearchSourceSelectorCallsOnlyThatAdapter(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI}
	a2 := &fakeAdapter{source: news.SourceGuardian, articles: []news.Article{article(news.SourceGuardian, "https://g/1", "Election", "B", 1)}}
	a3 := &fakeAdapter{source: news.SourceNYT}

	page, err := newAggregator(store.NewMemoryStore(), a1, a2, a3).Search(context.Background(), news.Filter{Search: "election", Source: news.SourceGuardian})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 0, a1.calls())
	assert.Equal(t, 1, a2.calls())
	assert.Equal(t, 0, a3.calls())
}

func TestSearchInvalidFilterMakesNoCalls(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI}
	st := &failingStore{}
	agg := newAggregator(st, a1)

	tests := []news.Filter{
		{Search: "x", Source: "Reuters"},
		{Search: ""},
		{Search: "   "},
		{Search: "x", From: &base, To: ptr(base.Add(-48 * time.Hour))},
	}
	for i, f := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := agg.Search(context.Background(), f)
			assert.ErrorIs(t, err, news.ErrInvalidFilter)
			assert.NotErrorIs(t, err, news.ErrStoreUnavailable)
		})
	}
	assert.Equal(t, 0, a1.calls())
}

func TestSearchStoreFailureIsFatal(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI}
	_, err := newAggregator(&failingStore{}, a1).Search(context.Background(), news.Filter{Search: "x"})
	assert.True(t, errors.Is(err, news.ErrStoreUnavailable))
	assert.Equal(t, 0, a1.calls())
}

func TestSearchAllAdaptersFailIsEmptyPage(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI, err: news.ErrProviderMalformedResponse}
	page, err := newAggregator(store.NewMemoryStore(), a1).Search(context.Background(), news.Filter{Search: "x"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.LastPage)
}

func TestSearchClampsPaging(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{article(news.SourceNewsAPI, "https://n/1", "election", "A", 1)}}
	page, err := newAggregator(store.NewMemoryStore(), a1).Search(context.Background(), news.Filter{Search: "election", Page: -1, PerPage: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, news.MaxPerPage, page.Size)
	assert.Len(t, page.Items, 1)
}

func TestSearchHugePageIsEmpty(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI, articles: []news.Article{
		article(news.SourceNewsAPI, "https://n/1", "election", "A", 1),
		article(news.SourceNewsAPI, "https://n/2", "election", "B", 2),
	}}
	st := store.NewMemoryStore()
	agg := newAggregator(st, a1)
	huge := math.MaxInt/10 + 2

	live, err := agg.Search(context.Background(), news.Filter{Search: "election", Page: huge})
	require.NoError(t, err)
	assert.Empty(t, live.Items)
	assert.Equal(t, 2, live.Total)
	assert.Equal(t, huge, live.Number)

	stored, err := agg.Search(context.Background(), news.Filter{Search: "election", Page: huge})
	require.NoError(t, err)
	assert.Equal(t, live, stored)
	assert.Equal(t, int32(1), a1.searchCalls.Load())
}

func TestSearchPassesNormalizedFilter(t *testing.T) {
	a1 := &fakeAdapter{source: news.SourceNewsAPI}
	_, err := newAggregator(store.NewMemoryStore(), a1).Search(context.Background(), news.Filter{Search: "  election ", Tags: []string{" ", "Politics"}})
	require.NoError(t, err)
	assert.Equal(t, "election", a1.lastFilter.Search)
	assert.Equal(t, []string{"Politics"}, a1.lastFilter.Tags)
	assert.Equal(t, news.DefaultPerPage, a1.lastFilter.PerPage)
}

func TestMergeOrdering(t *testing.T) {
	results := []provider.Result{
		{Source: news.SourceNewsAPI, Articles: []news.Article{
			article(news.SourceNewsAPI, "https://n/1", "a", "", 5),
			article(news.SourceNewsAPI, "https://n/2", "b", "", 1),
		}},
		{Source: news.SourceGuardian, Err: errors.New("down")},
		{Source: news.SourceNYT, Articles: []news.Article{
			article(news.SourceNYT, "https://y/1", "c", "", 3),
		}},
	}

	merged := merge(results)
	require.Len(t, merged, 3)
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].PublishedAt.After(merged[i-1].PublishedAt))
	}
	assert.True(t, allSucceeded(results[:1]))
	assert.False(t, allSucceeded(results))
	assert.Equal(t, []string{"The Guardian"}, failedSources(results))
}

func ptr(t time.Time) *time.Time { return &t }
