package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/amityadav/newsagg/internal/news"
)

// MemoryStore keeps articles in process. It applies the same predicate and
// ordering as PostgresStore and is meant for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]news.Article
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[string]news.Article)}
}

func (s *MemoryStore) Upsert(ctx context.Context, a news.Article) error {
	if a.URL == "" {
		return errEmptyURL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.URL] = canonical(a)
	return nil
}

func (s *MemoryStore) UpsertAll(ctx context.Context, articles []news.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		s.articles[a.URL] = canonical(a)
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, f news.Filter) ([]news.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", news.ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	out := make([]news.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if f.Matches(a) {
			out = append(out, canonical(a))
		}
	}
	s.mu.RUnlock()

	sortArticles(out)
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context, f news.Filter) (int, error) {
	items, err := s.Query(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *MemoryStore) Page(ctx context.Context, f news.Filter, page, pageSize int) (news.Page, error) {
	items, err := s.Query(ctx, f)
	if err != nil {
		return news.Page{}, err
	}
	return news.Paginate(items, page, pageSize), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() {}

// Len is the number of stored articles
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}
