package newsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amityadav/newsagg/internal/news"
	"github.com/amityadav/newsagg/internal/provider"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://newsapi.org/v2"

	country          = "us"
	headlinePageSize = 20
	searchPageSize   = 30
)

// Client is the headline-feed adapter for newsapi.org
type Client struct {
	apiKey  string
	baseURL string
	http    *provider.HTTPClient
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another endpoint (tests, proxies)
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTransport replaces the shared HTTP transport
func WithTransport(t *provider.HTTPClient) Option {
	return func(c *Client) {
		c.http = t
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithClock overrides the clock used for missing publication dates
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new News API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = provider.NewHTTPClient("newsapi", provider.WithLogger(c.logger))
	}
	return c
}

// Source implements provider.Adapter
func (c *Client) Source() news.Source {
	return news.SourceNewsAPI
}

// FetchLatest returns the current US top headlines
func (c *Client) FetchLatest(ctx context.Context) ([]news.Article, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("pageSize", strconv.Itoa(headlinePageSize))
	q.Set("page", "1")

	resp, err := c.get(ctx, "fetch_latest", "/top-headlines", q)
	if err != nil {
		return nil, err
	}
	return c.normalizeAll(resp.Articles, Hints{}), nil
}

// SearchByFilter uses /everything when there is search text (honoring the
// date range) and falls back to category headlines otherwise.
func (c *Client) SearchByFilter(ctx context.Context, f news.Filter) ([]news.Article, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(searchPageSize))
	q.Set("page", "1")

	path := "/everything"
	if f.Search != "" {
		q.Set("q", f.Search)
		q.Set("sortBy", "publishedAt")
		if from := f.StartBound(); from != nil {
			q.Set("from", from.Format(news.DateLayout))
		}
		if f.To != nil {
			q.Set("to", f.To.UTC().Format(news.DateLayout))
		}
	} else {
		path = "/top-headlines"
		q.Set("country", country)
		if f.Category != "" {
			q.Set("category", strings.ToLower(f.Category))
		}
	}

	c.logger.Info("searching", zap.String("query", f.Search), zap.String("endpoint", path))
	resp, err := c.get(ctx, "search", path, q)
	if err != nil {
		return nil, err
	}
	return c.normalizeAll(resp.Articles, Hints{Query: f.Search, Category: f.Category}), nil
}

func (c *Client) get(ctx context.Context, operation, path string, q url.Values) (*Response, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: NEWS_API_KEY is not set", news.ErrProviderUnavailable)
	}

	header := http.Header{}
	header.Set("X-Api-Key", c.apiKey)

	var resp Response
	if err := c.http.GetJSON(ctx, operation, c.baseURL+path, q, header, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "ok":
	case "error":
		return nil, fmt.Errorf("%w: newsapi %s: %s", news.ErrProviderUnavailable, resp.Code, resp.Message)
	default:
		return nil, fmt.Errorf("%w: newsapi unexpected status %q", news.ErrProviderMalformedResponse, resp.Status)
	}

	c.logger.Info("fetched articles", zap.String("operation", operation), zap.Int("count", len(resp.Articles)))
	return &resp, nil
}

func (c *Client) normalizeAll(in []Article, h Hints) []news.Article {
	out := make([]news.Article, 0, len(in))
	for _, a := range in {
		if !usable(a) {
			continue
		}
		out = append(out, Normalize(a, h, c.now))
	}
	return out
}
