package nyt

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/amityadav/newsagg/internal/news"
	"github.com/amityadav/newsagg/internal/provider"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.nytimes.com/svc"

	mostViewedPath = "/mostpopular/v2/viewed/7.json"
	searchPath     = "/search/v2/articlesearch.json"
	compactDate    = "20060102"
	statusOK       = "OK"
)

// Client is the keyword-search adapter for the New York Times APIs
type Client struct {
	apiKey  string
	baseURL string
	http    *provider.HTTPClient
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Client
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithTransport(t *provider.HTTPClient) Option {
	return func(c *Client) {
		c.http = t
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new NYT client
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
		c.http = provider.NewHTTPClient("nyt", provider.WithLogger(c.logger))
	}
	return c
}

// Source implements provider.Adapter
func (c *Client) Source() news.Source {
	return news.SourceNYT
}

// FetchLatest returns the most viewed articles of the last 7 days
func (c *Client) FetchLatest(ctx context.Context) ([]news.Article, error) {
	if err := c.checkKey(); err != nil {
		return nil, err
	}

	var env PopularEnvelope
	if err := c.http.GetJSON(ctx, "fetch_latest", c.baseURL+mostViewedPath, c.keyQuery(), nil, &env); err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return nil, fmt.Errorf("%w: nyt most popular status %q", news.ErrProviderMalformedResponse, env.Status)
	}

	docs := make([]Doc, len(env.Results))
	for i, p := range env.Results {
		docs[i] = p.Doc()
	}
	return c.normalizeAll("fetch_latest", docs), nil
}

// SearchByFilter queries article search, newest first, honoring the date
// range and filtering by section when a category is given
func (c *Client) SearchByFilter(ctx context.Context, f news.Filter) ([]news.Article, error) {
	if err := c.checkKey(); err != nil {
		return nil, err
	}

	q := c.keyQuery()
	q.Set("page", "0")
	q.Set("sort", "newest")
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	if f.From != nil {
		q.Set("begin_date", f.From.UTC().Format(compactDate))
	}
	if f.To != nil {
		q.Set("end_date", f.To.UTC().Format(compactDate))
	}
	if f.Category != "" {
		q.Set("fq", fmt.Sprintf("section_name:(%q)", f.Category))
	}

	c.logger.Info("searching", zap.String("query", f.Search), zap.String("fq", q.Get("fq")))

	var env SearchEnvelope
	if err := c.http.GetJSON(ctx, "search", c.baseURL+searchPath, q, nil, &env); err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return nil, fmt.Errorf("%w: nyt article search status %q", news.ErrProviderMalformedResponse, env.Status)
	}
	return c.normalizeAll("search", env.Response.Docs), nil
}

func (c *Client) checkKey() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: NYT_API_KEY is not set", news.ErrProviderUnavailable)
	}
	return nil
}

func (c *Client) keyQuery() url.Values {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	return q
}

func (c *Client) normalizeAll(operation string, docs []Doc) []news.Article {
	out := make([]news.Article, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.WebURL) == "" {
			continue
		}
		out = append(out, Normalize(d, c.now))
	}
	c.logger.Info("fetched articles", zap.String("operation", operation), zap.Int("count", len(out)))
	return out
}
