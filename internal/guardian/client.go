package guardian

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amityadav/newsagg/internal/news"
	"github.com/amityadav/newsagg/internal/provider"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://content.guardianapis.com"

	pageSize       = 50
	latestQuery    = "latest"
	latestWindow   = 24 * time.Hour
	searchLookback = 30 * 24 * time.Hour
	showFields     = "headline,byline,trailText,shortUrl"
)

// Client is the date-ranged query adapter for The Guardian Content API
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

// NewClient creates a new Guardian client
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
		c.http = provider.NewHTTPClient("guardian", provider.WithLogger(c.logger))
	}
	return c
}

// Source implements provider.Adapter
func (c *Client) Source() news.Source {
	return news.SourceGuardian
}

// FetchLatest returns content published in the last day
func (c *Client) FetchLatest(ctx context.Context) ([]news.Article, error) {
	now := c.now()
	q := c.baseQuery()
	q.Set("q", latestQuery)
	q.Set("from-date", now.Add(-latestWindow).UTC().Format(news.DateLayout))
	q.Set("to-date", now.UTC().Format(news.DateLayout))

	return c.search(ctx, "fetch_latest", q)
}

// SearchByFilter queries by text (or category when there is none) within the
// filter's date range, defaulting to the last 30 days
func (c *Client) SearchByFilter(ctx context.Context, f news.Filter) ([]news.Article, error) {
	now := c.now()
	q := c.baseQuery()

	text := f.Search
	if text == "" {
		text = f.Category
	}
	if text != "" {
		q.Set("q", text)
	}

	from := now.Add(-searchLookback)
	if f.From != nil {
		from = *f.From
	}
	to := now
	if f.To != nil {
		to = *f.To
	}
	q.Set("from-date", from.UTC().Format(news.DateLayout))
	q.Set("to-date", to.UTC().Format(news.DateLayout))

	if f.Category != "" {
		q.Set("section", strings.ToLower(f.Category))
	}

	c.logger.Info("searching", zap.String("query", text), zap.String("section", q.Get("section")))
	return c.search(ctx, "search", q)
}

func (c *Client) baseQuery() url.Values {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("order-by", "newest")
	q.Set("show-tags", contributorTag)
	q.Set("show-fields", showFields)
	q.Set("page-size", strconv.Itoa(pageSize))
	return q
}

func (c *Client) search(ctx context.Context, operation string, q url.Values) ([]news.Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: GUARDIAN_API_KEY is not set", news.ErrProviderUnavailable)
	}

	var env Envelope
	if err := c.http.GetJSON(ctx, operation, c.baseURL+"/search", q, nil, &env); err != nil {
		return nil, err
	}

	switch env.Response.Status {
	case "ok":
	case "error":
		return nil, fmt.Errorf("%w: guardian: %s", news.ErrProviderUnavailable, env.Response.Message)
	default:
		return nil, fmt.Errorf("%w: guardian unexpected status %q", news.ErrProviderMalformedResponse, env.Response.Status)
	}

	out := make([]news.Article, 0, len(env.Response.Results))
	for _, r := range env.Response.Results {
		if strings.TrimSpace(r.WebURL) == "" {
			continue
		}
		out = append(out, Normalize(r, c.now))
	}

	c.logger.Info("fetched articles", zap.String("operation", operation), zap.Int("count", len(out)))
	return out, nil
}
