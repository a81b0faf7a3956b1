package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/amityadav/newsagg/internal/metrics"
	"github.com/amityadav/newsagg/internal/news"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultRequestTimeout bounds a single provider HTTP call
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRatePerSecond is the steady request rate allowed per provider
	DefaultRatePerSecond = 5

	userAgent    = "newsagg/1.0"
	maxErrorBody = 512
)

// HTTPClient is the JSON transport shared by the provider adapters
type HTTPClient struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// ClientOption configures an HTTPClient
type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithRateLimit sets the steady request rate; zero or less disables limiting
func WithRateLimit(perSecond float64) ClientOption {
	return func(h *HTTPClient) {
		if perSecond <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ClientOption {
	return func(h *HTTPClient) {
		h.logger = l
	}
}

// NewHTTPClient creates a transport for the provider called name
func NewHTTPClient(name string, opts ...ClientOption) *HTTPClient {
	h := &HTTPClient{
		name:    name,
		client:  &http.Client{Timeout: DefaultRequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRatePerSecond), 1),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetJSON issues a GET to endpoint with query and decodes the body into out.
// Transport failures and non-2xx statuses wrap news.ErrProviderUnavailable;
// undecodable bodies wrap news.ErrProviderMalformedResponse.
func (h *HTTPClient) GetJSON(ctx context.Context, operation, endpoint string, query url.Values, header http.Header, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		switch {
		case errors.Is(err, news.ErrProviderMalformedResponse):
			outcome = metrics.OutcomeMalformed
		case err != nil:
			outcome = metrics.OutcomeError
		}
		metrics.RecordProviderRequest(h.name, operation, outcome, time.Since(start).Seconds())
	}()

	if err := h.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s rate limiter: %w", news.ErrProviderUnavailable, h.name, err)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %s invalid endpoint: %w", news.ErrProviderUnavailable, h.name, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %s failed to create request: %w", news.ErrProviderUnavailable, h.name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	h.logger.Debug("provider request", zap.String("operation", operation), zap.String("path", u.Path))

	resp, err := h.client.Do(req)
	if err != nil {
		// *url.Error repeats the full URL, api keys included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("%w: %s request failed: %w", news.ErrProviderUnavailable, h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s api error: %d %s", news.ErrProviderUnavailable, h.name, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s failed to decode response: %w", news.ErrProviderMalformedResponse, h.name, err)
	}

	h.logger.Debug("provider response",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
