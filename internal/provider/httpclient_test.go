package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/amityadav/newsagg/internal/news"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Status string `json:"status"`
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "election", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient("test", WithRateLimit(0))
	var out payload
	err := c.GetJSON(context.Background(), "search", srv.URL+"/v2/everything",
		url.Values{"q": {"election"}}, http.Header{"X-Api-Key": {"secret"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
}

func TestGetJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"status":"error"}`, news.ErrProviderUnavailable},
		{"server error", http.StatusInternalServerError, `oops`, news.ErrProviderUnavailable},
		{"html body", http.StatusOK, `<html>maintenance</html>`, news.ErrProviderMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var out payload
			err := NewHTTPClient("test", WithRateLimit(0)).GetJSON(context.Background(), "op", srv.URL, nil, nil, &out)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetJSONErrorBodyIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	err := NewHTTPClient("test", WithRateLimit(0)).GetJSON(context.Background(), "op", srv.URL, nil, nil, &payload{})
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 700)
}

func TestGetJSONDoesNotLeakQueryOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	err := NewHTTPClient("test", WithRateLimit(0)).GetJSON(context.Background(), "op", endpoint,
		url.Values{"api-key": {"top-secret"}}, nil, &payload{})
	assert.ErrorIs(t, err, news.ErrProviderUnavailable)
	assert.NotContains(t, err.Error(), "top-secret")
}

func TestGetJSONHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewHTTPClient("test", WithRateLimit(0)).GetJSON(ctx, "op", srv.URL, nil, nil, &payload{})
	assert.ErrorIs(t, err, news.ErrProviderUnavailable)
}

func TestRateLimitWaitsBetweenCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewHTTPClient("test", WithRateLimit(10))
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.GetJSON(context.Background(), "op", srv.URL, nil, nil, &payload{}))
	}
	// burst of one: the 2nd and 3rd call each wait ~100ms
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}
