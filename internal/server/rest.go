package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amityadav/newsagg/internal/config"
	"github.com/amityadav/newsagg/internal/news"
	"go.uber.org/zap"
)

// Aggregator is what the REST layer needs from the aggregation engine
type Aggregator interface {
	Search(ctx context.Context, f news.Filter) (news.Page, error)
	FetchAll(ctx context.Context) (bool, error)
}

// Pinger reports whether the article store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups all dependencies for REST handlers
type Services struct {
	Aggregator Aggregator
	Store      Pinger
	Logger     *zap.Logger
}

const (
	articlesPath = "/api/articles"
	fetchPath    = "/api/news/fetch"
	healthPath   = "/healthz"
)

// CreateRESTHandler creates REST API endpoints
func CreateRESTHandler(services Services, cfg config.Config) http.HandlerFunc {
	logger := services.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		switch r.URL.Path {
		case articlesPath:
			handleArticles(w, r, services.Aggregator, logger)
		case fetchPath:
			handleFetch(w, r, services.Aggregator, cfg.FetchAPIKey, logger)
		case healthPath:
			handleHealth(w, r, services.Store)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		}
	}
}

func handleArticles(w http.ResponseWriter, r *http.Request, agg Aggregator, logger *zap.Logger) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	page, err := agg.Search(r.Context(), filter)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func handleFetch(w http.ResponseWriter, r *http.Request, agg Aggregator, fetchAPIKey string, logger *zap.Logger) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if fetchAPIKey == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "FETCH_API_KEY not configured on server"})
		return
	}
	if r.Header.Get("X-API-Key") != fetchAPIKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized - invalid or missing X-API-Key header"})
		return
	}

	logger.Info("manual refresh triggered")
	ok, err := agg.FetchAll(r.Context())
	if err != nil {
		writeError(w, err, logger)
		return
	}

	resp := fetchResponse{AllSucceeded: ok, Status: "success", Message: "News articles updated successfully!"}
	if !ok {
		resp.Status = "partial"
		resp.Message = "Failed to fetch some news sources."
	}
	writeJSON(w, http.StatusOK, resp)
}

type fetchResponse struct {
	Status       string `json:"status"`
	AllSucceeded bool   `json:"all_succeeded"`
	Message      string `json:"message"`
}

func handleHealth(w http.ResponseWriter, r *http.Request, st Pinger) {
	if st != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseFilter reads the article query parameters. Tags may be repeated
// (tags=a&tags=b), bracketed (tags[]=a) or comma separated (tags=a,b).
func parseFilter(r *http.Request) (news.Filter, error) {
	q := r.URL.Query()
	f := news.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Source:   news.Source(q.Get("source")),
		Author:   q.Get("author"),
	}

	for _, key := range []string{"tags", "tags[]"} {
		for _, v := range q[key] {
			f.Tags = append(f.Tags, news.SplitTags(v)...)
		}
	}

	var fields []news.FieldError
	collect := func(err error) {
		var verr *news.ValidationError
		if errors.As(err, &verr) {
			fields = append(fields, verr.Fields...)
		}
	}

	var err error
	if f.From, err = news.ParseDate("from", q.Get("from")); err != nil {
		collect(err)
	}
	if f.To, err = news.ParseDate("to", q.Get("to")); err != nil {
		collect(err)
	}
	if f.Page, err = parseInt("page", q.Get("page")); err != nil {
		collect(err)
	}
	if f.PerPage, err = parseInt("per_page", q.Get("per_page")); err != nil {
		collect(err)
	}

	if len(fields) > 0 {
		return news.Filter{}, &news.ValidationError{Fields: fields}
	}
	return f, nil
}

func parseInt(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, &news.ValidationError{Fields: []news.FieldError{{Field: field, Message: "must be an integer"}}}
	}
	return i, nil
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields []news.FieldError `json:"fields,omitempty"`
}

// writeError maps the error taxonomy onto HTTP status codes
func writeError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var verr *news.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: news.ErrInvalidFilter.Error(), Fields: verr.Fields})
	case errors.Is(err, news.ErrInvalidFilter):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, news.ErrStoreUnavailable):
		logger.Error("store unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: news.ErrStoreUnavailable.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
