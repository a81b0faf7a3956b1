package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/amityadav/newsagg/internal/news"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Pool is the subset of *pgxpool.Pool the store uses
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type PostgresStore struct {
	db     Pool
	logger *zap.Logger
}

const articleColumns = "url, title, author, description, source, category, tags, published_at"

const upsertQuery = `
	INSERT INTO articles (url, title, author, description, source, category, tags, published_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (url) DO UPDATE
	SET title = EXCLUDED.title,
		author = EXCLUDED.author,
		description = EXCLUDED.description,
		source = EXCLUDED.source,
		category = EXCLUDED.category,
		tags = EXCLUDED.tags,
		published_at = EXCLUDED.published_at,
		updated_at = NOW();
`

// orderBy sorts newest first. Ties follow the fixed provider merge order
// like a live search does, then the URL.
var orderBy = "published_at DESC, " + sourceRank() + ", url ASC"

func sourceRank() string {
	var b strings.Builder
	b.WriteString("CASE source")
	for i, src := range news.Sources() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", src, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(news.Sources()))
	return b.String()
}

// NewPostgresStore connects to PostgreSQL and makes sure the schema exists
func NewPostgresStore(ctx context.Context, connString string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to create connection pool: %w", news.ErrStoreUnavailable, err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: unable to ping database: %w", news.ErrStoreUnavailable, err)
	}

	s := NewPostgresStoreWithPool(db, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithPool wraps an existing pool
func NewPostgresStoreWithPool(db Pool, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// Migrate creates the articles table and its indexes if they are missing
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: failed to apply schema: %w", news.ErrStoreUnavailable, err)
	}
	s.logger.Info("schema ready")
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", news.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) Upsert(ctx context.Context, a news.Article) error {
	if a.URL == "" {
		return errEmptyURL
	}
	a = canonical(a)
	if _, err := s.db.Exec(ctx, upsertQuery, upsertArgs(a)...); err != nil {
		s.logger.Error("upsert failed", zap.String("url", a.URL), zap.Error(err))
		return fmt.Errorf("%w: failed to upsert article: %w", news.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) UpsertAll(ctx context.Context, articles []news.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", news.ErrStoreUnavailable, err)
	}

	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		a = canonical(a)
		if _, err := tx.Exec(ctx, upsertQuery, upsertArgs(a)...); err != nil {
			_ = tx.Rollback(ctx)
			s.logger.Error("batch upsert failed", zap.String("url", a.URL), zap.Error(err))
			return fmt.Errorf("%w: failed to upsert article: %w", news.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit batch: %w", news.ErrStoreUnavailable, err)
	}
	s.logger.Debug("batch upserted", zap.Int("count", len(articles)))
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, f news.Filter) ([]news.Article, error) {
	whereClause, args := buildWhere(f)
	query := fmt.Sprintf(`
		SELECT %s
		FROM articles
		WHERE %s
		ORDER BY %s;
	`, articleColumns, whereClause, orderBy)
	return s.scanArticles(ctx, query, args...)
}

func (s *PostgresStore) Count(ctx context.Context, f news.Filter) (int, error) {
	whereClause, args := buildWhere(f)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM articles WHERE %s`, whereClause)

	var total int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: failed to count articles: %w", news.ErrStoreUnavailable, err)
	}
	return int(total), nil
}

func (s *PostgresStore) Page(ctx context.Context, f news.Filter, page, pageSize int) (news.Page, error) {
	total, err := s.Count(ctx, f)
	if err != nil {
		return news.Page{}, err
	}

	bounds := news.NewPage(nil, total, page, pageSize)
	page, pageSize = bounds.Number, bounds.Size
	offset := news.Offset(page, pageSize)
	if offset >= total {
		return bounds, nil
	}

	whereClause, args := buildWhere(f)
	paramCount := len(args)

	paramCount++
	limitArgIdx := paramCount
	paramCount++
	offsetArgIdx := paramCount
	args = append(args, pageSize, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM articles
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d;
	`, articleColumns, whereClause, orderBy, limitArgIdx, offsetArgIdx)

	items, err := s.scanArticles(ctx, query, args...)
	if err != nil {
		return news.Page{}, err
	}
	s.logger.Debug("page loaded", zap.Int("page", page), zap.Int("items", len(items)), zap.Int("total", total))
	return news.NewPage(items, total, page, pageSize), nil
}

func (s *PostgresStore) scanArticles(ctx context.Context, query string, args ...any) ([]news.Article, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query articles: %w", news.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	articles := []news.Article{}
	for rows.Next() {
		var a news.Article
		var source string
		if err := rows.Scan(&a.URL, &a.Title, &a.Author, &a.Description, &source, &a.Category, &a.Tags, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan article: %w", news.ErrStoreUnavailable, err)
		}
		a.Source = news.Source(source)
		a.PublishedAt = news.Canonical(a.PublishedAt)
		if a.Tags == nil {
			a.Tags = []string{}
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read articles: %w", news.ErrStoreUnavailable, err)
	}
	return articles, nil
}

func upsertArgs(a news.Article) []any {
	return []any{a.URL, a.Title, a.Author, a.Description, string(a.Source), a.Category, a.Tags, a.PublishedAt}
}

// buildWhere turns a filter into a parameterised predicate. Set fields are
// ANDed; tags form a single OR group matched case-insensitively.
func buildWhere(f news.Filter) (string, []any) {
	var conds []string
	var args []any
	paramCount := 0

	add := func(format string, arg any) {
		paramCount++
		conds = append(conds, fmt.Sprintf(format, paramCount))
		args = append(args, arg)
	}

	if f.Search != "" {
		add("title ILIKE $%d", "%"+escapeLike(f.Search)+"%")
	}
	if f.Author != "" {
		add("author ILIKE $%d", "%"+escapeLike(f.Author)+"%")
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Source != "" {
		add("source = $%d", string(f.Source))
	}
	if from := f.StartBound(); from != nil {
		add("published_at >= $%d", *from)
	}
	if to := f.EndBound(); to != nil {
		add("published_at < $%d", *to)
	}
	if len(f.Tags) > 0 {
		lowered := make([]string, len(f.Tags))
		for i, t := range f.Tags {
			lowered[i] = strings.ToLower(t)
		}
		add("EXISTS (SELECT 1 FROM unnest(tags) AS t(tag) WHERE lower(t.tag) = ANY($%d))", lowered)
	}

	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
