package fx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amityadav/newsagg/internal/config"
	"github.com/amityadav/newsagg/internal/core"
	"github.com/amityadav/newsagg/internal/guardian"
	"github.com/amityadav/newsagg/internal/logger"
	"github.com/amityadav/newsagg/internal/newsapi"
	"github.com/amityadav/newsagg/internal/nyt"
	"github.com/amityadav/newsagg/internal/provider"
	"github.com/amityadav/newsagg/internal/store"
	"github.com/amityadav/newsagg/internal/worker"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// ============================================================================
// FX MODULES - Group related providers together
// ============================================================================

// ConfigModule provides application configuration
var ConfigModule = fx.Module("config",
	fx.Provide(config.Load),
)

// LoggerModule provides the root zap logger and routes fx events through it
var LoggerModule = fx.Module("logger",
	fx.Provide(NewLogger),
	fx.Invoke(SyncLoggerOnStop),
)

// StoreModule provides the article store
var StoreModule = fx.Module("store",
	fx.Provide(NewStore),
)

// ProviderModule provides the adapter registry with every configured provider
var ProviderModule = fx.Module("provider",
	fx.Provide(NewProviderRegistry),
)

// CoreModule provides the aggregation engine
var CoreModule = fx.Module("core",
	fx.Provide(NewAggregator),
)

// WorkerModule provides the scheduled refresh worker
var WorkerModule = fx.Module("worker",
	fx.Provide(NewRefreshWorker),
)

// Core bundles everything needed to run searches and refreshes, without servers
var Core = fx.Options(
	ConfigModule,
	LoggerModule,
	StoreModule,
	ProviderModule,
	CoreModule,
	fx.WithLogger(NewEventLogger),
)

// ============================================================================
// PROVIDER FUNCTIONS - Constructors that FX will call automatically
// ============================================================================

// NewLogger builds the root logger from configuration
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogDevelopment)
}

// SyncLoggerOnStop flushes buffered log entries at shutdown
func SyncLoggerOnStop(lc fx.Lifecycle, l *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = l.Sync()
			return nil
		},
	})
}

// NewEventLogger routes fx lifecycle events through zap
func NewEventLogger(l *zap.Logger) fxevent.Logger {
	zl := &fxevent.ZapLogger{Logger: l.Named("fx")}
	zl.UseLogLevel(zap.DebugLevel)
	return zl
}

// NewStore opens the store selected by STORE_DRIVER
func NewStore(lc fx.Lifecycle, cfg config.Config, l *zap.Logger) (store.Store, error) {
	var st store.Store
	switch cfg.StoreDriver {
	case store.DriverMemory:
		st = store.NewMemoryStore()
		l.Info("[FX] MemoryStore initialized")
	case store.DriverPostgres:
		pg, err := store.NewPostgresStore(context.Background(), cfg.DatabaseURL, l.Named("store"))
		if err != nil {
			return nil, err
		}
		st = pg
		l.Info("[FX] PostgresStore initialized")
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", cfg.StoreDriver, store.DriverPostgres, store.DriverMemory)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			st.Close()
			return nil
		},
	})
	return st, nil
}

// NewProviderRegistry registers an adapter for every provider with an API key
func NewProviderRegistry(cfg config.Config, l *zap.Logger) *provider.Registry {
	registry := provider.NewRegistry()

	transport := func(name string) *provider.HTTPClient {
		return provider.NewHTTPClient(name,
			provider.WithHTTPClient(&http.Client{Timeout: cfg.ProviderTimeout}),
			provider.WithRateLimit(cfg.ProviderRatePerSecond),
			provider.WithLogger(l.Named(name)),
		)
	}

	if cfg.NewsAPIKey != "" {
		registry.Register(newsapi.NewClient(cfg.NewsAPIKey,
			newsapi.WithBaseURL(cfg.NewsAPIBaseURL),
			newsapi.WithTransport(transport("newsapi")),
			newsapi.WithLogger(l.Named("newsapi")),
		))
		l.Info("[FX] ProviderRegistry: News API registered")
	}

	if cfg.GuardianAPIKey != "" {
		registry.Register(guardian.NewClient(cfg.GuardianAPIKey,
			guardian.WithBaseURL(cfg.GuardianBaseURL),
			guardian.WithTransport(transport("guardian")),
			guardian.WithLogger(l.Named("guardian")),
		))
		l.Info("[FX] ProviderRegistry: The Guardian registered")
	}

	if cfg.NYTAPIKey != "" {
		registry.Register(nyt.NewClient(cfg.NYTAPIKey,
			nyt.WithBaseURL(cfg.NYTBaseURL),
			nyt.WithTransport(transport("nyt")),
			nyt.WithLogger(l.Named("nyt")),
		))
		l.Info("[FX] ProviderRegistry: New York Times registered")
	}

	if registry.Count() == 0 {
		l.Warn("[FX] ProviderRegistry has no providers; set NEWS_API_KEY, GUARDIAN_API_KEY or NYT_API_KEY")
	}
	l.Info("[FX] ProviderRegistry initialized", zap.Int("providers", registry.Count()))
	return registry
}

// NewAggregator creates the aggregation engine
func NewAggregator(st store.Store, registry *provider.Registry, cfg config.Config, l *zap.Logger) *core.Aggregator {
	agg := core.NewAggregator(st, registry, cfg.ProviderTimeout, l.Named("aggregator"))
	l.Info("[FX] Aggregator initialized", zap.Duration("provider_timeout", cfg.ProviderTimeout))
	return agg
}

// NewRefreshWorker creates the scheduled refresh worker
func NewRefreshWorker(agg *core.Aggregator, cfg config.Config, l *zap.Logger) *worker.Worker {
	w := worker.NewWorker(agg, cfg.RefreshSchedule, l.Named("worker"))
	l.Info("[FX] RefreshWorker initialized", zap.String("schedule", cfg.RefreshSchedule))
	return w
}
