package fx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/amityadav/newsagg/internal/config"
	"github.com/amityadav/newsagg/internal/core"
	"github.com/amityadav/newsagg/internal/server"
	"github.com/amityadav/newsagg/internal/store"
	"github.com/amityadav/newsagg/internal/worker"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerModule starts the HTTP server and the refresh worker
var ServerModule = fx.Module("server",
	fx.Invoke(
		StartHTTPServer,
		StartRefreshWorker,
	),
)

// ServerParams groups dependencies for starting the HTTP server
type ServerParams struct {
	fx.In
	Lifecycle  fx.Lifecycle
	Aggregator *core.Aggregator
	Store      store.Store
	Config     config.Config
	Logger     *zap.Logger
}

// StartHTTPServer starts the HTTP server with lifecycle management
func StartHTTPServer(p ServerParams) {
	l := p.Logger.Named("rest")
	restHandler := server.CreateRESTHandler(server.Services{
		Aggregator: p.Aggregator,
		Store:      p.Store,
		Logger:     l,
	}, p.Config)

	srv := &http.Server{
		Addr:              p.Config.HTTPAddr,
		Handler:           server.CreateRecoveryHandler(server.CreateHTTPHandler(restHandler), l),
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}

			go func() {
				p.Logger.Info("[FX] HTTP Server listening", zap.String("addr", srv.Addr))
				if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("[FX] HTTP Server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("[FX] Shutting down HTTP server...")
			return srv.Shutdown(ctx)
		},
	})
}

// WorkerStartParams groups dependencies for the refresh worker
type WorkerStartParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Worker    *worker.Worker
	Config    config.Config
	Logger    *zap.Logger
}

// StartRefreshWorker starts the scheduler and optionally runs one refresh at boot
func StartRefreshWorker(p WorkerStartParams) {
	bootCtx, cancelBoot := context.WithCancel(context.Background())
	bootDone := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Worker.Start(); err != nil {
				cancelBoot()
				return err
			}
			if !p.Config.RefreshOnStart {
				close(bootDone)
			} else {
				go func() {
					defer close(bootDone)
					p.Worker.RunOnce(bootCtx)
				}()
			}
			p.Logger.Info("[FX] RefreshWorker started", zap.String("schedule", p.Config.RefreshSchedule))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// the boot refresh must not outlive the store
			cancelBoot()
			select {
			case <-bootDone:
			case <-ctx.Done():
			}
			p.Worker.Stop(ctx)
			return nil
		},
	})
}
