package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/config"
	"github.com/motionwall/motionwall/internal/domain"
	"github.com/motionwall/motionwall/internal/engine"
	"github.com/motionwall/motionwall/internal/events"
	"github.com/motionwall/motionwall/internal/library"
	"github.com/motionwall/motionwall/internal/playconfig"
	"github.com/motionwall/motionwall/internal/registry"
	"github.com/motionwall/motionwall/internal/scheduler"
	"github.com/motionwall/motionwall/internal/store"
	"github.com/motionwall/motionwall/internal/surface"
	"github.com/motionwall/motionwall/internal/topology"
)

// AppOptions assembles the daemon's dependency graph. Kept as a
// variable so tests can validate the graph without starting the app.
var AppOptions = fx.Options(
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	fx.Provide(
		newLogger,
		config.NewAppConfig,
		events.NewBus,
		newStore,
		newLibrary,
		newResolver,
		library.NewWatcher,
		newSurfaceFactory,
		registry.NewRegistry,
		playconfig.NewAdapter,
		scheduler.NewScheduler,
		newObserver,
		engine.NewEngine,
	),

	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates the daemon's zap logger.
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newStore opens the SQLite store, creating the data directory first.
func newStore(logger *zap.Logger, cfg *config.AppConfig) (domain.Store, error) {
	if err := os.MkdirAll(cfg.GetDataDir(), 0o755); err != nil {
		return nil, err
	}
	return store.Open(logger, cfg.GetDBPath(), store.Options{})
}

func newLibrary(logger *zap.Logger, cfg *config.AppConfig) (*library.Library, error) {
	if err := os.MkdirAll(cfg.GetVideoDir(), 0o755); err != nil {
		return nil, err
	}
	return library.NewLibrary(logger, cfg.GetVideoDir()), nil
}

func newResolver(lib *library.Library) domain.Resolver {
	return lib
}

func newSurfaceFactory(logger *zap.Logger, cfg *config.AppConfig) (domain.SurfaceFactory, error) {
	return surface.NewFactory(logger, cfg.GetMpvBin(), cfg.GetSocketDir())
}

func newObserver(logger *zap.Logger, cfg *config.AppConfig) domain.TopologyObserver {
	return topology.NewObserver(logger, topology.NewScreenEnumerator(), cfg.GetPollInterval())
}

// registerHooks ties component lifecycles to the fx application.
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	observer domain.TopologyObserver,
	watcher *library.Watcher,
	eng *engine.Engine,
	st domain.Store,
) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("motionwall daemon started")

			if err := eng.Start(runCtx); err != nil {
				return err
			}
			if err := watcher.Start(runCtx); err != nil {
				// Degrade: rotation still works without the watcher
				logger.Warn("Library watcher unavailable", zap.Error(err))
			}
			go func() {
				// Blocks until runCtx is cancelled
				if err := observer.Start(runCtx); err != nil && runCtx.Err() == nil {
					logger.Error("Topology observer failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			cancel()
			if err := observer.Stop(ctx); err != nil {
				logger.Warn("Observer stop failed", zap.Error(err))
			}
			if err := watcher.Stop(ctx); err != nil {
				logger.Warn("Watcher stop failed", zap.Error(err))
			}
			if err := eng.Stop(ctx); err != nil {
				logger.Warn("Engine stop failed", zap.Error(err))
			}
			return st.Close()
		},
	})
}
