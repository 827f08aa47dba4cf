// Package daemon composes the sync core into a running selahd process.
package daemon

import (
	"context"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/davialcantara/selah/internal/bible"
	"github.com/davialcantara/selah/internal/bus"
	"github.com/davialcantara/selah/internal/config"
	"github.com/davialcantara/selah/internal/connectivity"
	"github.com/davialcantara/selah/internal/download"
	"github.com/davialcantara/selah/internal/lock"
	"github.com/davialcantara/selah/internal/logging"
	"github.com/davialcantara/selah/internal/outbox"
	"github.com/davialcantara/selah/internal/profile"
	"github.com/davialcantara/selah/internal/reader"
	"github.com/davialcantara/selah/internal/remote"
	"github.com/davialcantara/selah/internal/store"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideRemoteClient,
			provideMonitor,
			provideReader,
			provideOrchestrator,
			provideSender,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.LockPath(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideRemoteClient(cfg *config.Config, logger *zap.Logger) *remote.Client {
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	return remote.NewClient(cfg.API.BaseURL, timeout, logger)
}

func provideMonitor(client *remote.Client, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *connectivity.Monitor {
	interval := time.Duration(cfg.Connectivity.ProbeIntervalSeconds) * time.Second
	return connectivity.NewMonitor(client, b, logger, interval)
}

func provideReader(db *store.DB, client *remote.Client, monitor *connectivity.Monitor, logger *zap.Logger) *reader.Reader {
	return reader.New(db, client, monitor, logger)
}

func provideOrchestrator(db *store.DB, client *remote.Client, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *download.Orchestrator {
	delay := time.Duration(cfg.Download.RequestDelayMS) * time.Millisecond
	return download.NewOrchestrator(db, client, b, logger, bible.Canon, delay)
}

func provideSender(db *store.DB, client *remote.Client, monitor *connectivity.Monitor, b *bus.Bus, logger *zap.Logger) *outbox.Sender {
	return outbox.NewSender(db, client, monitor, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, monitor *connectivity.Monitor, sender *outbox.Sender, orchestrator *download.Orchestrator, db *store.DB, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// The sender subscribes before the monitor's first probe so the
			// initial online transition already drives a replay.
			sender.Start(context.Background())
			monitor.Start(context.Background())

			if cfg.Download.Precache {
				go func() {
					meta, err := orchestrator.Run(context.Background(), cfg.Download.Translation)
					if err != nil {
						logger.Error("precache run failed", zap.Error(err))
						return
					}
					logger.Info("precache run finished",
						zap.Int("processed_units", meta.ProcessedUnits),
						zap.Int("failed_units", meta.FailedUnits),
					)
				}()
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			monitor.Stop()
			sender.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
