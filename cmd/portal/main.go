package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/booking-portal/internal/api/http"
	"github.com/spec-kit/booking-portal/internal/api/http/handlers"
	"github.com/spec-kit/booking-portal/internal/apiclient"
	"github.com/spec-kit/booking-portal/internal/auth"
	"github.com/spec-kit/booking-portal/internal/config"
	"github.com/spec-kit/booking-portal/internal/events"
	"github.com/spec-kit/booking-portal/internal/observability"
	"github.com/spec-kit/booking-portal/internal/persistence"
	"github.com/spec-kit/booking-portal/internal/service"
	"github.com/spec-kit/booking-portal/internal/session"
	"github.com/spec-kit/booking-portal/internal/storage"
	"github.com/spec-kit/booking-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open device storage", zap.Error(err), zap.String("backend", cfg.Storage.Backend))
	}
	defer closeStore()

	if cfg.Storage.SealKey != "" {
		key, err := storage.ParseSealKey(cfg.Storage.SealKey)
		if err != nil {
			logger.Fatal("invalid storage seal key", zap.Error(err))
		}
		store = storage.Sealed(store, key)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	client := apiclient.New(cfg.API, logger, metrics)
	registry := session.NewRegistry(ctx, store, client, dispatcher, logger, session.RegistryOptions{
		InitTimeout: cfg.API.Timeout(),
	})
	sweeperDone := worker.StartDeviceSweeper(ctx, registry, cfg.Portal.SweepInterval(), cfg.Portal.DeviceIdle(), logger)

	tokens := auth.NewTokenManager(cfg.Device.Secret, cfg.Device.TTL())
	device := auth.NewDeviceMiddleware(tokens, registry, cfg.Device)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, device, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Backend, store),
		Catalog:  handlers.NewCatalogHandler(),
		Consumer: handlers.NewConsumerHandler(),
		Pro:      handlers.NewProHandler(),
		Admin:    handlers.NewAdminHandler(),
		Guard:    auth.NewGuard(cfg.Portal),
	})

	go func() {
		logger.Info("portal listening", zap.String("addr", cfg.App.Addr()), zap.String("api", cfg.API.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	cancel()
	<-sweeperDone
}

// openStorage connects the configured backend and returns it with its closer.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		logger.Warn("using in-memory device storage; sessions are lost on restart")
		return storage.NewMemory(), func() {}, nil
	case config.StorageSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSQLite(ctx, db.DB)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	case config.StorageRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedis(rdb.Client, cfg.Redis.KeyPrefix, cfg.Redis.TTL()), rdb.Close, nil
	case config.StoragePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, persistence.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return storage.NewPostgres(pg.Pool), pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
