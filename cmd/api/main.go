package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/warden/internal/api/http"
	"github.com/spec-kit/warden/internal/api/http/handlers"
	"github.com/spec-kit/warden/internal/config"
	"github.com/spec-kit/warden/internal/events"
	"github.com/spec-kit/warden/internal/observability"
	"github.com/spec-kit/warden/internal/persistence"
	"github.com/spec-kit/warden/internal/repository"
	"github.com/spec-kit/warden/internal/service"
	"github.com/spec-kit/warden/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identities, closeStore, err := openIdentityStore(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open credential store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger, metrics)

	identityService, err := service.NewIdentityService(*cfg, service.IdentityDependencies{
		Identities: identities,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to init identity service", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          httptransport.ErrorHandler,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSAllowedOrigins)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, identityService, metrics),
		Identity:      handlers.NewIdentityHandler(identityService),
		Accounts:      handlers.NewAccountsHandler(identityService),
		Authenticator: identityService.Authenticator(),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openIdentityStore selects the credential store backend named by STORE_DRIVER.
func openIdentityStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.IdentityRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresIdentityRepository(pg.Pool), pg.Close, nil
	case config.StoreDriverRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisIdentityRepository(rdb.Client, cfg.Redis.KeyPrefix), rdb.Close, nil
	case config.StoreDriverMemory:
		logger.Warn("using in-memory credential store; accounts are lost on restart")
		return repository.NewMemoryIdentityRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
