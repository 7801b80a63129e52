package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fieldserve/helpdesk-service/internal/api/http"
	"github.com/fieldserve/helpdesk-service/internal/api/http/handlers"
	"github.com/fieldserve/helpdesk-service/internal/auth"
	"github.com/fieldserve/helpdesk-service/internal/config"
	"github.com/fieldserve/helpdesk-service/internal/notify"
	"github.com/fieldserve/helpdesk-service/internal/observability"
	"github.com/fieldserve/helpdesk-service/internal/persistence"
	"github.com/fieldserve/helpdesk-service/internal/repository"
	"github.com/fieldserve/helpdesk-service/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewPostgresStore(pg.PoolHandle())

	dispatcher := notify.NewDispatcher(cfg.Notification.QueueSize, notify.DispatcherDependencies{
		NotificationRepo: store.Notifications,
		UserRepo:         store.Users,
		Registry:         notify.NewRedisRegistry(redis.Client),
		Email:            notify.NewLogSender(logger, cfg.Notification.EmailFrom),
		Logger:           logger,
	})
	dispatcher.Start(cfg.Notification.Workers)
	defer dispatcher.Close()

	engine := workflow.NewEngine(workflow.Dependencies{
		Store:    store,
		Notifier: dispatcher,
		Logger:   logger,
	})

	authService := auth.NewService(cfg.Auth, store.Users)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(engine, store),
		PurchaseOrders: handlers.NewPurchaseOrdersHandler(engine, store),
		Notifications:  handlers.NewNotificationsHandler(store),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
