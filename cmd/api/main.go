package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/recruitment-crm/internal/api/http"
	"github.com/spec-kit/recruitment-crm/internal/api/http/handlers"
	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/events"
	"github.com/spec-kit/recruitment-crm/internal/observability"
	"github.com/spec-kit/recruitment-crm/internal/persistence"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	"github.com/spec-kit/recruitment-crm/internal/service"
	"github.com/spec-kit/recruitment-crm/internal/session"
	"github.com/spec-kit/recruitment-crm/internal/worker"
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

	db, err := persistence.NewDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := persistence.RunMigrations(ctx, db, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if _, err := persistence.SeedAdmin(ctx, db.DB, cfg.Auth, logger); err != nil {
		logger.Fatal("failed to seed admin", zap.Error(err))
	}

	var (
		redis    *persistence.Redis
		sessions session.Store
	)
	if cfg.Redis.Addr != "" {
		redis, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		sessions = session.NewRedisStore(redis.Client, cfg.Auth.SessionTimeout())
	} else {
		logger.Info("REDIS_ADDR not set, keeping sessions in memory")
		sessions = session.NewMemoryStore(cfg.Auth.SessionTimeout())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartPipelineWorker(service.NewPipelineNotifier(dispatcher, logger, metrics))

	store := repository.NewStore(db.DB)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Store:    store,
		Sessions: sessions,
		Logger:   logger,
	})
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{Store: store, Logger: logger})
	candidateService := service.NewCandidateService(service.CandidateDependencies{
		Store:    store,
		PageSize: cfg.App.PageSize,
		Logger:   logger,
		Events:   dispatcher,
	})
	callService := service.NewCallService(service.CallDependencies{
		Store:    store,
		PageSize: cfg.App.PageSize,
		Logger:   logger,
		Events:   dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{Store: store, Logger: logger, Events: dispatcher})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{Store: store, Logger: logger})
	exportService := service.NewExportService(service.ExportDependencies{Store: store, Logger: logger, Events: dispatcher})
	activityService := service.NewActivityService(service.ActivityDependencies{Store: store, Logger: logger})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, db, redis),
		Auth:           handlers.NewAuthHandler(authService, userService),
		Users:          handlers.NewUsersHandler(userService),
		Candidates:     handlers.NewCandidatesHandler(candidateService, callService, assignmentService),
		Calls:          handlers.NewCallsHandler(callService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService, activityService),
		Export:         handlers.NewExportHandler(exportService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Metrics:        metrics,
		CORSOrigins:    cfg.App.CORSAllowedOrigins,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
