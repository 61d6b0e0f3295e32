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

	httptransport "github.com/garageops/dispatch-service/internal/api/http"
	"github.com/garageops/dispatch-service/internal/api/http/handlers"
	"github.com/garageops/dispatch-service/internal/auth"
	"github.com/garageops/dispatch-service/internal/config"
	"github.com/garageops/dispatch-service/internal/events"
	"github.com/garageops/dispatch-service/internal/observability"
	"github.com/garageops/dispatch-service/internal/persistence"
	"github.com/garageops/dispatch-service/internal/repository"
	"github.com/garageops/dispatch-service/internal/service"
	"github.com/garageops/dispatch-service/internal/worker"
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

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	indexCtx, indexCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := mongo.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		logger.Fatal("failed to ensure indexes", zap.Error(err))
	}
	indexCancel()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	db := mongo.Database
	requestRepo := repository.NewRequestRepository(db)
	technicianRepo := repository.NewTechnicianRepository(db)
	partRepo := repository.NewPartRepository(db)
	userRepo := repository.NewUserRepository(db)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	lease := persistence.NewRequestLease(redis, cfg.Dispatch.LeaseTTL())

	authService := service.NewAuthService(*cfg, userRepo)
	requestService := service.NewRequestService(requestRepo, dispatcher, nil)
	technicianService := service.NewTechnicianService(technicianRepo, cfg.Dispatch, nil)
	dispatchService := service.NewDispatchService(cfg.Dispatch, service.DispatchDependencies{
		RequestRepo:    requestRepo,
		TechnicianRepo: technicianRepo,
		Tx:             mongo,
		Lease:          lease,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	quoteService := service.NewQuoteService(cfg.Dispatch, service.QuoteDependencies{
		RequestRepo: requestRepo,
		PartRepo:    partRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	auditService := service.NewAuditService(dispatcher, logger, metrics)
	worker.StartAuditWorker(auditService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, mongo, redis),
		Users:          handlers.NewUsersHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Automations:    handlers.NewAutomationsHandler(dispatchService, quoteService),
		Technicians:    handlers.NewTechniciansHandler(technicianService),
		Parts:          handlers.NewPartsHandler(partRepo),
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
