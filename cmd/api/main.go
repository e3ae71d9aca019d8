package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/citizen-feedback-service/internal/api/http"
	"github.com/spec-kit/citizen-feedback-service/internal/api/http/handlers"
	"github.com/spec-kit/citizen-feedback-service/internal/auth"
	"github.com/spec-kit/citizen-feedback-service/internal/chat"
	"github.com/spec-kit/citizen-feedback-service/internal/config"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	"github.com/spec-kit/citizen-feedback-service/internal/observability"
	"github.com/spec-kit/citizen-feedback-service/internal/persistence"
	"github.com/spec-kit/citizen-feedback-service/internal/repository"
	"github.com/spec-kit/citizen-feedback-service/internal/service"
	"github.com/spec-kit/citizen-feedback-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var bus events.Bus
	switch cfg.Events.Backend {
	case "redis":
		bus = events.NewRedisBus(redis.Client, logger)
		logger.Info("event fan-out via redis pub/sub")
	default:
		bus = events.NewInMemoryBus()
		logger.Info("event fan-out in process memory")
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	historyRepo := repository.NewFeedbackHistoryRepository(pool)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	feedbackService := service.NewFeedbackService(service.FeedbackDependencies{
		FeedbackRepo: feedbackRepo,
		HistoryRepo:  historyRepo,
		UserRepo:     userRepo,
		Bus:          bus,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo:  commentRepo,
		FeedbackRepo: feedbackRepo,
		Bus:          bus,
	})
	responseService := service.NewResponseService(service.ResponseDependencies{
		ResponseRepo: responseRepo,
		FeedbackRepo: feedbackRepo,
		HistoryRepo:  historyRepo,
		Bus:          bus,
	})
	engagementService := service.NewEngagementService(service.EngagementDependencies{
		FeedbackRepo: feedbackRepo,
		CommentRepo:  commentRepo,
		ResponseRepo: responseRepo,
		Bus:          bus,
	})
	metrics := observability.NewMetrics()
	notificationService := service.NewNotificationService(bus, logger, metrics, cfg.Notification)
	worker.StartNotificationWorker(ctx, notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	hub := chat.NewHub(feedbackService, commentService, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, userService),
		AdminUsers:     handlers.NewAdminUsersHandler(userService),
		Feedbacks:      handlers.NewFeedbacksHandler(feedbackService, engagementService),
		Comments:       handlers.NewCommentsHandler(commentService, engagementService),
		Responses:      handlers.NewResponsesHandler(responseService, engagementService),
		WS:             handlers.NewWSHandler(authMiddleware, bus, hub, logger),
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
