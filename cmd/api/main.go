package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/account-security/internal/api/http"
	"github.com/spec-kit/account-security/internal/api/http/handlers"
	"github.com/spec-kit/account-security/internal/auth"
	"github.com/spec-kit/account-security/internal/codegen"
	"github.com/spec-kit/account-security/internal/config"
	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/events"
	"github.com/spec-kit/account-security/internal/observability"
	"github.com/spec-kit/account-security/internal/persistence"
	"github.com/spec-kit/account-security/internal/repository"
	"github.com/spec-kit/account-security/internal/repository/memory"
	"github.com/spec-kit/account-security/internal/service"
	"github.com/spec-kit/account-security/internal/uow"
	"github.com/spec-kit/account-security/internal/worker"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		db         uow.Beginner
		userRepo   repository.UserRepository
		challenges repository.SecurityRepository
	)
	if pg.Enabled() {
		db = pg
		userRepo = repository.NewUserRepository()
		challenges = repository.NewSecurityRepository()
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		db = memory.NewStore()
		userRepo = memory.NewUserRepository()
		challenges = memory.NewSecurityRepository()
	}

	subscribers := events.NewInMemoryBus()
	bus := events.Observed(events.Fanout{subscribers, redis.StreamBus(cfg.Events)}, metrics)
	units := uow.NewManager(db, bus)

	commands := service.NewCommandBus(units, logger, metrics)
	queries := service.NewQueryBus(units, logger)

	clock := domain.SystemClock{}
	securityService := service.NewSecurityService(cfg.Security, service.SecurityDependencies{
		Manager: security.NewManager(clock, codegen.New(),
			security.WithQuota(cfg.Security.ChallengeQuota),
			security.WithUniqueCharacters(!cfg.Security.AllowDuplicateChars)),
		UserRepo:      userRepo,
		ChallengeRepo: challenges,
	})
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		Manager:       user.NewManager(clock),
		StatusManager: user.NewStatusManager(clock),
		UserRepo:      userRepo,
		Security:      securityService,
	})
	securityService.Register(commands, queries)
	userService.Register(commands, queries)

	worker.StartNotificationWorker(service.NewNotificationService(subscribers, logger.Named("notifications"), cfg.Notification))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, queries)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	health := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
		"postgres": pg,
		"redis":    redis,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         health,
		Users:          handlers.NewUsersHandler(commands, queries, tokens),
		Security:       handlers.NewSecurityHandler(commands, queries),
		AuthMiddleware: authMiddleware,
		Gatherer:       registry,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
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
