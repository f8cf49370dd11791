package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/smart-helpdesk/internal/api/http"
	"github.com/spec-kit/smart-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/smart-helpdesk/internal/auth"
	"github.com/spec-kit/smart-helpdesk/internal/config"
	"github.com/spec-kit/smart-helpdesk/internal/events"
	"github.com/spec-kit/smart-helpdesk/internal/observability"
	"github.com/spec-kit/smart-helpdesk/internal/persistence"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
	"github.com/spec-kit/smart-helpdesk/internal/service"
	"github.com/spec-kit/smart-helpdesk/internal/triage"
	"github.com/spec-kit/smart-helpdesk/internal/worker"
)

type repositories struct {
	users       repository.UserRepository
	tickets     repository.TicketRepository
	replies     repository.ReplyRepository
	suggestions repository.SuggestionRepository
	articles    repository.ArticleRepository
	audit       repository.AuditRepository
	policy      repository.AgentConfigRepository
}

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

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var repos repositories
	var healthPG *persistence.Postgres
	if pool != nil {
		healthPG = pg
		repos = repositories{
			users:       repository.NewUserRepository(pool),
			tickets:     repository.NewTicketRepository(pool),
			replies:     repository.NewReplyRepository(pool),
			suggestions: repository.NewSuggestionRepository(pool),
			articles:    repository.NewArticleRepository(pool),
			audit:       repository.NewAuditRepository(pool),
			policy:      repository.NewAgentConfigRepository(pool),
		}
	} else {
		logger.Warn("running with in-memory storage; data is not persisted")
		repos = repositories{
			users:       repository.NewMemoryUserRepository(),
			tickets:     repository.NewMemoryTicketRepository(),
			replies:     repository.NewMemoryReplyRepository(),
			suggestions: repository.NewMemorySuggestionRepository(),
			articles:    repository.NewMemoryArticleRepository(),
			audit:       repository.NewMemoryAuditRepository(),
			policy:      repository.NewMemoryAgentConfigRepository(),
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var locks triage.Locker
	var healthRedis *persistence.Redis
	if err := redis.Ping(ctx); err != nil {
		logger.Warn("redis unavailable; using in-process triage locks", zap.Error(err))
		locks = triage.NewKeyedMutex()
	} else {
		healthRedis = redis
		locks = triage.NewRedisLocker(redis.Client, cfg.Triage.LockTTL())
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	index := triage.NewArticleIndex()
	orchestrator := triage.NewOrchestrator(triage.Dependencies{
		TicketRepo:     repos.tickets,
		SuggestionRepo: repos.suggestions,
		ReplyRepo:      repos.replies,
		AuditRepo:      repos.audit,
		PolicyRepo:     repos.policy,
		Index:          index,
		Locks:          locks,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
		RetrieveLimit:  cfg.Triage.RetrieveLimit,
	})

	authService := service.NewAuthService(*cfg, repos.users)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     repos.tickets,
		ReplyRepo:      repos.replies,
		SuggestionRepo: repos.suggestions,
		AuditRepo:      repos.audit,
		PolicyRepo:     repos.policy,
		UserRepo:       repos.users,
		Orchestrator:   orchestrator,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	kbService := service.NewKBService(repos.articles, index, logger)
	configService := service.NewConfigService(repos.policy, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	slaService := service.NewSLAService(repos.tickets, dispatcher, logger)

	if err := kbService.WarmIndex(ctx); err != nil {
		logger.Fatal("failed to warm article index", zap.Error(err))
	}

	worker.StartNotificationWorker(notificationService)
	worker.StartSLAWorker(ctx, slaService, cfg.Triage.SLAScanInterval(), logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthPG, healthRedis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AgentTickets:   handlers.NewAgentTicketsHandler(ticketService),
		KB:             handlers.NewKBHandler(kbService),
		Config:         handlers.NewConfigHandler(configService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
