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

	httptransport "github.com/deskflow/helpdesk-api/internal/api/http"
	"github.com/deskflow/helpdesk-api/internal/api/http/handlers"
	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/config"
	"github.com/deskflow/helpdesk-api/internal/events"
	"github.com/deskflow/helpdesk-api/internal/lifecycle"
	"github.com/deskflow/helpdesk-api/internal/observability"
	"github.com/deskflow/helpdesk-api/internal/persistence"
	"github.com/deskflow/helpdesk-api/internal/repository"
	"github.com/deskflow/helpdesk-api/internal/repository/memory"
	"github.com/deskflow/helpdesk-api/internal/service"
	"github.com/deskflow/helpdesk-api/internal/validation"
	"github.com/deskflow/helpdesk-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	shutdownTracer, err := observability.InitTracer(ctx, cfg.App.Name, cfg.App.Version, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := newRepositories(pg, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	var sink *events.RedisStreamSink
	if redis.Client != nil {
		sink = events.NewRedisStreamSink(redis.Client, cfg.Redis.StreamKey, cfg.Redis.StreamLen, cfg.Redis.WriteTimeout())
	}
	worker.StartNotificationWorker(dispatcher, service.NewNotificationService(dispatcher, logger), sink)

	location, err := cfg.Tickets.Location()
	if err != nil {
		logger.Fatal("invalid ticket time zone", zap.Error(err))
	}

	validator := validation.New()
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     repos.users,
		Hasher:       auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		Validator:    validator,
		IsAdminEmail: cfg.Auth.IsAdminEmail,
		Logger:       logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.tickets,
		Machine:    lifecycle.NewMachine(cfg.Tickets.StrictTransitions),
		Validator:  validator,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Location:   location,
		Logger:     logger,
	})
	bookService := service.NewBookService(service.BookDependencies{
		BookRepo:  repos.books,
		Validator: validator,
		Logger:    logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{}
	if pg.PoolHandle() != nil {
		dependencies["postgres"] = pg
	}
	if redis.Client != nil {
		dependencies["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Books:          handlers.NewBooksHandler(bookService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		AuthLimiter:    httptransport.NewClientRateLimiter(cfg.RateLimit.AuthPerSecond, cfg.RateLimit.AuthBurst),
		Gatherer:       registry,
		Logger:         logger,
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
}

type repositories struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
	books   repository.BookRepository
}

// newRepositories falls back to in-memory storage when no database is configured.
func newRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("using in-memory repositories; data is lost on restart")
		return repositories{
			users:   memory.NewUserRepository(),
			tickets: memory.NewTicketRepository(),
			books:   memory.NewBookRepository(),
		}
	}
	return repositories{
		users:   repository.NewUserRepository(pool),
		tickets: repository.NewTicketRepository(pool),
		books:   repository.NewBookRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
