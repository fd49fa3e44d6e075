package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http"
	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/handler"
	apimiddleware "github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/middleware"
	postgresRepo "github.com/MODEBARE/BudgetManagementSystem/internal/adapter/repository/postgres"
	redisRepo "github.com/MODEBARE/BudgetManagementSystem/internal/adapter/repository/redis"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/config"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/eventpublisher"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/logger"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/metrics"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/rabbitmq"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/redis"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/scheduler"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "budget-api"})
	log.Logger = lg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	if cfg.RunMigrations {
		migrator := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, lg)
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	lg.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, redis.Config{
		URL:         cfg.RedisURL,
		DialTimeout: cfg.RedisDialTimeout,
		PoolSize:    cfg.RedisPoolSize,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	lg.Info().Msg("connected to redis")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.New(reg)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(lg, postgresRepo.WithRetryHook(ledgerMetrics.RecordRetry))

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager:    txManager,
		AccountRepo:  accountRepo,
		MovementRepo: movementRepo,
		AuditRepo:    auditRepo,
		OutboxRepo:   outboxRepo,
		IDGen:        idGen,
		Retrier:      retrier,
		Metrics:      ledgerMetrics,
		Logger:       &lg,
		EditWindow:   cfg.EditWindow,
		DeleteWindow: cfg.DeleteWindow,
	})
	accountUC := usecase.NewAccountUseCase(usecase.AccountConfig{
		TxManager:    txManager,
		AccountRepo:  accountRepo,
		MovementRepo: movementRepo,
		AuditRepo:    auditRepo,
		OutboxRepo:   outboxRepo,
		IDGen:        idGen,
		Logger:       &lg,
	})
	clock := usecase.SystemClock{}
	queryUC := usecase.NewQueryUseCase(accountRepo, movementRepo, clock, cfg.DefaultPageSize, cfg.MaxPageSize)
	reconUC := usecase.NewReconciliationUseCase(txManager, accountRepo, movementRepo, auditRepo, idGen, clock, &lg)
	transferUC := usecase.NewTransferUseCase(ledgerUC, accountRepo, redisRepo.NewCache(redisClient), clock, cfg.TransferPreviewTTL)

	// Outbox publishing
	sink, closeSink, err := newEventSink(cfg, lg)
	if err != nil {
		return err
	}
	defer closeSink()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  sink,
		Recorder:   ledgerMetrics,
		Logger:     lg,
		Interval:   cfg.OutboxPollInterval,
	})

	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()
	go func() {
		if err := publisher.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			lg.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	rateLimiter := apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	jobs := scheduler.New(scheduler.Config{
		ReconcileSchedule: cfg.ReconcileSchedule,
		OutboxRetention:   cfg.OutboxRetention,
	}, reconUC, publisher, ledgerMetrics, lg)
	if err := jobs.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() { <-jobs.Stop().Done() }()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-bgCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupLimiters(time.Hour)
			}
		}
	}()

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		MovementHandler: handler.NewMovementHandler(ledgerUC, queryUC),
		TransferHandler: handler.NewTransferHandler(ledgerUC, transferUC),
		OverviewHandler: handler.NewOverviewHandler(queryUC, reconUC),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis":    handler.PingFunc(redis.Ping(redisClient)),
		}),
		IdempotencyStore:   redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		HTTPMetrics:        apimiddleware.NewHTTPMetrics(reg),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             lg,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		lg.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	lg.Info().Msg("server stopped")
	return nil
}

// newEventSink returns the RabbitMQ producer, or a logging sink when no
// broker is configured.
func newEventSink(cfg *config.Config, lg zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		lg.Warn().Msg("RABBITMQ_URL not set, outbox events are logged only")
		return eventpublisher.NewLogPublisher(lg), func() {}, nil
	}

	producer, err := rabbitmq.Dial(cfg.RabbitMQURL, cfg.EventsExchange, lg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return producer, producer.Close, nil
}
