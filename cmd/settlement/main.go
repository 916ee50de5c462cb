package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"settlement-core/config"
	httpHandler "settlement-core/internal/adapter/http/handler"
	"settlement-core/internal/adapter/http/middleware"
	"settlement-core/internal/adapter/messaging"
	pgStorage "settlement-core/internal/adapter/storage/postgres"
	redisStorage "settlement-core/internal/adapter/storage/redis"
	"settlement-core/internal/core/ports"
	"settlement-core/internal/market"
	"settlement-core/internal/service"
	"settlement-core/internal/worker"
	"settlement-core/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting settlement core")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize NATS JetStream for domain events
	nc, js, err := messaging.Connect(cfg.NATS.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer nc.Drain() //nolint:errcheck
	if err := messaging.EnsureStream(ctx, js, cfg.NATS.Stream, cfg.NATS.SubjectPrefix); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure event stream")
	}
	events := messaging.NewEventBus(js, cfg.NATS.SubjectPrefix, log)

	// Initialize Kafka notifications
	kafkaWriter := messaging.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic)
	defer kafkaWriter.Close()
	notifier := messaging.NewNotifier(kafkaWriter, log)

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	binaryRepo := pgStorage.NewBinaryTradeRepo(pool)
	tradeRepo := pgStorage.NewMarginTradeRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	amlRepo := pgStorage.NewAMLRepo(pool)
	activityRepo := pgStorage.NewActivityRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	lock := redisStorage.NewLock(rdb)
	settingsStore := redisStorage.NewSettingsStore(rdb)
	jobQueue := redisStorage.NewJobQueue(rdb, cfg.Scheduler.Queue, cfg.Scheduler.VisibilityTimeout)

	// Price cache and feed
	prices := market.NewCache(cfg.Market.MaxAge)

	// Initialize core services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)
	settingsSvc := service.NewSettingsService(
		settingsStore,
		auditSvc,
		cfg.Settlement.DefaultPayoutRate,
		cfg.Settlement.MinPayoutRate,
		cfg.Settlement.MaxPayoutRate,
		log,
	)

	// Initialize business services
	settlementSvc := service.NewSettlementService(
		binaryRepo,
		tradeRepo,
		walletRepo,
		txRepo,
		auditRepo,
		transactor,
		lock,
		prices,
		settingsSvc,
		events,
		notifier,
		service.SettlementOptions{
			LockTTL:           cfg.Settlement.LockTTL,
			RequireFreshPrice: cfg.Settlement.RequireFreshPrice,
		},
		log,
	)
	schedulerSvc := service.NewSchedulerService(
		jobQueue,
		binaryRepo,
		settlementSvc,
		service.SchedulerOptions{
			MaxAttempts: cfg.Scheduler.MaxAttempts,
			SweepBatch:  cfg.Scheduler.SweepBatch,
		},
		log,
	)
	amlSvc := service.NewAMLService(
		activityRepo,
		amlRepo,
		accountRepo,
		walletRepo,
		auditRepo,
		transactor,
		events,
		notifier,
		service.AMLOptions{
			VelocityThreshold:   cfg.AML.VelocityThreshold,
			MaxDailyDeposits:    decimal.NewFromFloat(cfg.AML.MaxDailyDeposits),
			MaxTradesPerHour:    cfg.AML.MaxTradesPerHour,
			MaxDailyTradeVolume: decimal.NewFromFloat(cfg.AML.MaxDailyTradeVolume),
			ScanBatch:           cfg.AML.ScanBatch,
			ScansPerSecond:      cfg.AML.ScansPerSecond,
			ActivityWindow:      cfg.AML.ActivityWindow,
		},
		log,
	)
	tradingSvc := service.NewTradingService(
		accountRepo,
		walletRepo,
		binaryRepo,
		tradeRepo,
		txRepo,
		auditRepo,
		transactor,
		prices,
		schedulerSvc,
		amlSvc,
		events,
		cfg.Trading.MarginRequirement,
		log,
	)

	runner := worker.NewRunner(jobQueue, schedulerSvc, worker.RunnerOptions{
		Concurrency:    cfg.Scheduler.Concurrency,
		RateLimit:      cfg.Scheduler.RateLimit,
		RateBurst:      cfg.Scheduler.RateBurst,
		PollInterval:   cfg.Scheduler.PollInterval,
		AttemptTimeout: cfg.Scheduler.AttemptTimeout,
		BackoffBase:    cfg.Scheduler.BackoffBase,
	}, log)

	// Initialize rate limiting
	var rateLimitStore middleware.RateLimitStore
	rateLimitRules := middleware.DefaultRateLimitRules()
	if cfg.RateLimit.Enabled {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		rateLimitRules[middleware.GroupAPI] = middleware.RateLimitRule{Limit: cfg.RateLimit.API, Window: time.Minute}
		rateLimitRules[middleware.GroupBinary] = middleware.RateLimitRule{Limit: cfg.RateLimit.Binary, Window: time.Minute}
		rateLimitRules[middleware.GroupTrading] = middleware.RateLimitRule{Limit: cfg.RateLimit.Trading, Window: time.Minute}
		rateLimitRules[middleware.GroupAdmin] = middleware.RateLimitRule{Limit: cfg.RateLimit.Admin, Window: time.Minute}
	} else {
		log.Warn().Msg("Rate limiting disabled")
	}

	// Initialize health checkers
	healthCheckers := []ports.HealthChecker{
		pgStorage.NewHealthCheck(pool),
		redisStorage.NewHealthCheck(rdb),
		messaging.NewHealthCheck(nc),
	}

	// Setup Gin router with all routes
	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TradingSvc:     tradingSvc,
		SettlementSvc:  settlementSvc,
		SchedulerSvc:   schedulerSvc,
		AMLSvc:         amlSvc,
		SettingsSvc:    settingsSvc,
		AuditSvc:       auditSvc,
		TokenSvc:       tokenSvc,
		Prices:         prices,
		RateLimitStore: rateLimitStore,
		RateLimitRules: rateLimitRules,
		HealthCheckers: healthCheckers,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Price feed
	g.Go(func() error {
		if cfg.Market.Simulate || cfg.Market.FeedURL == "" {
			log.Warn().Msg("Using simulated price feed")
			return market.NewSimulator(prices, events, nil, 0, log).Run(gctx)
		}
		return market.NewGateway(cfg.Market.FeedURL, prices, events, log).Run(gctx)
	})

	// Resolution workers and periodic maintenance
	g.Go(func() error {
		return runner.Run(gctx)
	})
	g.Go(func() error {
		worker.Every(gctx, "expiry_sweep", cfg.Scheduler.SweepInterval, func(ctx context.Context) error {
			_, err := schedulerSvc.Sweep(ctx)
			return err
		}, log)
		return nil
	})
	g.Go(func() error {
		worker.Every(gctx, "queue_stats", 15*time.Second, func(ctx context.Context) error {
			_, err := schedulerSvc.QueueStats(ctx)
			return err
		}, log)
		return nil
	})
	g.Go(func() error {
		worker.Every(gctx, "aml_scan", cfg.AML.ScanInterval, func(ctx context.Context) error {
			_, err := amlSvc.ScanCycle(ctx)
			return err
		}, log)
		return nil
	})

	// HTTP server with graceful shutdown
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Settlement core stopped with error")
	}

	// Pending AML re-evaluations triggered by in-flight requests
	amlSvc.Wait()

	log.Info().Msg("Server exited")
}
