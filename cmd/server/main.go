package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/iho/gobudget/internal/adapter/http"
	"github.com/iho/gobudget/internal/adapter/http/handler"
	postgresRepo "github.com/iho/gobudget/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobudget/internal/adapter/repository/redis"
	"github.com/iho/gobudget/internal/infrastructure/config"
	"github.com/iho/gobudget/internal/infrastructure/logger"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/infrastructure/postgres"
	"github.com/iho/gobudget/internal/infrastructure/redis"
	"github.com/iho/gobudget/internal/infrastructure/syncworker"
	"github.com/iho/gobudget/internal/usecase"
)

const migrationsPath = "internal/infrastructure/postgres/migrations"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(log, cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	txRepo := postgresRepo.NewTransactionRepository(pool, retrier)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	planningRepo := postgresRepo.NewPlanningRepository(pool)
	snapshotRepo := postgresRepo.NewSnapshotRepository(pool)
	syncRepo := postgresRepo.NewSyncRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	appMetrics := metrics.New()

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, syncRepo, idGen, log)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, syncRepo, idGen, log)
	planningUC := usecase.NewPlanningUseCase(planningRepo, idGen, log)
	balanceUC := usecase.NewBalanceUseCase(txRepo, accountRepo, categoryRepo, snapshotRepo, planningUC, log)
	balanceUC.SetMetrics(appMetrics)
	defer balanceUC.Close()
	transactionUC := usecase.NewTransactionUseCase(txManager, txRepo, accountRepo, categoryRepo, syncRepo, balanceUC, idGen, log)
	planningUC.SetTransactionCreator(transactionUC)
	budgetUC := usecase.NewBudgetUseCase(txRepo, categoryRepo, snapshotRepo, balanceUC, planningUC, transactionUC, cache, log)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	categoryHandler := handler.NewCategoryHandler(categoryUC)
	transactionHandler := handler.NewTransactionHandler(transactionUC)
	planningHandler := handler.NewPlanningHandler(planningUC)
	budgetHandler := handler.NewBudgetHandler(budgetUC)
	balanceHandler := handler.NewBalanceHandler(balanceUC)
	snapshotHandler := handler.NewSnapshotHandler(snapshotRepo, balanceUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     accountHandler,
		CategoryHandler:    categoryHandler,
		TransactionHandler: transactionHandler,
		PlanningHandler:    planningHandler,
		BudgetHandler:      budgetHandler,
		BalanceHandler:     balanceHandler,
		SnapshotHandler:    snapshotHandler,
		HealthHandler:      healthHandler,
		Logger:             log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Optional backend sync worker
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.SyncEnabled() {
		worker := syncworker.NewWorker(syncworker.Config{
			SyncRepo:  syncRepo,
			Uploader:  syncworker.NewHTTPUploader(cfg.SyncBackendURL, 0),
			Logger:    log,
			Metrics:   appMetrics,
			BatchSize: cfg.SyncBatchSize,
			Interval:  cfg.SyncInterval,
			Retention: cfg.SyncRetention,
		})
		go worker.Start(workerCtx)
		log.Info().Str("backend", cfg.SyncBackendURL).Msg("sync worker started")
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
