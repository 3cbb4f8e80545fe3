package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ayo6706/banking-agent/internal/api"
	"github.com/ayo6706/banking-agent/internal/config"
	"github.com/ayo6706/banking-agent/internal/idempotency"
	"github.com/ayo6706/banking-agent/internal/lock"
	"github.com/ayo6706/banking-agent/internal/observability"
	"github.com/ayo6706/banking-agent/internal/prompts"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/ayo6706/banking-agent/internal/service"
	"github.com/ayo6706/banking-agent/internal/tools"
	"github.com/ayo6706/banking-agent/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Run bootstraps the HTTP server and reconciliation worker, blocking until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	observability.Init()
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		redisClient *redis.Client
		idemStore   *idempotency.Store
	)
	if cfg.RedisEnabled() {
		redisClient, err = newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		idemStore = idempotency.NewStore(redisClient, cfg.IdempotencyTTL)
	} else {
		logger.Info("redis not configured; idempotency disabled")
	}

	store := repository.NewDefaultStore()
	locker := newLocker(cfg, redisClient)
	logger.Info("account lock backend selected", zap.String("backend", cfg.LockBackend))

	targets := service.NewTargetResolver(store)
	validator := service.NewPreConditionValidator(store, store, targets)
	executor := service.NewTransferExecutor(store, store, validator, targets, locker)
	elicitation := service.NewElicitationEngine(store, service.NewIntentClassifier())
	prechecks := service.NewPreCheckOrchestrator(store, store)

	registry := tools.NewRegistry(tools.Dependencies{
		Accounts:  store,
		Rates:     store,
		Targets:   targets,
		Validator: validator,
		Executor:  executor,
		Agent:     service.NewAgent(elicitation, prechecks, executor),
		Insight:   service.NewAccountInsight(store),
	})
	catalogue := prompts.NewCatalogue(store)

	reconciler := worker.NewReconciliationWorker(service.NewReconciliationService(store)).
		WithInterval(cfg.ReconciliationInterval)
	stopWorker := reconciler.Run(ctx)

	var readiness redis.Cmdable
	if redisClient != nil {
		readiness = redisClient
	}
	router := api.NewRouter(cfg, logger, registry, catalogue, idemStore, readiness)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			stopWorker()
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("stopping reconciliation worker")
	stopWorker()

	logger.Info("shutdown complete")
	return nil
}

func newLocker(cfg *config.Config, client *redis.Client) lock.Locker {
	if cfg.LockBackend == config.LockBackendRedis && client != nil {
		return lock.NewRedisLocker(client, cfg.LockTTL)
	}
	return lock.NewLocalLocker()
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
