package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"energiebroker_backend/internal/events"
	"energiebroker_backend/internal/marketprice"
	"energiebroker_backend/internal/marketprice/cache"
	marketpricerepo "energiebroker_backend/internal/marketprice/repository"
	"energiebroker_backend/internal/scheduler"
	"energiebroker_backend/platform/config"
	"energiebroker_backend/platform/db"
	"energiebroker_backend/platform/logger"
	"energiebroker_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	// The worker writes through the same cache the API reads from.
	var rdb *redis.Client
	if cfg.GetRedisURL() != "" {
		rdb, err = cache.NewRedisClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		defer func() { _ = rdb.Close() }()
	}

	marketPriceModule := marketprice.NewModule(pool, rdb, cfg, eventBus, nil, validator.New(), log)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	schedule := scheduler.NewRefreshSchedule(cfg.GetRefreshCronSpec(), client, log)
	if err := schedule.Start(ctx); err != nil {
		log.Error("failed to start refresh schedule", "error", err)
		panic("failed to start refresh schedule: " + err.Error())
	}
	defer func() { <-schedule.Stop().Done() }()

	// Fill today's snapshot on boot instead of waiting for the first cron run.
	if err := client.EnqueueMarketPriceRefresh(ctx, time.Time{}); err != nil {
		log.Warn("initial market price refresh enqueue failed", "error", err)
	}

	cleanupInterval := getDurationEnv("MARKET_PRICE_CLEANUP_INTERVAL", 24*time.Hour)
	retention := time.Duration(getPositiveIntEnv("MARKET_PRICE_RETENTION_DAYS", 400)) * 24 * time.Hour
	cleanup := scheduler.NewSnapshotCleanup(marketpricerepo.New(pool), log, cleanupInterval, retention)
	go cleanup.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, marketPriceModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
