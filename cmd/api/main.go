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

	"energiebroker_backend/internal/adapters/storage"
	"energiebroker_backend/internal/comparison"
	"energiebroker_backend/internal/contracts"
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/internal/events"
	"energiebroker_backend/internal/exports"
	apphttp "energiebroker_backend/internal/http"
	"energiebroker_backend/internal/http/router"
	"energiebroker_backend/internal/marketprice"
	"energiebroker_backend/internal/marketprice/cache"
	"energiebroker_backend/migrations"
	"energiebroker_backend/platform/config"
	"energiebroker_backend/platform/db"
	"energiebroker_backend/platform/logger"
	"energiebroker_backend/platform/metrics"
	"energiebroker_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tariffs, err := loadTariffs(cfg)
	if err != nil {
		log.Error("failed to load tariffs", "error", err)
		panic("failed to load tariffs: " + err.Error())
	}

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	appMetrics := metrics.NewDefault()

	rdb := initRedis(cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	storageSvc := initStorage(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	contractsModule, err := contracts.NewModule(pool, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize contracts module", "error", err)
		panic("failed to initialize contracts module: " + err.Error())
	}

	marketPriceModule := marketprice.NewModule(pool, rdb, cfg, eventBus, appMetrics, val, log)
	exportsModule := exports.NewModule(pool, storageSvc, cfg.GetMinioBucketComparisonExports(), eventBus, log)

	comparisonModule, err := comparison.NewModule(comparison.Deps{
		Tariffs:  tariffs,
		Catalog:  contractsModule.Service(),
		Market:   marketPriceModule.Service(),
		Archiver: exportsModule.Archiver(),
		Metrics:  appMetrics,
		Bus:      eventBus,
		Config:   cfg,
	}, val, log)
	if err != nil {
		log.Error("failed to initialize comparison module", "error", err)
		panic("failed to initialize comparison module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		Metrics:  appMetrics.Handler(),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			contractsModule,
			marketPriceModule,
			comparisonModule,
			exportsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// loadTariffs applies the optional tariff file over the built-in constants.
func loadTariffs(cfg config.TariffConfig) (energy.Tariffs, error) {
	tariffs := energy.DefaultTariffs()
	if err := config.LoadTariffFile(cfg.GetTariffFile(), &tariffs); err != nil {
		return energy.Tariffs{}, err
	}
	if err := tariffs.Validate(); err != nil {
		return energy.Tariffs{}, fmt.Errorf("invalid tariffs: %w", err)
	}
	return tariffs, nil
}

func initRedis(cfg config.CacheConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; market price cache disabled")
		return nil
	}

	rdb, err := cache.NewRedisClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		return nil
	}
	return rdb
}

// initStorage returns nil when MinIO is not configured, which disables archived exports.
func initStorage(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) storage.StorageService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; export archive disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketComparisonExports()
	if err := withRetry(ctx, log, "ensure comparison-exports bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "comparisonExportsBucket", bucket)
	return storageSvc
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
