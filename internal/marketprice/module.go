// Package marketprice provides the day-ahead market price bounded context module.
package marketprice

import (
	"energiebroker_backend/internal/events"
	apphttp "energiebroker_backend/internal/http"
	"energiebroker_backend/internal/marketprice/cache"
	"energiebroker_backend/internal/marketprice/client"
	"energiebroker_backend/internal/marketprice/handler"
	"energiebroker_backend/internal/marketprice/repository"
	"energiebroker_backend/internal/marketprice/service"
	"energiebroker_backend/platform/config"
	"energiebroker_backend/platform/logger"
	"energiebroker_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Config is the configuration the module reads.
type Config interface {
	config.MarketPriceConfig
	config.CacheConfig
}

// Module is the market price bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the market price module. A nil redis client disables the
// cache; a disabled feed leaves only the stored snapshots.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, cfg Config, bus events.Bus, rec service.Recorder, val *validator.Validator, log *logger.Logger) *Module {
	opts := []service.Option{
		service.WithFreshness(cfg.GetMarketPriceFreshness()),
	}
	if rec != nil {
		opts = append(opts, service.WithRecorder(rec))
	}
	if rdb != nil {
		opts = append(opts, service.WithCache(cache.New(rdb, cfg.GetMarketPriceCacheTTL())))
	} else {
		log.Info("market price cache disabled: REDIS_URL not configured")
	}
	if cfg.IsMarketPriceFeedEnabled() {
		opts = append(opts, service.WithFetcher(client.New(cfg.GetEnergyZeroBaseURL(), cfg.GetMarketPriceTimeout(), log)))
	} else {
		log.Info("market price feed disabled, serving stored snapshots only")
	}

	svc := service.New(repository.New(pool), bus, log, opts...)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "marketprice"
}

// Service returns the service layer for the comparison module and the scheduler.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts market price routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/market-prices/current", m.handler.Current)
	ctx.Public.GET("/market-prices/history", m.handler.History)
	ctx.Admin.POST("/market-prices/refresh", m.handler.Refresh)
}
