// Package http wires the gin router from the modules assembled in cmd/api.
package http

import (
	"context"
	"net/http"

	"energiebroker_backend/internal/events"
	"energiebroker_backend/platform/config"
	"energiebroker_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router reads: CORS, rate limits and JWT.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything router.New needs. Health and Metrics are optional.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	Metrics  http.Handler
	EventBus events.Bus
	Modules  []Module
}
