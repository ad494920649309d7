// Package contracts provides the contract catalog bounded context module.
package contracts

import (
	"energiebroker_backend/internal/contracts/handler"
	"energiebroker_backend/internal/contracts/repository"
	"energiebroker_backend/internal/contracts/service"
	"energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/internal/events"
	apphttp "energiebroker_backend/internal/http"
	"energiebroker_backend/platform/logger"
	"energiebroker_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contracts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the contracts module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	return newModule(repository.New(pool), bus, val, log)
}

func newModule(repo repository.Repository, bus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidators(val); err != nil {
		return nil, err
	}
	svc := service.New(repo, bus, log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contracts"
}

// Service returns the service layer for the comparison module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts contract routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/contracts", m.handler.List)
	ctx.Public.GET("/contracts/:id", m.handler.GetByID)

	admin := ctx.Admin.Group("/contracts")
	admin.GET("", m.handler.AdminList)
	admin.POST("", m.handler.Create)
	admin.PUT("/:id", m.handler.Update)
	admin.PATCH("/:id/active", m.handler.SetActive)
}
