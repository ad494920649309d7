// Package comparison provides the calculation and comparison bounded context module.
package comparison

import (
	"energiebroker_backend/internal/comparison/handler"
	"energiebroker_backend/internal/comparison/service"
	contracts "energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/internal/events"
	apphttp "energiebroker_backend/internal/http"
	"energiebroker_backend/platform/config"
	"energiebroker_backend/platform/logger"
	"energiebroker_backend/platform/metrics"
	"energiebroker_backend/platform/validator"

	"github.com/google/uuid"
)

// Deps are the collaborators the module is wired with. Market, Archiver and Metrics are
// optional.
type Deps struct {
	Tariffs  energy.Tariffs
	Catalog  service.ContractSource
	Market   service.MarketSource
	Archiver handler.Archiver
	Metrics  *metrics.Metrics
	Bus      events.Bus
	Config   config.ComparisonConfig
}

// Module is the comparison bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the comparison module.
func NewModule(deps Deps, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := contracts.RegisterValidators(val); err != nil {
		return nil, err
	}

	var counter service.Counter
	opts := []service.Option{service.WithWorkers(deps.Config.GetComparisonWorkers())}
	if deps.Metrics != nil {
		counter = deps.Metrics
		opts = append(opts, service.WithDurationRecorder(deps.Metrics))
	}
	if deps.Market != nil {
		opts = append(opts, service.WithMarket(deps.Market))
	}
	if raw := deps.Config.GetReferenceContractID(); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithReferenceContract(id))
	} else {
		log.Info("no reference contract configured, savings use the market heuristic")
	}

	engine := energy.NewEngine(
		energy.WithTariffs(deps.Tariffs),
		energy.WithFallbackObserver(service.NewObserver(counter, log)),
	)
	svc := service.New(engine, deps.Catalog, log, opts...)
	if deps.Bus != nil {
		svc.Subscribe(deps.Bus)
	}

	return &Module{handler: handler.New(svc, val, deps.Archiver), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "comparison"
}

// Service returns the service layer for the CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts calculation and comparison routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/tariffs", m.handler.Tariffs)
	ctx.Public.POST("/calculations", m.handler.Calculate)
	ctx.Public.POST("/comparisons", m.handler.Compare)
	ctx.Public.POST("/comparisons/export", m.handler.Export)
	ctx.Public.POST("/estimates/usage", m.handler.EstimateUsage)
	ctx.Public.POST("/estimates/capacity", m.handler.EstimateCapacity)
}
