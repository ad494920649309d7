package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"energiebroker_backend/internal/contracts/repository"
	"energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/internal/events"
	"energiebroker_backend/platform/apperr"
	"energiebroker_backend/platform/logger"

	"github.com/google/uuid"
)

// Catalog change actions carried by events.ContractCatalogChanged.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionActivated   = "activated"
	ActionDeactivated = "deactivated"
)

// Service provides business logic for the contract catalog.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new contracts service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// ActiveDefinitions returns every active contract as an engine definition. Rows whose rate set
// does not fit their model are still returned; the engine prices them through its fallbacks.
func (s *Service) ActiveDefinitions(ctx context.Context) ([]energy.ContractDefinition, error) {
	items, err := s.repo.List(ctx, repository.ListParams{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	defs := make([]energy.ContractDefinition, 0, len(items))
	for _, item := range items {
		defs = append(defs, toDefinition(item))
	}
	return defs, nil
}

// Definition returns one contract as an engine definition, active or not.
func (s *Service) Definition(ctx context.Context, id uuid.UUID) (energy.ContractDefinition, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return energy.ContractDefinition{}, err
	}
	return toDefinition(item), nil
}

// List returns catalog contracts; inactive ones only when includeInactive is set.
func (s *Service) List(ctx context.Context, req transport.ListContractsRequest, includeInactive bool) (transport.ContractListResponse, error) {
	items, err := s.repo.List(ctx, repository.ListParams{
		ActiveOnly: !includeInactive,
		Model:      req.Model,
		Audience:   req.Audience,
	})
	if err != nil {
		return transport.ContractListResponse{}, err
	}

	resp := transport.ContractListResponse{Items: make([]transport.ContractResponse, 0, len(items)), Total: len(items)}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

// GetByID returns one contract. Inactive contracts are hidden unless includeInactive is set.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (transport.ContractResponse, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ContractResponse{}, err
	}
	if !item.Active && !includeInactive {
		return transport.ContractResponse{}, apperr.NotFound("contract not found")
	}
	return toResponse(item), nil
}

// Create adds a contract to the catalog.
func (s *Service) Create(ctx context.Context, req transport.ContractRequest, by string) (transport.ContractResponse, error) {
	if err := ValidateTerms(req.ContractTerms); err != nil {
		return transport.ContractResponse{}, err
	}

	item, err := s.repo.Create(ctx, toParams(req, by))
	if err != nil {
		return transport.ContractResponse{}, err
	}

	s.publish(ctx, item.ID, ActionCreated, by)
	return toResponse(item), nil
}

// Update replaces a catalog contract.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.ContractRequest, by string) (transport.ContractResponse, error) {
	if err := ValidateTerms(req.ContractTerms); err != nil {
		return transport.ContractResponse{}, err
	}

	item, err := s.repo.Update(ctx, id, toParams(req, by))
	if err != nil {
		return transport.ContractResponse{}, err
	}

	s.publish(ctx, item.ID, ActionUpdated, by)
	return toResponse(item), nil
}

// SetActive shows or hides a contract.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool, by string) (transport.ContractResponse, error) {
	item, err := s.repo.SetActive(ctx, id, active, by)
	if err != nil {
		return transport.ContractResponse{}, err
	}

	action := ActionDeactivated
	if active {
		action = ActionActivated
	}
	s.publish(ctx, item.ID, action, by)
	return toResponse(item), nil
}

// ValidateTerms enforces on writes what the engine only tolerates on reads: a usable rate set
// for the model and minimum-usage thresholds only on negotiated contracts.
func ValidateTerms(t transport.ContractTerms) error {
	def := t.Definition("", "", "")
	if err := def.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}

	switch def.Model {
	case energy.ModelFixed, energy.ModelNegotiated:
		if t.Markups != nil {
			return apperr.Validation(fmt.Sprintf("%s contracts do not take markups", def.Model))
		}
		r := t.Rates
		if r == nil || (r.Single == nil && (r.Normal == nil || r.OffPeak == nil)) {
			return apperr.Validation("a single rate or both normal and off-peak rates are required")
		}
	case energy.ModelDynamic:
		if t.Rates != nil {
			return apperr.Validation("dynamic contracts take markups, not rates")
		}
	}

	if def.Model != energy.ModelNegotiated && (t.MinElectricity != nil || t.MinGas != nil) {
		return apperr.Validation("minimum usage only applies to negotiated contracts")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, id uuid.UUID, action, by string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.ContractCatalogChanged{
		BaseEvent:  events.NewBaseEvent(),
		ContractID: id,
		Action:     action,
		ChangedBy:  by,
	})
}

func toParams(req transport.ContractRequest, by string) repository.ContractParams {
	p := repository.ContractParams{
		Supplier:                   strings.TrimSpace(req.Supplier),
		Name:                       strings.TrimSpace(req.Name),
		Model:                      req.Model,
		StandingElectricityMonthly: req.StandingElectricityMonthly,
		StandingGasMonthly:         req.StandingGasMonthly,
		FeedInCompensation:         req.FeedInCompensation,
		MinElectricity:             req.MinElectricity,
		MinGas:                     req.MinGas,
		ConsumptionSegment:         string(energy.SegmentAny),
		Audience:                   string(energy.AudienceBoth),
		VisibleWithFeedIn:          req.VisibleWithFeedIn,
		Recommended:                req.Recommended,
		SortOrder:                  req.SortOrder,
		UpdatedBy:                  by,
	}
	if req.ConsumptionSegment != "" {
		p.ConsumptionSegment = req.ConsumptionSegment
	}
	if req.Audience != "" {
		p.Audience = req.Audience
	}
	if req.Rates != nil {
		p.RateSingle = req.Rates.Single
		p.RateNormal = req.Rates.Normal
		p.RateOffPeak = req.Rates.OffPeak
		p.RateGas = req.Rates.Gas
	}
	if req.Markups != nil {
		p.MarkupElectricity = &req.Markups.Electricity
		p.MarkupGas = req.Markups.Gas
		p.MarkupFeedIn = &req.Markups.FeedIn
	}
	return p
}

func toTerms(c repository.Contract) transport.ContractTerms {
	t := transport.ContractTerms{
		Model:                      c.Model,
		StandingElectricityMonthly: c.StandingElectricityMonthly,
		StandingGasMonthly:         c.StandingGasMonthly,
		FeedInCompensation:         c.FeedInCompensation,
		MinElectricity:             c.MinElectricity,
		MinGas:                     c.MinGas,
		ConsumptionSegment:         c.ConsumptionSegment,
		Audience:                   c.Audience,
		VisibleWithFeedIn:          c.VisibleWithFeedIn,
		Recommended:                c.Recommended,
	}
	if energy.PricingModel(c.Model) == energy.ModelDynamic {
		t.Markups = &transport.Markups{Gas: c.MarkupGas}
		if c.MarkupElectricity != nil {
			t.Markups.Electricity = *c.MarkupElectricity
		}
		if c.MarkupFeedIn != nil {
			t.Markups.FeedIn = *c.MarkupFeedIn
		}
		return t
	}
	t.Rates = &transport.Rates{Single: c.RateSingle, Normal: c.RateNormal, OffPeak: c.RateOffPeak, Gas: c.RateGas}
	return t
}

func toDefinition(c repository.Contract) energy.ContractDefinition {
	return toTerms(c).Definition(c.ID.String(), c.Name, c.Supplier)
}

func toResponse(c repository.Contract) transport.ContractResponse {
	resp := transport.ContractResponse{
		ID:            c.ID,
		Name:          c.Name,
		Supplier:      c.Supplier,
		ContractTerms: toTerms(c),
		Active:        c.Active,
		SortOrder:     c.SortOrder,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
	if c.UpdatedBy != nil {
		resp.UpdatedBy = *c.UpdatedBy
	}
	return resp
}
