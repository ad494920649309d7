// Package service prices consumption profiles against single contracts and the active catalog.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"energiebroker_backend/internal/comparison/transport"
	contracts "energiebroker_backend/internal/contracts/service"
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/internal/events"
	"energiebroker_backend/platform/apperr"
	"energiebroker_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	inlineContractID = "inline"
	defaultWorkers   = 8
)

// ContractSource provides the catalog as engine definitions.
type ContractSource interface {
	ActiveDefinitions(ctx context.Context) ([]energy.ContractDefinition, error)
	Definition(ctx context.Context, id uuid.UUID) (energy.ContractDefinition, error)
}

// MarketSource provides the market reference price, nil when none can be served.
type MarketSource interface {
	MarketPrice(ctx context.Context) *energy.MarketPrice
}

// AddressClassifier tells residential and commercial addresses apart.
type AddressClassifier interface {
	ClassifyAddress(ctx context.Context, postalCode, houseNumber string) (string, error)
}

// DurationRecorder observes comparison wall time.
type DurationRecorder interface {
	ObserveComparison(started time.Time)
}

// Service prices profiles through the energy engine.
type Service struct {
	engine     *energy.Engine
	reference  *energy.Engine
	contracts  ContractSource
	market     MarketSource
	classifier AddressClassifier
	recorder   DurationRecorder
	log        *logger.Logger

	workers     int
	referenceID uuid.UUID
	lastMarket  atomic.Pointer[knownPrice]
	now         func() time.Time
}

// knownPrice is the last market price seen, with the delivery date it covers.
type knownPrice struct {
	date  time.Time
	price energy.MarketPrice
}

// Option configures a Service.
type Option func(*Service)

// WithMarket sets the market price source.
func WithMarket(m MarketSource) Option {
	return func(s *Service) { s.market = m }
}

// WithAddressClassifier sets the address classification collaborator.
func WithAddressClassifier(c AddressClassifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithDurationRecorder reports comparison timings.
func WithDurationRecorder(r DurationRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithWorkers bounds how many contracts are priced concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithReferenceContract benchmarks savings against a catalog contract.
func WithReferenceContract(id uuid.UUID) Option {
	return func(s *Service) { s.referenceID = id }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a new comparison service. The engine carries the tariffs and the observer.
func New(engine *energy.Engine, catalog ContractSource, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		engine:    engine,
		reference: energy.NewEngine(energy.WithTariffs(engine.Tariffs())),
		contracts: catalog,
		log:       log,
		workers:   defaultWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe keeps the last known market price current.
func (s *Service) Subscribe(bus events.Bus) {
	bus.Subscribe(events.MarketPricesRefreshed{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		refreshed, ok := e.(events.MarketPricesRefreshed)
		if !ok {
			return nil
		}
		s.lastMarket.Store(&knownPrice{
			date: refreshed.Date,
			price: energy.MarketPrice{
				ElectricityDay:   refreshed.ElectricityDay,
				ElectricityNight: refreshed.ElectricityNight,
				Gas:              refreshed.Gas,
				Source:           refreshed.Source,
			},
		})
		return nil
	}))
}

// Calculate prices one inline contract for one profile.
func (s *Service) Calculate(ctx context.Context, req transport.CalculationRequest) (transport.BreakdownResponse, error) {
	profile := req.Profile.Profile()
	if err := profile.Validate(); err != nil {
		return transport.BreakdownResponse{}, mapEngineError(err)
	}

	if err := contracts.ValidateTerms(req.Contract); err != nil {
		return transport.BreakdownResponse{}, err
	}
	def := req.Contract.Definition(inlineContractID, req.Name, req.Supplier)
	customer := s.resolveCustomer(ctx, req.Customer, req.Profile, def.Audience)

	market := s.marketPrice(ctx)
	if req.MarketPrice != nil {
		override := req.MarketPrice.MarketPrice()
		market = &override
	}

	var reference *decimal.Decimal
	if req.ReferenceMonthly != nil {
		ref := decimal.NewFromFloat(*req.ReferenceMonthly)
		reference = &ref
	} else {
		reference = s.referenceMonthly(ctx, profile, customer, market)
	}

	b, ok, err := s.engine.Calculate(energy.Input{
		Profile:          profile,
		Contract:         def,
		Customer:         customer,
		Market:           market,
		ReferenceMonthly: reference,
	})
	if err != nil {
		return transport.BreakdownResponse{}, mapEngineError(err)
	}
	if !ok {
		_, reason := energy.CheckEligibility(def, profile, energy.Classify(profile.CapacityElectricity, profile.CapacityGas), classOrConsumer(customer))
		return transport.BreakdownResponse{}, apperr.Validation("contract is not available for this consumption profile").
			WithDetails(map[string]string{"reason": reason})
	}
	return transport.ToBreakdownResponse(def, b), nil
}

// Compare prices every active catalog contract and ranks the eligible ones by the annual figure
// the customer is quoted by. Recommended contracts win ties.
func (s *Service) Compare(ctx context.Context, req transport.CompareRequest) (transport.Comparison, error) {
	started := s.now()
	if s.recorder != nil {
		defer s.recorder.ObserveComparison(started)
	}

	profile := req.Profile.Profile()
	if err := profile.Validate(); err != nil {
		return transport.Comparison{}, mapEngineError(err)
	}

	defs, err := s.contracts.ActiveDefinitions(ctx)
	if err != nil {
		return transport.Comparison{}, err
	}
	if req.Model != "" {
		defs = filterModel(defs, energy.PricingModel(req.Model))
	}

	customer := s.resolveCustomer(ctx, req.Customer, req.Profile, energy.AudienceBoth)
	market := s.marketPrice(ctx)
	reference := s.referenceMonthly(ctx, profile, customer, market)

	results := make([]*energy.CostBreakdown, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, def := range defs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, ok, err := s.engine.Calculate(energy.Input{
				Profile:          profile,
				Contract:         def,
				Customer:         customer,
				Market:           market,
				ReferenceMonthly: reference,
			})
			if err != nil {
				s.log.WithContext(ctx).Warn("contract could not be priced",
					slog.String("contract_id", def.ID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			if ok {
				results[i] = &b
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transport.Comparison{}, err
	}

	cmp := transport.Comparison{
		Profile:           profile,
		Customer:          classOrConsumer(customer),
		CustomerDefaulted: customer == nil,
		Market:            market,
		Entries:           make([]transport.Entry, 0, len(defs)),
		GeneratedAt:       started,
	}
	for i, b := range results {
		if b == nil {
			cmp.Excluded++
			continue
		}
		cmp.Entries = append(cmp.Entries, transport.Entry{Contract: defs[i], Breakdown: *b})
	}

	Rank(cmp.Entries, cmp.Customer)
	if req.Limit > 0 && len(cmp.Entries) > req.Limit {
		cmp.Entries = cmp.Entries[:req.Limit]
	}
	return cmp, nil
}

// Tariffs returns the regulated constants the engine prices with.
func (s *Service) Tariffs() energy.Tariffs {
	return s.engine.Tariffs()
}

// EstimateUsage suggests annual consumption for a household.
func (s *Service) EstimateUsage(req transport.UsageEstimateRequest) energy.UsageEstimate {
	return energy.EstimateHouseholdUsage(req.Residents, req.HasSolar, req.Dwelling)
}

// EstimateCapacity suggests connection capacities for annual consumption.
func (s *Service) EstimateCapacity(req transport.CapacityEstimateRequest) energy.CapacityEstimate {
	return energy.EstimateCapacity(req.Electricity, req.Gas)
}

// Rank orders entries ascending by the annual figure the customer is quoted by. Recommended
// contracts win ties, then the name decides.
func Rank(entries []transport.Entry, customer energy.CustomerClass) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if cmp := a.Breakdown.Annual(customer).Cmp(b.Breakdown.Annual(customer)); cmp != 0 {
			return cmp < 0
		}
		if a.Contract.Recommended != b.Contract.Recommended {
			return a.Contract.Recommended
		}
		return a.Contract.Name < b.Contract.Name
	})
}

// resolveCustomer prefers an explicit class, then the contract audience, then the address type.
func (s *Service) resolveCustomer(ctx context.Context, c transport.Customer, p transport.ProfileRequest, audience energy.Audience) *energy.CustomerClass {
	if c.CustomerClass != "" {
		class := energy.CustomerClass(c.CustomerClass)
		return &class
	}

	addressType := c.AddressType
	if addressType == "" && s.classifier != nil && p.PostalCode != "" && p.HouseNumber != "" {
		resolved, err := s.classifier.ClassifyAddress(ctx, p.PostalCode, p.HouseNumber)
		if err != nil {
			s.log.WithContext(ctx).Warn("address classification failed", slog.String("error", err.Error()))
		} else {
			addressType = resolved
		}
	}
	return energy.ResolveCustomerClass(audience, addressType)
}

// marketPrice returns the last price seen for today, or asks the market source.
func (s *Service) marketPrice(ctx context.Context) *energy.MarketPrice {
	today := s.now()
	if known := s.lastMarket.Load(); known != nil && sameDay(known.date, today) {
		price := known.price
		return &price
	}
	if s.market == nil {
		return nil
	}
	price := s.market.MarketPrice(ctx)
	if price != nil && !price.Stale {
		s.lastMarket.Store(&knownPrice{date: today, price: *price})
	}
	return price
}

// referenceMonthly prices the reference contract; nil selects the heuristic reference.
func (s *Service) referenceMonthly(ctx context.Context, p energy.ConsumptionProfile, customer *energy.CustomerClass, market *energy.MarketPrice) *decimal.Decimal {
	if s.referenceID == uuid.Nil {
		return nil
	}
	def, err := s.contracts.Definition(ctx, s.referenceID)
	if err != nil {
		s.log.WithContext(ctx).Warn("reference contract unavailable",
			slog.String("contract_id", s.referenceID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}

	// The reference is priced regardless of its catalog restrictions.
	def.ConsumptionSegment = energy.SegmentAny
	def.Audience = energy.AudienceBoth
	def.VisibleWithFeedIn = nil
	def.MinElectricity, def.MinGas = nil, nil

	b, ok, err := s.reference.Calculate(energy.Input{Profile: p, Contract: def, Customer: customer, Market: market})
	if err != nil || !ok {
		return nil
	}
	monthly := b.Monthly(classOrConsumer(customer))
	return &monthly
}

func mapEngineError(err error) error {
	for _, sentinel := range []error{
		energy.ErrNegativeConsumption,
		energy.ErrMissingElectricity,
		energy.ErrAmbiguousMetering,
		energy.ErrUnknownPricingModel,
		energy.ErrNoRateSet,
		energy.ErrMultipleRateSets,
	} {
		if errors.Is(err, sentinel) {
			return apperr.Wrap(apperr.KindValidation, sentinel.Error(), err)
		}
	}
	return err
}

func filterModel(defs []energy.ContractDefinition, model energy.PricingModel) []energy.ContractDefinition {
	out := defs[:0:0]
	for _, d := range defs {
		if d.Model == model {
			out = append(out, d)
		}
	}
	return out
}

func classOrConsumer(c *energy.CustomerClass) energy.CustomerClass {
	if c == nil {
		return energy.CustomerConsumer
	}
	return *c
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
