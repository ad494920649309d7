package energy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tariffs bundles every regulated constant the engine depends on.
type Tariffs struct {
	Small    TaxSchedule `mapstructure:"small" json:"small"`
	Large    TaxSchedule `mapstructure:"large" json:"large"`
	Network  NetworkFees `mapstructure:"network" json:"network"`
	VatRate  float64     `mapstructure:"vat_rate" json:"vatRate"`
	Defaults Defaults    `mapstructure:"defaults" json:"defaults"`
}

// DefaultTariffs returns the built-in tariff constants.
func DefaultTariffs() Tariffs {
	return Tariffs{
		Small:    SmallConsumerSchedule(),
		Large:    LargeConsumerSchedule(),
		Network:  DefaultNetworkFees(),
		VatRate:  DefaultVatRate,
		Defaults: DefaultValues(),
	}
}

// Validate checks both tax schedules and the scalar constants.
func (t Tariffs) Validate() error {
	if err := t.Small.Validate(); err != nil {
		return fmt.Errorf("small-consumer schedule: %w", err)
	}
	if err := t.Large.Validate(); err != nil {
		return fmt.Errorf("large-consumer schedule: %w", err)
	}
	if t.VatRate < 0 || t.VatRate >= 1 {
		return fmt.Errorf("vat rate %.4f out of range", t.VatRate)
	}
	if t.Network.Electricity < 0 || t.Network.Gas < 0 {
		return fmt.Errorf("network fees must not be negative")
	}
	return nil
}

// FallbackObserver is notified about every computation outcome.
type FallbackObserver interface {
	BreakdownComputed(contractID string, model PricingModel, fallbacks []string)
	ContractExcluded(contractID string, reason string)
}

type noopObserver struct{}

func (noopObserver) BreakdownComputed(string, PricingModel, []string) {}
func (noopObserver) ContractExcluded(string, string)                  {}

// Engine runs the full pipeline for one contract. It is immutable after construction and safe
// for concurrent use.
type Engine struct {
	tariffs  Tariffs
	vatRate  decimal.Decimal
	observer FallbackObserver
}

// Option configures an Engine.
type Option func(*Engine)

// WithTariffs replaces every tariff constant at once.
func WithTariffs(t Tariffs) Option {
	return func(e *Engine) {
		e.tariffs = t
	}
}

// WithTaxSchedules replaces the small- and large-consumer tax schedules.
func WithTaxSchedules(small, large TaxSchedule) Option {
	return func(e *Engine) {
		e.tariffs.Small = small
		e.tariffs.Large = large
	}
}

// WithNetworkFees replaces the annual network fees.
func WithNetworkFees(fees NetworkFees) Option {
	return func(e *Engine) {
		e.tariffs.Network = fees
	}
}

// WithVatRate replaces the VAT rate.
func WithVatRate(rate float64) Option {
	return func(e *Engine) {
		e.tariffs.VatRate = rate
	}
}

// WithDefaults replaces the fallback constants.
func WithDefaults(d Defaults) Option {
	return func(e *Engine) {
		e.tariffs.Defaults = d
	}
}

// WithFallbackObserver registers an observer for fallbacks and exclusions.
func WithFallbackObserver(o FallbackObserver) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewEngine builds an engine from the default tariffs and the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{tariffs: DefaultTariffs(), observer: noopObserver{}}
	for _, opt := range opts {
		opt(e)
	}
	e.vatRate = decimal.NewFromFloat(e.tariffs.VatRate)
	return e
}

// Tariffs returns the constants the engine was built with.
func (e *Engine) Tariffs() Tariffs {
	return e.tariffs
}

// Input is everything one computation needs. Customer and Market may be nil when the upstream
// lookup failed; ReferenceMonthly may be nil when no reference contract is available.
type Input struct {
	Profile          ConsumptionProfile
	Contract         ContractDefinition
	Customer         *CustomerClass
	Market           *MarketPrice
	ReferenceMonthly *decimal.Decimal
}

// Calculate runs normalization, eligibility, tariff, tax, network fee, aggregation, VAT and
// savings for one contract. The bool is false when the contract is excluded; no breakdown is
// produced in that case and the error is nil.
func (e *Engine) Calculate(in Input) (CostBreakdown, bool, error) {
	p, c := in.Profile, in.Contract
	if err := p.Validate(); err != nil {
		return CostBreakdown{}, false, err
	}
	if !c.Model.Valid() {
		return CostBreakdown{}, false, fmt.Errorf("contract %s: %w", c.ID, ErrUnknownPricingModel)
	}

	customer := CustomerConsumer
	customerDefaulted := in.Customer == nil
	if in.Customer != nil {
		customer = *in.Customer
	}

	class := Classify(p.CapacityElectricity, p.CapacityGas)
	if ok, reason := CheckEligibility(c, p, class, customer); !ok {
		e.observer.ContractExcluded(c.ID, reason)
		return CostBreakdown{}, false, nil
	}

	net, err := Normalize(p)
	if err != nil {
		return CostBreakdown{}, false, err
	}

	network := ResolveNetworkFee(p.CapacityElectricity, p.CapacityGas, p.HasGas(), e.tariffs.Network)

	// Energy tax brackets and the reduction follow the electricity connection only.
	schedule := e.tariffs.Small
	if network.ElectricityClass == CapacityLarge {
		schedule = e.tariffs.Large
	}

	market, marketDefaulted := e.tariffs.Defaults.ResolveMarket(in.Market)
	supplier := ResolveSupplierCost(c, net, p, market, e.tariffs.Defaults)
	tax := ComputeTax(net.Total(), p.GasM3(), network.ElectricityClass, schedule)

	b := Aggregate(supplier, tax, network)
	b = b.WithVat(ApplyVat(b.TotalExclVat, customer, e.vatRate))
	b.ContractID = c.ID
	b.Model = c.Model
	b.Net = net
	b.Customer = customer

	if customerDefaulted {
		b.addFallback(FallbackCustomerDefaulted)
	}
	if marketDefaulted && usesMarket(c.Model, supplier.Fallbacks) {
		b.MarketPriceDefaulted = true
		b.addFallback(FallbackMarketPriceDefaulted)
	}

	b.Savings = EstimateSavings(b, in.ReferenceMonthly, p, customer)

	e.observer.BreakdownComputed(c.ID, c.Model, b.Fallbacks)
	return b, true, nil
}

// usesMarket reports whether the market reference price fed into the supplier cost.
func usesMarket(model PricingModel, fallbacks []string) bool {
	if model == ModelDynamic {
		return true
	}
	for _, f := range fallbacks {
		if f == FallbackNoElectricityRate || f == FallbackNoGasRate {
			return true
		}
	}
	return false
}
