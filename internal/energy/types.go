// Package energy is the canonical cost engine for electricity and gas supply contracts.
//
// Every exported function in this package is a pure computation over its explicit inputs.
// Callers fetch the contract catalog, market prices and reference contracts themselves and
// hand fully-formed values to the Engine; nothing here performs I/O or keeps state between calls.
package energy

import (
	"errors"
	"math"
)

// PricingModel identifies how a contract determines its per-unit rates.
type PricingModel string

const (
	ModelFixed      PricingModel = "fixed"
	ModelDynamic    PricingModel = "dynamic"
	ModelNegotiated PricingModel = "negotiated"
)

// Valid reports whether m is one of the known pricing models.
func (m PricingModel) Valid() bool {
	switch m {
	case ModelFixed, ModelDynamic, ModelNegotiated:
		return true
	}
	return false
}

// CustomerClass is decided upstream by the address classification collaborator.
type CustomerClass string

const (
	CustomerConsumer CustomerClass = "consumer"
	CustomerBusiness CustomerClass = "business"
)

// Audience restricts a contract to a customer class.
type Audience string

const (
	AudienceConsumer Audience = "consumer"
	AudienceBusiness Audience = "business"
	AudienceBoth     Audience = "both"
)

// Segment restricts a contract to a connection capacity class.
type Segment string

const (
	SegmentSmall Segment = "small"
	SegmentLarge Segment = "large"
	SegmentAny   Segment = "any"
)

var (
	ErrNegativeConsumption = errors.New("consumption quantities must not be negative")
	ErrMissingElectricity  = errors.New("electricity consumption is required")
	ErrAmbiguousMetering   = errors.New("feed-in profile carries both a combined and a dual-rate reading")
	ErrUnknownPricingModel = errors.New("unknown pricing model")
	ErrNoRateSet           = errors.New("contract has no rate set for its pricing model")
	ErrMultipleRateSets    = errors.New("contract has more than one rate set populated")
)

// ConsumptionProfile is the annual consumption of one connection.
type ConsumptionProfile struct {
	// Peak and OffPeak are the dual-rate (normaal/dal) readings in kWh.
	Peak    float64
	OffPeak float64
	// Combined is the single-rate reading in kWh. When set it takes precedence over Peak+OffPeak.
	Combined float64
	// Gas in m³; nil means no gas connection.
	Gas *float64
	// FeedIn is the annual solar feed-in in kWh; nil means no production.
	FeedIn     *float64
	SingleRate bool

	CapacityElectricity string
	CapacityGas         string
	PostalCode          string
}

// Validate rejects negative quantities and feed-in profiles that mix metering representations.
func (p ConsumptionProfile) Validate() error {
	if p.Peak < 0 || p.OffPeak < 0 || p.Combined < 0 {
		return ErrNegativeConsumption
	}
	if p.Gas != nil && *p.Gas < 0 {
		return ErrNegativeConsumption
	}
	if p.FeedIn != nil && *p.FeedIn < 0 {
		return ErrNegativeConsumption
	}
	if anyNaN(p.Peak, p.OffPeak, p.Combined, p.GasM3(), p.FeedInKwh()) {
		return ErrNegativeConsumption
	}
	if p.FeedInKwh() > 0 && p.Combined > 0 && (p.Peak > 0 || p.OffPeak > 0) {
		return ErrAmbiguousMetering
	}
	if p.ElectricityTotal() == 0 && p.FeedInKwh() == 0 {
		return ErrMissingElectricity
	}
	return nil
}

// ElectricityTotal is the gross annual electricity consumption.
func (p ConsumptionProfile) ElectricityTotal() float64 {
	if p.Combined > 0 {
		return p.Combined
	}
	return p.Peak + p.OffPeak
}

// GasM3 returns the gas consumption, zero when there is no gas connection.
func (p ConsumptionProfile) GasM3() float64 {
	if p.Gas == nil {
		return 0
	}
	return *p.Gas
}

// HasGas reports whether the profile consumes any gas.
func (p ConsumptionProfile) HasGas() bool {
	return p.GasM3() > 0
}

// FeedInKwh returns the solar feed-in, zero when absent.
func (p ConsumptionProfile) FeedInKwh() float64 {
	if p.FeedIn == nil {
		return 0
	}
	return *p.FeedIn
}

// split returns the dual-rate readings. A combined reading wins over peak and off-peak, as in
// ElectricityTotal, and is mapped onto peak.
func (p ConsumptionProfile) split() (float64, float64) {
	if p.Combined > 0 {
		return p.Combined, 0
	}
	return p.Peak, p.OffPeak
}

// FixedRates is the rate set shared by fixed and negotiated contracts, in €/kWh and €/m³ excl. VAT.
type FixedRates struct {
	Single  *float64 `json:"single,omitempty"`
	Normal  *float64 `json:"normal,omitempty"`
	OffPeak *float64 `json:"offPeak,omitempty"`
	Gas     *float64 `json:"gas,omitempty"`
}

// DynamicRates holds the supplier markups on top of the market reference price.
type DynamicRates struct {
	ElectricityMarkup float64  `json:"electricityMarkup"`
	GasMarkup         *float64 `json:"gasMarkup,omitempty"`
	// FeedInMarkup is added to the spot price paid for surplus feed-in; usually zero or negative.
	FeedInMarkup float64 `json:"feedInMarkup"`
}

// ContractDefinition is a candidate contract as offered in the catalog.
type ContractDefinition struct {
	ID       string
	Name     string
	Supplier string
	Model    PricingModel

	Fixed      *FixedRates
	Dynamic    *DynamicRates
	Negotiated *FixedRates

	// Monthly standing charges (vastrecht); nil falls back to Defaults.StandingChargeMonthly.
	StandingElectricityMonthly *float64
	StandingGasMonthly         *float64
	// FeedInCompensation is the administration fee per fed-in kWh charged under fixed-style contracts.
	FeedInCompensation *float64

	MinElectricity     *float64
	MinGas             *float64
	ConsumptionSegment Segment
	Audience           Audience
	// VisibleWithFeedIn: nil always shown, true only with feed-in, false only without.
	VisibleWithFeedIn *bool

	Recommended bool
}

// Validate checks that exactly one rate set is populated and that it matches the pricing model.
func (c ContractDefinition) Validate() error {
	if !c.Model.Valid() {
		return ErrUnknownPricingModel
	}
	populated := 0
	if c.Fixed != nil {
		populated++
	}
	if c.Dynamic != nil {
		populated++
	}
	if c.Negotiated != nil {
		populated++
	}
	if populated > 1 {
		return ErrMultipleRateSets
	}
	if c.rateSetFor() == nil {
		return ErrNoRateSet
	}
	return nil
}

// rateSetFor returns the populated rate set for the contract's model, or nil.
func (c ContractDefinition) rateSetFor() any {
	switch c.Model {
	case ModelFixed:
		if c.Fixed != nil {
			return c.Fixed
		}
	case ModelNegotiated:
		if c.Negotiated != nil {
			return c.Negotiated
		}
	case ModelDynamic:
		if c.Dynamic != nil {
			return c.Dynamic
		}
	}
	return nil
}

// MarketPrice is the injected market reference price, excl. VAT and energy tax. Day-ahead
// prices can be zero or negative, so absent prices are marked explicitly rather than by value.
type MarketPrice struct {
	ElectricityDay   float64 `json:"electricityDay"`
	ElectricityNight float64 `json:"electricityNight"`
	Gas              float64 `json:"gas"`
	Source           string  `json:"source"`
	Stale            bool    `json:"stale"`

	DayMissing   bool `json:"dayMissing,omitempty"`
	NightMissing bool `json:"nightMissing,omitempty"`
	GasMissing   bool `json:"gasMissing,omitempty"`
}

// SingleRate is the blended spot price used for single-rate meters and feed-in.
func (m MarketPrice) SingleRate() float64 {
	return (m.ElectricityDay + m.ElectricityNight) / 2
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// Float returns a pointer to v, for building optional inputs.
func Float(v float64) *float64 {
	return &v
}
