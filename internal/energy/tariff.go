package energy

import "github.com/shopspring/decimal"

// Fallback reasons recorded on a breakdown when data had to be substituted.
const (
	FallbackDualRatesIncomplete  = "dual_rates_incomplete"
	FallbackSingleRateMissing    = "single_rate_missing"
	FallbackNoElectricityRate    = "no_electricity_rate"
	FallbackNoGasRate            = "no_gas_rate"
	FallbackNoRateSet            = "no_rate_set"
	FallbackMarketPriceDefaulted = "market_price_defaulted"
	FallbackCustomerDefaulted    = "customer_class_defaulted"
)

// Defaults are the named constants used wherever an input is absent.
type Defaults struct {
	StandingChargeMonthly float64 `mapstructure:"standing_charge_monthly" json:"standingChargeMonthly"`
	MarketElectricity     float64 `mapstructure:"market_electricity" json:"marketElectricity"`
	MarketGas             float64 `mapstructure:"market_gas" json:"marketGas"`
	// NightFactor derives the night price from the day price when the feed lacks one.
	NightFactor float64 `mapstructure:"night_factor" json:"nightFactor"`
}

// DefaultValues returns the standard fallback constants.
func DefaultValues() Defaults {
	return Defaults{
		StandingChargeMonthly: 4.00,
		MarketElectricity:     0.20,
		MarketGas:             0.80,
		NightFactor:           0.8,
	}
}

// ResolveMarket fills in a missing market price or the prices marked missing on it. Present
// prices are used as given, including zero and negative ones. The bool reports whether a day or
// gas default was substituted; a derived night price alone does not count.
func (d Defaults) ResolveMarket(m *MarketPrice) (MarketPrice, bool) {
	if m == nil {
		return MarketPrice{
			ElectricityDay:   d.MarketElectricity,
			ElectricityNight: d.MarketElectricity * d.NightFactor,
			Gas:              d.MarketGas,
			Source:           "default",
		}, true
	}

	res := *m
	defaulted := false
	if res.DayMissing {
		res.ElectricityDay = d.MarketElectricity
		defaulted = true
	}
	if res.NightMissing {
		res.ElectricityNight = res.ElectricityDay * d.NightFactor
	}
	if res.GasMissing {
		res.Gas = d.MarketGas
		defaulted = true
	}
	res.DayMissing, res.NightMissing, res.GasMissing = false, false, false
	return res, defaulted
}

// SupplierCost is the supplier-side subtotal with its line items.
type SupplierCost struct {
	Lines []LineItem `json:"lines"`
	// RateTier is "single", "dual" or "market".
	RateTier string `json:"rateTier"`
	// FeedInPayout is the compensation for surplus feed-in, already subtracted from Subtotal.
	FeedInPayout decimal.Decimal `json:"feedInPayout"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Fallbacks    []string        `json:"fallbacks,omitempty"`
}

func (s *SupplierCost) add(line LineItem) {
	s.Lines = append(s.Lines, line)
}

func (s *SupplierCost) fallback(reason string) {
	s.Fallbacks = append(s.Fallbacks, reason)
}

// ResolveSupplierCost computes the supplier charges for a contract. The market price must already
// be resolved through Defaults.ResolveMarket; it is only read for dynamic contracts and as the
// last-resort rate when a contract carries no usable rate at all.
func ResolveSupplierCost(c ContractDefinition, net NetConsumption, p ConsumptionProfile, market MarketPrice, d Defaults) SupplierCost {
	var cost SupplierCost

	switch c.Model {
	case ModelDynamic:
		resolveDynamic(&cost, c.Dynamic, net, p, market)
	case ModelNegotiated:
		resolveFixedStyle(&cost, c.Negotiated, net, p, market)
	default:
		resolveFixedStyle(&cost, c.Fixed, net, p, market)
	}

	addStandingCharges(&cost, c, p, d)

	cost.Subtotal = sumLines(cost.Lines)
	return cost
}

func resolveFixedStyle(cost *SupplierCost, rates *FixedRates, net NetConsumption, p ConsumptionProfile, market MarketPrice) {
	if rates == nil {
		cost.fallback(FallbackNoRateSet)
		rates = &FixedRates{}
	}

	switch {
	case p.SingleRate && rates.Single != nil:
		cost.RateTier = "single"
		cost.add(LineItem{Code: "electricity_single", Label: "Stroom enkeltarief", Quantity: net.Total(), Unit: "kWh", Rate: *rates.Single, Amount: amount(net.Total(), *rates.Single)})
	case rates.Normal != nil && rates.OffPeak != nil:
		cost.RateTier = "dual"
		cost.add(LineItem{Code: "electricity_normal", Label: "Stroom normaaltarief", Quantity: net.Peak, Unit: "kWh", Rate: *rates.Normal, Amount: amount(net.Peak, *rates.Normal)})
		cost.add(LineItem{Code: "electricity_offpeak", Label: "Stroom daltarief", Quantity: net.OffPeak, Unit: "kWh", Rate: *rates.OffPeak, Amount: amount(net.OffPeak, *rates.OffPeak)})
	default:
		rate, reason := fallbackElectricityRate(rates, p.SingleRate, market)
		cost.fallback(reason)
		cost.RateTier = "single"
		cost.add(LineItem{Code: "electricity_single", Label: "Stroom enkeltarief", Quantity: net.Total(), Unit: "kWh", Rate: rate, Amount: amount(net.Total(), rate)})
	}

	if gas := p.GasM3(); gas > 0 {
		rate := market.Gas
		if rates.Gas != nil {
			rate = *rates.Gas
		} else {
			cost.fallback(FallbackNoGasRate)
		}
		cost.add(LineItem{Code: "gas", Label: "Gas", Quantity: gas, Unit: "m³", Rate: rate, Amount: amount(gas, rate)})
	}
}

// fallbackElectricityRate picks whichever single rate is available when the metering-specific
// rates are incomplete. With no rate at all the market reference price keeps the result non-zero.
func fallbackElectricityRate(rates *FixedRates, singleRateMeter bool, market MarketPrice) (float64, string) {
	reason := FallbackDualRatesIncomplete
	if singleRateMeter {
		reason = FallbackSingleRateMissing
	}
	switch {
	case rates.Single != nil:
		return *rates.Single, reason
	case rates.Normal != nil:
		return *rates.Normal, reason
	case rates.OffPeak != nil:
		return *rates.OffPeak, reason
	}
	return market.SingleRate(), FallbackNoElectricityRate
}

func resolveDynamic(cost *SupplierCost, rates *DynamicRates, net NetConsumption, p ConsumptionProfile, market MarketPrice) {
	if rates == nil {
		cost.fallback(FallbackNoRateSet)
		rates = &DynamicRates{}
	}

	cost.RateTier = "market"
	if p.SingleRate {
		rate := market.SingleRate() + rates.ElectricityMarkup
		cost.add(LineItem{Code: "electricity_single", Label: "Stroom dynamisch enkel", Quantity: net.Total(), Unit: "kWh", Rate: rate, Amount: amount(net.Total(), rate)})
	} else {
		day := market.ElectricityDay + rates.ElectricityMarkup
		night := market.ElectricityNight + rates.ElectricityMarkup
		cost.add(LineItem{Code: "electricity_normal", Label: "Stroom dynamisch dag", Quantity: net.Peak, Unit: "kWh", Rate: day, Amount: amount(net.Peak, day)})
		cost.add(LineItem{Code: "electricity_offpeak", Label: "Stroom dynamisch nacht", Quantity: net.OffPeak, Unit: "kWh", Rate: night, Amount: amount(net.OffPeak, night)})
	}

	if gas := p.GasM3(); gas > 0 {
		rate := market.Gas
		if rates.GasMarkup != nil {
			rate += *rates.GasMarkup
		}
		cost.add(LineItem{Code: "gas", Label: "Gas dynamisch", Quantity: gas, Unit: "m³", Rate: rate, Amount: amount(gas, rate)})
	}

	if net.Surplus > 0 {
		price := market.SingleRate() + rates.FeedInMarkup
		cost.FeedInPayout = amount(net.Surplus, price)
		cost.add(LineItem{Code: "feed_in_payout", Label: "Vergoeding overschot teruglevering", Quantity: net.Surplus, Unit: "kWh", Rate: price, Amount: cost.FeedInPayout.Neg()})
	}
}

func addStandingCharges(cost *SupplierCost, c ContractDefinition, p ConsumptionProfile, d Defaults) {
	electricity := d.StandingChargeMonthly
	if c.StandingElectricityMonthly != nil {
		electricity = *c.StandingElectricityMonthly
	}
	cost.add(LineItem{Code: "standing_electricity", Label: "Vastrecht stroom", Quantity: 12, Unit: "maand", Rate: electricity, Amount: amount(12, electricity)})

	if p.HasGas() {
		gas := d.StandingChargeMonthly
		if c.StandingGasMonthly != nil {
			gas = *c.StandingGasMonthly
		}
		cost.add(LineItem{Code: "standing_gas", Label: "Vastrecht gas", Quantity: 12, Unit: "maand", Rate: gas, Amount: amount(12, gas)})
	}

	if c.Model == ModelDynamic || c.FeedInCompensation == nil || *c.FeedInCompensation <= 0 {
		return
	}
	if feedIn := p.FeedInKwh(); feedIn > 0 {
		cost.add(LineItem{Code: "feed_in_fee", Label: "Terugleverkosten", Quantity: feedIn, Unit: "kWh", Rate: *c.FeedInCompensation, Amount: amount(feedIn, *c.FeedInCompensation)})
	}
}
