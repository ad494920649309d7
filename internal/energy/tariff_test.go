package energy

import "testing"

func resolve(t *testing.T, c ContractDefinition, p ConsumptionProfile, market *MarketPrice) SupplierCost {
	t.Helper()
	net, err := Normalize(p)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	d := DefaultValues()
	m, _ := d.ResolveMarket(market)
	return ResolveSupplierCost(c, net, p, m, d)
}

func findLine(cost SupplierCost, code string) (LineItem, bool) {
	for _, l := range cost.Lines {
		if l.Code == code {
			return l, true
		}
	}
	return LineItem{}, false
}

func TestResolveSupplierCost_FixedSingleRate(t *testing.T) {
	c := ContractDefinition{
		Model:                      ModelFixed,
		Fixed:                      &FixedRates{Single: Float(0.25)},
		StandingElectricityMonthly: Float(5),
	}
	cost := resolve(t, c, ConsumptionProfile{Combined: 3500, SingleRate: true}, nil)

	if got := cost.Subtotal.StringFixed(2); got != "935.00" {
		t.Fatalf("expected 935.00, got %s", got)
	}
	if cost.RateTier != "single" {
		t.Fatalf("expected single tier, got %s", cost.RateTier)
	}
	if len(cost.Fallbacks) != 0 {
		t.Fatalf("expected no fallbacks, got %v", cost.Fallbacks)
	}
}

func TestResolveSupplierCost_FixedDualRateWithFeedInFee(t *testing.T) {
	c := ContractDefinition{
		Model:                      ModelFixed,
		Fixed:                      &FixedRates{Normal: Float(0.30), OffPeak: Float(0.20)},
		StandingElectricityMonthly: Float(5),
		FeedInCompensation:         Float(0.015),
	}
	cost := resolve(t, c, ConsumptionProfile{Peak: 3000, OffPeak: 1000, FeedIn: Float(1000)}, nil)

	if got := cost.Subtotal.StringFixed(2); got != "925.00" {
		t.Fatalf("expected 925.00, got %s", got)
	}
	fee, ok := findLine(cost, "feed_in_fee")
	if !ok {
		t.Fatalf("expected feed-in fee line")
	}
	if fee.Quantity != 1000 || fee.Amount.StringFixed(2) != "15.00" {
		t.Fatalf("expected fee on full 1000 kWh = 15.00, got %.0f kWh = %s", fee.Quantity, fee.Amount.StringFixed(2))
	}
}

func TestResolveSupplierCost_FixedFallsBackToSingleRateOnDualMeter(t *testing.T) {
	c := ContractDefinition{Model: ModelFixed, Fixed: &FixedRates{Single: Float(0.25), Normal: Float(0.30)}}
	cost := resolve(t, c, ConsumptionProfile{Peak: 3000, OffPeak: 1000}, nil)

	// 4000 × 0.25 + default standing charge 4.00 × 12
	if got := cost.Subtotal.StringFixed(2); got != "1048.00" {
		t.Fatalf("expected 1048.00, got %s", got)
	}
	if len(cost.Fallbacks) != 1 || cost.Fallbacks[0] != FallbackDualRatesIncomplete {
		t.Fatalf("expected dual-rates-incomplete fallback, got %v", cost.Fallbacks)
	}
}

func TestResolveSupplierCost_SingleMeterWithOnlyDualRates(t *testing.T) {
	c := ContractDefinition{Model: ModelNegotiated, Negotiated: &FixedRates{Normal: Float(0.30), OffPeak: Float(0.20)}}
	cost := resolve(t, c, ConsumptionProfile{Combined: 2000, SingleRate: true}, nil)

	line, ok := findLine(cost, "electricity_normal")
	if !ok {
		t.Fatalf("expected dual-rate billing, got %+v", cost.Lines)
	}
	if got := line.Amount.StringFixed(2); got != "600.00" {
		t.Fatalf("expected 600.00, got %s", got)
	}
}

func TestResolveSupplierCost_NoRatesNeverYieldsZero(t *testing.T) {
	c := ContractDefinition{Model: ModelFixed, Fixed: &FixedRates{}}
	cost := resolve(t, c, ConsumptionProfile{Peak: 3000, OffPeak: 1000}, nil)

	line, ok := findLine(cost, "electricity_single")
	if !ok {
		t.Fatalf("expected fallback electricity line")
	}
	if got := line.Amount.StringFixed(2); got != "720.00" {
		t.Fatalf("expected 720.00 at the default market rate, got %s", got)
	}
	if len(cost.Fallbacks) != 1 || cost.Fallbacks[0] != FallbackNoElectricityRate {
		t.Fatalf("expected no-electricity-rate fallback, got %v", cost.Fallbacks)
	}
}

func TestResolveSupplierCost_GasAndStandingCharges(t *testing.T) {
	c := ContractDefinition{
		Model:                      ModelFixed,
		Fixed:                      &FixedRates{Single: Float(0.25), Gas: Float(1.10)},
		StandingElectricityMonthly: Float(5),
		StandingGasMonthly:         Float(6),
	}
	cost := resolve(t, c, ConsumptionProfile{Combined: 1000, SingleRate: true, Gas: Float(1000)}, nil)

	// 250 + 1100 + 60 + 72
	if got := cost.Subtotal.StringFixed(2); got != "1482.00" {
		t.Fatalf("expected 1482.00, got %s", got)
	}

	noGas := resolve(t, c, ConsumptionProfile{Combined: 1000, SingleRate: true, Gas: Float(0)}, nil)
	if _, ok := findLine(noGas, "standing_gas"); ok {
		t.Fatalf("expected no gas standing charge without gas consumption")
	}
}

func TestResolveSupplierCost_DynamicDualRate(t *testing.T) {
	c := ContractDefinition{
		Model:                      ModelDynamic,
		Dynamic:                    &DynamicRates{ElectricityMarkup: 0.02, GasMarkup: Float(0.05)},
		StandingElectricityMonthly: Float(6),
		StandingGasMonthly:         Float(6),
	}
	market := &MarketPrice{ElectricityDay: 0.30, ElectricityNight: 0.20, Gas: 0.90}
	cost := resolve(t, c, ConsumptionProfile{Peak: 3000, OffPeak: 1000, Gas: Float(1000)}, market)

	// 960 + 220 + 950 + 72 + 72
	if got := cost.Subtotal.StringFixed(2); got != "2274.00" {
		t.Fatalf("expected 2274.00, got %s", got)
	}
	if cost.RateTier != "market" {
		t.Fatalf("expected market tier, got %s", cost.RateTier)
	}
}

func TestResolveSupplierCost_DynamicSurplusIsPaidOut(t *testing.T) {
	c := ContractDefinition{
		Model:                      ModelDynamic,
		Dynamic:                    &DynamicRates{ElectricityMarkup: 0.02, FeedInMarkup: -0.01},
		StandingElectricityMonthly: Float(5),
	}
	market := &MarketPrice{ElectricityDay: 0.30, ElectricityNight: 0.20, Gas: 0.90}
	cost := resolve(t, c, ConsumptionProfile{Combined: 2000, SingleRate: true, FeedIn: Float(2500)}, market)

	if got := cost.FeedInPayout.StringFixed(2); got != "120.00" {
		t.Fatalf("expected payout 120.00, got %s", got)
	}
	if got := cost.Subtotal.StringFixed(2); got != "-60.00" {
		t.Fatalf("expected subtotal -60.00, got %s", got)
	}
}

func TestResolveMarket_DefaultsAndNightFactor(t *testing.T) {
	d := DefaultValues()

	m, defaulted := d.ResolveMarket(nil)
	if !defaulted || m.ElectricityDay != 0.20 || m.Gas != 0.80 {
		t.Fatalf("expected defaults, got %+v defaulted=%v", m, defaulted)
	}

	m, defaulted = d.ResolveMarket(&MarketPrice{ElectricityDay: 0.25, Gas: 0.70, NightMissing: true})
	if defaulted {
		t.Fatalf("expected no default flag when only night price is derived")
	}
	if m.ElectricityNight != 0.25*0.8 {
		t.Fatalf("expected night price derived from day price, got %.4f", m.ElectricityNight)
	}
}

func TestResolveMarket_KeepsZeroAndNegativePrices(t *testing.T) {
	d := DefaultValues()
	m, defaulted := d.ResolveMarket(&MarketPrice{ElectricityDay: -0.05, ElectricityNight: -0.02, Gas: 0})
	if defaulted {
		t.Fatalf("expected present prices to be used as given")
	}
	if m.ElectricityDay != -0.05 || m.ElectricityNight != -0.02 || m.Gas != 0 {
		t.Fatalf("expected -0.05/-0.02/0, got %+v", m)
	}

	m, defaulted = d.ResolveMarket(&MarketPrice{ElectricityDay: -0.05, NightMissing: true, GasMissing: true})
	if !defaulted || m.Gas != 0.80 || m.ElectricityNight != -0.05*0.8 {
		t.Fatalf("expected only the missing prices filled in, got %+v defaulted=%v", m, defaulted)
	}
	if m.NightMissing || m.GasMissing {
		t.Fatalf("expected resolved price to carry no missing marks")
	}
}

func TestResolveSupplierCost_DynamicNegativeMarketPrice(t *testing.T) {
	c := ContractDefinition{
		Model:                      ModelDynamic,
		Dynamic:                    &DynamicRates{ElectricityMarkup: 0.02},
		StandingElectricityMonthly: Float(5),
	}
	market := &MarketPrice{ElectricityDay: -0.05, ElectricityNight: -0.02, Gas: 0.5}
	cost := resolve(t, c, ConsumptionProfile{Peak: 3000, OffPeak: 1000}, market)

	day, ok := findLine(cost, "electricity_normal")
	if !ok {
		t.Fatalf("expected a day line")
	}
	if got := day.Amount.StringFixed(2); got != "-90.00" {
		t.Fatalf("expected negative day amount -90.00, got %s", got)
	}
	night, _ := findLine(cost, "electricity_offpeak")
	if !night.Amount.IsZero() {
		t.Fatalf("expected zero night amount, got %s", night.Amount.StringFixed(2))
	}
	// -90 + 0 + 60 standing
	if got := cost.Subtotal.StringFixed(2); got != "-30.00" {
		t.Fatalf("expected subtotal -30.00, got %s", got)
	}
}

func TestResolveSupplierCost_DynamicIgnoresFeedInCompensation(t *testing.T) {
	c := ContractDefinition{
		Model:                      ModelDynamic,
		Dynamic:                    &DynamicRates{ElectricityMarkup: 0.02, FeedInMarkup: -0.01},
		StandingElectricityMonthly: Float(5),
		FeedInCompensation:         Float(0.015),
	}
	market := &MarketPrice{ElectricityDay: 0.30, ElectricityNight: 0.20, Gas: 0.90}
	cost := resolve(t, c, ConsumptionProfile{Combined: 2000, SingleRate: true, FeedIn: Float(2500)}, market)

	if _, ok := findLine(cost, "feed_in_fee"); ok {
		t.Fatalf("expected no feed-in fee line on a dynamic contract")
	}
	if got := cost.Subtotal.StringFixed(2); got != "-60.00" {
		t.Fatalf("expected subtotal -60.00, got %s", got)
	}
}
