package energy

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

type recordingObserver struct {
	mu        sync.Mutex
	computed  []string
	excluded  map[string]string
	fallbacks map[string][]string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{excluded: map[string]string{}, fallbacks: map[string][]string{}}
}

func (o *recordingObserver) BreakdownComputed(contractID string, _ PricingModel, fallbacks []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.computed = append(o.computed, contractID)
	o.fallbacks[contractID] = fallbacks
}

func (o *recordingObserver) ContractExcluded(contractID, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.excluded[contractID] = reason
}

func consumerPtr() *CustomerClass {
	c := CustomerConsumer
	return &c
}

func businessPtr() *CustomerClass {
	c := CustomerBusiness
	return &c
}

func assertBreakdownIdentity(t *testing.T, b CostBreakdown) {
	t.Helper()
	if !b.TotalInclVat.Equal(b.TotalExclVat.Add(b.Vat)) {
		t.Fatalf("incl %s != excl %s + vat %s", b.TotalInclVat, b.TotalExclVat, b.Vat)
	}
	if want := b.TotalExclVat.Mul(decimal.NewFromFloat(1.21)).Round(2); !b.TotalInclVat.Equal(want) {
		t.Fatalf("expected incl %s, got %s", want.StringFixed(2), b.TotalInclVat.StringFixed(2))
	}
	if want := b.TotalInclVat.Div(decimal.NewFromInt(12)).Round(2); !b.MonthlyInclVat.Equal(want) {
		t.Fatalf("expected monthly incl %s, got %s", want.StringFixed(2), b.MonthlyInclVat.StringFixed(2))
	}
	if want := b.TotalExclVat.Div(decimal.NewFromInt(12)).Round(2); !b.MonthlyExclVat.Equal(want) {
		t.Fatalf("expected monthly excl %s, got %s", want.StringFixed(2), b.MonthlyExclVat.StringFixed(2))
	}
}

func TestEngine_SingleRateSmallConsumerScenario(t *testing.T) {
	engine := NewEngine()
	b, ok, err := engine.Calculate(Input{
		Profile: ConsumptionProfile{Combined: 3500, SingleRate: true, CapacityElectricity: "3x25A"},
		Contract: ContractDefinition{
			ID:                         "vast-1",
			Model:                      ModelFixed,
			Fixed:                      &FixedRates{Single: Float(0.25)},
			StandingElectricityMonthly: Float(5),
		},
		Customer: consumerPtr(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected contract to be eligible")
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"supplier", b.SupplierSubtotal, "935.00"},
		{"tax", b.TaxSubtotal, "-169.56"},
		{"network", b.NetworkSubtotal, "430.00"},
		{"excl", b.TotalExclVat, "1195.44"},
		{"vat", b.Vat, "251.04"},
		{"incl", b.TotalInclVat, "1446.48"},
		{"monthly incl", b.MonthlyInclVat, "120.54"},
		{"monthly excl", b.MonthlyExclVat, "99.62"},
	}
	for _, c := range checks {
		if got := c.got.StringFixed(2); got != c.want {
			t.Fatalf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
	assertBreakdownIdentity(t, b)

	if b.DerivedViaFallback {
		t.Fatalf("expected no fallback, got %v", b.Fallbacks)
	}
	if b.CapacityClass != CapacitySmall || b.NetworkZeroed {
		t.Fatalf("expected small consumer with network fee, got %s zeroed=%v", b.CapacityClass, b.NetworkZeroed)
	}

	// Heuristic reference: round((3500 × 0.35 + 700) / 12) = 160
	if !b.Savings.Heuristic {
		t.Fatalf("expected heuristic savings without a reference")
	}
	if got := b.Savings.Monthly.StringFixed(2); got != "39.46" {
		t.Fatalf("expected savings 39.46, got %s", got)
	}
}

func TestEngine_DualRateSolarOverflowScenario(t *testing.T) {
	engine := NewEngine()
	b, ok, err := engine.Calculate(Input{
		Profile: ConsumptionProfile{Peak: 3000, OffPeak: 1000, FeedIn: Float(5000), CapacityElectricity: "3x25A"},
		Contract: ContractDefinition{
			ID:    "vast-2",
			Model: ModelFixed,
			Fixed: &FixedRates{Normal: Float(0.30), OffPeak: Float(0.20)},
		},
		Customer: consumerPtr(),
	})
	if err != nil || !ok {
		t.Fatalf("expected breakdown, got ok=%v err=%v", ok, err)
	}
	if b.Net.Peak != 0 || b.Net.OffPeak != 0 {
		t.Fatalf("expected net 0/0, got %.2f/%.2f", b.Net.Peak, b.Net.OffPeak)
	}
	for _, line := range b.Supplier.Lines {
		if line.Quantity < 0 {
			t.Fatalf("negative quantity surfaced on line %s: %.2f", line.Code, line.Quantity)
		}
	}
	for _, bracket := range b.Tax.Brackets {
		if bracket.Quantity < 0 {
			t.Fatalf("negative taxed quantity: %.2f", bracket.Quantity)
		}
	}
	assertBreakdownIdentity(t, b)
}

func TestEngine_LargeConsumerGetsBracketsAndNoNetworkFee(t *testing.T) {
	engine := NewEngine()
	b, ok, err := engine.Calculate(Input{
		Profile: ConsumptionProfile{Combined: 60000, SingleRate: true, CapacityElectricity: "3x160A"},
		Contract: ContractDefinition{
			ID:    "zakelijk-1",
			Model: ModelFixed,
			Fixed: &FixedRates{Single: Float(0.20)},
		},
		Customer: businessPtr(),
	})
	if err != nil || !ok {
		t.Fatalf("expected breakdown, got ok=%v err=%v", ok, err)
	}
	if !b.NetworkSubtotal.IsZero() || !b.NetworkZeroed {
		t.Fatalf("expected zeroed network fee, got %s", b.NetworkSubtotal.StringFixed(2))
	}
	if len(b.Tax.Brackets) != 4 {
		t.Fatalf("expected 4 tax brackets, got %d", len(b.Tax.Brackets))
	}
	if !b.Tax.Reduction.IsZero() {
		t.Fatalf("expected no reduction for large consumer")
	}
	if !b.Monthly(CustomerBusiness).Equal(b.MonthlyExclVat) {
		t.Fatalf("expected business figure to be exclusive of VAT")
	}
	assertBreakdownIdentity(t, b)
}

func TestEngine_ExcludedContractProducesNoBreakdown(t *testing.T) {
	observer := newRecordingObserver()
	engine := NewEngine(WithFallbackObserver(observer))

	_, ok, err := engine.Calculate(Input{
		Profile: ConsumptionProfile{Combined: 9999, SingleRate: true},
		Contract: ContractDefinition{
			ID:             "maatwerk-1",
			Model:          ModelNegotiated,
			Negotiated:     &FixedRates{Single: Float(0.20)},
			MinElectricity: Float(10000),
		},
		Customer: businessPtr(),
	})
	if err != nil {
		t.Fatalf("exclusion must not be an error, got %v", err)
	}
	if ok {
		t.Fatalf("expected contract to be excluded")
	}
	if observer.excluded["maatwerk-1"] != ExcludedMinimumUsage {
		t.Fatalf("expected minimum-usage exclusion, got %q", observer.excluded["maatwerk-1"])
	}
}

func TestEngine_CombinedReadingIsBilledWhenDualReadingsAlsoSet(t *testing.T) {
	engine := NewEngine()
	in := Input{
		Profile: ConsumptionProfile{Combined: 3500, Peak: 1000, SingleRate: true, CapacityElectricity: "3x25A"},
		Contract: ContractDefinition{
			ID:                         "vast-1",
			Model:                      ModelFixed,
			Fixed:                      &FixedRates{Single: Float(0.25)},
			StandingElectricityMonthly: Float(5),
		},
		Customer: consumerPtr(),
	}
	b, ok, err := engine.Calculate(in)
	if err != nil || !ok {
		t.Fatalf("expected breakdown, got ok=%v err=%v", ok, err)
	}
	if got := b.TotalInclVat.StringFixed(2); got != "1446.48" {
		t.Fatalf("expected the combined 3500 kWh to be billed (1446.48), got %s", got)
	}
}

func TestEngine_LargeGasConnectionKeepsElectricityFeeAndReduction(t *testing.T) {
	engine := NewEngine()
	b, ok, err := engine.Calculate(Input{
		Profile: ConsumptionProfile{
			Combined:            3500,
			SingleRate:          true,
			Gas:                 Float(30000),
			CapacityElectricity: "3x25A",
			CapacityGas:         "G40",
		},
		Contract: ContractDefinition{
			ID:    "gemengd-1",
			Model: ModelFixed,
			Fixed: &FixedRates{Single: Float(0.25), Gas: Float(1.10)},
		},
		Customer: businessPtr(),
	})
	if err != nil || !ok {
		t.Fatalf("expected breakdown, got ok=%v err=%v", ok, err)
	}
	if got := b.Network.ElectricityFee.StringFixed(2); got != "430.00" {
		t.Fatalf("expected electricity network fee 430.00, got %s", got)
	}
	if !b.Network.GasFee.IsZero() || !b.Network.GasZeroed || b.Network.ElectricityZeroed {
		t.Fatalf("expected only the gas fee zeroed, got %+v", b.Network)
	}
	if b.Tax.Reduction.IsZero() {
		t.Fatalf("expected the electricity tax reduction to apply")
	}
	if len(b.Tax.Brackets) != 1 {
		t.Fatalf("expected the small-consumer schedule, got %d brackets", len(b.Tax.Brackets))
	}
	if b.CapacityClass != CapacityLarge || !b.NetworkZeroed {
		t.Fatalf("expected large-consumer profile flagged, got %s zeroed=%v", b.CapacityClass, b.NetworkZeroed)
	}
	assertBreakdownIdentity(t, b)
}

func TestEngine_DegradesOnMissingCustomerAndMarket(t *testing.T) {
	observer := newRecordingObserver()
	engine := NewEngine(WithFallbackObserver(observer))

	b, ok, err := engine.Calculate(Input{
		Profile: ConsumptionProfile{Peak: 2000, OffPeak: 1000},
		Contract: ContractDefinition{
			ID:      "dynamisch-1",
			Model:   ModelDynamic,
			Dynamic: &DynamicRates{ElectricityMarkup: 0.02},
		},
	})
	if err != nil || !ok {
		t.Fatalf("expected breakdown, got ok=%v err=%v", ok, err)
	}
	if b.Customer != CustomerConsumer {
		t.Fatalf("expected consumer default, got %s", b.Customer)
	}
	if !b.MarketPriceDefaulted || !b.DerivedViaFallback {
		t.Fatalf("expected market default to be flagged, got %+v", b.Fallbacks)
	}
	if len(observer.fallbacks["dynamisch-1"]) != 2 {
		t.Fatalf("expected 2 fallbacks reported, got %v", observer.fallbacks["dynamisch-1"])
	}
}

func TestEngine_ReferenceSavings(t *testing.T) {
	engine := NewEngine()
	ref := decimal.RequireFromString("150.00")
	b, _, err := engine.Calculate(Input{
		Profile: ConsumptionProfile{Combined: 3500, SingleRate: true},
		Contract: ContractDefinition{
			ID:                         "vast-1",
			Model:                      ModelFixed,
			Fixed:                      &FixedRates{Single: Float(0.25)},
			StandingElectricityMonthly: Float(5),
		},
		Customer:         consumerPtr(),
		ReferenceMonthly: &ref,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Savings.Heuristic {
		t.Fatalf("expected reference-based savings")
	}
	if got := b.Savings.Monthly.StringFixed(2); got != "29.46" {
		t.Fatalf("expected savings 29.46, got %s", got)
	}
	if got := b.Savings.Annual.StringFixed(2); got != "353.52" {
		t.Fatalf("expected annual savings 353.52, got %s", got)
	}

	cheap := decimal.RequireFromString("50.00")
	s := EstimateSavings(b, &cheap, ConsumptionProfile{}, CustomerConsumer)
	if !s.Monthly.IsZero() {
		t.Fatalf("expected savings clamped at 0, got %s", s.Monthly.StringFixed(2))
	}
}

func TestEngine_RejectsInvalidInput(t *testing.T) {
	engine := NewEngine()

	_, _, err := engine.Calculate(Input{Profile: ConsumptionProfile{Peak: -10}, Contract: ContractDefinition{Model: ModelFixed}})
	if !errors.Is(err, ErrNegativeConsumption) {
		t.Fatalf("expected negative consumption error, got %v", err)
	}

	_, _, err = engine.Calculate(Input{Profile: ConsumptionProfile{Peak: 10}, Contract: ContractDefinition{Model: "spot"}})
	if !errors.Is(err, ErrUnknownPricingModel) {
		t.Fatalf("expected unknown model error, got %v", err)
	}
}

func TestEngine_ConcurrentUseIsSafe(t *testing.T) {
	engine := NewEngine()
	contract := ContractDefinition{ID: "vast-1", Model: ModelFixed, Fixed: &FixedRates{Single: Float(0.25)}}

	var wg sync.WaitGroup
	results := make([]decimal.Decimal, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, _, _ := engine.Calculate(Input{Profile: ConsumptionProfile{Combined: 3500, SingleRate: true}, Contract: contract, Customer: consumerPtr()})
			results[i] = b.TotalInclVat
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if !results[i].Equal(results[0]) {
			t.Fatalf("result %d differs: %s vs %s", i, results[i], results[0])
		}
	}
}

func TestContractDefinition_Validate(t *testing.T) {
	cases := []struct {
		name string
		c    ContractDefinition
		want error
	}{
		{"fixed ok", ContractDefinition{Model: ModelFixed, Fixed: &FixedRates{}}, nil},
		{"dynamic ok", ContractDefinition{Model: ModelDynamic, Dynamic: &DynamicRates{}}, nil},
		{"unknown model", ContractDefinition{Model: "x"}, ErrUnknownPricingModel},
		{"missing set", ContractDefinition{Model: ModelNegotiated}, ErrNoRateSet},
		{"wrong set", ContractDefinition{Model: ModelDynamic, Fixed: &FixedRates{}}, ErrNoRateSet},
		{"two sets", ContractDefinition{Model: ModelFixed, Fixed: &FixedRates{}, Dynamic: &DynamicRates{}}, ErrMultipleRateSets},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.c.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
