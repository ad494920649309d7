package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"energiebroker_backend/internal/comparison/transport"
	contracts "energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/internal/events"
	"energiebroker_backend/platform/apperr"
	"energiebroker_backend/platform/logger"
	"energiebroker_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

var (
	referenceID = uuid.MustParse("6f1c2a4e-0a7b-4c1d-9e3f-1b2c3d4e5f60")
	testNow     = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
)

func fixedContract(id, name string, single float64, recommended bool) energy.ContractDefinition {
	return energy.ContractDefinition{
		ID:                         id,
		Name:                       name,
		Supplier:                   "Test Energie",
		Model:                      energy.ModelFixed,
		Fixed:                      &energy.FixedRates{Single: energy.Float(single)},
		StandingElectricityMonthly: energy.Float(5),
		ConsumptionSegment:         energy.SegmentAny,
		Audience:                   energy.AudienceBoth,
		Recommended:                recommended,
	}
}

type stubCatalog struct {
	defs []energy.ContractDefinition
}

func (c *stubCatalog) ActiveDefinitions(context.Context) ([]energy.ContractDefinition, error) {
	return c.defs, nil
}

func (c *stubCatalog) Definition(_ context.Context, id uuid.UUID) (energy.ContractDefinition, error) {
	for _, d := range c.defs {
		if d.ID == id.String() {
			return d, nil
		}
	}
	return energy.ContractDefinition{}, apperr.NotFound("contract not found")
}

type countingMarket struct {
	mu    sync.Mutex
	price *energy.MarketPrice
	calls int
}

func (m *countingMarket) MarketPrice(context.Context) *energy.MarketPrice {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.price
}

type stubClassifier struct {
	addressType string
}

func (c stubClassifier) ClassifyAddress(context.Context, string, string) (string, error) {
	return c.addressType, nil
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("production", io.Discard)
}

func newTestService(catalog ContractSource, opts ...Option) *Service {
	opts = append(opts, WithClock(func() time.Time { return testNow }))
	return New(energy.NewEngine(), catalog, testLogger(), opts...)
}

func singleRateProfile(kwh float64) transport.ProfileRequest {
	return transport.ProfileRequest{
		Combined:            energy.Float(kwh),
		SingleRate:          true,
		CapacityElectricity: "3x25A",
	}
}

func catalogWithReference() *stubCatalog {
	negotiated := energy.ContractDefinition{
		ID:                 "negotiated",
		Name:               "Maatwerk",
		Model:              energy.ModelNegotiated,
		Negotiated:         &energy.FixedRates{Single: energy.Float(0.10)},
		MinElectricity:     energy.Float(10000),
		ConsumptionSegment: energy.SegmentAny,
		Audience:           energy.AudienceBoth,
	}
	return &stubCatalog{defs: []energy.ContractDefinition{
		fixedContract(referenceID.String(), "Standaard", 0.25, false),
		fixedContract("cheap", "Voordeel", 0.24, false),
		negotiated,
		fixedContract("recommended", "Aanrader", 0.25, true),
	}}
}

func TestCompare_RanksAndExcludes(t *testing.T) {
	svc := newTestService(catalogWithReference(), WithReferenceContract(referenceID), WithWorkers(2))

	cmp, err := svc.Compare(context.Background(), transport.CompareRequest{
		Profile:  singleRateProfile(3500),
		Customer: transport.Customer{CustomerClass: "consumer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cmp.Excluded != 1 || len(cmp.Entries) != 3 {
		t.Fatalf("expected 3 entries and 1 exclusion, got %d / %d", len(cmp.Entries), cmp.Excluded)
	}
	order := []string{cmp.Entries[0].Contract.Name, cmp.Entries[1].Contract.Name, cmp.Entries[2].Contract.Name}
	if order[0] != "Voordeel" || order[1] != "Aanrader" || order[2] != "Standaard" {
		t.Fatalf("unexpected ranking %v", order)
	}

	standaard := cmp.Entries[2].Breakdown
	if !standaard.TotalInclVat.Equal(decimal.RequireFromString("1446.48")) {
		t.Fatalf("expected 1446.48 incl. VAT, got %s", standaard.TotalInclVat)
	}
	cheapest := cmp.Entries[0].Breakdown
	if cheapest.Savings.Heuristic {
		t.Fatalf("expected savings against the reference contract")
	}
	if !cheapest.Savings.ReferenceMonthly.Equal(standaard.MonthlyInclVat) {
		t.Fatalf("expected reference %s, got %s", standaard.MonthlyInclVat, cheapest.Savings.ReferenceMonthly)
	}
	wantSavings := standaard.MonthlyInclVat.Sub(cheapest.MonthlyInclVat)
	if !cheapest.Savings.Monthly.Equal(wantSavings) {
		t.Fatalf("expected monthly savings %s, got %s", wantSavings, cheapest.Savings.Monthly)
	}
	if !standaard.Savings.Monthly.IsZero() {
		t.Fatalf("reference contract must not save against itself, got %s", standaard.Savings.Monthly)
	}
}

func TestCompare_HeuristicWithoutReference(t *testing.T) {
	svc := newTestService(catalogWithReference())

	cmp, err := svc.Compare(context.Background(), transport.CompareRequest{Profile: singleRateProfile(3500)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.CustomerDefaulted || cmp.Customer != energy.CustomerConsumer {
		t.Fatalf("expected defaulted consumer, got %s (%v)", cmp.Customer, cmp.CustomerDefaulted)
	}
	for _, e := range cmp.Entries {
		if !e.Breakdown.Savings.Heuristic {
			t.Fatalf("expected heuristic savings for %s", e.Contract.Name)
		}
	}
}

func TestCompare_FiltersModelAndLimits(t *testing.T) {
	svc := newTestService(catalogWithReference())

	cmp, err := svc.Compare(context.Background(), transport.CompareRequest{
		Profile: singleRateProfile(3500),
		Model:   "fixed",
		Limit:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmp.Entries) != 1 || cmp.Entries[0].Contract.Name != "Voordeel" || cmp.Excluded != 0 {
		t.Fatalf("unexpected result %+v", cmp.Entries)
	}
}

func TestCompare_ClassifierDecidesBusiness(t *testing.T) {
	svc := newTestService(catalogWithReference(), WithAddressClassifier(stubClassifier{addressType: "commercial"}))

	profile := singleRateProfile(3500)
	profile.PostalCode = "1012AB"
	profile.HouseNumber = "1"
	cmp, err := svc.Compare(context.Background(), transport.CompareRequest{Profile: profile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp.Customer != energy.CustomerBusiness || cmp.CustomerDefaulted {
		t.Fatalf("expected business customer, got %s", cmp.Customer)
	}
	for _, e := range cmp.Entries {
		if e.Breakdown.Customer != energy.CustomerBusiness {
			t.Fatalf("expected business breakdowns")
		}
	}
}

func TestCompare_InvalidProfile(t *testing.T) {
	svc := newTestService(catalogWithReference())
	_, err := svc.Compare(context.Background(), transport.CompareRequest{
		Profile: transport.ProfileRequest{Combined: energy.Float(-1)},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompare_ReportsMetrics(t *testing.T) {
	m := metrics.New(nil)
	engine := energy.NewEngine(energy.WithFallbackObserver(NewObserver(m, testLogger())))
	svc := New(engine, catalogWithReference(), testLogger(), WithDurationRecorder(m))

	if _, err := svc.Compare(context.Background(), transport.CompareRequest{
		Profile:  singleRateProfile(3500),
		Customer: transport.Customer{CustomerClass: "consumer"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(m.BreakdownsTotal.WithLabelValues("fixed", "false")); got != 3 {
		t.Fatalf("expected 3 fixed breakdowns, got %v", got)
	}
	if got := testutil.ToFloat64(m.ContractsExcludedTotal.WithLabelValues(energy.ExcludedMinimumUsage)); got != 1 {
		t.Fatalf("expected 1 exclusion, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "energiebroker_comparison_duration_seconds_count 1") {
		t.Fatalf("expected one comparison duration observation")
	}
}

func TestMarketPrice_UsesRefreshedEvent(t *testing.T) {
	market := &countingMarket{price: &energy.MarketPrice{ElectricityDay: 0.5, ElectricityNight: 0.5, Gas: 1, Source: "db"}}
	svc := newTestService(&stubCatalog{}, WithMarket(market))

	bus := events.NewInMemoryBus(testLogger())
	svc.Subscribe(bus)
	if err := bus.PublishSync(context.Background(), events.MarketPricesRefreshed{
		BaseEvent:        events.NewBaseEvent(),
		Date:             time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ElectricityDay:   0.12,
		ElectricityNight: 0.08,
		Gas:              0.60,
		Source:           "ENERGYZERO",
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	price := svc.marketPrice(context.Background())
	if price == nil || price.ElectricityDay != 0.12 || price.Source != "ENERGYZERO" {
		t.Fatalf("expected refreshed price, got %+v", price)
	}
	if market.calls != 0 {
		t.Fatalf("expected no market lookup, got %d", market.calls)
	}
}

func TestMarketPrice_RemembersFreshLookups(t *testing.T) {
	market := &countingMarket{price: &energy.MarketPrice{ElectricityDay: 0.2, ElectricityNight: 0.1, Gas: 0.7, Source: "ENERGYZERO"}}
	svc := newTestService(&stubCatalog{}, WithMarket(market))

	svc.marketPrice(context.Background())
	svc.marketPrice(context.Background())
	if market.calls != 1 {
		t.Fatalf("expected one lookup, got %d", market.calls)
	}

	market.price = &energy.MarketPrice{Source: "ENERGYZERO_STALE", Stale: true}
	stale := newTestService(&stubCatalog{}, WithMarket(market))
	stale.marketPrice(context.Background())
	stale.marketPrice(context.Background())
	if market.calls != 3 {
		t.Fatalf("stale prices must not be remembered, got %d lookups", market.calls)
	}
}

func TestCalculate_Inline(t *testing.T) {
	svc := newTestService(&stubCatalog{})

	resp, err := svc.Calculate(context.Background(), transport.CalculationRequest{
		Profile: singleRateProfile(3500),
		Contract: contracts.ContractTerms{
			Model:                      "fixed",
			Rates:                      &contracts.Rates{Single: energy.Float(0.25)},
			StandingElectricityMonthly: energy.Float(5),
		},
		Customer: transport.Customer{CustomerClass: "consumer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalInclVat != 1446.48 || resp.MonthlyInclVat != 120.54 || resp.Monthly != 120.54 {
		t.Fatalf("unexpected totals %+v", resp)
	}
	if !resp.Savings.Heuristic || resp.Savings.Monthly != 39.46 {
		t.Fatalf("expected heuristic savings 39.46, got %+v", resp.Savings)
	}
}

func TestCalculate_DynamicWithRequestPrice(t *testing.T) {
	svc := newTestService(&stubCatalog{})

	resp, err := svc.Calculate(context.Background(), transport.CalculationRequest{
		Profile: singleRateProfile(3500),
		Contract: contracts.ContractTerms{
			Model:   "dynamic",
			Markups: &contracts.Markups{Electricity: 0.02},
		},
		MarketPrice: &transport.MarketPriceInput{ElectricityDay: energy.Float(0.10), ElectricityNight: energy.Float(0.10), Gas: energy.Float(0.6)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.MarketPriceDefaulted {
		t.Fatalf("request market price must be used")
	}
	if resp.Customer != "consumer" || !resp.DerivedViaFallback {
		t.Fatalf("expected defaulted consumer class flagged, got %+v", resp)
	}
}

func TestCalculate_NegativeRequestPriceReachesDynamicLines(t *testing.T) {
	svc := newTestService(&stubCatalog{})

	resp, err := svc.Calculate(context.Background(), transport.CalculationRequest{
		Profile: singleRateProfile(3500),
		Contract: contracts.ContractTerms{
			Model:   "dynamic",
			Markups: &contracts.Markups{Electricity: 0.02},
		},
		Customer:    transport.Customer{CustomerClass: "consumer"},
		MarketPrice: &transport.MarketPriceInput{ElectricityDay: energy.Float(-0.05), ElectricityNight: energy.Float(-0.03), Gas: energy.Float(0.5)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.MarketPriceDefaulted {
		t.Fatalf("negative request prices must not be replaced by defaults")
	}
	for _, l := range resp.Lines {
		if l.Code == "electricity_single" {
			if l.Amount != -70 {
				t.Fatalf("expected electricity amount -70, got %v", l.Amount)
			}
			return
		}
	}
	t.Fatalf("expected an electricity_single line, got %+v", resp.Lines)
}

func TestCalculate_Rejections(t *testing.T) {
	svc := newTestService(&stubCatalog{})

	_, err := svc.Calculate(context.Background(), transport.CalculationRequest{
		Profile:  singleRateProfile(3500),
		Contract: contracts.ContractTerms{Model: "fixed"},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing rates, got %v", err)
	}

	_, err = svc.Calculate(context.Background(), transport.CalculationRequest{
		Profile: singleRateProfile(9999),
		Contract: contracts.ContractTerms{
			Model:          "negotiated",
			Rates:          &contracts.Rates{Single: energy.Float(0.2)},
			MinElectricity: energy.Float(10000),
		},
	})
	var details map[string]string
	if e, ok := err.(*apperr.Error); ok {
		details, _ = e.Details.(map[string]string)
	}
	if details["reason"] != energy.ExcludedMinimumUsage {
		t.Fatalf("expected minimum usage rejection, got %v", err)
	}
}

func TestRank_BusinessUsesExclusiveTotals(t *testing.T) {
	entries := []transport.Entry{
		{
			Contract: energy.ContractDefinition{Name: "A"},
			Breakdown: energy.CostBreakdown{
				TotalExclVat: decimal.NewFromInt(100),
				TotalInclVat: decimal.NewFromInt(130),
			},
		},
		{
			Contract: energy.ContractDefinition{Name: "B"},
			Breakdown: energy.CostBreakdown{
				TotalExclVat: decimal.NewFromInt(110),
				TotalInclVat: decimal.NewFromInt(120),
			},
		},
	}

	Rank(entries, energy.CustomerBusiness)
	if entries[0].Contract.Name != "A" {
		t.Fatalf("business ranking must use exclusive totals")
	}
	Rank(entries, energy.CustomerConsumer)
	if entries[0].Contract.Name != "B" {
		t.Fatalf("consumer ranking must use inclusive totals")
	}
}
