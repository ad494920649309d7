package energy

import "testing"

func TestComputeTax_SmallConsumerBlendedRateWithReduction(t *testing.T) {
	res := ComputeTax(3500, 1200, CapacitySmall, SmallConsumerSchedule())

	if got := res.ElectricityTax.StringFixed(2); got != "355.39" {
		t.Fatalf("expected electricity tax 355.39, got %s", got)
	}
	if got := res.GasTax.StringFixed(2); got != "693.79" {
		t.Fatalf("expected gas tax 693.79, got %s", got)
	}
	if got := res.Reduction.StringFixed(2); got != "524.95" {
		t.Fatalf("expected reduction 524.95, got %s", got)
	}
	if got := res.NetTax.StringFixed(2); got != "524.23" {
		t.Fatalf("expected net tax 524.23, got %s", got)
	}
	if len(res.Brackets) != 1 {
		t.Fatalf("expected 1 bracket detail, got %d", len(res.Brackets))
	}
}

func TestComputeTax_ReductionMayMakeNetTaxNegative(t *testing.T) {
	res := ComputeTax(1000, 0, CapacitySmall, SmallConsumerSchedule())
	if !res.NetTax.IsNegative() {
		t.Fatalf("expected negative net tax, got %s", res.NetTax.StringFixed(2))
	}
	if got := res.NetTax.StringFixed(2); got != "-423.41" {
		t.Fatalf("expected -423.41, got %s", got)
	}
}

func TestComputeTax_LargeConsumerWalksBrackets(t *testing.T) {
	res := ComputeTax(60000, 0, CapacityLarge, LargeConsumerSchedule())

	if len(res.Brackets) != 4 {
		t.Fatalf("expected 4 bracket details, got %d", len(res.Brackets))
	}
	want := []struct {
		quantity float64
		amount   string
	}{
		{2900, "294.47"},
		{7100, "720.93"},
		{40000, "2774.80"},
		{10000, "386.80"},
	}
	for i, w := range want {
		if res.Brackets[i].Quantity != w.quantity {
			t.Fatalf("bracket %d: expected quantity %.0f, got %.0f", i, w.quantity, res.Brackets[i].Quantity)
		}
		if got := res.Brackets[i].Amount.StringFixed(2); got != w.amount {
			t.Fatalf("bracket %d: expected amount %s, got %s", i, w.amount, got)
		}
	}
	if got := res.ElectricityTax.StringFixed(2); got != "4177.00" {
		t.Fatalf("expected electricity tax 4177.00, got %s", got)
	}
	if !res.Reduction.IsZero() {
		t.Fatalf("expected no reduction for large consumer, got %s", res.Reduction.StringFixed(2))
	}
}

func TestComputeTax_StopsAtConsumptionInsideBracket(t *testing.T) {
	res := ComputeTax(5000, 0, CapacityLarge, LargeConsumerSchedule())
	if len(res.Brackets) != 2 {
		t.Fatalf("expected 2 bracket details, got %d", len(res.Brackets))
	}
	if res.Brackets[1].Quantity != 2100 {
		t.Fatalf("expected 2100 kWh in second bracket, got %.0f", res.Brackets[1].Quantity)
	}
}

func TestComputeTax_IsMonotonicInConsumption(t *testing.T) {
	for _, schedule := range []TaxSchedule{SmallConsumerSchedule(), LargeConsumerSchedule()} {
		prev := ComputeTax(0, 0, CapacityLarge, schedule).NetTax
		for kwh := 137.0; kwh <= 80000; kwh += 137 {
			cur := ComputeTax(kwh, 0, CapacityLarge, schedule).NetTax
			if cur.LessThan(prev) {
				t.Fatalf("tax decreased at %.0f kWh: %s < %s", kwh, cur.StringFixed(2), prev.StringFixed(2))
			}
			prev = cur
		}
	}
}

func TestComputeTax_LevyIsAddedWhenConfigured(t *testing.T) {
	schedule := SmallConsumerSchedule()
	schedule.Levy = Levy{Electricity: 0.01, Gas: 0.02}

	res := ComputeTax(1000, 500, CapacitySmall, schedule)
	if got := res.Levy.StringFixed(2); got != "20.00" {
		t.Fatalf("expected levy 20.00, got %s", got)
	}
}

func TestTaxSchedule_Validate(t *testing.T) {
	cases := []struct {
		name     string
		schedule TaxSchedule
		wantErr  bool
	}{
		{name: "small default", schedule: SmallConsumerSchedule()},
		{name: "large default", schedule: LargeConsumerSchedule()},
		{name: "empty", schedule: TaxSchedule{}, wantErr: true},
		{name: "bounded last", schedule: TaxSchedule{Brackets: []TaxBracket{{UpTo: 1000, Rate: 0.1}}}, wantErr: true},
		{name: "not increasing", schedule: TaxSchedule{Brackets: []TaxBracket{{UpTo: 1000, Rate: 0.1}, {UpTo: 1000, Rate: 0.1}, {Rate: 0.1}}}, wantErr: true},
		{name: "negative rate", schedule: TaxSchedule{Brackets: []TaxBracket{{Rate: -0.1}}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schedule.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
