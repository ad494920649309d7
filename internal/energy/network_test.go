package energy

import "testing"

func TestClassifyElectricity(t *testing.T) {
	cases := map[string]CapacityClass{
		"3x25A":          CapacitySmall,
		"1x40A":          CapacitySmall,
		"3 x 80 A":       CapacitySmall,
		"3x100A":         CapacityLarge,
		"3X250A":         CapacityLarge,
		"middenspanning": CapacityLarge,
		"":               CapacitySmall,
		"onbekend":       CapacitySmall,
	}
	for capacity, want := range cases {
		if got := ClassifyElectricity(capacity); got != want {
			t.Errorf("ClassifyElectricity(%q): expected %s, got %s", capacity, want, got)
		}
	}
}

func TestClassifyGas(t *testing.T) {
	cases := map[string]CapacityClass{
		"G4":        CapacitySmall,
		"G6_midden": CapacitySmall,
		"G25":       CapacitySmall,
		"G40":       CapacityLarge,
		"g100":      CapacityLarge,
		"":          CapacitySmall,
		"G?":        CapacitySmall,
	}
	for capacity, want := range cases {
		if got := ClassifyGas(capacity); got != want {
			t.Errorf("ClassifyGas(%q): expected %s, got %s", capacity, want, got)
		}
	}
}

func TestClassify_LargeWhenEitherCarrierIsLarge(t *testing.T) {
	if got := Classify("3x25A", "G40"); got != CapacityLarge {
		t.Fatalf("expected large-consumer, got %s", got)
	}
	if got := Classify("3x160A", "G6"); got != CapacityLarge {
		t.Fatalf("expected large-consumer, got %s", got)
	}
	if got := Classify("3x25A", "G6"); got != CapacitySmall {
		t.Fatalf("expected small-consumer, got %s", got)
	}
}

func TestResolveNetworkFee_SmallConsumer(t *testing.T) {
	res := ResolveNetworkFee("3x25A", "G6", true, DefaultNetworkFees())
	if got := res.Total().StringFixed(2); got != "675.00" {
		t.Fatalf("expected 675.00, got %s", got)
	}
	if res.Zeroed() {
		t.Fatalf("expected fee not zeroed")
	}
}

func TestResolveNetworkFee_NoGasFeeWithoutGas(t *testing.T) {
	res := ResolveNetworkFee("3x25A", "", false, DefaultNetworkFees())
	if got := res.Total().StringFixed(2); got != "430.00" {
		t.Fatalf("expected 430.00, got %s", got)
	}
}

func TestResolveNetworkFee_LargeConsumerIsZeroed(t *testing.T) {
	for _, capacity := range []string{"3x100A", "3x630A", "hoogspanning"} {
		res := ResolveNetworkFee(capacity, "G6", true, DefaultNetworkFees())
		if !res.Total().IsZero() {
			t.Fatalf("%s: expected zero network fee, got %s", capacity, res.Total().StringFixed(2))
		}
		if !res.ElectricityZeroed || res.CapacityClass != CapacityLarge {
			t.Fatalf("%s: expected zeroed large-consumer flag, got zeroed=%v class=%s", capacity, res.ElectricityZeroed, res.CapacityClass)
		}
	}
}

func TestResolveNetworkFee_ZeroesOnlyTheLargeCarrier(t *testing.T) {
	cases := []struct {
		name        string
		elec, gas   string
		wantElec    string
		wantGas     string
		elecZ, gasZ bool
	}{
		{name: "large gas", elec: "3x25A", gas: "G40", wantElec: "430.00", wantGas: "0.00", gasZ: true},
		{name: "large electricity", elec: "3x160A", gas: "G6", wantElec: "0.00", wantGas: "245.00", elecZ: true},
		{name: "both large", elec: "3x160A", gas: "G100", wantElec: "0.00", wantGas: "0.00", elecZ: true, gasZ: true},
	}
	for _, tc := range cases {
		res := ResolveNetworkFee(tc.elec, tc.gas, true, DefaultNetworkFees())
		if got := res.ElectricityFee.StringFixed(2); got != tc.wantElec {
			t.Errorf("%s: expected electricity fee %s, got %s", tc.name, tc.wantElec, got)
		}
		if got := res.GasFee.StringFixed(2); got != tc.wantGas {
			t.Errorf("%s: expected gas fee %s, got %s", tc.name, tc.wantGas, got)
		}
		if res.ElectricityZeroed != tc.elecZ || res.GasZeroed != tc.gasZ {
			t.Errorf("%s: expected zeroed %v/%v, got %v/%v", tc.name, tc.elecZ, tc.gasZ, res.ElectricityZeroed, res.GasZeroed)
		}
		if res.CapacityClass != CapacityLarge {
			t.Errorf("%s: expected large-consumer profile, got %s", tc.name, res.CapacityClass)
		}
	}
}

func TestEstimateCapacity(t *testing.T) {
	cases := []struct {
		kwh, m3  float64
		wantElec string
		wantGas  string
	}{
		{3000, 1200, "3x25A", "G6"},
		{12000, 0, "3x35A", ""},
		{25000, 8000, "3x50A", "G10"},
		{45000, 20000, "3x63A", "G16"},
		{90000, 40000, "3x80A", "G25"},
	}
	for _, tc := range cases {
		est := EstimateCapacity(tc.kwh, tc.m3)
		if est.Electricity != tc.wantElec || est.Gas != tc.wantGas {
			t.Errorf("EstimateCapacity(%.0f, %.0f): expected %s/%s, got %s/%s", tc.kwh, tc.m3, tc.wantElec, tc.wantGas, est.Electricity, est.Gas)
		}
	}
}
