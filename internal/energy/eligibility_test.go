package energy

import "testing"

func negotiatedContract() ContractDefinition {
	return ContractDefinition{
		ID:         "maatwerk-1",
		Model:      ModelNegotiated,
		Negotiated: &FixedRates{Single: Float(0.22), Gas: Float(0.95)},
		Audience:   AudienceBoth,
	}
}

func TestIsEligible_MinimumElectricityExcludesBelowThreshold(t *testing.T) {
	c := negotiatedContract()
	c.MinElectricity = Float(10000)

	p := ConsumptionProfile{Combined: 9999, SingleRate: true}
	if IsEligible(c, p, CapacitySmall, CustomerBusiness) {
		t.Fatalf("expected contract to be excluded at 9999 kWh")
	}

	p.Combined = 10000
	if !IsEligible(c, p, CapacitySmall, CustomerBusiness) {
		t.Fatalf("expected contract to be eligible at 10000 kWh")
	}
}

func TestIsEligible_ThresholdsAreAlternatives(t *testing.T) {
	c := negotiatedContract()
	c.MinElectricity = Float(10000)
	c.MinGas = Float(5000)

	p := ConsumptionProfile{Combined: 4000, SingleRate: true, Gas: Float(6000)}
	if !IsEligible(c, p, CapacitySmall, CustomerBusiness) {
		t.Fatalf("expected gas threshold to qualify")
	}

	p.Gas = Float(4999)
	if IsEligible(c, p, CapacitySmall, CustomerBusiness) {
		t.Fatalf("expected exclusion when neither threshold is met")
	}
}

func TestIsEligible_GasThresholdRequiresGas(t *testing.T) {
	c := negotiatedContract()
	c.MinGas = Float(0)

	p := ConsumptionProfile{Combined: 4000, SingleRate: true}
	if IsEligible(c, p, CapacitySmall, CustomerConsumer) {
		t.Fatalf("expected exclusion without gas connection")
	}
}

func TestIsEligible_ThresholdsOnlyApplyToNegotiated(t *testing.T) {
	c := ContractDefinition{Model: ModelFixed, Fixed: &FixedRates{Single: Float(0.25)}, MinElectricity: Float(10000)}
	p := ConsumptionProfile{Combined: 3000, SingleRate: true}
	if !IsEligible(c, p, CapacitySmall, CustomerConsumer) {
		t.Fatalf("expected fixed contract to ignore minimum usage")
	}
}

func TestCheckEligibility_AudienceAndSegment(t *testing.T) {
	p := ConsumptionProfile{Combined: 3000, SingleRate: true}

	c := negotiatedContract()
	c.Audience = AudienceBusiness
	if ok, reason := CheckEligibility(c, p, CapacitySmall, CustomerConsumer); ok || reason != ExcludedAudience {
		t.Fatalf("expected audience exclusion, got ok=%v reason=%q", ok, reason)
	}

	c.Audience = AudienceBoth
	c.ConsumptionSegment = SegmentLarge
	if ok, reason := CheckEligibility(c, p, CapacitySmall, CustomerConsumer); ok || reason != ExcludedSegment {
		t.Fatalf("expected segment exclusion, got ok=%v reason=%q", ok, reason)
	}

	c.ConsumptionSegment = SegmentAny
	if ok, _ := CheckEligibility(c, p, CapacitySmall, CustomerConsumer); !ok {
		t.Fatalf("expected contract to be eligible")
	}
}

func TestCheckEligibility_FeedInVisibility(t *testing.T) {
	withSolar := ConsumptionProfile{Combined: 3000, SingleRate: true, FeedIn: Float(2000)}
	withoutSolar := ConsumptionProfile{Combined: 3000, SingleRate: true}

	onlyWithFeedIn := ContractDefinition{Model: ModelFixed, Fixed: &FixedRates{Single: Float(0.25)}, VisibleWithFeedIn: boolPtr(true)}
	if IsEligible(onlyWithFeedIn, withoutSolar, CapacitySmall, CustomerConsumer) {
		t.Fatalf("expected feed-in-only contract hidden without feed-in")
	}
	if !IsEligible(onlyWithFeedIn, withSolar, CapacitySmall, CustomerConsumer) {
		t.Fatalf("expected feed-in-only contract shown with feed-in")
	}

	onlyWithout := onlyWithFeedIn
	onlyWithout.VisibleWithFeedIn = boolPtr(false)
	if IsEligible(onlyWithout, withSolar, CapacitySmall, CustomerConsumer) {
		t.Fatalf("expected contract hidden with feed-in")
	}
}

func boolPtr(v bool) *bool {
	return &v
}
