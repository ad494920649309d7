package energy

// Exclusion reasons reported by CheckEligibility.
const (
	ExcludedFeedInVisibility = "feed_in_visibility"
	ExcludedAudience         = "audience"
	ExcludedSegment          = "consumption_segment"
	ExcludedMinimumUsage     = "minimum_usage"
)

// IsEligible reports whether a contract may be shown to the customer at all.
func IsEligible(c ContractDefinition, p ConsumptionProfile, class CapacityClass, customer CustomerClass) bool {
	ok, _ := CheckEligibility(c, p, class, customer)
	return ok
}

// CheckEligibility is IsEligible with the reason of the first failed check.
func CheckEligibility(c ContractDefinition, p ConsumptionProfile, class CapacityClass, customer CustomerClass) (bool, string) {
	if c.VisibleWithFeedIn != nil && *c.VisibleWithFeedIn != (p.FeedInKwh() > 0) {
		return false, ExcludedFeedInVisibility
	}

	switch c.Audience {
	case AudienceConsumer:
		if customer != CustomerConsumer {
			return false, ExcludedAudience
		}
	case AudienceBusiness:
		if customer != CustomerBusiness {
			return false, ExcludedAudience
		}
	}

	switch c.ConsumptionSegment {
	case SegmentSmall:
		if class != CapacitySmall {
			return false, ExcludedSegment
		}
	case SegmentLarge:
		if class != CapacityLarge {
			return false, ExcludedSegment
		}
	}

	if c.Model == ModelNegotiated && !meetsMinimumUsage(c, p) {
		return false, ExcludedMinimumUsage
	}
	return true, ""
}

// meetsMinimumUsage treats the electricity and gas thresholds as alternatives: meeting either
// one qualifies.
func meetsMinimumUsage(c ContractDefinition, p ConsumptionProfile) bool {
	if c.MinElectricity == nil && c.MinGas == nil {
		return true
	}
	if c.MinElectricity != nil && p.ElectricityTotal() >= *c.MinElectricity {
		return true
	}
	if c.MinGas != nil && p.HasGas() && p.GasM3() >= *c.MinGas {
		return true
	}
	return false
}
