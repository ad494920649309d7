package energy

import (
	"math"
	"strings"
)

// Average household consumption by number of residents; index 0 is a single resident and the
// last entry covers six or more.
var (
	householdElectricityKwh = []float64{1800, 2700, 3300, 4000, 4700, 5400}
	householdGasM3          = []float64{800, 1100, 1300, 1500, 1650, 1800}

	dwellingGasFactor = map[string]float64{
		"apartment":     0.75,
		"terraced":      1.0,
		"semi-detached": 1.15,
		"detached":      1.35,
	}
)

const (
	solarUsageFactor = 1.05
	offPeakShare     = 0.35
)

// UsageEstimate is an estimated annual consumption for a household.
type UsageEstimate struct {
	Electricity float64 `json:"electricity"`
	Peak        float64 `json:"peak"`
	OffPeak     float64 `json:"offPeak"`
	Gas         float64 `json:"gas"`
}

// EstimateHouseholdUsage estimates annual consumption for a consumer who does not know their
// meter readings. Households with solar panels tend to consume slightly more.
func EstimateHouseholdUsage(residents int, hasSolar bool, dwelling string) UsageEstimate {
	idx := min(max(residents, 1), len(householdElectricityKwh)) - 1

	electricity := householdElectricityKwh[idx]
	if hasSolar {
		electricity *= solarUsageFactor
	}
	electricity = math.Round(electricity)

	factor, ok := dwellingGasFactor[strings.ToLower(strings.TrimSpace(dwelling))]
	if !ok {
		factor = 1.0
	}

	offPeak := math.Round(electricity * offPeakShare)
	return UsageEstimate{
		Electricity: electricity,
		Peak:        electricity - offPeak,
		OffPeak:     offPeak,
		Gas:         math.Round(householdGasM3[idx] * factor),
	}
}

// Address types returned by the address classification collaborator.
const (
	AddressResidential = "residential"
	AddressCommercial  = "commercial"
)

// ResolveCustomerClass decides the customer class from a contract that is restricted to one
// audience, or else from the address type. It returns nil when neither is decisive; the engine
// itself never guesses.
func ResolveCustomerClass(audience Audience, addressType string) *CustomerClass {
	var class CustomerClass
	switch {
	case audience == AudienceConsumer:
		class = CustomerConsumer
	case audience == AudienceBusiness:
		class = CustomerBusiness
	case strings.EqualFold(addressType, AddressResidential):
		class = CustomerConsumer
	case strings.EqualFold(addressType, AddressCommercial):
		class = CustomerBusiness
	default:
		return nil
	}
	return &class
}
