package energy

import (
	"regexp"
	"strconv"
	"strings"
)

// CapacityClass is the regulatory connection class (kleinverbruik/grootverbruik).
type CapacityClass string

const (
	CapacitySmall CapacityClass = "small-consumer"
	CapacityLarge CapacityClass = "large-consumer"
)

// Connection capacities at or below the small-consumer ceiling (3x80A, G25).
var (
	smallElectricityCapacities = map[string]struct{}{
		"1X25A": {}, "1X35A": {}, "1X40A": {},
		"3X25A": {}, "3X35A": {}, "3X40A": {}, "3X50A": {}, "3X63A": {}, "3X80A": {},
	}
	smallGasCapacities = map[string]struct{}{
		"G4": {}, "G6": {}, "G6_LAAG": {}, "G6_MIDDEN": {}, "G6_HOOG": {},
		"G10": {}, "G16": {}, "G25": {},
	}
	highVoltageConnections = map[string]struct{}{
		"MS": {}, "MIDDENSPANNING": {}, "HS": {}, "HOOGSPANNING": {}, "TS": {}, "TRAFO": {},
	}

	electricityCapacityPattern = regexp.MustCompile(`^([13])X(\d+)A$`)
	gasCapacityPattern         = regexp.MustCompile(`^G(\d+)(_[A-Z]+)?$`)
)

const (
	smallElectricityMaxAmps = 80
	smallGasMaxRating       = 25
)

func normalizeCapacity(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "*", "X")
	s = strings.ReplaceAll(s, "×", "X")
	return s
}

// ClassifyElectricity classifies an electricity aansluitwaarde. Unknown strings are small-consumer.
func ClassifyElectricity(capacity string) CapacityClass {
	key := normalizeCapacity(capacity)
	if _, ok := highVoltageConnections[key]; ok {
		return CapacityLarge
	}
	m := electricityCapacityPattern.FindStringSubmatch(key)
	if m == nil {
		return CapacitySmall
	}
	amps, err := strconv.Atoi(m[2])
	if err != nil || amps <= smallElectricityMaxAmps {
		return CapacitySmall
	}
	return CapacityLarge
}

// ClassifyGas classifies a gas aansluitwaarde. Unknown strings are small-consumer.
func ClassifyGas(capacity string) CapacityClass {
	m := gasCapacityPattern.FindStringSubmatch(normalizeCapacity(capacity))
	if m == nil {
		return CapacitySmall
	}
	rating, err := strconv.Atoi(m[1])
	if err != nil || rating <= smallGasMaxRating {
		return CapacitySmall
	}
	return CapacityLarge
}

// IsKnownCapacity reports whether the capacity string is a recognised aansluitwaarde.
func IsKnownCapacity(capacity string) bool {
	key := normalizeCapacity(capacity)
	if _, ok := smallElectricityCapacities[key]; ok {
		return true
	}
	if _, ok := smallGasCapacities[key]; ok {
		return true
	}
	if _, ok := highVoltageConnections[key]; ok {
		return true
	}
	return electricityCapacityPattern.MatchString(key) || gasCapacityPattern.MatchString(key)
}

// Classify returns the overall class: large-consumer when either carrier is large.
func Classify(capacityElectricity, capacityGas string) CapacityClass {
	if ClassifyElectricity(capacityElectricity) == CapacityLarge || ClassifyGas(capacityGas) == CapacityLarge {
		return CapacityLarge
	}
	return CapacitySmall
}

// CapacityEstimate is a suggested aansluitwaarde for a consumption level.
type CapacityEstimate struct {
	Electricity string `json:"electricity"`
	Gas         string `json:"gas,omitempty"`
}

// EstimateCapacity suggests connection capacities from annual consumption when the customer
// does not know them.
func EstimateCapacity(electricityKwh, gasM3 float64) CapacityEstimate {
	var est CapacityEstimate
	switch {
	case electricityKwh <= 5000:
		est.Electricity = "3x25A"
	case electricityKwh <= 15000:
		est.Electricity = "3x35A"
	case electricityKwh <= 30000:
		est.Electricity = "3x50A"
	case electricityKwh <= 50000:
		est.Electricity = "3x63A"
	default:
		est.Electricity = "3x80A"
	}

	switch {
	case gasM3 <= 0:
	case gasM3 <= 2500:
		est.Gas = "G6"
	case gasM3 <= 10000:
		est.Gas = "G10"
	case gasM3 <= 25000:
		est.Gas = "G16"
	default:
		est.Gas = "G25"
	}
	return est
}
