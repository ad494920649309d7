package energy

import "github.com/shopspring/decimal"

// Heuristic reference used for display ranking when no reference contract is available.
const (
	heuristicElectricityRate = 0.35
	heuristicGasRate         = 1.5
	heuristicBaselineAnnual  = 700
)

// Savings compares a breakdown with a reference contract.
type Savings struct {
	Monthly          decimal.Decimal `json:"monthly"`
	Annual           decimal.Decimal `json:"annual"`
	ReferenceMonthly decimal.Decimal `json:"referenceMonthly"`
	// Heuristic marks a savings figure computed against the blended-rate estimate instead of a
	// real reference contract.
	Heuristic bool `json:"heuristic"`
}

// HeuristicReferenceMonthly estimates a standard contract's monthly cost from a blended average
// rate plus a fixed baseline, rounded to whole euros.
func HeuristicReferenceMonthly(p ConsumptionProfile) decimal.Decimal {
	annual := decimal.NewFromFloat(p.ElectricityTotal()).Mul(decimal.NewFromFloat(heuristicElectricityRate)).
		Add(decimal.NewFromFloat(p.GasM3()).Mul(decimal.NewFromFloat(heuristicGasRate))).
		Add(decimal.NewFromInt(heuristicBaselineAnnual))
	return annual.Div(twelve).Round(0)
}

// EstimateSavings returns max(0, reference − monthly) using the figure the customer class is
// quoted by. A nil reference falls back to HeuristicReferenceMonthly.
func EstimateSavings(b CostBreakdown, reference *decimal.Decimal, p ConsumptionProfile, customer CustomerClass) Savings {
	var s Savings
	if reference != nil {
		s.ReferenceMonthly = reference.Round(2)
	} else {
		s.ReferenceMonthly = HeuristicReferenceMonthly(p)
		s.Heuristic = true
	}

	diff := s.ReferenceMonthly.Sub(b.Monthly(customer))
	if diff.IsNegative() {
		diff = decimal.Zero
	}
	s.Monthly = diff.Round(2)
	s.Annual = s.Monthly.Mul(twelve)
	return s
}
