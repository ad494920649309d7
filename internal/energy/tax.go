package energy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxBracket is one slice of the electricity energy tax schedule.
type TaxBracket struct {
	// UpTo is the upper bound in kWh of this bracket; 0 means unbounded.
	UpTo float64 `mapstructure:"up_to" json:"upTo"`
	Rate float64 `mapstructure:"rate" json:"rate"`
}

// Levy is an additional per-unit surcharge (opslag duurzame energie); zero when abolished.
type Levy struct {
	Electricity float64 `mapstructure:"electricity" json:"electricity"`
	Gas         float64 `mapstructure:"gas" json:"gas"`
}

// TaxSchedule holds the energy tax (energiebelasting) parameters for one consumer class.
type TaxSchedule struct {
	Brackets  []TaxBracket `mapstructure:"brackets" json:"brackets"`
	GasRate   float64      `mapstructure:"gas_rate" json:"gasRate"`
	Reduction float64      `mapstructure:"reduction" json:"reduction"`
	Levy      Levy         `mapstructure:"levy" json:"levy"`
}

var (
	errNoBrackets        = errors.New("tax schedule has no brackets")
	errBoundedLastBucket = errors.New("final tax bracket must be unbounded")
)

// Validate checks that thresholds strictly increase and that the last bracket is unbounded.
func (s TaxSchedule) Validate() error {
	if len(s.Brackets) == 0 {
		return errNoBrackets
	}
	prev := 0.0
	for i, b := range s.Brackets {
		if b.Rate < 0 {
			return fmt.Errorf("tax bracket %d: negative rate", i)
		}
		last := i == len(s.Brackets)-1
		if last {
			if b.UpTo != 0 {
				return errBoundedLastBucket
			}
			continue
		}
		if b.UpTo <= prev {
			return fmt.Errorf("tax bracket %d: threshold %.0f does not exceed %.0f", i, b.UpTo, prev)
		}
		prev = b.UpTo
	}
	return nil
}

// SmallConsumerSchedule collapses the statutory brackets into the blended effective rate that
// applies to small-consumer connections.
func SmallConsumerSchedule() TaxSchedule {
	return TaxSchedule{
		Brackets:  []TaxBracket{{UpTo: 0, Rate: 0.10154}},
		GasRate:   0.57816,
		Reduction: 524.95,
	}
}

// LargeConsumerSchedule is the multi-bracket schedule billed to large-consumer connections.
func LargeConsumerSchedule() TaxSchedule {
	return TaxSchedule{
		Brackets: []TaxBracket{
			{UpTo: 2900, Rate: 0.10154},
			{UpTo: 10000, Rate: 0.10154},
			{UpTo: 50000, Rate: 0.06937},
			{UpTo: 0, Rate: 0.03868},
		},
		GasRate: 0.57816,
	}
}

// BracketDetail discloses the tax charged in one bracket.
type BracketDetail struct {
	From     float64         `json:"from"`
	UpTo     float64         `json:"upTo"`
	Quantity float64         `json:"quantity"`
	Rate     float64         `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

// TaxResult is the energy tax liability for one profile.
type TaxResult struct {
	ElectricityTax decimal.Decimal `json:"electricityTax"`
	Brackets       []BracketDetail `json:"brackets"`
	GasTax         decimal.Decimal `json:"gasTax"`
	Levy           decimal.Decimal `json:"levy"`
	Reduction      decimal.Decimal `json:"reduction"`
	// NetTax may be negative when the reduction exceeds the tax.
	NetTax decimal.Decimal `json:"netTax"`
}

// Lines returns the tax result as disclosed line items.
func (t TaxResult) Lines() []LineItem {
	lines := make([]LineItem, 0, len(t.Brackets)+3)
	for i, b := range t.Brackets {
		lines = append(lines, LineItem{
			Code:     fmt.Sprintf("energy_tax_bracket_%d", i+1),
			Label:    "Energiebelasting stroom",
			Quantity: b.Quantity,
			Unit:     "kWh",
			Rate:     b.Rate,
			Amount:   b.Amount,
		})
	}
	if !t.GasTax.IsZero() {
		lines = append(lines, LineItem{Code: "energy_tax_gas", Label: "Energiebelasting gas", Amount: t.GasTax})
	}
	if !t.Levy.IsZero() {
		lines = append(lines, LineItem{Code: "levy", Label: "Opslag duurzame energie", Amount: t.Levy})
	}
	if !t.Reduction.IsZero() {
		lines = append(lines, LineItem{Code: "tax_reduction", Label: "Vermindering energiebelasting", Amount: t.Reduction.Neg()})
	}
	return lines
}

// ComputeTax walks the bracket schedule over net electricity, adds the flat gas tax and any levy,
// and subtracts the annual reduction when the electricity connection is small-consumer.
func ComputeTax(netElectricity, gas float64, electricityClass CapacityClass, s TaxSchedule) TaxResult {
	var res TaxResult
	res.Brackets = make([]BracketDetail, 0, len(s.Brackets))

	remaining := max(0, netElectricity)
	lower := 0.0
	for _, b := range s.Brackets {
		if remaining <= 0 {
			break
		}
		slice := remaining
		if b.UpTo > 0 {
			slice = min(remaining, b.UpTo-lower)
		}
		if slice <= 0 {
			lower = b.UpTo
			continue
		}
		detail := BracketDetail{From: lower, UpTo: b.UpTo, Quantity: slice, Rate: b.Rate, Amount: amount(slice, b.Rate)}
		res.Brackets = append(res.Brackets, detail)
		res.ElectricityTax = res.ElectricityTax.Add(detail.Amount)
		remaining -= slice
		lower = b.UpTo
	}

	gas = max(0, gas)
	res.GasTax = amount(gas, s.GasRate)
	res.Levy = amount(max(0, netElectricity), s.Levy.Electricity).Add(amount(gas, s.Levy.Gas))
	if electricityClass == CapacitySmall {
		res.Reduction = cents(s.Reduction)
	}

	res.NetTax = res.ElectricityTax.Add(res.GasTax).Add(res.Levy).Sub(res.Reduction)
	return res
}
