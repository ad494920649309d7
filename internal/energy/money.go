package energy

import "github.com/shopspring/decimal"

var twelve = decimal.NewFromInt(12)

// cents rounds a euro amount to two decimals.
func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// amount multiplies a quantity by a unit rate and rounds the result to cents.
func amount(quantity, rate float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(rate)).Round(2)
}

// monthly derives a monthly figure from an annual one.
func monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve).Round(2)
}

// LineItem is one disclosed component of a subtotal.
type LineItem struct {
	Code     string          `json:"code"`
	Label    string          `json:"label"`
	Quantity float64         `json:"quantity"`
	Unit     string          `json:"unit"`
	Rate     float64         `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

func sumLines(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
