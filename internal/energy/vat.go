package energy

import "github.com/shopspring/decimal"

// DefaultVatRate is the standard Dutch VAT rate.
const DefaultVatRate = 0.21

// VatResult carries both representations of an amount; callers pick via Display.
type VatResult struct {
	ExclVat decimal.Decimal `json:"exclVat"`
	Vat     decimal.Decimal `json:"vat"`
	InclVat decimal.Decimal `json:"inclVat"`
	// Display is the figure the customer class is quoted and ranked by.
	Display decimal.Decimal `json:"display"`
}

// ApplyVat adds VAT to a tax-exclusive subtotal. Business customers are quoted exclusive,
// consumers inclusive; both figures are always returned.
func ApplyVat(exclVat decimal.Decimal, customer CustomerClass, rate decimal.Decimal) VatResult {
	excl := exclVat.Round(2)
	vat := excl.Mul(rate).Round(2)
	res := VatResult{ExclVat: excl, Vat: vat, InclVat: excl.Add(vat)}
	if customer == CustomerBusiness {
		res.Display = res.ExclVat
	} else {
		res.Display = res.InclVat
	}
	return res
}

// RemoveVat converts a tax-inclusive amount back to its exclusive equivalent.
func RemoveVat(inclVat decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return inclVat.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
}
