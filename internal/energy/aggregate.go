package energy

import "github.com/shopspring/decimal"

// CostBreakdown is the itemized annual and monthly cost of one contract for one profile.
type CostBreakdown struct {
	ContractID string       `json:"contractId"`
	Model      PricingModel `json:"model"`

	Supplier SupplierCost     `json:"supplier"`
	Tax      TaxResult        `json:"tax"`
	Network  NetworkFeeResult `json:"network"`
	Net      NetConsumption   `json:"net"`

	SupplierSubtotal decimal.Decimal `json:"supplierSubtotal"`
	TaxSubtotal      decimal.Decimal `json:"taxSubtotal"`
	NetworkSubtotal  decimal.Decimal `json:"networkSubtotal"`
	FeedInPayout     decimal.Decimal `json:"feedInPayout"`

	TotalExclVat   decimal.Decimal `json:"totalExclVat"`
	Vat            decimal.Decimal `json:"vat"`
	TotalInclVat   decimal.Decimal `json:"totalInclVat"`
	MonthlyExclVat decimal.Decimal `json:"monthlyExclVat"`
	MonthlyInclVat decimal.Decimal `json:"monthlyInclVat"`

	Customer      CustomerClass `json:"customer"`
	CapacityClass CapacityClass `json:"capacityClass"`
	NetworkZeroed bool          `json:"networkZeroed"`

	DerivedViaFallback   bool     `json:"derivedViaFallback"`
	Fallbacks            []string `json:"fallbacks,omitempty"`
	MarketPriceDefaulted bool     `json:"marketPriceDefaulted"`

	Savings Savings `json:"savings"`
}

// Aggregate sums the supplier, tax and network subtotals into a pre-VAT breakdown.
func Aggregate(s SupplierCost, t TaxResult, n NetworkFeeResult) CostBreakdown {
	b := CostBreakdown{
		Supplier:         s,
		Tax:              t,
		Network:          n,
		SupplierSubtotal: s.Subtotal,
		TaxSubtotal:      t.NetTax,
		NetworkSubtotal:  n.Total(),
		FeedInPayout:     s.FeedInPayout,
		CapacityClass:    n.CapacityClass,
		NetworkZeroed:    n.Zeroed(),
	}
	if len(s.Fallbacks) > 0 {
		b.DerivedViaFallback = true
		b.Fallbacks = append(b.Fallbacks, s.Fallbacks...)
	}

	b.TotalExclVat = b.SupplierSubtotal.Add(b.TaxSubtotal).Add(b.NetworkSubtotal)
	b.MonthlyExclVat = monthly(b.TotalExclVat)
	return b
}

// WithVat returns a copy of the breakdown with the VAT figures filled in.
func (b CostBreakdown) WithVat(v VatResult) CostBreakdown {
	b.TotalExclVat = v.ExclVat
	b.Vat = v.Vat
	b.TotalInclVat = v.InclVat
	b.MonthlyExclVat = monthly(v.ExclVat)
	b.MonthlyInclVat = monthly(v.InclVat)
	return b
}

// Annual returns the annual figure the customer class is quoted by.
func (b CostBreakdown) Annual(customer CustomerClass) decimal.Decimal {
	if customer == CustomerBusiness {
		return b.TotalExclVat
	}
	return b.TotalInclVat
}

// Monthly returns the monthly figure the customer class is quoted by.
func (b CostBreakdown) Monthly(customer CustomerClass) decimal.Decimal {
	if customer == CustomerBusiness {
		return b.MonthlyExclVat
	}
	return b.MonthlyInclVat
}

// Lines returns every disclosed line item of the breakdown in presentation order.
func (b CostBreakdown) Lines() []LineItem {
	lines := make([]LineItem, 0, len(b.Supplier.Lines)+8)
	lines = append(lines, b.Supplier.Lines...)
	lines = append(lines, b.Tax.Lines()...)
	lines = append(lines, b.Network.Lines()...)
	return lines
}

func (b *CostBreakdown) addFallback(reason string) {
	b.DerivedViaFallback = true
	for _, existing := range b.Fallbacks {
		if existing == reason {
			return
		}
	}
	b.Fallbacks = append(b.Fallbacks, reason)
}
