package energy

import "github.com/shopspring/decimal"

// NetworkFees are the annual grid operator fees (netbeheerkosten) for small-consumer connections.
type NetworkFees struct {
	Electricity float64 `mapstructure:"electricity" json:"electricity"`
	Gas         float64 `mapstructure:"gas" json:"gas"`
}

// DefaultNetworkFees returns the standard annual fees.
func DefaultNetworkFees() NetworkFees {
	return NetworkFees{Electricity: 430, Gas: 245}
}

// NetworkFeeResult is the resolved grid operator fee for one connection.
type NetworkFeeResult struct {
	ElectricityFee   decimal.Decimal `json:"electricityFee"`
	GasFee           decimal.Decimal `json:"gasFee"`
	ElectricityClass CapacityClass   `json:"electricityClass"`
	GasClass         CapacityClass   `json:"gasClass"`
	CapacityClass    CapacityClass   `json:"capacityClass"`
	// ElectricityZeroed and GasZeroed are set when that carrier's fee is billed directly by the
	// grid operator and left out here.
	ElectricityZeroed bool `json:"electricityZeroed"`
	GasZeroed         bool `json:"gasZeroed"`
}

// Zeroed reports whether either carrier's fee was left out.
func (n NetworkFeeResult) Zeroed() bool {
	return n.ElectricityZeroed || n.GasZeroed
}

// Total returns the combined network fee.
func (n NetworkFeeResult) Total() decimal.Decimal {
	return n.ElectricityFee.Add(n.GasFee)
}

// Lines returns the network fee as disclosed line items.
func (n NetworkFeeResult) Lines() []LineItem {
	lines := []LineItem{{Code: "network_electricity", Label: "Netbeheerkosten stroom", Amount: n.ElectricityFee}}
	if !n.GasFee.IsZero() {
		lines = append(lines, LineItem{Code: "network_gas", Label: "Netbeheerkosten gas", Amount: n.GasFee})
	}
	return lines
}

// ResolveNetworkFee classifies each connection on its own and applies the fixed annual fees. A
// large-consumer connection pays its fee to the grid operator, so only that carrier is zeroed.
func ResolveNetworkFee(capacityElectricity, capacityGas string, hasGas bool, fees NetworkFees) NetworkFeeResult {
	res := NetworkFeeResult{
		ElectricityClass: ClassifyElectricity(capacityElectricity),
		GasClass:         ClassifyGas(capacityGas),
		ElectricityFee:   decimal.Zero,
		GasFee:           decimal.Zero,
	}
	res.CapacityClass = Classify(capacityElectricity, capacityGas)

	if res.ElectricityClass == CapacityLarge {
		res.ElectricityZeroed = true
	} else {
		res.ElectricityFee = cents(fees.Electricity)
	}

	if hasGas {
		if res.GasClass == CapacityLarge {
			res.GasZeroed = true
		} else {
			res.GasFee = cents(fees.Gas)
		}
	}
	return res
}
