// Package transport holds the comparison request and response DTOs and the ranked result shared
// with the export renderers.
package transport

import (
	"time"

	contracts "energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/internal/energy"

	"github.com/shopspring/decimal"
)

// ProfileRequest is the annual consumption of one connection.
type ProfileRequest struct {
	Peak                *float64 `json:"peak,omitempty" validate:"omitempty,gte=0,lte=100000000"`
	OffPeak             *float64 `json:"offPeak,omitempty" validate:"omitempty,gte=0,lte=100000000"`
	Combined            *float64 `json:"combined,omitempty" validate:"omitempty,gte=0,lte=100000000"`
	Gas                 *float64 `json:"gas,omitempty" validate:"omitempty,gte=0,lte=100000000"`
	FeedIn              *float64 `json:"feedIn,omitempty" validate:"omitempty,gte=0,lte=100000000"`
	SingleRate          bool     `json:"singleRate"`
	CapacityElectricity string   `json:"capacityElectricity,omitempty" validate:"omitempty,max=32"`
	CapacityGas         string   `json:"capacityGas,omitempty" validate:"omitempty,max=32"`
	PostalCode          string   `json:"postalCode,omitempty" validate:"omitempty,postcode"`
	HouseNumber         string   `json:"houseNumber,omitempty" validate:"omitempty,max=10"`
}

// Profile converts the request into the engine's consumption profile.
func (p ProfileRequest) Profile() energy.ConsumptionProfile {
	return energy.ConsumptionProfile{
		Peak:                deref(p.Peak),
		OffPeak:             deref(p.OffPeak),
		Combined:            deref(p.Combined),
		Gas:                 p.Gas,
		FeedIn:              p.FeedIn,
		SingleRate:          p.SingleRate,
		CapacityElectricity: p.CapacityElectricity,
		CapacityGas:         p.CapacityGas,
		PostalCode:          p.PostalCode,
	}
}

// Customer identifies the customer class directly or through the address type.
type Customer struct {
	CustomerClass string `json:"customerClass,omitempty" validate:"omitempty,oneof=consumer business"`
	AddressType   string `json:"addressType,omitempty" validate:"omitempty,oneof=residential commercial"`
}

// MarketPriceInput overrides the market reference price for one calculation. Omitted prices
// take the engine defaults; zero and negative prices are used as given.
type MarketPriceInput struct {
	ElectricityDay   *float64 `json:"electricityDay,omitempty" validate:"omitempty,gte=-2,lte=5"`
	ElectricityNight *float64 `json:"electricityNight,omitempty" validate:"omitempty,gte=-2,lte=5"`
	Gas              *float64 `json:"gas,omitempty" validate:"omitempty,gte=-2,lte=10"`
}

// MarketPrice converts the override into the engine's reference price.
func (m MarketPriceInput) MarketPrice() energy.MarketPrice {
	return energy.MarketPrice{
		ElectricityDay:   deref(m.ElectricityDay),
		ElectricityNight: deref(m.ElectricityNight),
		Gas:              deref(m.Gas),
		Source:           "request",
		DayMissing:       m.ElectricityDay == nil,
		NightMissing:     m.ElectricityNight == nil,
		GasMissing:       m.Gas == nil,
	}
}

// CalculationRequest prices one inline contract.
type CalculationRequest struct {
	Profile  ProfileRequest          `json:"profile"`
	Contract contracts.ContractTerms `json:"contract"`
	Name     string                  `json:"name,omitempty" validate:"omitempty,max=120"`
	Supplier string                  `json:"supplier,omitempty" validate:"omitempty,max=120"`
	Customer
	MarketPrice      *MarketPriceInput `json:"marketPrice,omitempty"`
	ReferenceMonthly *float64          `json:"referenceMonthly,omitempty" validate:"omitempty,gte=0"`
}

// CompareRequest prices the active catalog.
type CompareRequest struct {
	Profile ProfileRequest `json:"profile"`
	Customer
	Model string `json:"model,omitempty" validate:"omitempty,pricingmodel"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format  string `form:"format" validate:"required,oneof=pdf xlsx"`
	Archive bool   `form:"archive"`
}

// UsageEstimateRequest describes a household without meter readings.
type UsageEstimateRequest struct {
	Residents int    `json:"residents" validate:"required,min=1,max=20"`
	HasSolar  bool   `json:"hasSolar"`
	Dwelling  string `json:"dwelling,omitempty" validate:"omitempty,oneof=apartment terraced semi-detached detached"`
}

// CapacityEstimateRequest carries annual consumption for a capacity suggestion.
type CapacityEstimateRequest struct {
	Electricity float64 `json:"electricity" validate:"gte=0,lte=100000000"`
	Gas         float64 `json:"gas" validate:"gte=0,lte=100000000"`
}

// Entry is one priced contract of a comparison.
type Entry struct {
	Contract  energy.ContractDefinition
	Breakdown energy.CostBreakdown
}

// Comparison is the ranked outcome of pricing the catalog for one profile.
type Comparison struct {
	Profile           energy.ConsumptionProfile
	Customer          energy.CustomerClass
	CustomerDefaulted bool
	Market            *energy.MarketPrice
	Entries           []Entry
	Excluded          int
	GeneratedAt       time.Time
}

type LineItemResponse struct {
	Code     string  `json:"code"`
	Label    string  `json:"label"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
	Amount   float64 `json:"amount"`
}

type BracketResponse struct {
	From     float64 `json:"from"`
	UpTo     float64 `json:"upTo,omitempty"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

type SavingsResponse struct {
	Monthly          float64 `json:"monthly"`
	Annual           float64 `json:"annual"`
	ReferenceMonthly float64 `json:"referenceMonthly"`
	Heuristic        bool    `json:"heuristic"`
}

// BreakdownResponse is a cost breakdown with its money fields as JSON numbers.
type BreakdownResponse struct {
	ContractID  string `json:"contractId,omitempty"`
	Name        string `json:"name,omitempty"`
	Supplier    string `json:"supplier,omitempty"`
	Model       string `json:"model"`
	Recommended bool   `json:"recommended"`
	Rank        int    `json:"rank,omitempty"`

	Customer      string `json:"customer"`
	CapacityClass string `json:"capacityClass"`
	NetworkZeroed bool   `json:"networkZeroed"`
	RateTier      string `json:"rateTier"`

	NetPeak    float64 `json:"netPeak"`
	NetOffPeak float64 `json:"netOffPeak"`
	Surplus    float64 `json:"surplus"`

	SupplierSubtotal float64 `json:"supplierSubtotal"`
	TaxSubtotal      float64 `json:"taxSubtotal"`
	NetworkSubtotal  float64 `json:"networkSubtotal"`
	FeedInPayout     float64 `json:"feedInPayout"`
	TotalExclVat     float64 `json:"totalExclVat"`
	Vat              float64 `json:"vat"`
	TotalInclVat     float64 `json:"totalInclVat"`
	MonthlyExclVat   float64 `json:"monthlyExclVat"`
	MonthlyInclVat   float64 `json:"monthlyInclVat"`
	// Annual and Monthly are the figures quoted to this customer class.
	Annual  float64 `json:"annual"`
	Monthly float64 `json:"monthly"`

	Lines    []LineItemResponse `json:"lines"`
	Brackets []BracketResponse  `json:"brackets"`
	Savings  SavingsResponse    `json:"savings"`

	DerivedViaFallback   bool     `json:"derivedViaFallback"`
	Fallbacks            []string `json:"fallbacks,omitempty"`
	MarketPriceDefaulted bool     `json:"marketPriceDefaulted"`
}

type MarketPriceResponse struct {
	ElectricityDay   float64 `json:"electricityDay"`
	ElectricityNight float64 `json:"electricityNight"`
	Gas              float64 `json:"gas"`
	Source           string  `json:"source"`
	Stale            bool    `json:"stale"`
}

type ComparisonResponse struct {
	Customer          string               `json:"customer"`
	CustomerDefaulted bool                 `json:"customerDefaulted"`
	MarketPrice       *MarketPriceResponse `json:"marketPrice,omitempty"`
	Items             []BreakdownResponse  `json:"items"`
	Total             int                  `json:"total"`
	Excluded          int                  `json:"excluded"`
	GeneratedAt       time.Time            `json:"generatedAt"`
}

type ExportArchiveResponse struct {
	ExportID    string    `json:"exportId"`
	Format      string    `json:"format"`
	FileKey     string    `json:"fileKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ToBreakdownResponse flattens a priced contract for JSON.
func ToBreakdownResponse(c energy.ContractDefinition, b energy.CostBreakdown) BreakdownResponse {
	resp := BreakdownResponse{
		ContractID:           c.ID,
		Name:                 c.Name,
		Supplier:             c.Supplier,
		Model:                string(b.Model),
		Recommended:          c.Recommended,
		Customer:             string(b.Customer),
		CapacityClass:        string(b.CapacityClass),
		NetworkZeroed:        b.NetworkZeroed,
		RateTier:             b.Supplier.RateTier,
		NetPeak:              b.Net.Peak,
		NetOffPeak:           b.Net.OffPeak,
		Surplus:              b.Net.Surplus,
		SupplierSubtotal:     Float(b.SupplierSubtotal),
		TaxSubtotal:          Float(b.TaxSubtotal),
		NetworkSubtotal:      Float(b.NetworkSubtotal),
		FeedInPayout:         Float(b.FeedInPayout),
		TotalExclVat:         Float(b.TotalExclVat),
		Vat:                  Float(b.Vat),
		TotalInclVat:         Float(b.TotalInclVat),
		MonthlyExclVat:       Float(b.MonthlyExclVat),
		MonthlyInclVat:       Float(b.MonthlyInclVat),
		Annual:               Float(b.Annual(b.Customer)),
		Monthly:              Float(b.Monthly(b.Customer)),
		DerivedViaFallback:   b.DerivedViaFallback,
		Fallbacks:            b.Fallbacks,
		MarketPriceDefaulted: b.MarketPriceDefaulted,
		Savings: SavingsResponse{
			Monthly:          Float(b.Savings.Monthly),
			Annual:           Float(b.Savings.Annual),
			ReferenceMonthly: Float(b.Savings.ReferenceMonthly),
			Heuristic:        b.Savings.Heuristic,
		},
	}

	for _, l := range b.Lines() {
		resp.Lines = append(resp.Lines, LineItemResponse{
			Code:     l.Code,
			Label:    l.Label,
			Quantity: l.Quantity,
			Unit:     l.Unit,
			Rate:     l.Rate,
			Amount:   Float(l.Amount),
		})
	}
	for _, br := range b.Tax.Brackets {
		resp.Brackets = append(resp.Brackets, BracketResponse{
			From:     br.From,
			UpTo:     br.UpTo,
			Quantity: br.Quantity,
			Rate:     br.Rate,
			Amount:   Float(br.Amount),
		})
	}
	return resp
}

// ToComparisonResponse flattens a ranked comparison for JSON.
func ToComparisonResponse(cmp Comparison) ComparisonResponse {
	resp := ComparisonResponse{
		Customer:          string(cmp.Customer),
		CustomerDefaulted: cmp.CustomerDefaulted,
		Items:             make([]BreakdownResponse, 0, len(cmp.Entries)),
		Total:             len(cmp.Entries),
		Excluded:          cmp.Excluded,
		GeneratedAt:       cmp.GeneratedAt,
	}
	if cmp.Market != nil {
		resp.MarketPrice = &MarketPriceResponse{
			ElectricityDay:   cmp.Market.ElectricityDay,
			ElectricityNight: cmp.Market.ElectricityNight,
			Gas:              cmp.Market.Gas,
			Source:           cmp.Market.Source,
			Stale:            cmp.Market.Stale,
		}
	}
	for i, e := range cmp.Entries {
		item := ToBreakdownResponse(e.Contract, e.Breakdown)
		item.Rank = i + 1
		resp.Items = append(resp.Items, item)
	}
	return resp
}

// Float converts a rounded money amount for JSON output.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
