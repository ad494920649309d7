package transport

import (
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RegisterValidators adds the contract-specific tags to val.
func RegisterValidators(val *validator.Validator) error {
	return val.RegisterValidation("pricingmodel", func(fl playground.FieldLevel) bool {
		return energy.PricingModel(fl.Field().String()).Valid()
	})
}

// Rates are the per-unit prices of a fixed or negotiated contract, excl. VAT.
type Rates struct {
	Single  *float64 `json:"single,omitempty" validate:"omitempty,gte=0,lte=5"`
	Normal  *float64 `json:"normal,omitempty" validate:"omitempty,gte=0,lte=5"`
	OffPeak *float64 `json:"offPeak,omitempty" validate:"omitempty,gte=0,lte=5"`
	Gas     *float64 `json:"gas,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// Markups are added to the day-ahead price of a dynamic contract.
type Markups struct {
	Electricity float64  `json:"electricity" validate:"gte=-1,lte=1"`
	Gas         *float64 `json:"gas,omitempty" validate:"omitempty,gte=-1,lte=5"`
	FeedIn      float64  `json:"feedIn" validate:"gte=-1,lte=1"`
}

// ContractTerms is everything the calculation needs to know about a contract. It is shared by
// the catalog admin routes and the inline calculation endpoint.
type ContractTerms struct {
	Model                      string   `json:"model" validate:"required,pricingmodel"`
	Rates                      *Rates   `json:"rates,omitempty"`
	Markups                    *Markups `json:"markups,omitempty"`
	StandingElectricityMonthly *float64 `json:"standingElectricityMonthly,omitempty" validate:"omitempty,gte=0,lte=100"`
	StandingGasMonthly         *float64 `json:"standingGasMonthly,omitempty" validate:"omitempty,gte=0,lte=100"`
	FeedInCompensation         *float64 `json:"feedInCompensation,omitempty" validate:"omitempty,gte=0,lte=1"`
	MinElectricity             *float64 `json:"minElectricity,omitempty" validate:"omitempty,gte=0"`
	MinGas                     *float64 `json:"minGas,omitempty" validate:"omitempty,gte=0"`
	ConsumptionSegment         string   `json:"consumptionSegment,omitempty" validate:"omitempty,oneof=small large any"`
	Audience                   string   `json:"audience,omitempty" validate:"omitempty,oneof=consumer business both"`
	VisibleWithFeedIn          *bool    `json:"visibleWithFeedIn,omitempty"`
	Recommended                bool     `json:"recommended"`
}

// Definition converts the terms into the engine's contract definition.
func (t ContractTerms) Definition(id, name, supplier string) energy.ContractDefinition {
	def := energy.ContractDefinition{
		ID:                         id,
		Name:                       name,
		Supplier:                   supplier,
		Model:                      energy.PricingModel(t.Model),
		StandingElectricityMonthly: t.StandingElectricityMonthly,
		StandingGasMonthly:         t.StandingGasMonthly,
		FeedInCompensation:         t.FeedInCompensation,
		MinElectricity:             t.MinElectricity,
		MinGas:                     t.MinGas,
		ConsumptionSegment:         energy.Segment(t.ConsumptionSegment),
		Audience:                   energy.Audience(t.Audience),
		VisibleWithFeedIn:          t.VisibleWithFeedIn,
		Recommended:                t.Recommended,
	}
	if def.ConsumptionSegment == "" {
		def.ConsumptionSegment = energy.SegmentAny
	}
	if def.Audience == "" {
		def.Audience = energy.AudienceBoth
	}

	switch def.Model {
	case energy.ModelFixed, energy.ModelNegotiated:
		rates := &energy.FixedRates{}
		if t.Rates != nil {
			rates = &energy.FixedRates{Single: t.Rates.Single, Normal: t.Rates.Normal, OffPeak: t.Rates.OffPeak, Gas: t.Rates.Gas}
		}
		if def.Model == energy.ModelFixed {
			def.Fixed = rates
		} else {
			def.Negotiated = rates
		}
	case energy.ModelDynamic:
		markups := &energy.DynamicRates{}
		if t.Markups != nil {
			markups = &energy.DynamicRates{ElectricityMarkup: t.Markups.Electricity, GasMarkup: t.Markups.Gas, FeedInMarkup: t.Markups.FeedIn}
		}
		def.Dynamic = markups
	}
	return def
}

// ContractRequest creates or replaces a catalog contract.
type ContractRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Supplier string `json:"supplier" validate:"required,min=2,max=120"`
	ContractTerms
	SortOrder int `json:"sortOrder" validate:"gte=0,lte=10000"`
}

// SetActiveRequest toggles catalog visibility.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ListContractsRequest filters the catalog listing.
type ListContractsRequest struct {
	Model    string `form:"model" validate:"omitempty,pricingmodel"`
	Audience string `form:"audience" validate:"omitempty,oneof=consumer business both"`
}

type ContractResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Supplier string    `json:"supplier"`
	ContractTerms
	Active    bool   `json:"active"`
	SortOrder int    `json:"sortOrder"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

type ContractListResponse struct {
	Items []ContractResponse `json:"items"`
	Total int                `json:"total"`
}
