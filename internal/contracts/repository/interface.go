package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Contract is a catalog row. Rate columns are shared by fixed and negotiated contracts,
// markup columns belong to dynamic ones.
type Contract struct {
	ID                         uuid.UUID
	SupplierID                 uuid.UUID
	Supplier                   string
	Name                       string
	Model                      string
	RateSingle                 *float64
	RateNormal                 *float64
	RateOffPeak                *float64
	RateGas                    *float64
	MarkupElectricity          *float64
	MarkupGas                  *float64
	MarkupFeedIn               *float64
	StandingElectricityMonthly *float64
	StandingGasMonthly         *float64
	FeedInCompensation         *float64
	MinElectricity             *float64
	MinGas                     *float64
	ConsumptionSegment         string
	Audience                   string
	VisibleWithFeedIn          *bool
	Recommended                bool
	Active                     bool
	SortOrder                  int
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
	UpdatedBy                  *string
}

// ContractParams holds the mutable fields written by Create and Update.
type ContractParams struct {
	Supplier                   string
	Name                       string
	Model                      string
	RateSingle                 *float64
	RateNormal                 *float64
	RateOffPeak                *float64
	RateGas                    *float64
	MarkupElectricity          *float64
	MarkupGas                  *float64
	MarkupFeedIn               *float64
	StandingElectricityMonthly *float64
	StandingGasMonthly         *float64
	FeedInCompensation         *float64
	MinElectricity             *float64
	MinGas                     *float64
	ConsumptionSegment         string
	Audience                   string
	VisibleWithFeedIn          *bool
	Recommended                bool
	SortOrder                  int
	UpdatedBy                  string
}

// ListParams filters List.
type ListParams struct {
	ActiveOnly bool
	Model      string
	Audience   string
}

// Repository is the contract catalog store.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]Contract, error)
	GetByID(ctx context.Context, id uuid.UUID) (Contract, error)
	Create(ctx context.Context, params ContractParams) (Contract, error)
	Update(ctx context.Context, id uuid.UUID, params ContractParams) (Contract, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) (Contract, error)
}
