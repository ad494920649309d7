package service

import (
	"context"
	"testing"
	"time"

	"energiebroker_backend/internal/contracts/repository"
	"energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/platform/apperr"

	"github.com/google/uuid"
)

func floatPtr(v float64) *float64 { return &v }

func TestValidateTerms(t *testing.T) {
	cases := []struct {
		name  string
		terms transport.ContractTerms
		valid bool
	}{
		{"fixed single", transport.ContractTerms{Model: "fixed", Rates: &transport.Rates{Single: floatPtr(0.25)}}, true},
		{"fixed dual", transport.ContractTerms{Model: "fixed", Rates: &transport.Rates{Normal: floatPtr(0.3), OffPeak: floatPtr(0.2)}}, true},
		{"fixed half dual", transport.ContractTerms{Model: "fixed", Rates: &transport.Rates{Normal: floatPtr(0.3)}}, false},
		{"fixed without rates", transport.ContractTerms{Model: "fixed"}, false},
		{"fixed with markups", transport.ContractTerms{Model: "fixed", Rates: &transport.Rates{Single: floatPtr(0.25)}, Markups: &transport.Markups{}}, false},
		{"dynamic", transport.ContractTerms{Model: "dynamic", Markups: &transport.Markups{Electricity: 0.02}}, true},
		{"dynamic without markups", transport.ContractTerms{Model: "dynamic"}, true},
		{"dynamic with rates", transport.ContractTerms{Model: "dynamic", Rates: &transport.Rates{Single: floatPtr(0.25)}}, false},
		{"negotiated threshold", transport.ContractTerms{Model: "negotiated", Rates: &transport.Rates{Single: floatPtr(0.2)}, MinElectricity: floatPtr(10000)}, true},
		{"fixed threshold", transport.ContractTerms{Model: "fixed", Rates: &transport.Rates{Single: floatPtr(0.2)}, MinGas: floatPtr(5000)}, false},
		{"unknown model", transport.ContractTerms{Model: "spot"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTerms(tc.terms)
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestToDefinition_MapsRateSetByModel(t *testing.T) {
	id := uuid.New()
	row := repository.Contract{
		ID:                 id,
		Supplier:           "Vandebron",
		Name:               "Dynamisch",
		Model:              "dynamic",
		RateSingle:         floatPtr(0.30),
		MarkupElectricity:  floatPtr(0.02),
		MarkupFeedIn:       floatPtr(-0.01),
		ConsumptionSegment: "any",
		Audience:           "consumer",
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	def := toDefinition(row)
	if def.ID != id.String() || def.Model != energy.ModelDynamic {
		t.Fatalf("unexpected identity %s/%s", def.ID, def.Model)
	}
	if def.Fixed != nil || def.Negotiated != nil || def.Dynamic == nil {
		t.Fatalf("expected only the dynamic rate set, got %+v", def)
	}
	if def.Dynamic.ElectricityMarkup != 0.02 || def.Dynamic.FeedInMarkup != -0.01 {
		t.Fatalf("unexpected markups %+v", def.Dynamic)
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("expected valid definition, got %v", err)
	}
}

func TestToDefinition_RowWithoutRatesStillServed(t *testing.T) {
	row := repository.Contract{ID: uuid.New(), Model: "negotiated"}
	def := toDefinition(row)
	if def.Negotiated == nil {
		t.Fatalf("expected empty negotiated rate set for the fallback path")
	}
	if def.Audience != energy.AudienceBoth || def.ConsumptionSegment != energy.SegmentAny {
		t.Fatalf("expected open audience and segment defaults, got %s/%s", def.Audience, def.ConsumptionSegment)
	}
}

type stubRepo struct {
	repository.Repository
	rows []repository.Contract
}

func (s stubRepo) List(_ context.Context, p repository.ListParams) ([]repository.Contract, error) {
	out := make([]repository.Contract, 0, len(s.rows))
	for _, r := range s.rows {
		if p.ActiveOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func TestActiveDefinitions_SkipsInactive(t *testing.T) {
	svc := New(stubRepo{rows: []repository.Contract{
		{ID: uuid.New(), Model: "fixed", Active: true, RateSingle: floatPtr(0.25)},
		{ID: uuid.New(), Model: "fixed", Active: false, RateSingle: floatPtr(0.20)},
	}}, nil, nil)

	defs, err := svc.ActiveDefinitions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 1 || *defs[0].Fixed.Single != 0.25 {
		t.Fatalf("expected the single active contract, got %+v", defs)
	}
}
