// Package transport holds the market price DTOs shared by the client, storage and HTTP layers.
package transport

import (
	"strings"
	"time"

	"energiebroker_backend/internal/energy"
)

// Snapshot sources.
const (
	SourceEnergyZero = "ENERGYZERO"
	staleSuffix      = "_STALE"
)

// Snapshot is the day-ahead price summary for one delivery date, in €/kWh and €/m³ excl. VAT
// and energy tax.
type Snapshot struct {
	Date             time.Time `json:"date"`
	ElectricityAvg   float64   `json:"electricityAvg"`
	ElectricityDay   float64   `json:"electricityDay"`
	ElectricityNight float64   `json:"electricityNight"`
	ElectricityMin   float64   `json:"electricityMin"`
	ElectricityMax   float64   `json:"electricityMax"`
	Gas              float64   `json:"gas"`
	Source           string    `json:"source"`
	FetchedAt        time.Time `json:"fetchedAt"`
	Stale            bool      `json:"stale"`
}

// AsStale marks the snapshot as served past its freshness window.
func (s Snapshot) AsStale() Snapshot {
	if !strings.HasSuffix(s.Source, staleSuffix) {
		s.Source += staleSuffix
	}
	s.Stale = true
	return s
}

// MarketPrice converts the snapshot into the engine's reference price.
func (s Snapshot) MarketPrice() energy.MarketPrice {
	return energy.MarketPrice{
		ElectricityDay:   s.ElectricityDay,
		ElectricityNight: s.ElectricityNight,
		Gas:              s.Gas,
		Source:           s.Source,
		Stale:            s.Stale,
	}
}

// HistoryRequest bounds the history listing.
type HistoryRequest struct {
	Days int `form:"days" validate:"omitempty,min=1,max=365"`
}

// HistoryResponse lists stored snapshots, newest first.
type HistoryResponse struct {
	Items []Snapshot `json:"items"`
	Total int        `json:"total"`
}
