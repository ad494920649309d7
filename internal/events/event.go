// Package events re-exports the platform event bus and defines the domain events exchanged
// between modules.
package events

import (
	"time"

	"energiebroker_backend/platform/events"
	"energiebroker_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus shared by all modules.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Market Price Events
// =============================================================================

// MarketPricesRefreshed is published after a new day-ahead snapshot was fetched and stored.
type MarketPricesRefreshed struct {
	BaseEvent
	Date             time.Time `json:"date"`
	ElectricityDay   float64   `json:"electricityDay"`
	ElectricityNight float64   `json:"electricityNight"`
	Gas              float64   `json:"gas"`
	Source           string    `json:"source"`
}

func (e MarketPricesRefreshed) EventName() string { return "marketprice.refreshed" }

// =============================================================================
// Contract Catalog Events
// =============================================================================

// ContractCatalogChanged is published after an admin created, updated or (de)activated a
// contract.
type ContractCatalogChanged struct {
	BaseEvent
	ContractID uuid.UUID `json:"contractId"`
	Action     string    `json:"action"`
	ChangedBy  string    `json:"changedBy"`
}

func (e ContractCatalogChanged) EventName() string { return "contracts.catalog.changed" }

// =============================================================================
// Comparison Events
// =============================================================================

// ComparisonExported is published after a comparison export was archived to object storage.
type ComparisonExported struct {
	BaseEvent
	ExportID  uuid.UUID `json:"exportId"`
	Format    string    `json:"format"`
	ObjectKey string    `json:"objectKey"`
}

func (e ComparisonExported) EventName() string { return "comparison.exported" }
