package service

import (
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/platform/logger"
)

// Counter receives the engine outcomes as metrics.
type Counter interface {
	BreakdownComputed(contractID string, model string, fallbacks []string)
	ContractExcluded(contractID string, reason string)
}

// Observer reports engine fallbacks and exclusions to the metrics and the log.
type Observer struct {
	counter Counter
	log     *logger.Logger
}

var _ energy.FallbackObserver = (*Observer)(nil)

// NewObserver creates an engine observer. counter may be nil.
func NewObserver(counter Counter, log *logger.Logger) *Observer {
	return &Observer{counter: counter, log: log}
}

// BreakdownComputed implements energy.FallbackObserver.
func (o *Observer) BreakdownComputed(contractID string, model energy.PricingModel, fallbacks []string) {
	if o.counter != nil {
		o.counter.BreakdownComputed(contractID, string(model), fallbacks)
	}
	if len(fallbacks) > 0 {
		o.log.CalculationFallback(contractID, fallbacks)
	}
}

// ContractExcluded implements energy.FallbackObserver.
func (o *Observer) ContractExcluded(contractID string, reason string) {
	if o.counter != nil {
		o.counter.ContractExcluded(contractID, reason)
	}
	o.log.ContractExcluded(contractID, reason)
}
