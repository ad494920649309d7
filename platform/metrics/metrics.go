// Package metrics exposes the Prometheus instruments of the calculation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "energiebroker"

// Metrics bundles the calculation metrics.
type Metrics struct {
	BreakdownsTotal        *prometheus.CounterVec
	ContractsExcludedTotal *prometheus.CounterVec
	MarketPriceLookups     *prometheus.CounterVec
	ComparisonDuration     prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New constructs the metrics and registers them on reg. Passing nil uses a fresh registry,
// which is what tests want.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		BreakdownsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "breakdowns_total",
				Help:      "Cost breakdowns computed, by pricing model and whether a fallback was taken",
			},
			[]string{"model", "fallback"},
		),
		ContractsExcludedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contracts_excluded_total",
				Help:      "Contracts dropped by the eligibility filter, by reason",
			},
			[]string{"reason"},
		),
		MarketPriceLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "market_price_lookups_total",
				Help:      "Market price lookups by the source that answered",
			},
			[]string{"source"},
		),
		ComparisonDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_duration_seconds",
			Help:      "Wall time of a full contract comparison",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.BreakdownsTotal,
		m.ContractsExcludedTotal,
		m.MarketPriceLookups,
		m.ComparisonDuration,
	)
	return m
}

// NewDefault registers on a registry that also carries the Go runtime and process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// BreakdownComputed counts a computed breakdown.
func (m *Metrics) BreakdownComputed(_ string, model string, fallbacks []string) {
	fallback := "false"
	if len(fallbacks) > 0 {
		fallback = "true"
	}
	m.BreakdownsTotal.WithLabelValues(model, fallback).Inc()
}

// ContractExcluded counts an excluded contract.
func (m *Metrics) ContractExcluded(_ string, reason string) {
	m.ContractsExcludedTotal.WithLabelValues(reason).Inc()
}

// MarketPriceServed counts which source answered a market price lookup.
func (m *Metrics) MarketPriceServed(source string) {
	m.MarketPriceLookups.WithLabelValues(source).Inc()
}

// ObserveComparison records how long a comparison took.
func (m *Metrics) ObserveComparison(started time.Time) {
	m.ComparisonDuration.Observe(time.Since(started).Seconds())
}
