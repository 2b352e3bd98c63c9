// Package metrics defines the engine's Prometheus collectors: operator
// timing histograms labeled by operator, a fast-path counter labeled by
// rewrite kind, and poller
// fetch counters/gauges, registered via promauto against the default
// registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine holds every collector the query engine and poller report through.
type Engine struct {
	OperatorDuration *prometheus.HistogramVec
	OperatorFastPath *prometheus.CounterVec

	ProviderFetchesTotal *prometheus.CounterVec
	ProviderFetchSeconds *prometheus.HistogramVec
	ProviderDegraded     *prometheus.GaugeVec
	ProviderLastSuccess  *prometheus.GaugeVec

	StoreObjectsTotal prometheus.Gauge
}

// New registers and returns the engine's collectors against the default
// registry via promauto.
func New() *Engine {
	return &Engine{
		OperatorDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sa_operator_duration_seconds",
				Help:    "Duration of a single operator step evaluation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operator"},
		),
		OperatorFastPath: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sa_operator_fast_path_total",
				Help: "Count of optimizer fast-path rewrites taken, by kind.",
			},
			[]string{"kind"},
		),
		ProviderFetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sa_provider_fetches_total",
				Help: "Total provider fetch attempts, by outcome.",
			},
			[]string{"source", "outcome"},
		),
		ProviderFetchSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sa_provider_fetch_seconds",
				Help:    "Duration of a single provider /all_data fetch.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		ProviderDegraded: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sa_provider_degraded",
				Help: "1 if the provider's contribution is currently cleared/degraded.",
			},
			[]string{"source"},
		),
		ProviderLastSuccess: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sa_provider_last_success_unixtime",
				Help: "Unix timestamp of the provider's last successful fetch.",
			},
			[]string{"source"},
		),
		StoreObjectsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sa_store_objects_total",
				Help: "Total distinct (type,id,source) entries currently held by the store.",
			},
		),
	}
}

// ObserveFetch implements hub.PollerMetrics, recording one fetch attempt's
// outcome and duration.
func (e *Engine) ObserveFetch(source string, ok bool, degraded bool, dur time.Duration) {
	outcome := "retained_error"
	switch {
	case ok:
		outcome = "ok"
	case degraded:
		outcome = "degraded"
	}
	e.ProviderFetchesTotal.WithLabelValues(source, outcome).Inc()
	e.ProviderFetchSeconds.WithLabelValues(source).Observe(dur.Seconds())
	degradedVal := 0.0
	if degraded {
		degradedVal = 1.0
	}
	e.ProviderDegraded.WithLabelValues(source).Set(degradedVal)
	if ok {
		e.ProviderLastSuccess.WithLabelValues(source).Set(float64(time.Now().Unix()))
	}
}

// ObserveOperator records one operator step's evaluation duration, called
// by the qry evaluator for every step whenever its Metrics sink is set.
func (e *Engine) ObserveOperator(op string, dur time.Duration) {
	e.OperatorDuration.WithLabelValues(op).Observe(dur.Seconds())
}

// ObserveFastPath increments the fast-path counter for kind ("type_index",
// "id_index" or "type_prefilter"), called from qry/optimize.go when a
// rewrite fires.
func (e *Engine) ObserveFastPath(kind string) {
	e.OperatorFastPath.WithLabelValues(kind).Inc()
}
