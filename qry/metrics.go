package qry

import "time"

// MetricsSink is the subset of package metrics the evaluator and optimizer
// report through. Evaluator.Metrics
// may be nil (it is in tests), so every call site nil-checks before
// reporting.
type MetricsSink interface {
	ObserveOperator(op string, dur time.Duration)
	ObserveFastPath(kind string)
}
