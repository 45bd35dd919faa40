// telemetry/metrics.go
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the recalculation pipeline. The flush budget is
// 100ms; buckets bracket it so breaches are visible without log scraping.

// FlushDuration observes one batch flush end to end.
var FlushDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "riskwatch",
		Subsystem: "batch",
		Name:      "flush_duration_ms",
		Help:      "Duration of a batch risk recalculation flush in milliseconds",
		Buckets:   []float64{1, 2, 5, 10, 16, 25, 50, 100, 250, 500},
	},
)

// FlushSize counts symbols recomputed per flush.
var FlushSize = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "riskwatch",
		Subsystem: "batch",
		Name:      "flush_size",
		Help:      "Number of coalesced symbol updates processed per flush",
		Buckets:   []float64{1, 2, 5, 10, 20, 35, 50},
	},
)

// FlushesTotal counts flushes by trigger ("size", "timer", "force").
var FlushesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "riskwatch",
		Subsystem: "batch",
		Name:      "flushes_total",
		Help:      "Batch flushes by trigger",
	},
	[]string{"trigger"},
)

// SymbolFailures counts per-symbol computations that errored or panicked
// inside a flush. A failure never aborts the rest of the batch.
var SymbolFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "riskwatch",
		Subsystem: "batch",
		Name:      "symbol_failures_total",
		Help:      "Per-symbol risk computations that failed during a flush",
	},
)

// AlertsGenerated counts alerts by severity.
var AlertsGenerated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "riskwatch",
		Subsystem: "alerts",
		Name:      "generated_total",
		Help:      "Alerts created, labeled by severity",
	},
	[]string{"severity"},
)
