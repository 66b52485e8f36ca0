// Package telemetry exposes Prometheus counters for the reconcilers.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "studio_ops"

var (
	EntriesSynced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scorecard",
		Name:      "entries_synced_total",
		Help:      "Weekly entries written by the scorecard reconciler.",
	})

	MetricErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scorecard",
		Name:      "metric_errors_total",
		Help:      "Metric calculations that failed, by automation source.",
	}, []string{"source"})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "project_sync",
		Name:      "runs_total",
		Help:      "Project sync runs by outcome.",
	}, []string{"outcome"})

	SyncedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "project_sync",
		Name:      "items_total",
		Help:      "Projects and tasks touched by the sync, by action.",
	}, []string{"action"})
)

// Outcomes for SyncRuns.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
