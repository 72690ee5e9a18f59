// Package metrics provides Prometheus metrics for fellowship.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunsTotal counts devotional sync runs by trigger and outcome.
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fellowship",
			Name:      "devotional_sync_runs_total",
			Help:      "Total number of devotional sync runs",
		},
		[]string{"status"},
	)

	// SyncDuration measures devotional sync duration.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fellowship",
			Name:      "devotional_sync_duration_seconds",
			Help:      "Duration of devotional sync runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// RecordsTotal counts devotional records processed by sync.
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fellowship",
			Name:      "devotional_records_total",
			Help:      "Total number of devotional records processed by sync",
		},
		[]string{"result"},
	)

	// UtterancesTotal counts read-aloud utterances by outcome.
	UtterancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fellowship",
			Name:      "readaloud_utterances_total",
			Help:      "Total number of read-aloud utterances",
		},
		[]string{"result"},
	)

	// StaleCallbacksTotal counts speech completions discarded by the generation guard.
	StaleCallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fellowship",
			Name:      "readaloud_stale_callbacks_total",
			Help:      "Speech completions discarded because a newer utterance had started",
		},
	)
)

// RecordSync records a finished sync run.
func RecordSync(status string, stored, failed int, duration float64) {
	SyncRunsTotal.WithLabelValues(status).Inc()
	SyncDuration.Observe(duration)
	RecordsTotal.WithLabelValues("stored").Add(float64(stored))
	RecordsTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordUtterance records a speech completion.
func RecordUtterance(result string) {
	UtterancesTotal.WithLabelValues(result).Inc()
}

// RecordStaleCallback records a discarded speech completion.
func RecordStaleCallback() {
	StaleCallbacksTotal.Inc()
}
