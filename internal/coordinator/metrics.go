package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maldreth",
		Subsystem: "discovery",
		Name:      "runs_total",
		Help:      "Coordinator runs by outcome.",
	}, []string{"outcome"})
	metricRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "maldreth",
		Subsystem: "discovery",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of coordinator runs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
	metricWatcherRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maldreth",
		Subsystem: "discovery",
		Name:      "watcher_runs_total",
		Help:      "Watcher invocations by watcher and result.",
	}, []string{"watcher", "result"})
	metricCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maldreth",
		Subsystem: "discovery",
		Name:      "candidates_total",
		Help:      "Candidates processed by watcher and outcome.",
	}, []string{"watcher", "outcome"})
	metricEnrichments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maldreth",
		Subsystem: "discovery",
		Name:      "enrichments_total",
		Help:      "Queue item enrichments by result.",
	}, []string{"result"})
	metricDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maldreth",
		Subsystem: "discovery",
		Name:      "decisions_total",
		Help:      "Reviewer decisions by source and status.",
	}, []string{"source", "status"})
)

const (
	outcomeCreated   = "created"
	outcomeMerged    = "merged"
	outcomeInvalid   = "invalid"
	outcomeCataloged = "cataloged"
	outcomeFailed    = "failed"
)

func recordCandidate(watcher, outcome string) {
	metricCandidates.WithLabelValues(watcher, outcome).Inc()
}

func recordWatcherRun(watcher string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metricWatcherRuns.WithLabelValues(watcher, result).Inc()
}

func recordEnrichment(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metricEnrichments.WithLabelValues(result).Inc()
}
