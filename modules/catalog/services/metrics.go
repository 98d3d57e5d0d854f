package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/catalog-api/pkg/serrors"
)

var (
	catalogMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "mutations_total",
		Help:      "Total number of service mutations broken down by operation and result.",
	}, []string{"operation", "result"})

	catalogIndexSync = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "index_sync",
		Name:      "total",
		Help:      "Total number of search index synchronizations broken down by action and result.",
	}, []string{"action", "result"})

	catalogIndexSyncLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Subsystem: "index_sync",
		Name:      "latency_seconds",
		Help:      "Search index call latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	catalogWriteConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "write",
		Name:      "conflicts_total",
		Help:      "Total number of catalog write conflicts broken down by kind.",
	}, []string{"kind"})
)

func recordMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = string(serrors.KindInternal)
		if svcErr, ok := serrors.As(err); ok {
			result = string(svcErr.Kind)
		}
	}
	catalogMutations.WithLabelValues(operation, result).Inc()
}

func recordIndexSync(action IndexAction, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	catalogIndexSync.WithLabelValues(string(action), result).Inc()
	catalogIndexSyncLatency.WithLabelValues(string(action)).Observe(elapsed.Seconds())
}

func recordWriteConflict(kind string) {
	if kind == "" {
		kind = "other"
	}
	catalogWriteConflicts.WithLabelValues(kind).Inc()
}
