package relations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Batch fetch metrics
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relations_fetch_duration_seconds",
		Help:    "Duration of one per-collection batch fetch",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "outcome"})

	MissingEntities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relations_missing_entities_total",
		Help: "Referenced ids the store did not return",
	}, []string{"collection"})

	// Coercion metrics
	UnknownCollections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relations_unknown_collection_total",
		Help: "Related records carried through as opaque entities",
	}, []string{"collection"})
)

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeCanceled = "canceled"
)
