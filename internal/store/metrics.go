package store

import "github.com/prometheus/client_golang/prometheus"

var (
	mutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_mutations_total",
			Help: "Effective store mutations that were persisted.",
		},
		[]string{"store", "op"},
	)

	writeConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_write_conflicts_total",
			Help: "Conditional writes rejected because the blob changed since it was read.",
		},
		[]string{"store"},
	)

	corruptedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_corrupted_total",
			Help: "Persisted blobs that failed validation during hydration.",
		},
		[]string{"key", "policy"},
	)
)

func init() {
	prometheus.MustRegister(mutationsTotal, writeConflictsTotal, corruptedTotal)
}
