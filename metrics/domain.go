package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VisitsRecorded visit events appended, by kind
	VisitsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menuqr_visits_recorded_total",
			Help: "Visit events recorded by kind",
		},
		[]string{"kind"},
	)

	// SlugRetries slug candidates lost to a concurrent writer
	SlugRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menuqr_slug_retries_total",
		Help: "Slug allocations retried after a unique constraint violation",
	})
)
