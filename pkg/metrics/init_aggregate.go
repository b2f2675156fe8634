package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAggregateMetrics() {
	r.RunsAggregatedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindstat_runs_aggregated_total",
			Help: "Total number of run files loaded for aggregation by status",
		},
		[]string{"status"},
	)

	r.ForwardFilledRowsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bindstat_forward_filled_rows_total",
			Help: "Total number of rows padded by repeating the last row of a short run",
		},
	)

	r.MatricesWrittenTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bindstat_matrices_written_total",
			Help: "Total number of category matrix files written",
		},
	)
}
