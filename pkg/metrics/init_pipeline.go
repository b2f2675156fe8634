package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.TimestepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindstat_timesteps_total",
			Help: "Total number of timesteps processed",
		},
		[]string{"tool"},
	)

	r.EdgesParsedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bindstat_edges_parsed_total",
			Help: "Total number of binding edges parsed",
		},
	)

	r.ComponentsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindstat_components_total",
			Help: "Total number of connected components by kind",
		},
		[]string{"kind"},
	)

	r.ParseErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bindstat_parse_errors_total",
			Help: "Total number of lines rejected by the edge parser",
		},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bindstat_run_duration_seconds",
			Help:    "Time to process one run file in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"tool"},
	)

	r.LinesScannedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindstat_site_lines_scanned_total",
			Help: "Total number of lines scanned for site occupancy",
		},
		[]string{"tool"},
	)
}
