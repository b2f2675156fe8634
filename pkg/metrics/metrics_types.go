package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of one analysis process. The command line
// tools are batch jobs, so metrics are written to a textfile at exit rather
// than scraped.
type Registry struct {
	// Per-run pipeline metrics
	TimestepsTotal   *prometheus.CounterVec
	EdgesParsedTotal prometheus.Counter
	ComponentsTotal  *prometheus.CounterVec
	ParseErrorsTotal prometheus.Counter
	RunDuration      *prometheus.HistogramVec

	// Cross-run aggregation metrics
	RunsAggregatedTotal    *prometheus.CounterVec
	ForwardFilledRowsTotal prometheus.Counter
	MatricesWrittenTotal   prometheus.Counter

	// Site statistics metrics
	LinesScannedTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// Component kinds used as label values of ComponentsTotal
const (
	KindLigandOnly = "ligand_only"
	KindSingleton  = "singleton"
	KindMer        = "mer"
)

// Aggregation statuses used as label values of RunsAggregatedTotal
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initPipelineMetrics()
	r.initAggregateMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
