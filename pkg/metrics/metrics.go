package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// All recording methods accept a nil receiver so callers can run without
// metrics.

// RecordTimestep records one processed timestep and its edge count
func (r *Registry) RecordTimestep(tool string, edges int) {
	if r == nil {
		return
	}
	r.TimestepsTotal.WithLabelValues(tool).Inc()
	r.EdgesParsedTotal.Add(float64(edges))
}

// RecordComponent records one classified component by kind
func (r *Registry) RecordComponent(kind string) {
	if r == nil {
		return
	}
	r.ComponentsTotal.WithLabelValues(kind).Inc()
}

// RecordParseError records one rejected line
func (r *Registry) RecordParseError() {
	if r == nil {
		return
	}
	r.ParseErrorsTotal.Inc()
}

// ObserveRun records the processing time of one run file
func (r *Registry) ObserveRun(tool string, duration time.Duration) {
	if r == nil {
		return
	}
	r.RunDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordRunAggregated records the outcome of loading one run file, with
// the number of rows padded by forward-fill
func (r *Registry) RecordRunAggregated(status string, filledRows int) {
	if r == nil {
		return
	}
	r.RunsAggregatedTotal.WithLabelValues(status).Inc()
	if filledRows > 0 {
		r.ForwardFilledRowsTotal.Add(float64(filledRows))
	}
}

// RecordMatrixWritten records one written matrix file
func (r *Registry) RecordMatrixWritten() {
	if r == nil {
		return
	}
	r.MatricesWrittenTotal.Inc()
}

// RecordLinesScanned records lines consumed by a site statistics tool
func (r *Registry) RecordLinesScanned(tool string, lines int) {
	if r == nil {
		return
	}
	r.LinesScannedTotal.WithLabelValues(tool).Add(float64(lines))
}

// WriteTextfile writes every metric in the text exposition format to path,
// for pickup by a node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
