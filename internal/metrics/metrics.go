// File: internal/metrics/metrics.go
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

const namespace = "sqlanalyzer"

// Metrics records report engine telemetry into a private Prometheus registry.
// It satisfies results.Recorder. A CLI run is short-lived, so the registry is
// flushed to a node_exporter textfile instead of being scraped.
type Metrics struct {
	registry *prometheus.Registry

	reportsTotal       *prometheus.CounterVec
	extractedTotal     prometheus.Counter
	mergedTotal        prometheus.Counter
	generationDuration prometheus.Histogram
	failuresTotal      *prometheus.CounterVec
}

// New creates a Metrics instance backed by a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		reportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Integrated reports generated, by overall risk level.",
		}, []string{"risk_level"}),
		extractedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_extracted_total",
			Help:      "Recommendations read from dimension results before deduplication.",
		}),
		mergedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_merged_total",
			Help:      "Recommendations folded into an earlier duplicate.",
		}),
		generationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_generation_seconds",
			Help:      "Time spent generating one integrated report.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		failuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_failures_total",
			Help:      "Reports that fell back to the empty or error shape, by kind.",
		}, []string{"kind"}),
	}
}

// ObserveReport counts a finished report and its generation time.
func (m *Metrics) ObserveReport(level schemas.RiskLevel, elapsed time.Duration) {
	m.reportsTotal.WithLabelValues(string(level)).Inc()
	m.generationDuration.Observe(elapsed.Seconds())
}

// ObserveRecommendations counts extracted recommendations and how many of
// them were merged away.
func (m *Metrics) ObserveRecommendations(extracted, unique int) {
	m.extractedTotal.Add(float64(extracted))
	if merged := extracted - unique; merged > 0 {
		m.mergedTotal.Add(float64(merged))
	}
}

// ObserveFailure counts a degraded report.
func (m *Metrics) ObserveFailure(kind string) {
	m.failuresTotal.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying gatherer.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format. The
// file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
