package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "distverify"

// PrometheusMetrics implements CheckMetrics on a private
// Prometheus registry.
type PrometheusMetrics struct {
	reg           *prometheus.Registry
	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	assertions    *prometheus.CounterVec
	runsTotal     prometheus.Counter
	gaps          prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewPrometheusMetrics creates a registry with the check
// collectors registered.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		reg: prometheus.NewRegistry(),
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "checks_total",
			Help:      "Completed feature checks by feature and status",
		}, []string{"feature", "status"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "check_duration_seconds",
			Help:      "Feature check duration including the probe run",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"feature"}),
		assertions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assertions_total",
			Help:      "Evaluated expectations by feature, type and result",
		}, []string{"feature", "type", "result"}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Total verification runs",
		}),
		gaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "specification_gaps",
			Help:      "Features with no single applicable matrix variant in the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last verification run",
		}),
	}
	m.reg.MustRegister(
		m.checksTotal,
		m.checkDuration,
		m.assertions,
		m.runsTotal,
		m.gaps,
		m.lastRun,
	)
	return m
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry { return m.reg }

func (m *PrometheusMetrics) RecordCheck(featureID, status string, duration time.Duration) {
	m.checksTotal.WithLabelValues(featureID, status).Inc()
	m.checkDuration.WithLabelValues(featureID).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordAssertion(featureID, assertionType string, passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	m.assertions.WithLabelValues(featureID, assertionType, result).Inc()
}

func (m *PrometheusMetrics) IncrementRunTotal() {
	m.runsTotal.Inc()
	m.lastRun.SetToCurrentTime()
}

func (m *PrometheusMetrics) SetSpecificationGaps(count int) {
	m.gaps.Set(float64(count))
}

// WriteTextfile writes the registry in the text exposition format
// to path, atomically, for the node-exporter textfile collector.
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
