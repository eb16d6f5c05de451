// Package metrics records verification run metrics. The
// Prometheus implementation can be written as a node-exporter
// textfile after a run.
package metrics

import "time"

// CheckMetrics defines the interface for recording check metrics.
type CheckMetrics interface {
	// RecordCheck records one completed check.
	RecordCheck(featureID, status string, duration time.Duration)
	// RecordAssertion records an assertion evaluation.
	RecordAssertion(featureID, assertionType string, passed bool)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
	// SetSpecificationGaps sets the gauge of unresolved features.
	SetSpecificationGaps(count int)
}

// NoopMetrics is a no-op implementation of CheckMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordCheck(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordAssertion(_, _ string, _ bool)      {}
func (NoopMetrics) IncrementRunTotal()                       {}
func (NoopMetrics) SetSpecificationGaps(_ int)               {}
