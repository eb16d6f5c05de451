package runner

import (
	"time"

	"digital.vasic.distverify/pkg/check"
	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/metrics"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine and its checks.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout sets the per-probe timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.CheckMetrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithAssertionEngine replaces the default assertion engine, e.g.
// one with custom evaluators registered.
func WithAssertionEngine(a check.AssertionEngine) Option {
	return func(e *Engine) {
		e.assertions = a
	}
}

// WithConfig sets the base config every check config is derived
// from. A non-zero Timeout overrides WithTimeout; Environment is
// merged under the build environment's probe variables.
func WithConfig(cfg check.Config) Option {
	return func(e *Engine) {
		e.base = cfg
	}
}

// WithInterpreter records the interpreter path in reports.
func WithInterpreter(path string) Option {
	return func(e *Engine) {
		e.interpreter = path
	}
}
