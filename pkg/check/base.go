package check

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.distverify/pkg/assertion"
	"digital.vasic.distverify/pkg/logging"
)

// BaseCheck provides the identity, configuration and helper
// methods shared by checks. Embed it and implement Execute.
type BaseCheck struct {
	id          ID
	name        string
	description string
	category    string
	config      *Config
	logger      logging.Logger
	assertions  AssertionEngine
}

// NewBaseCheck creates a BaseCheck with the given identity
// fields. Logger and AssertionEngine can be set later via setters.
func NewBaseCheck(id ID, name, description, category string) BaseCheck {
	return BaseCheck{
		id:          id,
		name:        name,
		description: description,
		category:    category,
	}
}

// ID returns the check identifier.
func (b *BaseCheck) ID() ID { return b.id }

// Name returns the check name.
func (b *BaseCheck) Name() string { return b.name }

// Description returns the check description.
func (b *BaseCheck) Description() string { return b.description }

// Category returns the check category.
func (b *BaseCheck) Category() string { return b.category }

// Config returns the current runtime configuration, or nil if
// Configure has not been called.
func (b *BaseCheck) Config() *Config { return b.config }

// SetLogger sets the logger used by this check.
func (b *BaseCheck) SetLogger(l logging.Logger) {
	b.logger = l
}

// SetAssertionEngine sets the assertion engine used by this check.
func (b *BaseCheck) SetAssertionEngine(e AssertionEngine) {
	b.assertions = e
}

// Configure stores the runtime config.
func (b *BaseCheck) Configure(config *Config) error {
	if config == nil {
		return fmt.Errorf("config must not be nil")
	}
	b.config = config
	return nil
}

// Validate fails when the check has not been configured.
func (b *BaseCheck) Validate(_ context.Context) error {
	if b.config == nil {
		return fmt.Errorf("check %s: not configured", b.id)
	}
	return nil
}

// Cleanup is a no-op by default. The logger is shared with the
// engine and is not closed here.
func (b *BaseCheck) Cleanup(_ context.Context) error {
	return nil
}

// GetEnv returns an environment variable from the config, or
// the fallback value if not set.
func (b *BaseCheck) GetEnv(key, fallback string) string {
	if b.config == nil {
		return fallback
	}
	return b.config.GetEnv(key, fallback)
}

// EvaluateAssertions evaluates defs against the observed values.
// Without an engine every assertion fails.
func (b *BaseCheck) EvaluateAssertions(
	defs []assertion.Definition,
	values map[string]any,
) []assertion.Result {
	if b.assertions == nil {
		results := make([]assertion.Result, len(defs))
		for i, d := range defs {
			results[i] = assertion.Result{
				Type:     d.Type,
				Target:   d.Target,
				Expected: d.Expected(),
				Passed:   false,
				Message:  "no assertion engine configured",
			}
		}
		return results
	}
	return b.assertions.EvaluateAll(defs, values)
}

// CreateResult builds a Result pre-populated with this check's
// identity and the given outcome.
func (b *BaseCheck) CreateResult(
	variant, status, failure string,
	start time.Time,
	assertions []assertion.Result,
	errMsg string,
) *Result {
	return &Result{
		FeatureID:   b.id,
		FeatureName: b.name,
		Variant:     variant,
		Status:      status,
		Failure:     failure,
		Assertions:  assertions,
		Error:       errMsg,
		Duration:    time.Since(start),
	}
}

func (b *BaseCheck) logDebug(msg string, fields ...logging.Field) {
	if b.logger != nil {
		b.logger.Debug(msg, fields...)
	}
}

func (b *BaseCheck) logWarn(msg string, fields ...logging.Field) {
	if b.logger != nil {
		b.logger.Warn(msg, fields...)
	}
}
