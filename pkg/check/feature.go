package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/matrix"
	"digital.vasic.distverify/pkg/probe"
)

// FeatureCheck verifies one feature area: it runs the feature's
// probe in the live runtime and evaluates the resolved variant's
// expectations against the observed facts.
type FeatureCheck struct {
	BaseCheck

	feature *matrix.Feature
	variant *matrix.Variant
	prober  probe.Prober
}

// NewFeatureCheck binds a feature and its resolved variant to the
// prober that observes the runtime.
func NewFeatureCheck(
	f *matrix.Feature,
	v *matrix.Variant,
	p probe.Prober,
) *FeatureCheck {
	return &FeatureCheck{
		BaseCheck: NewBaseCheck(
			ID(f.ID), f.DisplayName(), f.Description, f.Category,
		),
		feature: f,
		variant: v,
		prober:  p,
	}
}

// Feature returns the matrix feature under check.
func (c *FeatureCheck) Feature() *matrix.Feature { return c.feature }

// Variant returns the resolved matrix variant.
func (c *FeatureCheck) Variant() *matrix.Variant { return c.variant }

// Validate returns an error wrapping ErrInapplicable for a skip
// variant.
func (c *FeatureCheck) Validate(ctx context.Context) error {
	if err := c.BaseCheck.Validate(ctx); err != nil {
		return err
	}
	if c.variant.Skipped() {
		return fmt.Errorf("%w: %s", ErrInapplicable, c.variant.Skip)
	}
	return nil
}

// Execute observes the feature and evaluates the variant's
// expectations. A probe that could not acquire the capability is
// a failed result with the cause attached; any other probe error
// is returned.
func (c *FeatureCheck) Execute(ctx context.Context) (*Result, error) {
	start := time.Now()
	req := probe.Request{Name: c.feature.Probe, PTY: c.feature.PTY}
	if c.config != nil {
		req.Env = c.config.Environment
		req.Timeout = c.config.Timeout
	}

	c.logDebug("running probe",
		logging.FeatureField(c.feature.ID),
		logging.ProbeField(req.Name),
		logging.BoolField("pty", req.PTY),
	)

	facts, err := c.prober.Observe(ctx, req)
	if err != nil {
		var acq *probe.AcquisitionError
		var proc *probe.ProcessError
		if errors.As(err, &acq) || errors.As(err, &proc) {
			c.logWarn("resource acquisition failed",
				logging.FeatureField(c.feature.ID),
				logging.ErrorField(err),
			)
			return c.CreateResult(
				c.variant.Name, StatusFailed, FailureAcquisition,
				start, nil, err.Error(),
			), nil
		}
		return nil, fmt.Errorf("observe %s: %w", c.feature.ID, err)
	}

	assertions := c.EvaluateAssertions(c.variant.Expect, facts)
	status, failure := StatusPassed, ""
	for _, a := range assertions {
		if !a.Passed {
			status, failure = StatusFailed, FailureMismatch
			break
		}
	}
	return c.CreateResult(
		c.variant.Name, status, failure, start, assertions, "",
	), nil
}
