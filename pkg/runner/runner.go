// Package runner provides the verification engine. It resolves
// the expectation matrix for a build environment, runs every
// feature check sequentially in declaration order and collects
// the outcomes into a run report without stopping at the first
// failure.
package runner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"digital.vasic.distverify/pkg/assertion"
	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/check"
	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/matrix"
	"digital.vasic.distverify/pkg/metrics"
	"digital.vasic.distverify/pkg/probe"
	"digital.vasic.distverify/pkg/report"
)

// Engine runs the checks of an expectation matrix against a live
// runtime.
type Engine struct {
	matrix      *matrix.Matrix
	prober      probe.Prober
	logger      logging.Logger
	metrics     metrics.CheckMetrics
	assertions  check.AssertionEngine
	timeout     time.Duration
	base        check.Config
	interpreter string
}

// NewEngine creates an Engine with the supplied options.
func NewEngine(
	m *matrix.Matrix,
	p probe.Prober,
	opts ...Option,
) *Engine {
	e := &Engine{
		matrix:     m,
		prober:     p,
		logger:     logging.NullLogger{},
		metrics:    metrics.NoopMetrics{},
		assertions: assertion.NewEngine(),
		timeout:    probe.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run verifies env. Every feature yields exactly one result; a
// failing, panicking or unresolvable feature never prevents the
// remaining features from running.
func (e *Engine) Run(
	ctx context.Context,
	env buildenv.Environment,
) *report.RunReport {
	env = env.Clone()
	resolutions := e.matrix.Resolve(env)

	gaps := 0
	for _, res := range resolutions {
		if res.Gap != nil {
			gaps++
		}
	}
	e.metrics.IncrementRunTotal()
	e.metrics.SetSpecificationGaps(gaps)

	e.logger.Info("verification started",
		logging.StringField("environment", env.String()),
		logging.IntField("features", len(resolutions)),
	)

	rep := &report.RunReport{
		Environment: report.Summarize(env, e.interpreter),
		Results:     make([]*check.Result, 0, len(resolutions)),
	}
	for _, res := range resolutions {
		var result *check.Result
		if res.Gap != nil {
			result = check.NewGapResult(res.Feature, res.Gap)
			e.logger.Error("specification gap",
				logging.FeatureField(res.Feature.ID),
				logging.ErrorField(res.Gap),
			)
		} else {
			c := check.NewFeatureCheck(res.Feature, res.Variant, e.prober)
			c.SetLogger(e.logger.WithFields(
				logging.FeatureField(res.Feature.ID),
			))
			c.SetAssertionEngine(e.assertions)
			result = e.executeCheck(ctx, c, res.Variant.Name, env)
		}
		e.record(result)
		rep.Results = append(rep.Results, result)
	}

	c := rep.Counts()
	e.logger.Info("verification finished",
		logging.IntField("passed", c.Passed),
		logging.IntField("failed", c.Failed),
		logging.IntField("skipped", c.Skipped),
		logging.IntField("errors", c.Errors),
		logging.IntField("exit_code", rep.ExitCode()),
	)
	return rep
}

// executeCheck runs a single check through its full lifecycle:
// configure -> validate -> execute -> cleanup. It always returns
// a final result.
func (e *Engine) executeCheck(
	ctx context.Context,
	c check.Check,
	variant string,
	env buildenv.Environment,
) (result *check.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = check.NewErrorResult(
				c, variant, fmt.Errorf("check panicked: %v", r),
			)
			e.logger.Error("check panicked",
				logging.FeatureField(string(c.ID())),
				logging.LogField("panic", r),
			)
		}
		result.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		return check.NewErrorResult(
			c, variant, fmt.Errorf("run cancelled: %w", err),
		)
	}

	if err := c.Configure(e.newConfig(c.ID(), env)); err != nil {
		return check.NewErrorResult(
			c, variant, fmt.Errorf("configuration failed: %w", err),
		)
	}
	defer func() {
		if err := c.Cleanup(ctx); err != nil {
			e.logger.Warn("cleanup failed",
				logging.FeatureField(string(c.ID())),
				logging.ErrorField(err),
			)
		}
	}()

	if err := c.Validate(ctx); err != nil {
		if errors.Is(err, check.ErrInapplicable) {
			e.logger.Debug("check skipped",
				logging.FeatureField(string(c.ID())),
				logging.ErrorField(err),
			)
			if fc, ok := c.(*check.FeatureCheck); ok {
				return check.NewSkippedResult(fc.Feature(), fc.Variant())
			}
			return &check.Result{
				FeatureID:   c.ID(),
				FeatureName: c.Name(),
				Variant:     variant,
				Status:      check.StatusSkipped,
				Failure:     check.FailureInapplicable,
				Reason:      err.Error(),
			}
		}
		return check.NewErrorResult(
			c, variant, fmt.Errorf("validation failed: %w", err),
		)
	}

	res, err := c.Execute(ctx)
	if err != nil {
		return check.NewErrorResult(
			c, variant, fmt.Errorf("execution failed: %w", err),
		)
	}
	if res == nil {
		return check.NewErrorResult(
			c, variant, errors.New("execution returned no result"),
		)
	}
	return res
}

// newConfig derives the per-check config from the engine's base
// config and the environment's probe variables.
func (e *Engine) newConfig(
	id check.ID,
	env buildenv.Environment,
) *check.Config {
	cfg := check.NewConfig(id)
	cfg.Verbose = e.base.Verbose
	cfg.Timeout = e.timeout
	if e.base.Timeout > 0 {
		cfg.Timeout = e.base.Timeout
	}
	maps.Copy(cfg.Environment, e.base.Environment)
	maps.Copy(cfg.Environment, env.ProbeEnv())
	return cfg
}

func (e *Engine) record(result *check.Result) {
	id := string(result.FeatureID)
	e.metrics.RecordCheck(id, result.Status, result.Duration)
	for _, a := range result.Assertions {
		e.metrics.RecordAssertion(id, a.Type, a.Passed)
	}

	fields := []logging.Field{
		logging.FeatureField(id),
		logging.StringField("status", result.Status),
		logging.DurationField("duration", result.Duration),
	}
	if result.Variant != "" {
		fields = append(fields, logging.VariantField(result.Variant))
	}
	switch result.Status {
	case check.StatusFailed:
		fields = append(fields, logging.StringField("failure", result.Failure))
		e.logger.Warn("check failed", fields...)
	case check.StatusError:
		fields = append(fields, logging.StringField("error", result.Error))
		e.logger.Error("check errored", fields...)
	default:
		e.logger.Info("check completed", fields...)
	}
}
