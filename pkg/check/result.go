package check

import (
	"fmt"
	"time"

	"digital.vasic.distverify/pkg/assertion"
	"digital.vasic.distverify/pkg/matrix"
)

// Status constants for check outcomes.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Failure kinds classify every non-passing result.
const (
	// FailureMismatch: an observed value differs from the
	// expected value.
	FailureMismatch = "expectation_mismatch"

	// FailureAcquisition: the capability under test could not
	// be initialized at all.
	FailureAcquisition = "resource_acquisition"

	// FailureGap: no single matrix variant applies to the
	// environment.
	FailureGap = "specification_gap"

	// FailureInapplicable: the feature does not apply to the
	// environment.
	FailureInapplicable = "inapplicable"

	// FailureInternal: the check could not run.
	FailureInternal = "internal"
)

// Result is the outcome of one feature check.
type Result struct {
	// FeatureID is the feature identifier.
	FeatureID ID `json:"feature_id"`

	// FeatureName is the human-readable name.
	FeatureName string `json:"feature_name"`

	// Variant names the matrix variant that was applied.
	Variant string `json:"variant,omitempty"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	// Failure is one of the Failure* constants; empty when
	// the check passed.
	Failure string `json:"failure,omitempty"`

	// Reason explains a skip.
	Reason string `json:"reason,omitempty"`

	// Assertions holds the evaluated expectations.
	Assertions []assertion.Result `json:"assertions,omitempty"`

	// Error carries the underlying cause of an acquisition
	// failure, gap or internal error.
	Error string `json:"error,omitempty"`

	// Duration is the wall-clock execution time. It is left
	// out of serialized reports so reruns compare equal.
	Duration time.Duration `json:"-"`
}

// AllPassed returns true if every assertion in the result passed.
func (r *Result) AllPassed() bool {
	for _, a := range r.Assertions {
		if !a.Passed {
			return false
		}
	}
	return true
}

// IsFinal returns true if the status is a terminal state.
func (r *Result) IsFinal() bool {
	switch r.Status {
	case StatusPassed, StatusFailed, StatusSkipped, StatusError:
		return true
	}
	return false
}

// Counted reports whether the result takes part in the overall
// pass/fail decision. Skipped results never do.
func (r *Result) Counted() bool {
	return r.Status != StatusSkipped
}

// Diffs describes every failed assertion as
// "target (type): message".
func (r *Result) Diffs() []string {
	var out []string
	for _, a := range r.Assertions {
		if a.Passed {
			continue
		}
		out = append(out, fmt.Sprintf("%s (%s): %s", a.Target, a.Type, a.Message))
	}
	return out
}

// NewSkippedResult records an inapplicable feature.
func NewSkippedResult(f *matrix.Feature, v *matrix.Variant) *Result {
	return &Result{
		FeatureID:   ID(f.ID),
		FeatureName: f.DisplayName(),
		Variant:     v.Name,
		Status:      StatusSkipped,
		Failure:     FailureInapplicable,
		Reason:      v.Skip,
	}
}

// NewGapResult records a feature for which the matrix has no
// single applicable variant.
func NewGapResult(f *matrix.Feature, gap *matrix.GapError) *Result {
	return &Result{
		FeatureID:   ID(f.ID),
		FeatureName: f.DisplayName(),
		Status:      StatusError,
		Failure:     FailureGap,
		Error:       gap.Error(),
	}
}

// NewErrorResult records a check that could not run.
func NewErrorResult(c Check, variant string, err error) *Result {
	return &Result{
		FeatureID:   c.ID(),
		FeatureName: c.Name(),
		Variant:     variant,
		Status:      StatusError,
		Failure:     FailureInternal,
		Error:       err.Error(),
	}
}
