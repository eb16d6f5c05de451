// Package assertion provides an extensible assertion evaluation
// engine. Assertions compare values observed in a live runtime
// against expected values declared in the expectation matrix.
package assertion

// Definition describes a single assertion to evaluate against
// an observed fact.
type Definition struct {
	// Type is the evaluator type (e.g., "equals",
	// "version_equals", "superset").
	Type string `json:"type" yaml:"type"`

	// Target is the name of the observed fact to check.
	Target string `json:"target" yaml:"target"`

	// Value is the expected value for single-value assertions.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds expected values for multi-value assertions
	// (e.g., "superset", "all_succeeded").
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Message is a human-readable description shown on
	// failure.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Expected returns the value the assertion compares against:
// Values for multi-value assertions, Value otherwise.
func (d Definition) Expected() any {
	if len(d.Values) > 0 {
		return d.Values
	}
	return d.Value
}

// Result captures the outcome of evaluating a single assertion.
type Result struct {
	// Type is the assertion type that was evaluated.
	Type string `json:"type"`

	// Target is the name of the observed fact.
	Target string `json:"target"`

	// Expected is the value the assertion expected.
	Expected any `json:"expected"`

	// Actual is the value that was observed.
	Actual any `json:"actual"`

	// Passed indicates whether the assertion succeeded.
	Passed bool `json:"passed"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
}
