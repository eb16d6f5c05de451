// Package check turns expectation-matrix rows into executable
// feature checks. Each check follows the lifecycle Configure ->
// Validate -> Execute -> Cleanup and produces a Result that is
// never mutated once returned.
package check

import (
	"context"
	"errors"

	"digital.vasic.distverify/pkg/assertion"
)

// ID uniquely identifies a check. It equals the feature
// identifier of the matrix row it verifies.
type ID string

// ErrInapplicable is returned by Validate when the resolved
// variant marks the feature as not applicable to the build
// environment.
var ErrInapplicable = errors.New("feature not applicable")

// Check defines the interface that all checks implement.
type Check interface {
	// ID returns the unique identifier for this check.
	ID() ID

	// Name returns the human-readable name of this check.
	Name() string

	// Description returns what this check verifies.
	Description() string

	// Category returns the category grouping for this check
	// (e.g., "crypto", "storage").
	Category() string

	// Configure applies runtime configuration to the check.
	// Must be called before Validate or Execute.
	Configure(config *Config) error

	// Validate checks that the feature applies to the build
	// environment. It returns an error wrapping ErrInapplicable
	// when the check must be skipped.
	Validate(ctx context.Context) error

	// Execute observes the runtime and returns the result.
	// Failures of the distribution are reported in the Result;
	// a non-nil error means the check itself could not run.
	Execute(ctx context.Context) (*Result, error)

	// Cleanup releases any resources allocated during
	// Configure or Execute.
	Cleanup(ctx context.Context) error
}

// AssertionEngine evaluates matrix expectations against observed
// facts.
type AssertionEngine interface {
	// EvaluateAll checks every definition against the value
	// named by its Target.
	EvaluateAll(
		defs []assertion.Definition,
		values map[string]any,
	) []assertion.Result
}
