package matrix

import (
	"fmt"
	"strings"

	"digital.vasic.distverify/pkg/buildenv"
)

// GapError reports that a feature does not resolve to exactly one
// variant for an environment. It is a defect in the matrix, not in
// the distribution under test.
type GapError struct {
	Feature string
	Env     buildenv.Environment

	// Matched lists the variants that applied; empty for a
	// missing case.
	Matched []string
}

func (e *GapError) Error() string {
	if len(e.Matched) == 0 {
		return fmt.Sprintf(
			"feature %s: no variant applies to %s", e.Feature, e.Env,
		)
	}
	return fmt.Sprintf(
		"feature %s: variants %s all apply to %s",
		e.Feature, strings.Join(e.Matched, ", "), e.Env,
	)
}

// Overlap reports whether the gap is a multi-match rather than a
// missing case.
func (e *GapError) Overlap() bool { return len(e.Matched) > 1 }

// Resolution is the outcome of resolving one feature: exactly one
// of Variant and Gap is set.
type Resolution struct {
	Feature *Feature
	Variant *Variant
	Gap     *GapError
}

// Resolve returns the single variant of f that applies to env, or a
// *GapError.
func (f *Feature) Resolve(env buildenv.Environment) (*Variant, error) {
	v, gap := f.resolve(env)
	if gap != nil {
		return nil, gap
	}
	return v, nil
}

func (f *Feature) resolve(env buildenv.Environment) (*Variant, *GapError) {
	var match *Variant
	var names []string
	for i := range f.Variants {
		v := &f.Variants[i]
		if v.When.Matches(env) {
			match = v
			names = append(names, v.Name)
		}
	}
	if len(names) != 1 {
		return nil, &GapError{Feature: f.ID, Env: env, Matched: names}
	}
	return match, nil
}

// Resolve resolves every feature against env, in declaration order.
func (m *Matrix) Resolve(env buildenv.Environment) []Resolution {
	features := m.Features()
	out := make([]Resolution, 0, len(features))
	for _, f := range features {
		v, gap := f.resolve(env)
		out = append(out, Resolution{Feature: f, Variant: v, Gap: gap})
	}
	return out
}
