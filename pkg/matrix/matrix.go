// Package matrix holds the expectation matrix: per feature area, a
// list of variants whose applicability predicates partition the
// supported build environments, each carrying the expectations a
// correctly built distribution must meet.
package matrix

import (
	"fmt"
	"slices"
	"strings"

	"digital.vasic.distverify/pkg/assertion"
	"digital.vasic.distverify/pkg/buildenv"
)

// Feature is one independently checkable capability of a
// distribution.
type Feature struct {
	// ID is the feature identifier (e.g., "sqlite").
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description explains what the feature area covers.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Category groups related features (e.g., "storage").
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Probe names the observation program run for this feature.
	Probe string `json:"probe" yaml:"probe"`

	// PTY requests a pseudo-terminal for the probe.
	PTY bool `json:"pty,omitempty" yaml:"pty,omitempty"`

	// Variants are mutually exclusive expectation sets.
	Variants []Variant `json:"variants" yaml:"variants"`
}

// Variant is one row of a feature: an applicability predicate and
// either a skip reason or the expectations to evaluate.
type Variant struct {
	Name   string                 `json:"name" yaml:"name"`
	When   Applicability          `json:"when,omitempty" yaml:"when,omitempty"`
	Skip   string                 `json:"skip,omitempty" yaml:"skip,omitempty"`
	Expect []assertion.Definition `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// Skipped reports whether the variant marks the feature as
// inapplicable.
func (v Variant) Skipped() bool { return v.Skip != "" }

// Applicability is a pure predicate over a build environment.
// Every populated field must hold; an empty Applicability matches
// every environment.
type Applicability struct {
	// OS restricts the variant to the listed families.
	OS []buildenv.Family `json:"os,omitempty" yaml:"os,omitempty"`

	// Since is the first runtime version the variant applies to.
	Since *buildenv.Version `json:"since,omitempty" yaml:"since,omitempty"`

	// Before is the first runtime version the variant no longer
	// applies to.
	Before *buildenv.Version `json:"before,omitempty" yaml:"before,omitempty"`

	// With lists build options that must all be active.
	With []string `json:"with,omitempty" yaml:"with,omitempty"`

	// Without lists build options that must all be inactive.
	Without []string `json:"without,omitempty" yaml:"without,omitempty"`

	Terminal   *bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	Display    *bool `json:"display,omitempty" yaml:"display,omitempty"`
	TclLibrary *bool `json:"tcl_library,omitempty" yaml:"tcl_library,omitempty"`
}

// Matches evaluates the predicate against env.
func (a Applicability) Matches(env buildenv.Environment) bool {
	if len(a.OS) > 0 && !slices.Contains(a.OS, env.OS) {
		return false
	}
	if a.Since != nil && env.Version.Less(*a.Since) {
		return false
	}
	if a.Before != nil && !env.Version.Less(*a.Before) {
		return false
	}
	for _, token := range a.With {
		if !env.HasOption(token) {
			return false
		}
	}
	for _, token := range a.Without {
		if env.HasOption(token) {
			return false
		}
	}
	if a.Terminal != nil && *a.Terminal != env.HasTerminal() {
		return false
	}
	if a.Display != nil && *a.Display != env.HasDisplay() {
		return false
	}
	if a.TclLibrary != nil && *a.TclLibrary != env.HasTclLibrary() {
		return false
	}
	return true
}

// String renders the predicate compactly, e.g.
// "os=windows before=3.11 with=static".
func (a Applicability) String() string {
	var parts []string
	if len(a.OS) > 0 {
		names := make([]string, len(a.OS))
		for i, f := range a.OS {
			names[i] = string(f)
		}
		parts = append(parts, "os="+strings.Join(names, ","))
	}
	if a.Since != nil {
		parts = append(parts, "since="+a.Since.String())
	}
	if a.Before != nil {
		parts = append(parts, "before="+a.Before.String())
	}
	if len(a.With) > 0 {
		parts = append(parts, "with="+strings.Join(a.With, ","))
	}
	if len(a.Without) > 0 {
		parts = append(parts, "without="+strings.Join(a.Without, ","))
	}
	for _, flag := range []struct {
		name string
		v    *bool
	}{
		{"terminal", a.Terminal},
		{"display", a.Display},
		{"tcl_library", a.TclLibrary},
	} {
		if flag.v != nil {
			parts = append(parts, fmt.Sprintf("%s=%t", flag.name, *flag.v))
		}
	}
	if len(parts) == 0 {
		return "always"
	}
	return strings.Join(parts, " ")
}

// Validate checks the structural rules that the schema cannot
// express.
func (f *Feature) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("feature id must not be empty")
	}
	if f.Probe == "" {
		return fmt.Errorf("feature %s: probe must not be empty", f.ID)
	}
	if len(f.Variants) == 0 {
		return fmt.Errorf("feature %s: no variants declared", f.ID)
	}

	seen := make(map[string]bool, len(f.Variants))
	for _, v := range f.Variants {
		if v.Name == "" {
			return fmt.Errorf(
				"feature %s: variant name must not be empty", f.ID,
			)
		}
		if seen[v.Name] {
			return fmt.Errorf(
				"feature %s: duplicate variant %s", f.ID, v.Name,
			)
		}
		seen[v.Name] = true

		switch {
		case v.Skipped() && len(v.Expect) > 0:
			return fmt.Errorf(
				"feature %s: variant %s both skips and expects",
				f.ID, v.Name,
			)
		case !v.Skipped() && len(v.Expect) == 0:
			return fmt.Errorf(
				"feature %s: variant %s has no expectations",
				f.ID, v.Name,
			)
		}
	}
	return nil
}

// DisplayName returns Name, falling back to ID.
func (f *Feature) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}
