// Package report aggregates check results into a run report and
// renders it as styled text, Markdown or canonical JSON.
package report

import (
	"fmt"
	"strings"

	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/check"
)

// Process exit codes derived from a run.
const (
	// ExitOK: every applicable check passed.
	ExitOK = 0
	// ExitFailed: at least one check failed.
	ExitFailed = 1
	// ExitUsage: invalid invocation or configuration.
	ExitUsage = 2
	// ExitInternal: a specification gap or internal error.
	ExitInternal = 3
)

// EnvironmentSummary is the serializable view of the build
// environment a run was made against.
type EnvironmentSummary struct {
	OS          string   `json:"os"`
	Version     string   `json:"version"`
	Options     []string `json:"options"`
	Terminal    string   `json:"terminal,omitempty"`
	Display     string   `json:"display,omitempty"`
	TclLibrary  string   `json:"tcl_library,omitempty"`
	Interpreter string   `json:"interpreter,omitempty"`
}

// Summarize captures env for a report.
func Summarize(env buildenv.Environment, interpreter string) EnvironmentSummary {
	return EnvironmentSummary{
		OS:          string(env.OS),
		Version:     env.Version.String(),
		Options:     env.Options.Tokens(),
		Terminal:    env.Terminal,
		Display:     env.Display,
		TclLibrary:  env.Paths.TclLibrary,
		Interpreter: interpreter,
	}
}

// String renders e.g. "unix 3.12 [static+lto]".
func (s EnvironmentSummary) String() string {
	return fmt.Sprintf("%s %s [%s]",
		s.OS, s.Version, strings.Join(s.Options, buildenv.OptionSeparator))
}

// RunReport is the ordered outcome of one verification run.
type RunReport struct {
	Environment EnvironmentSummary `json:"environment"`
	Results     []*check.Result    `json:"results"`
}

// Counts tallies results by status.
type Counts struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Counts tallies the report's results.
func (r *RunReport) Counts() Counts {
	c := Counts{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case check.StatusPassed:
			c.Passed++
		case check.StatusFailed:
			c.Failed++
		case check.StatusSkipped:
			c.Skipped++
		default:
			c.Errors++
		}
	}
	return c
}

// Failed returns the failed results in declaration order.
func (r *RunReport) Failed() []*check.Result {
	return r.filter(func(res *check.Result) bool {
		return res.Status == check.StatusFailed
	})
}

// Gaps returns the results for features the matrix could not
// resolve.
func (r *RunReport) Gaps() []*check.Result {
	return r.filter(func(res *check.Result) bool {
		return res.Failure == check.FailureGap
	})
}

// Errors returns every result with error status, gaps included.
func (r *RunReport) Errors() []*check.Result {
	return r.filter(func(res *check.Result) bool {
		return res.Status == check.StatusError
	})
}

func (r *RunReport) filter(keep func(*check.Result) bool) []*check.Result {
	var out []*check.Result
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// ExitCode derives the process exit status. Errors take precedence
// over failures; skipped results never contribute.
func (r *RunReport) ExitCode() int {
	c := r.Counts()
	switch {
	case c.Errors > 0:
		return ExitInternal
	case c.Failed > 0:
		return ExitFailed
	}
	return ExitOK
}

// Passed reports whether the run signals success.
func (r *RunReport) Passed() bool { return r.ExitCode() == ExitOK }
