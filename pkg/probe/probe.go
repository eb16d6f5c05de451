// Package probe observes a live interpreter by running small
// embedded probe programs inside it. Each probe writes a JSON
// document of facts to a scratch file; probes carry no
// expectations of their own.
package probe

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed scripts
var scripts embed.FS

// DefaultTimeout bounds a single probe run.
const DefaultTimeout = 60 * time.Second

// IdentityProbe reports the interpreter's OS name, version and
// executable path.
const IdentityProbe = "identity"

// ErrUnknownProbe is returned for a probe name with no embedded
// program.
var ErrUnknownProbe = errors.New("unknown probe")

// Facts are the named observations a probe reports. Values are
// decoded JSON: numbers are float64, lists []any, objects
// map[string]any.
type Facts map[string]any

// Request describes one probe run.
type Request struct {
	// Name is the probe program to run.
	Name string

	// PTY attaches the probe to a pseudo-terminal.
	PTY bool

	// Env holds variables added to the inherited environment.
	Env map[string]string

	// Timeout overrides the prober's default timeout when set.
	Timeout time.Duration
}

// Prober runs probes against a runtime.
type Prober interface {
	Observe(ctx context.Context, req Request) (Facts, error)
}

// AcquisitionError reports that a probe ran but could not
// initialize the capability under test.
type AcquisitionError struct {
	Probe string
	Cause string
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("probe %s: %s", e.Probe, e.Cause)
}

// ProcessError reports that the interpreter did not produce a
// probe document: it failed to start, crashed, timed out or wrote
// something unreadable.
type ProcessError struct {
	Probe    string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("probe %s: %v", e.Probe, e.Err)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Names lists the embedded probe programs, sorted.
func Names() []string {
	entries, err := fs.ReadDir(scripts, "scripts/probes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".py"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Has reports whether a probe program is embedded.
func Has(name string) bool {
	_, err := fs.Stat(scripts, path.Join("scripts/probes", name+".py"))
	return err == nil
}

// Source returns the complete program for a probe: the shared
// prelude, the probe body and the epilogue that writes the
// document.
func Source(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", fmt.Errorf("%w: %q", ErrUnknownProbe, name)
	}
	body, err := scripts.ReadFile(path.Join("scripts/probes", name+".py"))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownProbe, name)
	}
	prelude, err := scripts.ReadFile("scripts/prelude.py")
	if err != nil {
		return "", fmt.Errorf("read prelude: %w", err)
	}
	epilogue, err := scripts.ReadFile("scripts/epilogue.py")
	if err != nil {
		return "", fmt.Errorf("read epilogue: %w", err)
	}

	var b strings.Builder
	b.Write(prelude)
	b.WriteString("\n")
	b.Write(body)
	b.Write(epilogue)
	return b.String(), nil
}
