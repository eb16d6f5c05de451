// Package buildenv describes the build environment a distribution
// is verified against: operating system family, runtime version,
// active build options and resolved support paths.
package buildenv

import (
	"fmt"
	"strings"
)

// Family is an operating-system family.
type Family string

// Supported OS families.
const (
	Unix    Family = "unix"
	Windows Family = "windows"
)

// Families lists every supported family in a stable order.
var Families = []Family{Unix, Windows}

// ParseFamily accepts a family name, a GOOS value or a Python
// os.name value.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unix", "posix", "linux", "darwin", "macos",
		"freebsd", "netbsd", "openbsd":
		return Unix, nil
	case "windows", "nt", "win32":
		return Windows, nil
	}
	return "", fmt.Errorf("unknown OS family %q", s)
}

// Paths holds filesystem locations resolved before any check runs.
type Paths struct {
	// InstallRoot is the root of the distribution under test.
	InstallRoot string `json:"install_root,omitempty"`

	// TclLibrary is the bundled Tcl support directory, if found.
	TclLibrary string `json:"tcl_library,omitempty"`

	// TerminfoDirs are terminfo database directories handed to
	// probes when the caller did not set TERMINFO_DIRS.
	TerminfoDirs []string `json:"terminfo_dirs,omitempty"`
}

// Environment is an immutable snapshot of the context under test.
// It is built once at startup and passed by value to every check.
type Environment struct {
	OS       Family    `json:"os"`
	Version  Version   `json:"version"`
	Options  OptionSet `json:"-"`
	Terminal string    `json:"terminal,omitempty"`
	Display  string    `json:"display,omitempty"`
	Paths    Paths     `json:"paths"`
}

// HasOption reports whether the given build option is active.
func (e Environment) HasOption(token string) bool {
	return e.Options.Has(token)
}

// HasTerminal reports whether a terminal type is declared.
func (e Environment) HasTerminal() bool { return e.Terminal != "" }

// HasDisplay reports whether a display target is declared.
func (e Environment) HasDisplay() bool { return e.Display != "" }

// HasTclLibrary reports whether GUI toolkit support files were
// located.
func (e Environment) HasTclLibrary() bool {
	return e.Paths.TclLibrary != ""
}

// ProbeEnv returns the variables that probe processes need on top
// of the inherited process environment.
func (e Environment) ProbeEnv() map[string]string {
	env := map[string]string{}
	if e.Terminal != "" {
		env[EnvTerm] = e.Terminal
	}
	if e.Display != "" {
		env[EnvDisplay] = e.Display
	}
	if e.Paths.TclLibrary != "" {
		env[EnvTclLibrary] = e.Paths.TclLibrary
	}
	if len(e.Paths.TerminfoDirs) > 0 {
		env[EnvTerminfoDirs] = strings.Join(e.Paths.TerminfoDirs, ":")
	}
	return env
}

// String renders a compact one-line description, e.g.
// "unix 3.12 [static]".
func (e Environment) String() string {
	return fmt.Sprintf("%s %s [%s]", e.OS, e.Version, e.Options)
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (e Environment) Clone() Environment {
	out := e
	out.Options = e.Options.Clone()
	if e.Paths.TerminfoDirs != nil {
		out.Paths.TerminfoDirs = append(
			[]string(nil), e.Paths.TerminfoDirs...,
		)
	}
	return out
}
