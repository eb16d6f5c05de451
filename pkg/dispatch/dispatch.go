// Package dispatch launches the platform build driver for the
// distribution build. Selecting the driver is a pure function of
// the host OS; Launch is the only side-effecting step.
package dispatch

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// EnvUnbuffered forces unbuffered output from the build driver.
const EnvUnbuffered = "PYTHONUNBUFFERED"

// Mode is how the driver process is started.
type Mode int

const (
	// ModeReplace replaces the current process with the driver.
	ModeReplace Mode = iota

	// ModeSpawn runs the driver as a child and propagates its
	// exit code.
	ModeSpawn
)

func (m Mode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "spawn"
}

// UnsupportedHostError is returned for a host OS with no build
// driver.
type UnsupportedHostError struct {
	Host string
}

func (e *UnsupportedHostError) Error() string {
	return fmt.Sprintf("unsupported host system: %s", e.Host)
}

// ExitError carries the exact exit code of a failed driver.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("build driver exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Request describes a build launch.
type Request struct {
	// Root is the repository root holding cpython-unix and
	// cpython-windows.
	Root string

	// Python is the interpreter that runs the driver.
	Python string

	// Args are forwarded to the driver unchanged.
	Args []string

	// Env is the base environment, usually os.Environ().
	Env []string
}

// Invocation is the fully resolved driver command.
type Invocation struct {
	Mode Mode

	// Path is the program to run.
	Path string

	// Argv is the complete argument vector, Argv[0] included.
	Argv []string

	// Dir is the working directory.
	Dir string

	// Env is the complete environment.
	Env []string
}

type driver struct {
	mode   Mode
	dir    string
	script string
}

var drivers = map[string]driver{
	"linux":   {ModeReplace, "cpython-unix", "build-main.py"},
	"darwin":  {ModeReplace, "cpython-unix", "build-main.py"},
	"windows": {ModeSpawn, "cpython-windows", "build.py"},
}

// Hosts lists the supported host systems, sorted.
func Hosts() []string {
	hosts := make([]string, 0, len(drivers))
	for h := range drivers {
		hosts = append(hosts, h)
	}
	slices.Sort(hosts)
	return hosts
}

// Select maps a host OS (a GOOS value) to the driver invocation.
func Select(host string, req Request) (Invocation, error) {
	d, ok := drivers[host]
	if !ok {
		return Invocation{}, &UnsupportedHostError{Host: host}
	}
	if req.Python == "" {
		return Invocation{}, fmt.Errorf("python interpreter must not be empty")
	}

	argv := make([]string, 0, len(req.Args)+2)
	argv = append(argv, req.Python, d.script)
	argv = append(argv, req.Args...)

	return Invocation{
		Mode: d.mode,
		Path: req.Python,
		Argv: argv,
		Dir:  filepath.Join(req.Root, d.dir),
		Env:  withUnbuffered(req.Env),
	}, nil
}

// withUnbuffered returns env with PYTHONUNBUFFERED=1, replacing
// any existing value.
func withUnbuffered(env []string) []string {
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, EnvUnbuffered+"=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, EnvUnbuffered+"=1")
}

// String renders the invocation as a POSIX shell command line,
// e.g. "cd /src/cpython-unix && PYTHONUNBUFFERED=1 python3
// build-main.py --help".
func (inv Invocation) String() string {
	words := make([]string, 0, len(inv.Argv)+4)
	if inv.Dir != "" {
		words = append(words, "cd", quote(inv.Dir), "&&")
	}
	words = append(words, EnvUnbuffered+"=1")
	for _, a := range inv.Argv {
		words = append(words, quote(a))
	}
	return strings.Join(words, " ")
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return q
}
