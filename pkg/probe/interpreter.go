package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"digital.vasic.distverify/pkg/buildenv"
)

// commandFunc is the function used to create exec.Cmd instances.
// It can be overridden in tests for dependency injection.
var commandFunc = exec.CommandContext

// outputLimit caps how much interpreter output is kept for error
// messages.
const outputLimit = 4096

// document is what a probe writes to its output file.
type document struct {
	OK    bool           `json:"ok"`
	Facts map[string]any `json:"facts"`
	Error string         `json:"error"`
}

// Interpreter runs probes as `<path> -c <program> <out.json>`.
type Interpreter struct {
	path    string
	env     map[string]string
	timeout time.Duration
	tempDir string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTimeout sets the default per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithEnv adds a variable to every probe's environment.
func WithEnv(key, value string) Option {
	return func(i *Interpreter) {
		i.env[key] = value
	}
}

// WithTempDir sets where probe scratch files are created.
func WithTempDir(dir string) Option {
	return func(i *Interpreter) {
		i.tempDir = dir
	}
}

// NewInterpreter creates an Interpreter for the executable at path.
func NewInterpreter(path string, opts ...Option) *Interpreter {
	i := &Interpreter{
		path:    path,
		env:     make(map[string]string),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Path returns the interpreter executable.
func (i *Interpreter) Path() string { return i.path }

// Observe runs one probe and returns its facts. A probe that could
// not acquire its capability yields *AcquisitionError; an
// interpreter that produced no usable document yields
// *ProcessError.
func (i *Interpreter) Observe(
	ctx context.Context,
	req Request,
) (Facts, error) {
	src, err := Source(req.Name)
	if err != nil {
		return nil, err
	}

	out, err := os.CreateTemp(i.tempDir, "distverify-"+req.Name+"-*.json")
	if err != nil {
		return nil, fmt.Errorf("create probe output file: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer os.Remove(outPath)

	timeout := i.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := commandFunc(execCtx, i.path, "-c", src, outPath)
	cmd.WaitDelay = 2 * time.Second
	cmd.Env = os.Environ()
	for k, v := range i.env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range req.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	output := &tailBuffer{limit: outputLimit}
	if req.PTY {
		err = runWithPTY(cmd, output)
	} else {
		cmd.Stdout = output
		cmd.Stderr = output
		err = cmd.Run()
	}
	if err != nil {
		perr := &ProcessError{
			Probe:  req.Name,
			Output: output.String(),
			Err:    err,
		}
		var exitErr *exec.ExitError
		switch {
		case errors.Is(execCtx.Err(), context.DeadlineExceeded):
			perr.Err = fmt.Errorf("timed out after %s", timeout)
		case errors.As(err, &exitErr):
			perr.ExitCode = exitErr.ExitCode()
			perr.Err = errors.New("interpreter failed")
		}
		return nil, perr
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read probe output: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ProcessError{
			Probe:  req.Name,
			Output: output.String(),
			Err:    errors.New("no probe document written"),
		}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ProcessError{
			Probe: req.Name,
			Err:   fmt.Errorf("invalid probe document: %w", err),
		}
	}
	if !doc.OK {
		return nil, &AcquisitionError{Probe: req.Name, Cause: doc.Error}
	}
	if doc.Facts == nil {
		doc.Facts = map[string]any{}
	}
	return Facts(doc.Facts), nil
}

// Identify runs the identity probe.
func (i *Interpreter) Identify(
	ctx context.Context,
) (buildenv.Identity, error) {
	facts, err := i.Observe(ctx, Request{Name: IdentityProbe})
	if err != nil {
		return buildenv.Identity{}, fmt.Errorf(
			"identify interpreter %s: %w", i.path, err,
		)
	}
	return identityFromFacts(facts)
}

func identityFromFacts(facts Facts) (buildenv.Identity, error) {
	var id buildenv.Identity

	osName, ok := facts["os_name"].(string)
	if !ok {
		return id, fmt.Errorf("identity: os_name missing")
	}
	id.OSName = osName
	id.Executable, _ = facts["executable"].(string)

	raw, ok := facts["version"].([]any)
	if !ok {
		return id, fmt.Errorf("identity: version missing")
	}
	for _, v := range raw {
		n, ok := v.(float64)
		if !ok {
			return id, fmt.Errorf("identity: version %v is not numeric", raw)
		}
		id.Version = append(id.Version, int(n))
	}
	return id, nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
