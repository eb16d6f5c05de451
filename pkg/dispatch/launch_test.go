package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withShell routes spawned commands through sh so tests control
// the driver's behavior.
func withShell(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	orig := commandFunc
	commandFunc = func(ctx context.Context, _ string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", append([]string{"-c", script, "sh"}, args...)...)
	}
	t.Cleanup(func() { commandFunc = orig })
}

func TestLaunch_SpawnSuccess(t *testing.T) {
	withShell(t, `echo "$PYTHONUNBUFFERED $*" && pwd`)
	dir := t.TempDir()

	var out bytes.Buffer
	inv := Invocation{
		Mode: ModeSpawn,
		Path: "python",
		Argv: []string{"python", "build.py", "--sh"},
		Dir:  dir,
		Env:  []string{"PYTHONUNBUFFERED=1"},
	}
	require.NoError(t, Launch(context.Background(), inv, Streams{Stdout: &out}))
	assert.Contains(t, out.String(), "1 build.py --sh")
}

func TestLaunch_SpawnPropagatesExitCode(t *testing.T) {
	withShell(t, "exit 7")

	inv := Invocation{Mode: ModeSpawn, Path: "python", Argv: []string{"python", "build.py"}}
	err := Launch(context.Background(), inv, Streams{})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 7, exitErr.Code)
}

func TestLaunch_SpawnMissingProgram(t *testing.T) {
	inv := Invocation{
		Mode: ModeSpawn,
		Path: "/nonexistent/python-for-distverify",
		Argv: []string{"/nonexistent/python-for-distverify", "build.py"},
	}
	err := Launch(context.Background(), inv, Streams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start build driver")

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestLaunch_SpawnEmptyArgv(t *testing.T) {
	err := Launch(context.Background(), Invocation{Mode: ModeSpawn}, Streams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty argument vector")
}
