package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// commandFunc builds spawned driver commands; tests replace it.
var commandFunc = exec.CommandContext

// Streams are the standard streams handed to a spawned driver.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdStreams returns the process's own standard streams.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Launch starts the driver. In replace mode it only returns on
// failure; in spawn mode a non-zero driver exit is returned as
// *ExitError with the driver's exact code.
func Launch(ctx context.Context, inv Invocation, s Streams) error {
	if inv.Mode == ModeReplace {
		return replace(inv)
	}
	return spawn(ctx, inv, s)
}

func spawn(ctx context.Context, inv Invocation, s Streams) error {
	if len(inv.Argv) == 0 {
		return fmt.Errorf("empty argument vector")
	}
	cmd := commandFunc(ctx, inv.Path, inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("start build driver %s: %w", inv.Path, err)
}
