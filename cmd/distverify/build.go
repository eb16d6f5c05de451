package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"digital.vasic.distverify/pkg/dispatch"
	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/report"
)

func newBuildCommand(a *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "build [flags] [-- driver-args...]",
		Short: "Run the platform build driver",
		Long: `Run the build driver for the host platform with PYTHONUNBUFFERED=1.

On Linux and macOS the process is replaced by
"<python> build-main.py <args>" run in <build-root>/cpython-unix.
On Windows "<python> build.py <args>" runs in
<build-root>/cpython-windows and its exit code is propagated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.build(cmd.Context(), args, dryRun)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&dryRun, "dry-run", false, "print the driver command instead of running it")
	f.String("build-root", "", "directory holding cpython-unix and cpython-windows (default .)")
	f.String("build-python", "", "interpreter that runs the build driver (default python3)")
	return cmd
}

func (a *App) build(ctx context.Context, args []string, dryRun bool) error {
	inv, err := dispatch.Select(a.Host, dispatch.Request{
		Root:   a.cfg.BuildRoot,
		Python: a.cfg.BuildPython,
		Args:   args,
		Env:    a.Environ(),
	})
	if err != nil {
		var hostErr *dispatch.UnsupportedHostError
		if errors.As(err, &hostErr) {
			return &ExitError{Code: report.ExitFailed, Err: err}
		}
		return usageError(err)
	}

	if dryRun {
		_, err := a.Stdout.Write([]byte(inv.String() + "\n"))
		return err
	}

	a.logger.Info("launching build driver",
		logging.StringField("mode", inv.Mode.String()),
		logging.StringField("dir", inv.Dir),
	)
	err = a.Launch(ctx, inv, dispatch.Streams{
		Stdin:  a.Stdin,
		Stdout: a.Stdout,
		Stderr: a.Stderr,
	})
	if err == nil {
		return nil
	}
	var exitErr *dispatch.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.Code}
	}
	return &ExitError{Code: report.ExitFailed, Err: err}
}
