package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/metrics"
	"digital.vasic.distverify/pkg/report"
	"digital.vasic.distverify/pkg/runner"
)

const defaultWidth = 100

// overrideFlags pin parts of the build environment.
type overrideFlags struct {
	os      string
	version string
	options string
}

func (o *overrideFlags) register(f *pflag.FlagSet) {
	f.StringVar(&o.os, "os", "", "pin the OS family: unix or windows")
	f.StringVar(&o.version, "python-version", "", "pin the runtime version, e.g. 3.12")
	f.StringVar(&o.options, "build-options", "", "pin the active build options, e.g. lto+static")
}

func (o *overrideFlags) resolve(f *pflag.FlagSet) (buildenv.Overrides, error) {
	var ov buildenv.Overrides
	if o.os != "" {
		family, err := buildenv.ParseFamily(o.os)
		if err != nil {
			return ov, err
		}
		ov.OS = family
	}
	if o.version != "" {
		v, err := buildenv.ParseVersion(o.version)
		if err != nil {
			return ov, err
		}
		ov.Version = v
	}
	if f.Changed("build-options") {
		options := o.options
		ov.BuildOptions = &options
	}
	return ov, nil
}

func newVerifyCommand(a *App) *cobra.Command {
	var ov overrideFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run every feature check against the interpreter",
		Long: `Run every feature check against the interpreter under test.

The build environment is derived from the interpreter itself and
from TERM, DISPLAY, TCL_LIBRARY, TERMINFO_DIRS and
BUILD_OPTIONS; --os, --python-version and --build-options
pin parts of it instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := ov.resolve(cmd.Flags())
			if err != nil {
				return usageError(err)
			}
			return a.verify(cmd.Context(), overrides)
		},
	}

	f := cmd.Flags()
	f.StringP("format", "f", "", "report format: text, markdown or json (default text)")
	f.StringP("output", "o", "", "write the report to this file instead of stdout")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile")
	f.String("history-file", "", "append a JSON line per run to this file")
	f.Bool("render", false, "render markdown reports for the terminal")
	ov.register(f)
	return cmd
}

func (a *App) verify(ctx context.Context, ov buildenv.Overrides) error {
	cfg := a.cfg

	m, err := a.LoadMatrix(cfg.Matrix)
	if err != nil {
		return usageError(err)
	}

	loader := a.NewLoader()
	if cfg.EnvFile != "" {
		if err := loader.Load(cfg.EnvFile); err != nil {
			return usageError(err)
		}
	}

	interp := a.NewInterpreter(cfg)
	id, err := interp.Identify(ctx)
	if err != nil {
		return internalError(err)
	}
	env, err := buildenv.NewBuilder(loader, nil).FromIdentity(id, ov)
	if err != nil {
		return internalError(err)
	}

	pm := metrics.NewPrometheusMetrics()
	engine := runner.NewEngine(m, interp,
		runner.WithLogger(a.logger),
		runner.WithTimeout(cfg.ProbeTimeout),
		runner.WithMetrics(pm),
		runner.WithInterpreter(cfg.Interpreter),
	)
	rep := engine.Run(ctx, env)

	if err := a.writeReport(rep); err != nil {
		return internalError(err)
	}
	if cfg.MetricsFile != "" {
		if err := pm.WriteTextfile(cfg.MetricsFile); err != nil {
			return internalError(err)
		}
	}
	if cfg.HistoryFile != "" {
		if err := report.AppendToHistory(cfg.HistoryFile, rep, a.Now()); err != nil {
			return internalError(err)
		}
		a.logger.Debug("history appended",
			logging.StringField("file", cfg.HistoryFile),
		)
	}

	if code := rep.ExitCode(); code != report.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func (a *App) writeReport(rep *report.RunReport) error {
	cfg := a.cfg

	var out io.Writer = a.Stdout
	color := a.IsTerminal(a.Stdout)
	if cfg.Output != "" && cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create report %s: %w", cfg.Output, err)
		}
		defer f.Close()
		out = f
		color = false
	}

	r, err := report.New(cfg.Format, report.Options{
		Color:  color,
		Render: cfg.Render,
		Width:  defaultWidth,
	})
	if err != nil {
		return err
	}
	if err := r.Write(out, rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
