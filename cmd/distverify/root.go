package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/config"
	"digital.vasic.distverify/pkg/dispatch"
	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/matrix"
	"digital.vasic.distverify/pkg/probe"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// Interpreter is the runtime under test.
type Interpreter interface {
	probe.Prober
	Identify(ctx context.Context) (buildenv.Identity, error)
}

// App carries the collaborators shared by every command. Fields
// left nil by tests fall back to the real implementations.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Host is the GOOS the build driver is selected for.
	Host string

	// SearchDirs overrides where config files are looked up.
	SearchDirs []string

	Environ        func() []string
	NewLoader      func() *buildenv.DefaultLoader
	NewInterpreter func(cfg *config.Config) Interpreter
	LoadMatrix     func(paths []string) (*matrix.Matrix, error)
	Launch         func(context.Context, dispatch.Invocation, dispatch.Streams) error
	IsTerminal     func(w io.Writer) bool
	Now            func() time.Time

	cfg     *config.Config
	cfgUsed string
	logger  logging.Logger
}

// NewApp returns an App wired to the real process.
func NewApp() *App {
	return &App{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Host:      runtime.GOOS,
		Environ:   os.Environ,
		NewLoader: buildenv.NewLoader,
		NewInterpreter: func(cfg *config.Config) Interpreter {
			return probe.NewInterpreter(
				cfg.Interpreter, probe.WithTimeout(cfg.ProbeTimeout),
			)
		},
		LoadMatrix: loadMatrix,
		Launch:     dispatch.Launch,
		IsTerminal: isTerminal,
		Now:        time.Now,
		logger:     logging.NullLogger{},
	}
}

// Execute runs the command tree with args and returns the process
// exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	if cerr := a.logger.Close(); cerr != nil {
		fmt.Fprintln(a.Stderr, WarningStyle.Render("Warning: ")+cerr.Error())
	}
	return exitCode(err)
}

func newRootCommand(a *App) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "distverify",
		Short: "Verify a built Python distribution",
		Long: TitleStyle.Render("distverify") +
			SubtitleStyle.Render(" - verify a built Python distribution") + `

distverify runs small probe programs inside the interpreter under
test and checks what they observe against an expectation matrix.
Every feature area yields exactly one result, and the run exits
with 0 when every applicable check passed, 1 when any check failed
and 3 when the matrix has a gap or a check could not run.

` + SubtitleStyle.Render("Examples:") + `
  distverify verify --interpreter ./python/install/bin/python3
  distverify verify -f json -o report.json
  distverify matrix show --os windows --python-version 3.10
  distverify build --dry-run -- --target-triple x86_64-unknown-linux-gnu`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, cfgFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./distverify.yaml or $XDG_CONFIG_HOME/distverify/distverify.yaml)")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("log-format", "", "console log format: text, logfmt or json")
	pf.String("log-file", "", "also write JSON log entries to this file")
	pf.String("env-file", "", ".env file overlaid under the process environment")
	pf.String("interpreter", "", "interpreter under test (default python3)")
	pf.Duration("probe-timeout", 0, "timeout for a single probe run (default 1m0s)")
	pf.StringSlice("matrix", nil, "extra matrix file or directory, repeatable")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(newVerifyCommand(a))
	root.AddCommand(newMatrixCommand(a))
	root.AddCommand(newBuildCommand(a))
	root.AddCommand(newConfigCommand(a))
	return root
}

// init loads the configuration and builds the logger before any
// subcommand runs.
func (a *App) init(cmd *cobra.Command, cfgFile string) error {
	cfg, used, err := config.Load(config.LoadOptions{
		ConfigFile: cfgFile,
		SearchDirs: a.SearchDirs,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return usageError(err)
	}
	logger, err := newLogger(cfg, a.Stderr)
	if err != nil {
		return usageError(err)
	}

	a.cfg = cfg
	a.cfgUsed = used
	a.logger = logger
	if used != "" {
		a.logger.Debug("config loaded", logging.StringField("file", used))
	}
	return nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	console, err := logging.NewCharmLogger(logging.CharmConfig{
		Output: stderr,
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel(),
		Prefix: config.AppName,
	})
	if err != nil {
		return nil, err
	}
	if cfg.LogFile == "" {
		return console, nil
	}
	file, err := logging.NewFileLogger(cfg.LogFile, logging.LevelDebug)
	if err != nil {
		return nil, err
	}
	return logging.NewMultiLogger(console, file), nil
}

// handleError prints command errors through fang, except silent
// exit codes.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

func loadMatrix(paths []string) (*matrix.Matrix, error) {
	m, err := matrix.Default()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := matrix.Load(m, p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
