// Package config loads distverify settings from defaults, an
// optional config file, DISTVERIFY_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/probe"
	"digital.vasic.distverify/pkg/report"
)

const (
	// AppName names the config file and config directory.
	AppName = "distverify"

	// EnvPrefix prefixes environment overrides, e.g.
	// DISTVERIFY_FORMAT=json.
	EnvPrefix = "DISTVERIFY"
)

// Keys are the configuration keys; flags use the same names with
// dashes instead of underscores.
const (
	KeyInterpreter  = "interpreter"
	KeyMatrix       = "matrix"
	KeyFormat       = "format"
	KeyOutput       = "output"
	KeyMetricsFile  = "metrics_file"
	KeyHistoryFile  = "history_file"
	KeyProbeTimeout = "probe_timeout"
	KeyVerbose      = "verbose"
	KeyLogFormat    = "log_format"
	KeyLogFile      = "log_file"
	KeyEnvFile      = "env_file"
	KeyRender       = "render"
	KeyBuildRoot    = "build_root"
	KeyBuildPython  = "build_python"
)

// Config holds the effective settings.
type Config struct {
	// Interpreter is the runtime under test.
	Interpreter string `mapstructure:"interpreter"`

	// Matrix lists extra matrix files or directories layered
	// over the built-in matrix.
	Matrix []string `mapstructure:"matrix"`

	// Format is the report format: text, markdown or json.
	Format string `mapstructure:"format"`

	// Output is the report destination; empty or "-" is stdout.
	Output string `mapstructure:"output"`

	// MetricsFile receives a Prometheus textfile after a run.
	MetricsFile string `mapstructure:"metrics_file"`

	// HistoryFile receives one JSON line per run.
	HistoryFile string `mapstructure:"history_file"`

	// ProbeTimeout bounds one probe run.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`

	// LogFormat is the console log format: text, logfmt or json.
	LogFormat string `mapstructure:"log_format"`

	// LogFile receives a JSON copy of every log entry.
	LogFile string `mapstructure:"log_file"`

	// EnvFile is a .env file overlaid under the process
	// environment.
	EnvFile string `mapstructure:"env_file"`

	// Render styles Markdown reports for the terminal.
	Render bool `mapstructure:"render"`

	// BuildRoot holds the cpython-unix and cpython-windows
	// build drivers.
	BuildRoot string `mapstructure:"build_root"`

	// BuildPython runs the build driver.
	BuildPython string `mapstructure:"build_python"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Interpreter:  "python3",
		Matrix:       []string{},
		Format:       report.FormatText,
		ProbeTimeout: probe.DefaultTimeout,
		LogFormat:    logging.FormatText,
		BuildRoot:    ".",
		BuildPython:  "python3",
	}
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// ConfigFile forces a specific config file.
	ConfigFile string

	// SearchDirs are searched in order for distverify.{yaml,toml,json}
	// when ConfigFile is empty. Defaults to the working directory
	// and the user config directory.
	SearchDirs []string

	// Flags are bound over every other source; only flags the
	// user changed take effect.
	Flags *pflag.FlagSet
}

// Load resolves the effective configuration and returns it with
// the config file used, if any.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyInterpreter, d.Interpreter)
	v.SetDefault(KeyMatrix, d.Matrix)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyMetricsFile, d.MetricsFile)
	v.SetDefault(KeyHistoryFile, d.HistoryFile)
	v.SetDefault(KeyProbeTimeout, d.ProbeTimeout)
	v.SetDefault(KeyVerbose, d.Verbose)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyEnvFile, d.EnvFile)
	v.SetDefault(KeyRender, d.Render)
	v.SetDefault(KeyBuildRoot, d.BuildRoot)
	v.SetDefault(KeyBuildPython, d.BuildPython)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	used, err := readConfigFile(v, opts)
	if err != nil {
		return nil, "", err
	}

	if opts.Flags != nil {
		for _, key := range v.AllKeys() {
			flag := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, "", fmt.Errorf("bind flag %s: %w", flag.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		if used != "" {
			return nil, "", fmt.Errorf("%s: %w", used, err)
		}
		return nil, "", err
	}
	return &cfg, used, nil
}

func readConfigFile(v *viper.Viper, opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
		return v.ConfigFileUsed(), nil
	}

	dirs := opts.SearchDirs
	if dirs == nil {
		dirs = DefaultSearchDirs()
	}
	if len(dirs) == 0 {
		return "", nil
	}
	v.SetConfigName(AppName)
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// DefaultSearchDirs returns the working directory and
// $XDG_CONFIG_HOME/distverify (or the platform equivalent).
func DefaultSearchDirs() []string {
	dirs := []string{"."}
	if base, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(base, AppName))
	}
	return dirs
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if !slices.Contains(report.Formats, c.Format) {
		return fmt.Errorf(
			"invalid format %q: want one of %s",
			c.Format, strings.Join(report.Formats, ", "),
		)
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatLogfmt, logging.FormatJSON:
	default:
		return fmt.Errorf(
			"invalid log_format %q: want text, logfmt or json", c.LogFormat,
		)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.Interpreter == "" {
		return fmt.Errorf("interpreter must not be empty")
	}
	return nil
}

// LogLevel is the console level implied by Verbose.
func (c *Config) LogLevel() logging.LogLevel {
	if c.Verbose {
		return logging.LevelDebug
	}
	return logging.LevelInfo
}

// tomlConfig is the TOML rendering of Config; durations are shown
// in Go syntax so the output can be read back as a config file.
type tomlConfig struct {
	Interpreter  string   `toml:"interpreter"`
	Matrix       []string `toml:"matrix"`
	Format       string   `toml:"format"`
	Output       string   `toml:"output"`
	MetricsFile  string   `toml:"metrics_file"`
	HistoryFile  string   `toml:"history_file"`
	ProbeTimeout string   `toml:"probe_timeout"`
	Verbose      bool     `toml:"verbose"`
	LogFormat    string   `toml:"log_format"`
	LogFile      string   `toml:"log_file"`
	EnvFile      string   `toml:"env_file"`
	Render       bool     `toml:"render"`
	BuildRoot    string   `toml:"build_root"`
	BuildPython  string   `toml:"build_python"`
}

// TOML renders the configuration as a TOML document.
func (c *Config) TOML() ([]byte, error) {
	matrix := c.Matrix
	if matrix == nil {
		matrix = []string{}
	}
	data, err := toml.Marshal(tomlConfig{
		Interpreter:  c.Interpreter,
		Matrix:       matrix,
		Format:       c.Format,
		Output:       c.Output,
		MetricsFile:  c.MetricsFile,
		HistoryFile:  c.HistoryFile,
		ProbeTimeout: c.ProbeTimeout.String(),
		Verbose:      c.Verbose,
		LogFormat:    c.LogFormat,
		LogFile:      c.LogFile,
		EnvFile:      c.EnvFile,
		Render:       c.Render,
		BuildRoot:    c.BuildRoot,
		BuildPython:  c.BuildPython,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
