package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Output formats supported by CharmLogger.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// CharmConfig configures a CharmLogger.
type CharmConfig struct {
	// Output is where entries are written. Defaults to stderr.
	Output io.Writer

	// Format is one of FormatText, FormatJSON or FormatLogfmt.
	Format string

	// Level is the minimum level emitted.
	Level LogLevel

	// Prefix is printed before every text entry.
	Prefix string

	// Timestamps adds a timestamp to every entry.
	Timestamps bool

	// Closer is closed by Close, e.g. a log file.
	Closer io.Closer
}

// CharmLogger is a Logger backed by charmbracelet/log.
type CharmLogger struct {
	logger *log.Logger
	closer io.Closer
}

// NewCharmLogger creates a CharmLogger.
func NewCharmLogger(cfg CharmConfig) (*CharmLogger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var formatter log.Formatter
	switch cfg.Format {
	case "", FormatText:
		formatter = log.TextFormatter
	case FormatJSON:
		formatter = log.JSONFormatter
	case FormatLogfmt:
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	l := log.NewWithOptions(out, log.Options{
		Prefix:          cfg.Prefix,
		Level:           charmLevel(cfg.Level),
		ReportTimestamp: cfg.Timestamps,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
	return &CharmLogger{logger: l, closer: cfg.Closer}, nil
}

// NewFileLogger opens path for appending and returns a JSON
// CharmLogger writing to it. Close closes the file.
func NewFileLogger(path string, level LogLevel) (*CharmLogger, error) {
	f, err := os.OpenFile(
		path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
	)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return NewCharmLogger(CharmConfig{
		Output:     f,
		Format:     FormatJSON,
		Level:      level,
		Timestamps: true,
		Closer:     f,
	})
}

func charmLevel(l LogLevel) log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func keyvals(fields []Field) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

// Info logs an informational message.
func (c *CharmLogger) Info(msg string, fields ...Field) {
	c.logger.Info(msg, keyvals(fields)...)
}

// Warn logs a warning message.
func (c *CharmLogger) Warn(msg string, fields ...Field) {
	c.logger.Warn(msg, keyvals(fields)...)
}

// Error logs an error message.
func (c *CharmLogger) Error(msg string, fields ...Field) {
	c.logger.Error(msg, keyvals(fields)...)
}

// Debug logs a debug-level message.
func (c *CharmLogger) Debug(msg string, fields ...Field) {
	c.logger.Debug(msg, keyvals(fields)...)
}

// WithFields returns a logger that adds fields to every entry.
// The returned logger shares the underlying output and does not
// own it.
func (c *CharmLogger) WithFields(fields ...Field) Logger {
	return &CharmLogger{logger: c.logger.With(keyvals(fields)...)}
}

// Close releases the output when the logger owns it.
func (c *CharmLogger) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
