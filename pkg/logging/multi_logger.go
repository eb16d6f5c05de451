package logging

import "errors"

// MultiLogger fans each call out to several sinks, typically the
// styled console logger and the --log-file logger. Nil sinks are
// dropped at construction.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines the given sinks.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	kept := make([]Logger, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiLogger{sinks: kept}
}

func (m *MultiLogger) each(fn func(Logger)) {
	for _, s := range m.sinks {
		fn(s)
	}
}

func (m *MultiLogger) Info(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Info(msg, fields...) })
}

func (m *MultiLogger) Warn(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Warn(msg, fields...) })
}

func (m *MultiLogger) Error(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Error(msg, fields...) })
}

func (m *MultiLogger) Debug(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Debug(msg, fields...) })
}

// WithFields binds fields on every sink.
func (m *MultiLogger) WithFields(fields ...Field) Logger {
	bound := make([]Logger, 0, len(m.sinks))
	m.each(func(l Logger) { bound = append(bound, l.WithFields(fields...)) })
	return &MultiLogger{sinks: bound}
}

// Close closes every sink and joins their errors, so a log file
// that failed to flush is reported even if the console closed fine.
func (m *MultiLogger) Close() error {
	var errs []error
	m.each(func(l Logger) {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
