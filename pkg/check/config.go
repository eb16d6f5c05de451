package check

import (
	"time"

	"digital.vasic.distverify/pkg/probe"
)

// Config holds runtime configuration for a check execution.
type Config struct {
	// CheckID identifies which check this config is for.
	CheckID ID `json:"check_id"`

	// Timeout bounds a single probe run. A zero value uses the
	// prober's default.
	Timeout time.Duration `json:"timeout"`

	// Verbose enables detailed logging output.
	Verbose bool `json:"verbose"`

	// Environment holds variables handed to the probe process
	// on top of the inherited environment.
	Environment map[string]string `json:"environment"`
}

// NewConfig creates a Config with sensible defaults.
func NewConfig(id ID) *Config {
	return &Config{
		CheckID:     id,
		Timeout:     probe.DefaultTimeout,
		Environment: make(map[string]string),
	}
}

// GetEnv returns the value of an environment variable from
// the config, or the fallback if not set.
func (c *Config) GetEnv(key, fallback string) string {
	if c.Environment == nil {
		return fallback
	}
	if v, ok := c.Environment[key]; ok {
		return v
	}
	return fallback
}
