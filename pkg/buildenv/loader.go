package buildenv

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Environment variables consumed by the verifier.
const (
	EnvBuildOptions = "BUILD_OPTIONS"
	EnvTerm         = "TERM"
	EnvDisplay      = "DISPLAY"
	EnvTclLibrary   = "TCL_LIBRARY"
	EnvTerminfoDirs = "TERMINFO_DIRS"
)

// Loader defines read access to the ambient environment.
type Loader interface {
	// Load reads environment variables from a .env file.
	Load(filepath string) error
	// Lookup retrieves a variable and whether it is set.
	Lookup(key string) (string, bool)
	// Get retrieves a variable value, empty when unset.
	Get(key string) string
	// GetWithDefault retrieves a variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
	// All returns all variables loaded from files.
	All() map[string]string
}

// DefaultLoader implements Loader with .env file support. Process
// environment values take precedence over file values.
type DefaultLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	loaded bool
	lookup func(string) (string, bool)
}

// NewLoader creates a loader backed by the process environment.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars:   make(map[string]string),
		lookup: os.LookupEnv,
	}
}

// NewStaticLoader creates a loader that ignores the process
// environment and serves only the given variables.
func NewStaticLoader(vars map[string]string) *DefaultLoader {
	l := &DefaultLoader{
		vars:   make(map[string]string, len(vars)),
		lookup: func(string) (string, bool) { return "", false },
	}
	for k, v := range vars {
		l.vars[k] = v
	}
	return l
}

// Load reads KEY=VALUE lines from a .env file.
func (l *DefaultLoader) Load(filepath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", filepath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove surrounding quotes
		value = strings.Trim(value, `"'`)
		l.vars[key] = value
	}

	l.loaded = true
	return scanner.Err()
}

func (l *DefaultLoader) Lookup(key string) (string, bool) {
	// OS env takes precedence
	if v, ok := l.lookup(key); ok {
		return v, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vars[key]
	return v, ok
}

func (l *DefaultLoader) Get(key string) string {
	v, _ := l.Lookup(key)
	return v
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}
