package matrix

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed matrix.yaml
var defaultMatrix []byte

// matrixFile is the on-disk structure of a matrix file (YAML or
// JSON).
type matrixFile struct {
	Version  string    `yaml:"version"`
	Features []Feature `yaml:"features"`
}

// Default returns a Matrix holding the built-in expectations.
func Default() (*Matrix, error) {
	m := New()
	if err := LoadBytes(m, defaultMatrix, "matrix.yaml"); err != nil {
		return nil, fmt.Errorf("built-in matrix: %w", err)
	}
	return m, nil
}

// Load loads a matrix file, or every matrix file in a directory.
func Load(m *Matrix, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat matrix path %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(m, path)
	}
	return LoadFile(m, path)
}

// LoadFile reads a matrix file and merges its features into m.
// Features whose ID already exists replace the earlier declaration
// in place.
func LoadFile(m *Matrix, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf(
			"failed to read matrix file %s: %w", path, err,
		)
	}
	return LoadBytes(m, data, filepath.Base(path))
}

// LoadDir loads all .json and .yaml/.yml matrix files from a
// directory in lexical order. It does not recurse into
// subdirectories.
func LoadDir(m *Matrix, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf(
			"failed to read directory %s: %w", dir, err,
		)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		p := filepath.Join(dir, entry.Name())
		if err := LoadFile(m, p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	return nil
}

// LoadBytes validates a matrix document against the schema and
// merges its features into m. JSON documents are accepted since
// they are valid YAML.
func LoadBytes(m *Matrix, data []byte, source string) error {
	if err := ValidateSchema(data, source); err != nil {
		return err
	}

	var file matrixFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf(
			"failed to parse matrix from %s: %w", source, err,
		)
	}

	seen := make(map[string]bool, len(file.Features))
	for _, f := range file.Features {
		if seen[f.ID] {
			return fmt.Errorf(
				"%s: feature %s declared twice", source, f.ID,
			)
		}
		seen[f.ID] = true

		if err := m.Put(f); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return nil
}
