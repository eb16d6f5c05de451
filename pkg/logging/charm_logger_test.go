package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharmLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewCharmLogger(CharmConfig{Output: &buf, Format: FormatJSON})
	require.NoError(t, err)

	l.WithFields(StringField("feature", "sqlite")).
		Info("check finished", StringField("status", "passed"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "check finished", entry["msg"])
	assert.Equal(t, "sqlite", entry["feature"])
	assert.Equal(t, "passed", entry["status"])
	assert.Equal(t, "info", entry["level"])
}

func TestCharmLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewCharmLogger(CharmConfig{
		Output: &buf, Format: FormatLogfmt, Level: LevelWarn,
	})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", IntField("gaps", 2))
	l.Error("shown too")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "gaps=2")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestCharmLogger_UnknownFormat(t *testing.T) {
	_, err := NewCharmLogger(CharmConfig{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distverify.log")

	l, err := NewFileLogger(path, LevelDebug)
	require.NoError(t, err)
	l.Debug("probe started", StringField("probe", "ssl"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"probe":"ssl"`)
}

func TestNewFileLogger_BadPath(t *testing.T) {
	_, err := NewFileLogger("/nonexistent/dir/distverify.log", LevelInfo)
	assert.Error(t, err)
}
