package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_ImplementsInterface(t *testing.T) {
	var _ CheckMetrics = &PrometheusMetrics{}
	var _ CheckMetrics = NoopMetrics{}
}

func TestPrometheusMetrics_RecordCheck(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordCheck("ssl", "passed", 2*time.Second)
	m.RecordCheck("ssl", "passed", 3*time.Second)
	m.RecordCheck("sqlite", "failed", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checksTotal.WithLabelValues("ssl", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checksTotal.WithLabelValues("sqlite", "failed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.checkDuration))
}

func TestPrometheusMetrics_RecordAssertion(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordAssertion("hashlib", "superset", true)
	m.RecordAssertion("hashlib", "superset", false)
	m.RecordAssertion("hashlib", "superset", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.assertions.WithLabelValues("hashlib", "superset", "passed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.assertions.WithLabelValues("hashlib", "superset", "failed")))
}

func TestPrometheusMetrics_RunsAndGaps(t *testing.T) {
	m := NewPrometheusMetrics()
	m.IncrementRunTotal()
	m.IncrementRunTotal()
	m.SetSpecificationGaps(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.gaps))
	assert.Greater(t, testutil.ToFloat64(m.lastRun), 0.0)
}

func TestPrometheusMetrics_WriteTextfile(t *testing.T) {
	m := NewPrometheusMetrics()
	m.IncrementRunTotal()
	m.RecordCheck("ctypes", "passed", 100*time.Millisecond)

	path := filepath.Join(t.TempDir(), "distverify.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "distverify_runs_total 1")
	assert.Contains(t, body, `distverify_checks_total{feature="ctypes",status="passed"} 1`)
	assert.Contains(t, body, "distverify_check_duration_seconds_bucket")
}

func TestPrometheusMetrics_WriteTextfile_BadDir(t *testing.T) {
	m := NewPrometheusMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics")
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	m.RecordCheck("ssl", "passed", time.Second)
	m.RecordAssertion("ssl", "is_true", true)
	m.IncrementRunTotal()
	m.SetSpecificationGaps(0)
}
