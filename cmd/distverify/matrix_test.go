package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/matrix"
	"digital.vasic.distverify/pkg/report"
)

func TestMatrixShow_ListsVariants(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run("matrix", "show", "--python-version", "3.9")
	require.Equal(t, report.ExitOK, code, ta.stderr.String())

	out := ta.stdout.String()
	assert.Contains(t, out, "unix 3.9")
	assert.Contains(t, out, "widget")
	assert.Contains(t, out, "legacy")
	assert.Contains(t, out, "(skip: needs 3.10)")
}

func TestMatrixShow_ExpectationCount(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run("matrix", "show", "--os", "windows", "--python-version", "3.13")
	require.Equal(t, report.ExitOK, code, ta.stderr.String())
	assert.Contains(t, ta.stdout.String(), "windows 3.13")
	assert.Contains(t, ta.stdout.String(), "modern")
	assert.Contains(t, ta.stdout.String(), "(1 expectations)")
}

func TestMatrixShow_RequiresVersion(t *testing.T) {
	ta := newTestApp(t)
	assert.Equal(t, report.ExitUsage, ta.run("matrix", "show"))
}

func TestMatrixShow_UnknownHostNeedsOS(t *testing.T) {
	ta := newTestApp(t)
	ta.Host = "plan9"
	assert.Equal(t, report.ExitUsage, ta.run("matrix", "show", "--python-version", "3.12"))

	ta = newTestApp(t)
	ta.Host = "plan9"
	assert.Equal(t, report.ExitOK,
		ta.run("matrix", "show", "--os", "unix", "--python-version", "3.12"))
}

func unixOnlyMatrix(t *testing.T) *matrix.Matrix {
	t.Helper()
	m := matrix.New()
	require.NoError(t, m.Add(matrix.Feature{
		ID:    "widget",
		Probe: "widget",
		Variants: []matrix.Variant{{
			Name: "unix-only",
			When: matrix.Applicability{OS: []buildenv.Family{buildenv.Unix}},
			Skip: "unix only",
		}},
	}))
	return m
}

func TestMatrixShow_Gap(t *testing.T) {
	ta := newTestApp(t)
	ta.matrix = unixOnlyMatrix(t)

	code := ta.run("matrix", "show", "--os", "windows", "--python-version", "3.12")
	assert.Equal(t, report.ExitInternal, code)
	assert.Contains(t, ta.stdout.String(), "GAP: feature widget: no variant applies")
}

func TestMatrixShow_DefaultMatrix(t *testing.T) {
	ta := newTestApp(t)
	ta.LoadMatrix = loadMatrix

	code := ta.run("matrix", "show", "--python-version", "3.12", "--build-options", "static")
	require.Equal(t, report.ExitOK, code, ta.stderr.String())

	out := ta.stdout.String()
	for _, id := range []string{"compression", "ctypes", "sqlite", "tkinter"} {
		assert.Contains(t, out, id)
	}
	assert.NotContains(t, out, "GAP")
}

func TestMatrixCheck_DefaultMatrixCovered(t *testing.T) {
	ta := newTestApp(t)
	ta.LoadMatrix = loadMatrix

	code := ta.run("matrix", "check")
	require.Equal(t, report.ExitOK, code, ta.stderr.String())

	m, err := matrix.Default()
	require.NoError(t, err)
	want := fmt.Sprintf("matrix covers %d environments across %d features",
		len(matrix.DefaultDomain().Environments()), m.Count())
	assert.Contains(t, ta.stdout.String(), want)
}

func TestMatrixCheck_WidgetCovered(t *testing.T) {
	ta := newTestApp(t)
	assert.Equal(t, report.ExitOK, ta.run("matrix", "check"))
}

func TestMatrixCheck_ReportsGaps(t *testing.T) {
	ta := newTestApp(t)
	ta.matrix = unixOnlyMatrix(t)

	code := ta.run("matrix", "check")
	assert.Equal(t, report.ExitInternal, code)
	assert.Contains(t, ta.stdout.String(), "specification gaps")
	assert.Contains(t, ta.stdout.String(), "... and ")
}

func TestWriteGaps_Truncates(t *testing.T) {
	var gaps []*matrix.GapError
	for i := 0; i < maxListedGaps+5; i++ {
		gaps = append(gaps, &matrix.GapError{
			Feature: fmt.Sprintf("f%d", i),
			Env:     buildenv.Environment{OS: buildenv.Unix, Version: buildenv.V(3, 12)},
		})
	}

	var buf bytes.Buffer
	writeGaps(&buf, gaps)

	out := buf.String()
	assert.Contains(t, out, fmt.Sprintf("%d specification gaps", maxListedGaps+5))
	assert.Contains(t, out, "feature f0:")
	assert.Contains(t, out, fmt.Sprintf("feature f%d:", maxListedGaps-1))
	assert.NotContains(t, out, fmt.Sprintf("feature f%d:", maxListedGaps))
	assert.Contains(t, out, "... and 5 more")
}

func TestMatrix_Help(t *testing.T) {
	ta := newTestApp(t)
	assert.Equal(t, report.ExitOK, ta.run("matrix"))
}
