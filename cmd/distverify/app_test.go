package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"digital.vasic.distverify/pkg/assertion"
	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/config"
	"digital.vasic.distverify/pkg/dispatch"
	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/matrix"
	"digital.vasic.distverify/pkg/probe"
)

type fakeInterpreter struct {
	mu       sync.Mutex
	id       buildenv.Identity
	idErr    error
	facts    map[string]probe.Facts
	requests []probe.Request
}

func (f *fakeInterpreter) Observe(
	_ context.Context, req probe.Request,
) (probe.Facts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.facts[req.Name], nil
}

func (f *fakeInterpreter) Identify(context.Context) (buildenv.Identity, error) {
	return f.id, f.idErr
}

type launchRecorder struct {
	calls []dispatch.Invocation
	err   error
}

func (l *launchRecorder) launch(
	_ context.Context, inv dispatch.Invocation, _ dispatch.Streams,
) error {
	l.calls = append(l.calls, inv)
	return l.err
}

type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	interp *fakeInterpreter
	launch *launchRecorder
	matrix *matrix.Matrix
}

func (ta *testApp) run(args ...string) int {
	return ta.Execute(context.Background(), args)
}

func version(s string) *buildenv.Version {
	v := buildenv.MustParseVersion(s)
	return &v
}

// widgetMatrix has one feature that is checked from 3.10 on and
// skipped before.
func widgetMatrix(t *testing.T) *matrix.Matrix {
	t.Helper()
	m := matrix.New()
	require.NoError(t, m.Add(matrix.Feature{
		ID:    "widget",
		Name:  "Widget support",
		Probe: "widget",
		Variants: []matrix.Variant{
			{
				Name: "modern",
				When: matrix.Applicability{Since: version("3.10")},
				Expect: []assertion.Definition{
					{Type: "is_true", Target: "ok"},
				},
			},
			{
				Name: "legacy",
				When: matrix.Applicability{Before: version("3.10")},
				Skip: "needs 3.10",
			},
		},
	}))
	return m
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		interp: &fakeInterpreter{
			id: buildenv.Identity{
				OSName:     "posix",
				Version:    []int{3, 12, 1},
				Executable: "/opt/python/bin/python3",
			},
			facts: map[string]probe.Facts{"widget": {"ok": true}},
		},
		launch: &launchRecorder{},
		matrix: widgetMatrix(t),
	}
	ta.App = &App{
		Stdin:      strings.NewReader(""),
		Stdout:     ta.stdout,
		Stderr:     ta.stderr,
		Host:       "linux",
		SearchDirs: []string{},
		Environ:    func() []string { return []string{"PATH=/usr/bin"} },
		NewLoader: func() *buildenv.DefaultLoader {
			return buildenv.NewStaticLoader(map[string]string{})
		},
		NewInterpreter: func(*config.Config) Interpreter { return ta.interp },
		LoadMatrix: func([]string) (*matrix.Matrix, error) {
			return ta.matrix, nil
		},
		Launch:     ta.launch.launch,
		IsTerminal: func(io.Writer) bool { return false },
		Now: func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		},
		logger: logging.NullLogger{},
	}
	return ta
}
