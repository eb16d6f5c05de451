package runner

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.distverify/pkg/assertion"
	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/check"
	"digital.vasic.distverify/pkg/logging"
	"digital.vasic.distverify/pkg/matrix"
	"digital.vasic.distverify/pkg/probe"
	"digital.vasic.distverify/pkg/report"
)

// --- fakes ---

type fakeProber struct {
	mu       sync.Mutex
	facts    map[string]probe.Facts
	errs     map[string]error
	panics   map[string]bool
	requests []probe.Request
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		facts:  map[string]probe.Facts{},
		errs:   map[string]error{},
		panics: map[string]bool{},
	}
}

func (f *fakeProber) Observe(
	_ context.Context, req probe.Request,
) (probe.Facts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.panics[req.Name] {
		panic("probe exploded")
	}
	if err := f.errs[req.Name]; err != nil {
		return nil, err
	}
	return f.facts[req.Name], nil
}

func (f *fakeProber) probed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.requests))
	for i, r := range f.requests {
		names[i] = r.Name
	}
	return names
}

type recordingMetrics struct {
	checks     map[string]string
	assertions int
	runs       int
	gaps       int
}

func (m *recordingMetrics) RecordCheck(id, status string, _ time.Duration) {
	if m.checks == nil {
		m.checks = map[string]string{}
	}
	m.checks[id] = status
}

func (m *recordingMetrics) RecordAssertion(_, _ string, _ bool) { m.assertions++ }
func (m *recordingMetrics) IncrementRunTotal()                  { m.runs++ }
func (m *recordingMetrics) SetSpecificationGaps(n int)          { m.gaps = n }

// --- helpers ---

func isTrue(target string) assertion.Definition {
	return assertion.Definition{Type: "is_true", Target: target}
}

func feature(id string, variants ...matrix.Variant) matrix.Feature {
	return matrix.Feature{ID: id, Name: id, Probe: id, Variants: variants}
}

func always(expect ...assertion.Definition) matrix.Variant {
	return matrix.Variant{Name: "all", Expect: expect}
}

func newMatrix(t *testing.T, features ...matrix.Feature) *matrix.Matrix {
	t.Helper()
	m := matrix.New()
	for _, f := range features {
		require.NoError(t, m.Add(f))
	}
	return m
}

func unixEnv(version string, options string) buildenv.Environment {
	return buildenv.Environment{
		OS:      buildenv.Unix,
		Version: buildenv.MustParseVersion(version),
		Options: buildenv.ParseOptions(options),
	}
}

func statuses(r *report.RunReport) []string {
	out := make([]string, len(r.Results))
	for i, res := range r.Results {
		out[i] = string(res.FeatureID) + "=" + res.Status
	}
	return out
}

// --- tests ---

func TestEngine_Run_DeclarationOrder(t *testing.T) {
	m := newMatrix(t,
		feature("zeta", always(isTrue("ok"))),
		feature("alpha", always(isTrue("ok"))),
		feature("mid", always(isTrue("ok"))),
	)
	p := newFakeProber()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		p.facts[n] = probe.Facts{"ok": true}
	}

	rep := NewEngine(m, p).Run(context.Background(), unixEnv("3.12", ""))

	assert.Equal(t, []string{"zeta=passed", "alpha=passed", "mid=passed"}, statuses(rep))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, p.probed())
	assert.Equal(t, report.ExitOK, rep.ExitCode())
	assert.Equal(t, "unix 3.12 []", rep.Environment.String())
}

func TestEngine_Run_ExhaustiveReporting(t *testing.T) {
	m := newMatrix(t,
		feature("ssl", always(isTrue("has_tlsv1_3"))),
		feature("tkinter", always(isTrue("window_created"))),
		feature("hashlib", always(isTrue("ok"))),
		feature("sqlite", always(isTrue("ok"))),
	)
	p := newFakeProber()
	p.facts["ssl"] = probe.Facts{"has_tlsv1_3": false}
	p.errs["tkinter"] = &probe.AcquisitionError{Probe: "tkinter", Cause: "TclError: no display"}
	p.facts["hashlib"] = probe.Facts{"ok": false}
	p.facts["sqlite"] = probe.Facts{"ok": true}

	rep := NewEngine(m, p).Run(context.Background(), unixEnv("3.12", ""))

	assert.Equal(t,
		[]string{"ssl=failed", "tkinter=failed", "hashlib=failed", "sqlite=passed"},
		statuses(rep))
	assert.Equal(t, check.FailureMismatch, rep.Results[0].Failure)
	assert.Equal(t, check.FailureAcquisition, rep.Results[1].Failure)
	assert.Equal(t, "probe tkinter: TclError: no display", rep.Results[1].Error)
	assert.Len(t, rep.Failed(), 3)
	assert.Equal(t, report.ExitFailed, rep.ExitCode())
}

func TestEngine_Run_SkipsInapplicable(t *testing.T) {
	m := newMatrix(t,
		feature("gil",
			matrix.Variant{
				Name: "before-3.13",
				When: matrix.Applicability{Before: versionPtr("3.13")},
				Skip: "introduced in 3.13",
			},
			matrix.Variant{
				Name:   "since-3.13",
				When:   matrix.Applicability{Since: versionPtr("3.13")},
				Expect: []assertion.Definition{isTrue("ok")},
			},
		),
	)
	p := newFakeProber()

	rep := NewEngine(m, p).Run(context.Background(), unixEnv("3.12", ""))

	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	assert.Equal(t, check.StatusSkipped, res.Status)
	assert.Equal(t, check.FailureInapplicable, res.Failure)
	assert.Equal(t, "introduced in 3.13", res.Reason)
	assert.Equal(t, "before-3.13", res.Variant)
	assert.Empty(t, p.probed())
	assert.Equal(t, report.ExitOK, rep.ExitCode())
}

func TestEngine_Run_SpecificationGap(t *testing.T) {
	m := newMatrix(t,
		feature("sqlite",
			matrix.Variant{
				Name:   "unix",
				When:   matrix.Applicability{OS: []buildenv.Family{buildenv.Unix}},
				Expect: []assertion.Definition{isTrue("ok")},
			},
		),
		feature("ssl", always(isTrue("ok"))),
	)
	p := newFakeProber()
	p.facts["ssl"] = probe.Facts{"ok": true}
	mt := &recordingMetrics{}

	env := unixEnv("3.12", "")
	env.OS = buildenv.Windows
	rep := NewEngine(m, p, WithMetrics(mt)).Run(context.Background(), env)

	assert.Equal(t, []string{"sqlite=error", "ssl=passed"}, statuses(rep))
	assert.Equal(t, check.FailureGap, rep.Results[0].Failure)
	assert.Contains(t, rep.Results[0].Error, "no variant applies")
	assert.Len(t, rep.Gaps(), 1)
	assert.Equal(t, report.ExitInternal, rep.ExitCode())
	assert.Equal(t, 1, mt.gaps)
	assert.Equal(t, []string{"ssl"}, p.probed())
}

func TestEngine_Run_RecoversPanics(t *testing.T) {
	m := newMatrix(t,
		feature("boom", always(isTrue("ok"))),
		feature("after", always(isTrue("ok"))),
	)
	p := newFakeProber()
	p.panics["boom"] = true
	p.facts["after"] = probe.Facts{"ok": true}

	rep := NewEngine(m, p).Run(context.Background(), unixEnv("3.12", ""))

	assert.Equal(t, []string{"boom=error", "after=passed"}, statuses(rep))
	assert.Equal(t, check.FailureInternal, rep.Results[0].Failure)
	assert.Contains(t, rep.Results[0].Error, "check panicked: probe exploded")
}

func TestEngine_Run_UnknownProbeIsInternal(t *testing.T) {
	m := newMatrix(t, feature("mystery", always(isTrue("ok"))))
	p := newFakeProber()
	p.errs["mystery"] = probe.ErrUnknownProbe

	rep := NewEngine(m, p).Run(context.Background(), unixEnv("3.12", ""))

	require.Len(t, rep.Results, 1)
	assert.Equal(t, check.StatusError, rep.Results[0].Status)
	assert.Equal(t, check.FailureInternal, rep.Results[0].Failure)
	assert.Contains(t, rep.Results[0].Error, "execution failed: observe mystery: unknown probe")
}

func TestEngine_Run_ProbeRequest(t *testing.T) {
	f := feature("tkinter", always(isTrue("window_created")))
	f.PTY = true
	m := newMatrix(t, f)
	p := newFakeProber()
	p.facts["tkinter"] = probe.Facts{"window_created": true}

	env := unixEnv("3.12", "")
	env.Paths.TclLibrary = "/opt/python/lib/tcl/tcl"
	e := NewEngine(m, p,
		WithTimeout(10*time.Second),
		WithConfig(check.Config{Environment: map[string]string{
			"PYTHONIOENCODING": "utf-8",
			"TCL_LIBRARY":      "/ignored",
		}}),
	)
	e.Run(context.Background(), env)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.True(t, req.PTY)
	assert.Equal(t, 10*time.Second, req.Timeout)
	assert.Equal(t, "utf-8", req.Env["PYTHONIOENCODING"])
	assert.Equal(t, "/opt/python/lib/tcl/tcl", req.Env["TCL_LIBRARY"])
}

func TestEngine_Run_ConfigTimeoutOverrides(t *testing.T) {
	m := newMatrix(t, feature("ssl", always(isTrue("ok"))))
	p := newFakeProber()
	p.facts["ssl"] = probe.Facts{"ok": true}

	NewEngine(m, p,
		WithTimeout(10*time.Second),
		WithConfig(check.Config{Timeout: 3 * time.Second}),
	).Run(context.Background(), unixEnv("3.12", ""))

	require.Len(t, p.requests, 1)
	assert.Equal(t, 3*time.Second, p.requests[0].Timeout)
}

func TestEngine_Run_Cancelled(t *testing.T) {
	m := newMatrix(t,
		feature("a", always(isTrue("ok"))),
		feature("b", always(isTrue("ok"))),
	)
	p := newFakeProber()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := NewEngine(m, p).Run(ctx, unixEnv("3.12", ""))

	assert.Equal(t, []string{"a=error", "b=error"}, statuses(rep))
	assert.Contains(t, rep.Results[0].Error, "run cancelled")
	assert.Empty(t, p.probed())
}

func TestEngine_Run_Metrics(t *testing.T) {
	m := newMatrix(t,
		feature("ssl", always(isTrue("a"), isTrue("b"))),
		feature("zstd", matrix.Variant{Name: "old", Skip: "introduced in 3.14"}),
	)
	p := newFakeProber()
	p.facts["ssl"] = probe.Facts{"a": true, "b": false}
	mt := &recordingMetrics{}

	NewEngine(m, p, WithMetrics(mt)).Run(context.Background(), unixEnv("3.12", ""))

	assert.Equal(t, 1, mt.runs)
	assert.Equal(t, 0, mt.gaps)
	assert.Equal(t, 2, mt.assertions)
	assert.Equal(t, map[string]string{"ssl": "failed", "zstd": "skipped"}, mt.checks)
}

func TestEngine_Run_Idempotent(t *testing.T) {
	m := newMatrix(t,
		feature("ssl", always(
			isTrue("has_tlsv1_3"),
			assertion.Definition{
				Type: "version_equals", Target: "openssl_version_info",
				Values: []any{3, 5, 0, 3, 15},
			},
		)),
		feature("gil", matrix.Variant{Name: "old", Skip: "introduced in 3.13"}),
	)
	p := newFakeProber()
	p.facts["ssl"] = probe.Facts{
		"has_tlsv1_3":          true,
		"openssl_version_info": []any{1.0, 1.0, 1.0, 23.0, 15.0},
	}
	e := NewEngine(m, p, WithInterpreter("/opt/python/bin/python3"))
	env := unixEnv("3.12", "lto")

	render := func() []byte {
		var buf bytes.Buffer
		require.NoError(t, report.NewJSONReporter().Write(&buf, e.Run(context.Background(), env)))
		return buf.Bytes()
	}
	first, second := render(), render()
	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), `"interpreter":"/opt/python/bin/python3"`)
}

func TestEngine_Run_Logging(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.NewCharmLogger(logging.CharmConfig{
		Output: &buf, Format: logging.FormatLogfmt, Level: logging.LevelDebug,
	})
	require.NoError(t, err)

	m := newMatrix(t,
		feature("ssl", always(isTrue("ok"))),
		feature("sqlite", matrix.Variant{
			Name: "windows",
			When: matrix.Applicability{OS: []buildenv.Family{buildenv.Windows}},
			Skip: "n/a",
		}),
	)
	p := newFakeProber()
	p.facts["ssl"] = probe.Facts{"ok": false}

	NewEngine(m, p, WithLogger(l)).Run(context.Background(), unixEnv("3.12", ""))

	out := buf.String()
	assert.Contains(t, out, "verification started")
	assert.Contains(t, out, "check failed")
	assert.Contains(t, out, "feature=ssl")
	assert.Contains(t, out, "specification gap")
	assert.Contains(t, out, "verification finished")
}

func TestEngine_DefaultMatrix_StaticCtypes(t *testing.T) {
	m, err := matrix.Default()
	require.NoError(t, err)

	tests := []struct {
		name    string
		options string
		facts   probe.Facts
		want    string
	}{
		{
			name:    "static without handle passes",
			options: "static",
			facts: probe.Facts{
				"pythonapi": nil,
				"callbacks": map[string]any{"cfunctype": ""},
			},
			want: check.StatusPassed,
		},
		{
			name:    "static with handle fails",
			options: "static",
			facts: probe.Facts{
				"pythonapi": "PyDLL",
				"callbacks": map[string]any{"cfunctype": ""},
			},
			want: check.StatusFailed,
		},
		{
			name:    "shared with handle passes",
			options: "",
			facts: probe.Facts{
				"pythonapi": "PyDLL",
				"callbacks": map[string]any{"cfunctype": ""},
			},
			want: check.StatusPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProber()
			p.facts["ctypes"] = tt.facts

			rep := NewEngine(m, p).Run(context.Background(), unixEnv("3.11", tt.options))

			require.Len(t, rep.Results, m.Count())
			var ctypes *check.Result
			for _, res := range rep.Results {
				if res.FeatureID == "ctypes" {
					ctypes = res
				}
			}
			require.NotNil(t, ctypes)
			assert.Equal(t, tt.want, ctypes.Status)
			assert.Empty(t, rep.Gaps())
		})
	}
}

func versionPtr(s string) *buildenv.Version {
	v := buildenv.MustParseVersion(s)
	return &v
}

// --- lifecycle with stub checks ---

type stubCheck struct {
	check.BaseCheck
	configureErr error
	validateErr  error
	executeErr   error
	cleanupErr   error
	result       *check.Result
	cleanups     int
}

func newStub() *stubCheck {
	return &stubCheck{BaseCheck: check.NewBaseCheck("stub", "Stub", "", "")}
}

func (s *stubCheck) Configure(cfg *check.Config) error {
	if s.configureErr != nil {
		return s.configureErr
	}
	return s.BaseCheck.Configure(cfg)
}

func (s *stubCheck) Validate(context.Context) error { return s.validateErr }

func (s *stubCheck) Execute(context.Context) (*check.Result, error) {
	return s.result, s.executeErr
}

func (s *stubCheck) Cleanup(context.Context) error {
	s.cleanups++
	return s.cleanupErr
}

func TestEngine_ExecuteCheck_Lifecycle(t *testing.T) {
	e := NewEngine(matrix.New(), newFakeProber())
	env := unixEnv("3.12", "")
	ctx := context.Background()

	t.Run("configure error", func(t *testing.T) {
		s := newStub()
		s.configureErr = errors.New("bad config")
		res := e.executeCheck(ctx, s, "v", env)
		assert.Equal(t, check.StatusError, res.Status)
		assert.Equal(t, "configuration failed: bad config", res.Error)
		assert.Equal(t, 0, s.cleanups)
	})

	t.Run("validation error", func(t *testing.T) {
		s := newStub()
		s.validateErr = errors.New("broken")
		res := e.executeCheck(ctx, s, "v", env)
		assert.Equal(t, check.FailureInternal, res.Failure)
		assert.Equal(t, "validation failed: broken", res.Error)
		assert.Equal(t, 1, s.cleanups)
	})

	t.Run("inapplicable", func(t *testing.T) {
		s := newStub()
		s.validateErr = check.ErrInapplicable
		res := e.executeCheck(ctx, s, "v", env)
		assert.Equal(t, check.StatusSkipped, res.Status)
		assert.Equal(t, "v", res.Variant)
	})

	t.Run("nil result", func(t *testing.T) {
		s := newStub()
		res := e.executeCheck(ctx, s, "v", env)
		assert.Equal(t, check.StatusError, res.Status)
		assert.Equal(t, "execution returned no result", res.Error)
	})

	t.Run("cleanup error keeps result", func(t *testing.T) {
		s := newStub()
		s.result = &check.Result{FeatureID: "stub", Status: check.StatusPassed}
		s.cleanupErr = errors.New("leak")
		res := e.executeCheck(ctx, s, "v", env)
		assert.Equal(t, check.StatusPassed, res.Status)
		assert.Equal(t, 1, s.cleanups)
	})
}
