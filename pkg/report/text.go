package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"digital.vasic.distverify/pkg/check"
)

// Palette shared by text output.
const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
)

type textStyles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	passed  lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	errored lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return textStyles{plain, plain, plain, plain, plain, plain}
	}
	return textStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		passed:  lipgloss.NewStyle().Foreground(colorSuccess),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(colorError),
		skipped: lipgloss.NewStyle().Foreground(colorMuted),
		errored: lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
	}
}

// TextReporter renders a human-readable report listing every
// result in declaration order, with the expected-vs-observed diff
// of every failure.
type TextReporter struct {
	styles textStyles
}

// NewTextReporter creates a text reporter. With color off the
// output carries no escape sequences.
func NewTextReporter(color bool) *TextReporter {
	return &TextReporter{styles: newTextStyles(color)}
}

// Generate renders the report.
func (t *TextReporter) Generate(r *RunReport) ([]byte, error) {
	var sb strings.Builder
	s := t.styles

	header := "distverify: " + r.Environment.String()
	if r.Environment.Interpreter != "" {
		header += " (" + r.Environment.Interpreter + ")"
	}
	sb.WriteString(s.title.Render(header))
	sb.WriteString("\n\n")

	width := 0
	for _, res := range r.Results {
		width = max(width, len(res.FeatureID))
	}

	for _, res := range r.Results {
		fmt.Fprintf(&sb, "  %s %-*s  %s",
			t.badge(res.Status), width, res.FeatureID, res.FeatureName)
		if res.Variant != "" {
			sb.WriteString(s.muted.Render(" [" + res.Variant + "]"))
		}
		sb.WriteString("\n")
		for _, line := range detailLines(res) {
			sb.WriteString("        ")
			sb.WriteString(s.muted.Render(line))
			sb.WriteString("\n")
		}
	}

	c := r.Counts()
	fmt.Fprintf(&sb,
		"\n%d checks: %d passed, %d failed, %d skipped, %d errors\n",
		c.Total, c.Passed, c.Failed, c.Skipped, c.Errors,
	)
	switch r.ExitCode() {
	case ExitOK:
		sb.WriteString(s.passed.Render("OK"))
	case ExitFailed:
		sb.WriteString(s.failed.Render("FAILED"))
	default:
		sb.WriteString(s.errored.Render("ERROR"))
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// Write writes the text report to w.
func (t *TextReporter) Write(w io.Writer, r *RunReport) error {
	return write(w, t, r)
}

func (t *TextReporter) badge(status string) string {
	s := t.styles
	switch status {
	case check.StatusPassed:
		return s.passed.Render("PASS ")
	case check.StatusFailed:
		return s.failed.Render("FAIL ")
	case check.StatusSkipped:
		return s.skipped.Render("SKIP ")
	}
	return s.errored.Render("ERROR")
}

// detailLines explains a non-passing result.
func detailLines(res *check.Result) []string {
	switch res.Failure {
	case check.FailureMismatch:
		return res.Diffs()
	case check.FailureInapplicable:
		return []string{"skipped: " + res.Reason}
	case check.FailureAcquisition:
		return []string{"resource acquisition failed: " + res.Error}
	case check.FailureGap:
		return []string{"specification gap: " + res.Error}
	case check.FailureInternal:
		return []string{"internal error: " + res.Error}
	}
	return nil
}
