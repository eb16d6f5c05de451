package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownReporter renders the run as a Markdown summary,
// optionally styled for the terminal.
type MarkdownReporter struct {
	render bool
	width  int
}

// NewMarkdownReporter creates a Markdown reporter. When render is
// true the Markdown is rendered with glamour, wrapped at width
// (0 disables wrapping).
func NewMarkdownReporter(render bool, width int) *MarkdownReporter {
	return &MarkdownReporter{render: render, width: width}
}

// Generate renders the report.
func (m *MarkdownReporter) Generate(r *RunReport) ([]byte, error) {
	md := generateMarkdown(r)
	if !m.render {
		return []byte(md), nil
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if m.width > 0 {
		opts = append(opts, glamour.WithWordWrap(m.width))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return []byte(out), nil
}

// Write writes the Markdown report to w.
func (m *MarkdownReporter) Write(w io.Writer, r *RunReport) error {
	return write(w, m, r)
}

func generateMarkdown(r *RunReport) string {
	var sb strings.Builder

	sb.WriteString("# Distribution Verification Report\n\n")
	fmt.Fprintf(&sb, "**Environment:** `%s`\n\n", r.Environment)
	if r.Environment.Interpreter != "" {
		fmt.Fprintf(&sb, "**Interpreter:** `%s`\n\n", r.Environment.Interpreter)
	}

	sb.WriteString("## Results\n\n")
	sb.WriteString("| Feature | Variant | Status | Assertions |\n")
	sb.WriteString("|---------|---------|--------|------------|\n")
	for _, res := range r.Results {
		passed := 0
		for _, a := range res.Assertions {
			if a.Passed {
				passed++
			}
		}
		variant := res.Variant
		if variant == "" {
			variant = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %d/%d |\n",
			res.FeatureID, variant, strings.ToUpper(res.Status),
			passed, len(res.Assertions),
		)
	}

	var details strings.Builder
	for _, res := range r.Results {
		lines := detailLines(res)
		if len(lines) == 0 || !res.Counted() {
			continue
		}
		fmt.Fprintf(&details, "### %s\n\n", res.FeatureID)
		for _, line := range lines {
			fmt.Fprintf(&details, "- %s\n", line)
		}
		details.WriteString("\n")
	}
	if details.Len() > 0 {
		sb.WriteString("\n## Failures\n\n")
		sb.WriteString(details.String())
	} else {
		sb.WriteString("\n")
	}

	c := r.Counts()
	sb.WriteString("## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total | %d |\n", c.Total)
	fmt.Fprintf(&sb, "| Passed | %d |\n", c.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", c.Failed)
	fmt.Fprintf(&sb, "| Skipped | %d |\n", c.Skipped)
	fmt.Fprintf(&sb, "| Errors | %d |\n", c.Errors)
	fmt.Fprintf(&sb, "| Exit Code | %d |\n", r.ExitCode())

	return sb.String()
}
