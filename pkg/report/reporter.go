package report

import (
	"fmt"
	"io"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatMarkdown, FormatJSON}

// Reporter renders a run report.
type Reporter interface {
	// Generate renders the report.
	Generate(r *RunReport) ([]byte, error)

	// Write renders the report to w.
	Write(w io.Writer, r *RunReport) error
}

// Options tune reporter construction.
type Options struct {
	// Color enables terminal styling for text output.
	Color bool

	// Render renders Markdown for the terminal with glamour.
	Render bool

	// Width is the word-wrap width for rendered Markdown.
	Width int
}

// New returns the reporter for format.
func New(format string, opts Options) (Reporter, error) {
	switch format {
	case "", FormatText:
		return NewTextReporter(opts.Color), nil
	case FormatMarkdown:
		return NewMarkdownReporter(opts.Render, opts.Width), nil
	case FormatJSON:
		return NewJSONReporter(), nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

func write(w io.Writer, gen Reporter, r *RunReport) error {
	data, err := gen.Generate(r)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
