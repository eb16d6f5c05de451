package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"digital.vasic.distverify/pkg/check"
)

// JSONReporter renders RFC 8785 canonical JSON, so the same run
// produces the same bytes every time.
type JSONReporter struct{}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter() *JSONReporter { return &JSONReporter{} }

type jsonReport struct {
	Environment EnvironmentSummary `json:"environment"`
	Counts      Counts             `json:"counts"`
	ExitCode    int                `json:"exit_code"`
	Results     []*check.Result    `json:"results"`
}

// Generate renders the canonical JSON document followed by a
// newline.
func (j *JSONReporter) Generate(r *RunReport) ([]byte, error) {
	results := r.Results
	if results == nil {
		results = []*check.Result{}
	}
	raw, err := json.Marshal(jsonReport{
		Environment: r.Environment,
		Counts:      r.Counts(),
		ExitCode:    r.ExitCode(),
		Results:     results,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize report: %w", err)
	}
	return append(out, '\n'), nil
}

// Write writes the canonical JSON report to w.
func (j *JSONReporter) Write(w io.Writer, r *RunReport) error {
	return write(w, j, r)
}
