package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"digital.vasic.distverify/pkg/check"
)

// HistoricalEntry is one run in the history log.
type HistoricalEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Interpreter string    `json:"interpreter,omitempty"`
	Counts      Counts    `json:"counts"`
	ExitCode    int       `json:"exit_code"`
	Failed      []string  `json:"failed,omitempty"`
}

// AppendToHistory adds an entry for r to the history log at
// historyPath. Each entry is a single JSON line.
func AppendToHistory(historyPath string, r *RunReport, at time.Time) error {
	entry := HistoricalEntry{
		Timestamp:   at.UTC(),
		Environment: r.Environment.String(),
		Interpreter: r.Environment.Interpreter,
		Counts:      r.Counts(),
		ExitCode:    r.ExitCode(),
	}
	for _, res := range r.Results {
		if res.Counted() && res.Status != check.StatusPassed {
			entry.Failed = append(entry.Failed, string(res.FeatureID))
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}
