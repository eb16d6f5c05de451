package main

import (
	"errors"
	"fmt"
	"strings"

	"digital.vasic.distverify/pkg/report"
)

// ExitError signals a non-zero exit code without forcing os.Exit in
// RunE handlers. A nil Err exits silently.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: report.ExitUsage, Err: err}
}

func internalError(err error) error {
	return &ExitError{Code: report.ExitInternal, Err: err}
}

// usagePrefixes are the messages cobra uses for command-line misuse.
var usagePrefixes = []string{
	"flag needs an argument:",
	"unknown flag:",
	"unknown shorthand flag:",
	"unknown command",
	"invalid argument",
	"accepts ",
	"requires at least",
	"required flag",
}

// exitCode maps an Execute error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return report.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	msg := err.Error()
	for _, prefix := range usagePrefixes {
		if strings.HasPrefix(msg, prefix) {
			return report.ExitUsage
		}
	}
	return report.ExitFailed
}
