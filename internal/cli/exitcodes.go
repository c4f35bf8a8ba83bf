package cli

import (
	"errors"

	"github.com/yaklabco/gocleanup/pkg/runner"
)

// Exit codes for gocleanup.
const (
	// ExitSuccess indicates the run finished with nothing left to report.
	ExitSuccess = 0

	// ExitErrors indicates the run finished but some files or rules failed.
	ExitErrors = 1

	// ExitChanges indicates a dry run found changes (with --check).
	ExitChanges = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromResult determines the exit code of a run. With check set, a
// run that found changes it did not write fails with ExitChanges.
func ExitCodeFromResult(result *runner.Result, check bool) int {
	if result == nil {
		return ExitSuccess
	}

	if result.HasFailures() {
		return ExitErrors
	}

	if check && result.Stats.FilesChanged > result.Stats.FilesWritten {
		return ExitChanges
	}

	return ExitSuccess
}

// ErrCleanupFailed is returned when a run reports failures or, with --check,
// unwritten changes. The report has already been printed.
var ErrCleanupFailed = errors.New("clean up failed")

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitErrors
}
