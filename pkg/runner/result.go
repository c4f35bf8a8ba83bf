package runner

import (
	"slices"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
)

// FileOutcome is what happened to one discovered file.
type FileOutcome struct {
	// Path is the absolute file path.
	Path string

	// RelPath is Path relative to the working directory. It is also the
	// document ID handed to the engine.
	RelPath string

	// Language is the detected document language.
	Language string

	// Original is the content read from disk; nil if the file could not be read.
	Original []byte

	// Change is the engine's change for this file, or nil if nothing changed.
	Change cleanup.Change

	// Diagnostics are the engine diagnostics for this file.
	Diagnostics []cleanup.Diagnostic

	// Written is true if the change was saved to disk.
	Written bool

	// Skipped is true if a change was due to be saved but the file changed
	// on disk after it was read. Leave-dirty changes are not skipped.
	Skipped bool

	// Error is set if the file could not be read or written.
	Error error
}

// Changed reports whether the engine produced a change for the file.
func (o FileOutcome) Changed() bool {
	return o.Change != nil
}

// File status labels returned by FileOutcome.Status.
const (
	StatusWritten   = "written"
	StatusSkipped   = "skipped"
	StatusChanged   = "changed"
	StatusUnchanged = "unchanged"
	StatusError     = "error"
)

// Status returns a label for what happened to the file.
func (o FileOutcome) Status() string {
	switch {
	case o.Error != nil:
		return StatusError
	case o.Written:
		return StatusWritten
	case o.Skipped:
		return StatusSkipped
	case o.Changed():
		return StatusChanged
	default:
		return StatusUnchanged
	}
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files handed to the engine.
	FilesProcessed int

	// FilesChanged is the number of files with a change.
	FilesChanged int

	// FilesWritten is the number of files saved to disk.
	FilesWritten int

	// FilesSkipped is the number of changed files that were not saved.
	FilesSkipped int

	// FilesErrored is the number of files that could not be read or written.
	FilesErrored int

	// Errors is the number of error diagnostics.
	Errors int

	// Warnings is the number of warning diagnostics.
	Warnings int

	// Engine holds the engine counters.
	Engine cleanup.Stats
}

// Result is the overall runner result.
type Result struct {
	// RunID identifies the engine run; empty if the engine never ran.
	RunID string

	// Files contains the outcome for each discovered file, ordered by path.
	Files []FileOutcome

	// Diagnostics holds project-wide diagnostics not tied to one file.
	Diagnostics []cleanup.Diagnostic

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Errors contains any non-file-specific errors encountered.
	Errors []error
}

// HasFailures reports whether any file errored or any error diagnostic was reported.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || r.Stats.Errors > 0 || len(r.Errors) > 0
}

// HasChanges reports whether any file has a change, written or not.
func (r *Result) HasChanges() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesChanged > 0
}

// AllDiagnostics returns the file diagnostics in file order followed by the
// project-wide ones.
func (r *Result) AllDiagnostics() []cleanup.Diagnostic {
	var out []cleanup.Diagnostic
	for _, f := range r.Files {
		out = append(out, f.Diagnostics...)
	}
	return append(out, r.Diagnostics...)
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Original != nil {
		r.Stats.FilesProcessed++
	}
	if outcome.Error != nil {
		r.Stats.FilesErrored++
	}
	if outcome.Changed() {
		r.Stats.FilesChanged++
	}
	if outcome.Written {
		r.Stats.FilesWritten++
	}
	if outcome.Skipped {
		r.Stats.FilesSkipped++
	}
	r.countDiagnostics(outcome.Diagnostics)
}

func (r *Result) countDiagnostics(diags []cleanup.Diagnostic) {
	errs := 0
	for _, d := range diags {
		if d.IsError() {
			errs++
		}
	}
	r.Stats.Errors += errs
	r.Stats.Warnings += len(diags) - errs
}

// File returns the outcome for a path relative to the working directory.
func (r *Result) File(relPath string) (FileOutcome, bool) {
	i := slices.IndexFunc(r.Files, func(f FileOutcome) bool { return f.RelPath == relPath })
	if i < 0 {
		return FileOutcome{}, false
	}
	return r.Files[i], true
}
