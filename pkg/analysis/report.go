package analysis

import "time"

// Report contains pre-computed views of a clean-up run.
// Computed once by Analyze(), used by all renderers.
type Report struct {
	// Version is the report format version.
	Version string `json:"version"`

	// RunID identifies the engine run.
	RunID string `json:"runId,omitempty"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp"`

	// Files lists per-file outcomes in path order.
	Files []FileEntry `json:"files,omitempty"`

	// Diagnostics is the flat list for detailed output.
	Diagnostics []DiagnosticEntry `json:"diagnostics,omitempty"`

	// ByRule groups edits and diagnostics by rule.
	ByRule []RuleAnalysis `json:"byRule,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`
}

// FileEntry describes what happened to one file.
type FileEntry struct {
	Path      string      `json:"path"`
	Language  string      `json:"language,omitempty"`
	Status    string      `json:"status"`
	SaveMode  string      `json:"saveMode,omitempty"`
	Passes    []PassEntry `json:"passes,omitempty"`
	Additions int         `json:"additions,omitempty"`
	Deletions int         `json:"deletions,omitempty"`
	Errors    int         `json:"errors,omitempty"`
	Warnings  int         `json:"warnings,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// PassEntry summarizes one pass of a file's change.
type PassEntry struct {
	Index   int      `json:"index"`
	Label   string   `json:"label"`
	Rules   []string `json:"rules"`
	Edits   int      `json:"edits"`
	Warning string   `json:"warning,omitempty"`
}

// DiagnosticEntry represents a single diagnostic in the report.
type DiagnosticEntry struct {
	FilePath string `json:"filePath,omitempty"`
	RuleID   string `json:"ruleId,omitempty"`
	RuleName string `json:"ruleName,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files         int `json:"filesChecked"`
	FilesChanged  int `json:"filesChanged"`
	FilesWritten  int `json:"filesWritten"`
	FilesSkipped  int `json:"filesSkipped"`
	FilesErrored  int `json:"filesErrored"`
	Projects      int `json:"projects"`
	Passes        int `json:"passes"`
	Fixes         int `json:"fixes"`
	Deferrals     int `json:"deferrals"`
	ParseFailures int `json:"parseFailures"`
	Edits         int `json:"edits"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
}

// HasChanges returns true if any file has a change.
func (t Totals) HasChanges() bool {
	return t.FilesChanged > 0
}

// HasErrors returns true if any error diagnostic was reported or any file
// could not be processed.
func (t Totals) HasErrors() bool {
	return t.Errors > 0 || t.FilesErrored > 0
}

// RuleAnalysis contains aggregated data for a single rule.
type RuleAnalysis struct {
	RuleID   string   `json:"ruleId"`
	RuleName string   `json:"ruleName"`
	Rule     string   `json:"rule"`
	Passes   int      `json:"passes"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Files    []string `json:"files,omitempty"`
}
