// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldConfig = "config"
	FieldWrite  = "write"
	FieldJobs   = "jobs"
	FieldBudget = "memory_budget"

	// Engine fields.
	FieldRunID       = "run_id"
	FieldProject     = "project"
	FieldPass        = "pass"
	FieldDocument    = "document"
	FieldDocuments   = "documents"
	FieldRule        = "rule"
	FieldRules       = "rules"
	FieldBatchSize   = "batch_size"
	FieldChanges     = "changes"
	FieldPasses      = "passes"
	FieldDiagnostics = "diagnostics"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesChanged    = "files_changed"
	FieldFilesWritten    = "files_written"
	FieldFilesSkipped    = "files_skipped"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Rule listing fields.
	FieldName        = "name"
	FieldDescription = "description"
)
