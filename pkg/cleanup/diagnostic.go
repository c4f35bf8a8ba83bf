package cleanup

// DiagnosticKind classifies a Diagnostic.
type DiagnosticKind string

// Diagnostic kinds.
const (
	KindRuleError         DiagnosticKind = "rule-error"
	KindParseError        DiagnosticKind = "parse-error"
	KindValidationError   DiagnosticKind = "validation-error"
	KindValidationWarning DiagnosticKind = "validation-warning"
	KindUnapplied         DiagnosticKind = "unapplied"
	KindCancelled         DiagnosticKind = "cancelled"
	KindPrecondition      DiagnosticKind = "precondition"
	KindPostcondition     DiagnosticKind = "postcondition"
	KindProject           DiagnosticKind = "project"
)

// Diagnostic reports something the user should know about a run:
// a failure, a warning, or a rule that never got to apply.
type Diagnostic struct {
	// DocumentID is the affected document, empty for project-wide reports.
	DocumentID string

	// RuleID is the rule involved, empty if none.
	RuleID string

	// Kind classifies the diagnostic.
	Kind DiagnosticKind

	// Severity is SeverityWarning for advisory reports, SeverityError or
	// SeverityFatal for failures.
	Severity Severity

	// Message is the human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// IsError reports whether the diagnostic describes a failure rather than
// a warning.
func (d Diagnostic) IsError() bool {
	return d.Severity >= SeverityError
}
