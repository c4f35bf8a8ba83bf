package cleanup

import (
	"strings"

	"github.com/yaklabco/gocleanup/pkg/fix"
)

// MultiFixLabel names a pass in which more than one rule contributed edits.
const MultiFixLabel = "Clean up"

// Severity classifies a Status.
type Severity int

const (
	// SeverityOK means no problems.
	SeverityOK Severity = iota

	// SeverityWarning means the edits are applied but the user should look.
	SeverityWarning

	// SeverityError means the edits are discarded and the rule is not retried.
	SeverityError

	// SeverityFatal aborts the project. Only condition checks return it.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Status is the validation outcome of a fix or condition check.
type Status struct {
	Severity Severity
	Message  string
}

// OK returns a status without problems.
func OK() Status {
	return Status{}
}

// Warning returns a warning status.
func Warning(msg string) Status {
	return Status{Severity: SeverityWarning, Message: msg}
}

// Error returns an error status.
func Error(msg string) Status {
	return Status{Severity: SeverityError, Message: msg}
}

// Fatal returns a fatal status.
func Fatal(msg string) Status {
	return Status{Severity: SeverityFatal, Message: msg}
}

// IsOK reports whether s carries no problem.
func (s Status) IsOK() bool {
	return s.Severity == SeverityOK
}

// Merge combines two statuses. The result has the higher severity and both
// messages.
func (s Status) Merge(other Status) Status {
	out := Status{Severity: max(s.Severity, other.Severity)}
	switch {
	case s.Message == "":
		out.Message = other.Message
	case other.Message == "":
		out.Message = s.Message
	default:
		out.Message = strings.Join([]string{s.Message, other.Message}, "; ")
	}
	return out
}

// ChangeGroup names a set of edit nodes for previews
// (e.g., "Rename variable").
type ChangeGroup struct {
	Name  string
	Edits []fix.NodeID
}

// Fix is the result of one rule applied to one document.
// A Fix is consumed by the iterator and never mutated afterwards.
type Fix struct {
	// Label is the human-readable name shown for the change.
	Label string

	// Root is the edit tree, allocated in the RuleContext arena.
	Root fix.NodeID

	// Status is the validation outcome. ERROR fixes are never merged.
	Status Status

	// Groups optionally names sub-ranges of Root.
	Groups []ChangeGroup
}

// Group is a named set of edits in a completed pass.
type Group struct {
	Name  string
	Edits []fix.TextEdit
}
