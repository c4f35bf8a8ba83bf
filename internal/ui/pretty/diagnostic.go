package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

// StatusStyle returns the style used for a file status label.
func (s *Styles) StatusStyle(status string) *lipgloss.Style {
	switch status {
	case runner.StatusError:
		return &s.Error
	case runner.StatusWritten:
		return &s.Written
	case runner.StatusSkipped:
		return &s.Skipped
	case runner.StatusChanged:
		return &s.Changed
	default:
		return &s.Dim
	}
}

// FormatStatus returns a styled status label.
func (s *Styles) FormatStatus(status string) string {
	return s.StatusStyle(status).Render(status)
}

// FormatDiagnostic formats a single diagnostic for terminal output. The rule
// identifier is rendered according to ruleFormat.
func (s *Styles) FormatDiagnostic(diag cleanup.Diagnostic, ruleName string, ruleFormat config.RuleFormat) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "  %s  %s", s.FormatSeverity(diag.Severity), s.Message.Render(diag.Message))
	if diag.RuleID != "" {
		ruleIdentifier := config.FormatRuleID(ruleFormat, diag.RuleID, ruleName)
		builder.WriteString("  " + s.RuleID.Render("("+ruleIdentifier+")"))
	}
	builder.WriteString("  " + s.Kind.Render("["+string(diag.Kind)+"]"))
	builder.WriteString("\n")

	if diag.Err != nil && !strings.Contains(diag.Message, diag.Err.Error()) {
		builder.WriteString("    " + s.Dim.Render(diag.Err.Error()) + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev cleanup.Severity) string {
	switch sev {
	case cleanup.SeverityFatal, cleanup.SeverityError:
		return s.Error.Render(sev.String())
	case cleanup.SeverityWarning:
		return s.Warning.Render(sev.String())
	default:
		return s.Info.Render(sev.String())
	}
}

// FormatPasses formats one line per pass of change: the pass number, the
// rules that contributed and the number of edits.
func (s *Styles) FormatPasses(change cleanup.Change) string {
	if change == nil {
		return ""
	}

	var builder strings.Builder
	for _, pass := range change.Passes() {
		edits := "edits"
		if len(pass.Edits) == 1 {
			edits = "edit"
		}
		fmt.Fprintf(&builder, "    %s %s %s\n",
			s.Dim.Render(fmt.Sprintf("pass %d:", pass.Index)),
			s.RuleID.Render(strings.Join(pass.Rules, ", ")),
			s.Dim.Render(fmt.Sprintf("(%d %s)", len(pass.Edits), edits)),
		)
		if pass.Status.Severity == cleanup.SeverityWarning && pass.Status.Message != "" {
			fmt.Fprintf(&builder, "    %s  %s\n", s.FormatSeverity(pass.Status.Severity), pass.Status.Message)
		}
	}
	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path, status string) string {
	return s.FilePath.Render(path) + " " + s.FormatStatus(status)
}
