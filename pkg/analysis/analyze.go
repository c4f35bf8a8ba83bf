// Package analysis turns a runner.Result into the aggregated views shared by
// the reporters.
package analysis

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
	"github.com/yaklabco/gocleanup/pkg/fix"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

// ReportVersion is the version of the JSON report layout.
const ReportVersion = "1.0.0"

// ruleStats is a RuleAnalysis under construction.
type ruleStats struct {
	RuleAnalysis
	files map[string]struct{}
}

// collector accumulates one Report.
type collector struct {
	opts   Options
	report *Report
	names  map[string]string
	rules  map[string]*ruleStats
}

// Analyze builds a Report from result in one pass over its files and
// diagnostics. A nil result gives an empty report.
func Analyze(result *runner.Result, opts Options) *Report {
	c := &collector{
		opts:   opts,
		report: &Report{Version: ReportVersion, Timestamp: time.Now()},
		names:  map[string]string{},
		rules:  map[string]*ruleStats{},
	}
	if result == nil {
		return c.report
	}

	stats := result.Stats
	c.report.RunID = result.RunID
	c.report.Totals = Totals{
		Files:         stats.FilesProcessed,
		FilesChanged:  stats.FilesChanged,
		FilesWritten:  stats.FilesWritten,
		FilesSkipped:  stats.FilesSkipped,
		FilesErrored:  stats.FilesErrored,
		Projects:      stats.Engine.Projects,
		Passes:        stats.Engine.Passes,
		Fixes:         stats.Engine.Fixes,
		Deferrals:     stats.Engine.Deferrals,
		ParseFailures: stats.Engine.ParseFailures,
	}

	for _, file := range result.Files {
		c.addFile(file)
	}
	for _, diag := range result.Diagnostics {
		c.addDiagnostic(diag, nil)
	}
	if opts.IncludeByRule {
		c.report.ByRule = c.byRule()
	}
	return c.report
}

func (c *collector) addFile(file runner.FileOutcome) {
	entry := FileEntry{Path: file.RelPath, Language: file.Language, Status: file.Status()}
	if file.Error != nil {
		entry.Error = file.Error.Error()
	}

	if file.Change != nil {
		entry.SaveMode = file.Change.SaveMode().String()
		for _, pass := range file.Change.Passes() {
			pe := PassEntry{Index: pass.Index, Label: pass.Label, Rules: pass.Rules, Edits: len(pass.Edits)}
			if pass.Status.Severity == cleanup.SeverityWarning {
				pe.Warning = pass.Status.Message
			}
			entry.Passes = append(entry.Passes, pe)
			c.report.Totals.Edits += pe.Edits

			for _, id := range pass.Rules {
				rs := c.rule(id)
				rs.Passes++
				rs.files[file.RelPath] = struct{}{}
			}
		}
		if c.opts.IncludeDiffStats {
			if d := fix.GenerateDiff(file.RelPath, file.Original, file.Change.Preview()); d != nil {
				entry.Additions, entry.Deletions = d.Additions, d.Deletions
			}
		}
	}

	for _, diag := range file.Diagnostics {
		c.addDiagnostic(diag, &entry)
	}

	listed := c.opts.IncludeUnchanged || file.Changed() || file.Error != nil || len(file.Diagnostics) > 0
	if c.opts.IncludeFiles && listed {
		c.report.Files = append(c.report.Files, entry)
	}
}

// addDiagnostic counts diag against the totals, its file entry when not nil
// and its rule, and lists it when diagnostics are included.
func (c *collector) addDiagnostic(diag cleanup.Diagnostic, fe *FileEntry) {
	bump := func(errs, warns *int) {
		if diag.IsError() {
			*errs++
		} else {
			*warns++
		}
	}

	bump(&c.report.Totals.Errors, &c.report.Totals.Warnings)
	if fe != nil {
		bump(&fe.Errors, &fe.Warnings)
	}
	if diag.RuleID != "" {
		rs := c.rule(diag.RuleID)
		bump(&rs.Errors, &rs.Warnings)
		if diag.DocumentID != "" {
			rs.files[diag.DocumentID] = struct{}{}
		}
	}

	if !c.opts.IncludeDiagnostics {
		return
	}
	entry := DiagnosticEntry{
		FilePath: diag.DocumentID,
		RuleID:   diag.RuleID,
		Kind:     string(diag.Kind),
		Severity: diag.Severity.String(),
		Message:  diag.Message,
	}
	if diag.RuleID != "" {
		entry.RuleName = c.ruleName(diag.RuleID)
		entry.Rule = config.FormatRuleID(c.opts.RuleFormat, diag.RuleID, entry.RuleName)
	}
	if diag.Err != nil {
		entry.Error = diag.Err.Error()
	}
	c.report.Diagnostics = append(c.report.Diagnostics, entry)
}

// ruleName returns the registered name of id, or "" for unknown rules.
func (c *collector) ruleName(id string) string {
	name, ok := c.names[id]
	if !ok {
		if rule, found := c.opts.registry().Get(id); found {
			name = rule.Name()
		}
		c.names[id] = name
	}
	return name
}

func (c *collector) rule(id string) *ruleStats {
	rs, ok := c.rules[id]
	if !ok {
		name := c.ruleName(id)
		rs = &ruleStats{
			RuleAnalysis: RuleAnalysis{RuleID: id, RuleName: name, Rule: config.FormatRuleID(c.opts.RuleFormat, id, name)},
			files:        map[string]struct{}{},
		}
		c.rules[id] = rs
	}
	return rs
}

func (c *collector) byRule() []RuleAnalysis {
	out := make([]RuleAnalysis, 0, len(c.rules))
	for _, rs := range c.rules {
		ra := rs.RuleAnalysis
		ra.Files = slices.Sorted(maps.Keys(rs.files))
		out = append(out, ra)
	}
	slices.SortFunc(out, compareRules(c.opts.SortBy, c.opts.SortDesc))
	return out
}

// compareRules orders rules by the chosen field, breaking ties by ID.
// Alphabetical order is always ascending and severity order always puts
// the most errors first.
func compareRules(by SortField, desc bool) func(a, b RuleAnalysis) int {
	return func(a, b RuleAnalysis) int {
		var primary int
		switch by {
		case SortByAlpha:
		case SortBySeverity:
			primary = cmp.Or(cmp.Compare(b.Errors, a.Errors), cmp.Compare(b.Warnings, a.Warnings))
		default:
			primary = cmp.Compare(a.Passes, b.Passes)
			if desc {
				primary = -primary
			}
		}
		return cmp.Or(primary, cmp.Compare(a.RuleID, b.RuleID))
	}
}
