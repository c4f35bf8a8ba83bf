package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/gocleanup/internal/ui/pretty"
	"github.com/yaklabco/gocleanup/pkg/analysis"
)

const ellipsis = "…"

// column is one fixed-width table column. Widths are in terminal cells.
type column struct {
	title string
	width int
	right bool

	// keepTail truncates from the left, so the end of a path stays visible.
	keepTail bool
}

// fit truncates and pads s to exactly c.width cells, keeping the last cell
// blank as a gutter. It must run before styling because ANSI sequences have
// no width.
func (c column) fit(s string) string {
	limit := c.width - 1
	if runewidth.StringWidth(s) > limit {
		if c.keepTail {
			s = ellipsis + tail(s, limit-runewidth.StringWidth(ellipsis))
		} else {
			s = runewidth.Truncate(s, limit, ellipsis)
		}
	}
	if c.right {
		return runewidth.FillLeft(s, c.width)
	}
	return runewidth.FillRight(s, c.width)
}

// tail returns the longest suffix of s at most width cells wide.
func tail(s string, width int) string {
	runes := []rune(s)
	w := 0
	i := len(runes)
	for i > 0 {
		rw := runewidth.RuneWidth(runes[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return string(runes[i:])
}

type cell struct {
	text  string
	style *lipgloss.Style
}

func number(n int) cell { return cell{text: strconv.Itoa(n)} }

//nolint:gochecknoglobals // Read-only table layouts.
var (
	ruleColumns = []column{
		{title: "Rule", width: 36},
		{title: "Passes", width: 8, right: true},
		{title: "Files", width: 7, right: true},
		{title: "Errors", width: 8, right: true},
		{title: "Warnings", width: 10, right: true},
	}
	fileColumns = []column{
		{title: "File", width: 48, keepTail: true},
		{title: "Status", width: 11},
		{title: "Passes", width: 8, right: true},
		{title: "+", width: 7, right: true},
		{title: "-", width: 7, right: true},
	}
)

// tableWidth is the separator length shared by both tables.
const tableWidth = 90

// SummaryRenderer prints per-rule and per-file tables followed by totals.
type SummaryRenderer struct {
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	return &SummaryRenderer{
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	t := report.Totals
	if !t.HasChanges() && t.Errors == 0 && t.Warnings == 0 {
		fmt.Fprintln(r.out, r.styles.Success.Render("Nothing to clean up"))
		return nil
	}

	if len(report.ByRule) > 0 {
		rows := make([][]cell, 0, len(report.ByRule))
		for _, rule := range report.ByRule {
			label := rule.Rule
			if label == "" {
				label = rule.RuleID
			}
			rows = append(rows, []cell{
				{text: label, style: r.severity(rule.Errors > 0, rule.Warnings > 0)},
				number(rule.Passes), number(len(rule.Files)), number(rule.Errors), number(rule.Warnings),
			})
		}
		r.table("Rules Summary", ruleColumns, rows)
		fmt.Fprintln(r.out)
	}

	if len(report.Files) > 0 {
		rows := make([][]cell, 0, len(report.Files))
		for _, f := range report.Files {
			rows = append(rows, []cell{
				{text: f.Path, style: r.severity(f.Errors > 0 || f.Error != "", f.Warnings > 0)},
				{text: f.Status, style: r.styles.StatusStyle(f.Status)},
				number(len(f.Passes)), number(f.Additions), number(f.Deletions),
			})
		}
		r.table("Files Summary", fileColumns, rows)
		fmt.Fprintln(r.out)
	}

	r.totals(t)
	return nil
}

// severity picks the row highlight, or nil for no highlight.
func (r *SummaryRenderer) severity(hasErrors, hasWarnings bool) *lipgloss.Style {
	switch {
	case hasErrors:
		return &r.styles.TableErrorRow
	case hasWarnings:
		return &r.styles.TableWarnRow
	}
	return nil
}

func (r *SummaryRenderer) table(title string, cols []column, rows [][]cell) {
	rule := r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth))

	fmt.Fprintln(r.out, r.styles.Bold.Render(title))
	fmt.Fprintln(r.out, rule)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = r.styles.TableHeader.Render(c.fit(c.title))
	}
	fmt.Fprintln(r.out, strings.Join(header, " "))
	fmt.Fprintln(r.out, rule)

	line := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			s := c.fit(row[i].text)
			if st := row[i].style; st != nil {
				s = st.Render(s)
			}
			line[i] = s
		}
		fmt.Fprintln(r.out, strings.TrimRight(strings.Join(line, " "), " "))
	}
}

func (r *SummaryRenderer) totals(t analysis.Totals) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %s changed of %d checked, %d fixes in %d passes",
		t.FilesChanged, plural(t.FilesChanged, "file", "files"), t.Files, t.Fixes, t.Passes)

	var counts []string
	if t.Errors > 0 {
		counts = append(counts, r.styles.Error.Render(fmt.Sprintf("%d %s", t.Errors, plural(t.Errors, "error", "errors"))))
	}
	if t.Warnings > 0 {
		counts = append(counts, r.styles.Warning.Render(fmt.Sprintf("%d %s", t.Warnings, plural(t.Warnings, "warning", "warnings"))))
	}
	if len(counts) > 0 {
		sb.WriteString(" (" + strings.Join(counts, ", ") + ")")
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Total: ")+sb.String())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
