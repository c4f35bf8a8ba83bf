package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/gocleanup/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files changed (2 written, 1 skipped) of 12 checked in 2 passes, 1 error".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var parts []string

	if stats.FilesChanged == 0 {
		parts = append(parts, s.Success.Render("Nothing to clean up")+
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))))
	} else {
		main := fmt.Sprintf("%d %s changed", stats.FilesChanged, plural(stats.FilesChanged, wordFile, wordFiles))

		var saveParts []string
		if stats.FilesWritten > 0 {
			saveParts = append(saveParts, s.Written.Render(fmt.Sprintf("%d written", stats.FilesWritten)))
		}
		if stats.FilesSkipped > 0 {
			saveParts = append(saveParts, s.Skipped.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
		}
		if len(saveParts) > 0 {
			main += " (" + strings.Join(saveParts, ", ") + ")"
		}

		main += fmt.Sprintf(" of %d checked in %d %s",
			stats.FilesProcessed, stats.Engine.Passes, plural(stats.Engine.Passes, "pass", "passes"))
		parts = append(parts, main)
	}

	if stats.Errors > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s", stats.Errors, plural(stats.Errors, "error", "errors"))))
	}
	if stats.Warnings > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s", stats.Warnings, plural(stats.Warnings, "warning", "warnings"))))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	row := func(label string, value string) {
		builder.WriteString(fmt.Sprintf("  %-19s", label+":") + value + "\n")
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row("Files checked", s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)))
	if stats.FilesChanged > 0 {
		row("Files changed", s.Changed.Render(strconv.Itoa(stats.FilesChanged)))
	}
	if stats.FilesWritten > 0 {
		row("Files written", s.Written.Render(strconv.Itoa(stats.FilesWritten)))
	}
	if stats.FilesSkipped > 0 {
		row("Files skipped", s.Skipped.Render(strconv.Itoa(stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		row("Files unreadable", s.Failure.Render(strconv.Itoa(stats.FilesErrored)))
	}

	builder.WriteString("\n")

	row("Projects", s.SummaryValue.Render(strconv.Itoa(stats.Engine.Projects)))
	row("Passes", s.SummaryValue.Render(strconv.Itoa(stats.Engine.Passes)))
	row("Fixes applied", s.SummaryValue.Render(strconv.Itoa(stats.Engine.Fixes)))
	if stats.Engine.Deferrals > 0 {
		row("Fixes deferred", s.SummaryValue.Render(strconv.Itoa(stats.Engine.Deferrals)))
	}
	if stats.Engine.ParseFailures > 0 {
		row("Parse failures", s.Error.Render(strconv.Itoa(stats.Engine.ParseFailures)))
	}
	if stats.Errors > 0 {
		row("Errors", s.Error.Render(strconv.Itoa(stats.Errors)))
	}
	if stats.Warnings > 0 {
		row("Warnings", s.Warning.Render(strconv.Itoa(stats.Warnings)))
	}

	builder.WriteString("\n")

	switch {
	case stats.Errors > 0 || stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Clean up finished with errors"))
	case stats.Warnings > 0:
		builder.WriteString(s.Warning.Render("Clean up finished with warnings"))
	default:
		builder.WriteString(s.Success.Render("Clean up finished"))
	}
	builder.WriteString("\n")

	return builder.String()
}
