package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/gocleanup/internal/ui/pretty"
	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

// TextReporter prints one block per file: a status header, the passes of
// its change and its diagnostics.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to clean up."))
		}
		return 0, nil
	}

	changed := 0
	for _, file := range result.Files {
		if file.Changed() {
			changed++
		}
		r.file(file)
	}
	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(r.bw, r.styles.Bold.Render("project"))
		r.diagnostics(result.Diagnostics)
		fmt.Fprintln(r.bw)
	}
	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}
	return changed, nil
}

func (r *TextReporter) file(file runner.FileOutcome) {
	header := r.styles.FormatFileHeader(file.RelPath, file.Status())
	switch {
	case file.Error != nil:
		fmt.Fprintf(r.bw, "%s: %s\n", r.styles.FilePath.Render(file.RelPath),
			r.styles.Error.Render("error: "+file.Error.Error()))
		r.diagnostics(file.Diagnostics)
	case file.Changed() || len(file.Diagnostics) > 0:
		fmt.Fprintln(r.bw, header)
		if r.opts.ShowPasses {
			fmt.Fprint(r.bw, r.styles.FormatPasses(file.Change))
		}
		r.diagnostics(file.Diagnostics)
		fmt.Fprintln(r.bw)
	case r.opts.ShowUnchanged:
		fmt.Fprintln(r.bw, header)
	}
}

func (r *TextReporter) diagnostics(diags []cleanup.Diagnostic) {
	for _, d := range diags {
		fmt.Fprint(r.bw, r.styles.FormatDiagnostic(d, r.opts.ruleName(d.RuleID), r.opts.RuleFormat))
	}
}
