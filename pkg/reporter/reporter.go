// Package reporter prints the outcome of a clean-up run as styled text,
// JSON, a unified patch or summary tables.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/gocleanup/pkg/analysis"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

// Reporter writes the outcome of a run.
type Reporter interface {
	// Report writes result and returns how many changed files it reported.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// analyzed reports through a Renderer, which works on the analysis.Report
// built from the run result.
type analyzed struct {
	renderer Renderer
	opts     analysis.Options
}

var _ Reporter = analyzed{}

func (a analyzed) Report(ctx context.Context, result *runner.Result) (int, error) {
	report := analysis.Analyze(result, a.opts)
	if err := a.renderer.Render(ctx, report); err != nil {
		return 0, fmt.Errorf("render %T: %w", a.renderer, err)
	}
	return report.Totals.FilesChanged, nil
}

func withAnalysis(renderer Renderer, opts Options) analyzed {
	ao := analysis.DefaultOptions()
	ao.IncludeUnchanged = opts.ShowUnchanged
	ao.RuleFormat = opts.RuleFormat
	ao.Registry = opts.Registry
	return analyzed{renderer: renderer, opts: ao}
}

// New returns the Reporter for opts.Format. An empty format means text and
// a nil writer means standard output.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}

	switch opts.Format {
	case FormatText:
		return NewTextReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	case FormatJSON:
		return withAnalysis(NewJSONRenderer(opts), opts), nil
	case FormatSummary:
		return withAnalysis(NewSummaryRenderer(opts), opts), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", opts.Format)
}
