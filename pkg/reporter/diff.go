package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/yaklabco/gocleanup/internal/ui/pretty"
	"github.com/yaklabco/gocleanup/pkg/fix"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

// DiffReporter prints every change of a run as a single git-style patch
// that can be applied with git apply.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewDiffReporter creates a diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// diffStat accumulates the numbers of the closing stat line.
type diffStat struct {
	files, additions, deletions int
}

// Report implements Reporter. Failed files are listed before the patch.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()
	if result == nil {
		return 0, nil
	}

	var (
		patches []*diff.FileDiff
		stat    diffStat
	)
	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n", r.styles.FilePath.Render(file.RelPath),
				r.styles.Error.Render("error: "+file.Error.Error()))
			continue
		}
		if !file.Changed() {
			continue
		}

		d := fix.GenerateDiff(file.RelPath, file.Original, file.Change.Preview())
		if !d.HasChanges() {
			continue
		}
		fd, err := d.FileDiff()
		if err != nil {
			return 0, fmt.Errorf("build diff for %s: %w", file.RelPath, err)
		}
		patches = append(patches, fd)
		stat.files++
		stat.additions += d.Additions
		stat.deletions += d.Deletions
	}
	if len(patches) == 0 {
		return 0, nil
	}

	patch, err := diff.PrintMultiFileDiff(patches)
	if err != nil {
		return 0, fmt.Errorf("print diff: %w", err)
	}
	for line := range strings.Lines(string(patch)) {
		line = strings.TrimSuffix(line, "\n")
		fmt.Fprintln(r.bw, r.lineStyle(line).Render(line))
	}

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw)
		fmt.Fprintln(r.bw, r.statLine(stat))
	}
	return stat.files, nil
}

// lineStyle picks the style of one patch line by its prefix. The file
// headers start with "---" and "+++" and are styled like removals and
// additions, as git does.
func (r *DiffReporter) lineStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "diff --git"):
		return r.styles.DiffHeader
	case strings.HasPrefix(line, "@@"):
		return r.styles.DiffHunk
	case strings.HasPrefix(line, "+"):
		return r.styles.DiffAdd
	case strings.HasPrefix(line, "-"):
		return r.styles.DiffRemove
	}
	return r.styles.DiffContext
}

// statLine renders e.g. "2 files changed, 3 insertions(+), 1 deletion(-)".
func (r *DiffReporter) statLine(s diffStat) string {
	parts := []string{fmt.Sprintf("%d %s changed", s.files, plural(s.files, "file", "files"))}
	if s.additions > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(
			fmt.Sprintf("%d %s(+)", s.additions, plural(s.additions, "insertion", "insertions"))))
	}
	if s.deletions > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(
			fmt.Sprintf("%d %s(-)", s.deletions, plural(s.deletions, "deletion", "deletions"))))
	}
	return strings.Join(parts, ", ")
}
