package fix

import (
	"bytes"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// Diff is a line diff between the original and the cleaned up content.
type Diff struct {
	Path     string
	Original []byte
	Modified []byte
	Hunks    []DiffHunk

	// Additions and Deletions count added and removed lines.
	Additions int
	Deletions int
}

// DiffHunk is one hunk of a unified diff. Starts are 1-based; a hunk side
// with no lines starts at the line before it, as in git.
type DiffHunk struct {
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
	Lines         []DiffLine
}

// DiffLine is a hunk line without its prefix or terminator.
type DiffLine struct {
	Kind    DiffLineKind
	Content string
}

// DiffLineKind tells how a hunk line is printed.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line present only in the modified content.
	DiffLineAdd

	// DiffLineRemove is a line present only in the original content.
	DiffLineRemove

	// DiffLineNoNewline marks that the preceding line has no line terminator.
	DiffLineNoNewline
)

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

const noNewlineMarker = `\ No newline at end of file`

// GenerateDiff returns the unified diff from original to modified, or nil if
// they are byte-identical. Lines are compared together with their
// terminator, so adding or dropping the final newline shows up as a change
// of the last line.
func GenerateDiff(path string, original, modified []byte) *Diff {
	if bytes.Equal(original, modified) {
		return nil
	}

	a, b := splitLines(original), splitLines(modified)
	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)

	d := &Diff{Path: path, Original: original, Modified: modified}
	for _, group := range matcher.GetGroupedOpCodes(contextLines) {
		d.Hunks = append(d.Hunks, d.hunk(group, a, b))
	}
	if len(d.Hunks) == 0 {
		return nil
	}
	return d
}

// hunk converts one group of opcodes into a hunk and updates the line
// counters of d.
func (d *Diff) hunk(group []difflib.OpCode, a, b []string) DiffHunk {
	first, last := group[0], group[len(group)-1]
	h := DiffHunk{
		OriginalStart: hunkStart(first.I1, last.I2),
		OriginalCount: last.I2 - first.I1,
		ModifiedStart: hunkStart(first.J1, last.J2),
		ModifiedCount: last.J2 - first.J1,
	}

	emit := func(kind DiffLineKind, lines []string) {
		for _, raw := range lines {
			content, terminated := strings.CutSuffix(raw, "\n")
			h.Lines = append(h.Lines, DiffLine{Kind: kind, Content: content})
			if !terminated {
				h.Lines = append(h.Lines, DiffLine{Kind: DiffLineNoNewline})
			}
		}
		switch kind {
		case DiffLineAdd:
			d.Additions += len(lines)
		case DiffLineRemove:
			d.Deletions += len(lines)
		}
	}

	for _, op := range group {
		switch op.Tag {
		case 'e':
			emit(DiffLineContext, a[op.I1:op.I2])
		case 'd':
			emit(DiffLineRemove, a[op.I1:op.I2])
		case 'i':
			emit(DiffLineAdd, b[op.J1:op.J2])
		case 'r':
			emit(DiffLineRemove, a[op.I1:op.I2])
			emit(DiffLineAdd, b[op.J1:op.J2])
		}
	}
	return h
}

func hunkStart(from, to int) int {
	if from == to {
		return from
	}
	return from + 1
}

// splitLines splits content after each newline. Only the last element can
// lack a terminator.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// HasChanges reports whether d holds any hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

func (d *Diff) cleanPath() string {
	return strings.TrimPrefix(d.Path, "/")
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	p := d.cleanPath()
	return fmt.Sprintf("diff --git a/%s b/%s", p, p)
}

// String renders d in unified format without the git header.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	var sb strings.Builder
	p := d.cleanPath()
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", p, p)
	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)
		h.writeBody(&sb)
	}
	return sb.String()
}

// FullString renders d with the git header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

func (h DiffHunk) writeBody(sb *strings.Builder) {
	for _, line := range h.Lines {
		switch line.Kind {
		case DiffLineContext:
			sb.WriteByte(' ')
		case DiffLineAdd:
			sb.WriteByte('+')
		case DiffLineRemove:
			sb.WriteByte('-')
		case DiffLineNoNewline:
			sb.WriteString(noNewlineMarker + "\n")
			continue
		}
		sb.WriteString(line.Content)
		sb.WriteByte('\n')
	}
}

// FileDiff converts d into the go-diff representation used by the diff
// reporter to print several files as one patch.
func (d *Diff) FileDiff() (*diff.FileDiff, error) {
	if d == nil {
		return nil, nil
	}

	p := d.cleanPath()
	out := &diff.FileDiff{
		OrigName: "a/" + p,
		NewName:  "b/" + p,
		Extended: []string{d.GitHeader()},
		Hunks:    make([]*diff.Hunk, 0, len(d.Hunks)),
	}
	for _, h := range d.Hunks {
		hunk, err := h.toHunk()
		if err != nil {
			return nil, fmt.Errorf("convert hunk of %s: %w", d.Path, err)
		}
		out.Hunks = append(out.Hunks, hunk)
	}
	return out, nil
}

func (h DiffHunk) toHunk() (*diff.Hunk, error) {
	var bounds [4]int32
	for i, v := range []int{h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount} {
		n, err := safecast.Conv[int32](v)
		if err != nil {
			return nil, err
		}
		bounds[i] = n
	}

	var body strings.Builder
	h.writeBody(&body)

	return &diff.Hunk{
		OrigStartLine: bounds[0],
		OrigLines:     bounds[1],
		NewStartLine:  bounds[2],
		NewLines:      bounds[3],
		Body:          []byte(body.String()),
	}, nil
}
