package rules

import (
	"bytes"
	"fmt"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/fix"
	"github.com/yaklabco/gocleanup/pkg/langdetect"
)

// Rule IDs.
const (
	TrailingWhitespaceID = "whitespace.trailing"
	FinalNewlineID       = "format.final-newline"
)

const defaultBreakSpaces = 2

// TrailingWhitespaceRule removes spaces and tabs at the end of lines.
type TrailingWhitespaceRule struct {
	cleanup.BaseRule

	breakSpaces int
}

// NewTrailingWhitespaceRule creates a new trailing whitespace rule.
// In Markdown documents a run of exactly breakSpaces spaces is a hard line
// break and is kept; zero disables that exception.
func NewTrailingWhitespaceRule(breakSpaces int) *TrailingWhitespaceRule {
	return &TrailingWhitespaceRule{
		BaseRule: cleanup.NewBaseRule(
			TrailingWhitespaceID,
			"Remove trailing whitespace",
			"Lines should not have trailing spaces or tabs",
			false,
			nil,
		),
		breakSpaces: breakSpaces,
	}
}

// TryFix deletes the trailing whitespace of every line.
func (r *TrailingWhitespaceRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	content := rc.Content
	keepBreaks := r.breakSpaces > 0 && rc.Document.Language == langdetect.Markdown

	var edits []fix.NodeID
	for lineStart := 0; lineStart < len(content); {
		if rc.Cancelled() {
			return nil, fmt.Errorf("rule cancelled: %w", rc.Ctx.Err())
		}

		lineEnd, next := lineBounds(content, lineStart)
		start := lineEnd
		for start > lineStart && isBlank(content[start-1]) {
			start--
		}

		if start < lineEnd && !(keepBreaks && r.isHardBreak(content[lineStart:lineEnd], lineEnd-start, next < len(content))) {
			edits = append(edits, rc.Edits.Delete(start, lineEnd-start))
		}
		lineStart = next
	}

	return rc.NewFix("Remove trailing whitespace", edits...)
}

// isHardBreak reports whether a trailing run of n bytes on line is a
// Markdown hard line break.
func (r *TrailingWhitespaceRule) isHardBreak(line []byte, n int, hasNext bool) bool {
	if n != r.breakSpaces || !hasNext {
		return false
	}
	run := line[len(line)-n:]
	if bytes.IndexByte(run, '\t') >= 0 {
		return false
	}
	// A line of only spaces is blank, not a break.
	return len(bytes.TrimLeft(line, " \t")) > 0
}

// FinalNewlineRule ensures files end with exactly one newline.
type FinalNewlineRule struct {
	cleanup.BaseRule
}

// NewFinalNewlineRule creates a new final newline rule.
func NewFinalNewlineRule() *FinalNewlineRule {
	return &FinalNewlineRule{
		BaseRule: cleanup.NewBaseRule(
			FinalNewlineID,
			"Ensure single final newline",
			"Files should end with a single newline character",
			false,
			nil,
		),
	}
}

// TryFix replaces all trailing whitespace after the last visible character
// with a single newline. Blank documents are left alone.
func (r *FinalNewlineRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	content := rc.Content
	end := len(bytes.TrimRight(content, " \t\r\n"))
	if end == 0 {
		return nil, nil
	}

	newline := "\n"
	if bytes.Contains(content, []byte("\r\n")) {
		newline = "\r\n"
	}
	if string(content[end:]) == newline {
		return nil, nil
	}

	return rc.NewFix("Ensure single final newline", rc.Edits.Replace(end, len(content)-end, newline))
}

// lineBounds returns the end of the line starting at start, excluding the
// line terminator, and the start of the next line.
func lineBounds(content []byte, start int) (end, next int) {
	idx := bytes.IndexByte(content[start:], '\n')
	if idx < 0 {
		return len(content), len(content)
	}
	end = start + idx
	next = end + 1
	if end > start && content[end-1] == '\r' {
		end--
	}
	return end, next
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}
