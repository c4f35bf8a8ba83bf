package goldmark

import (
	"github.com/yuin/goldmark/ast"
)

// InnerRange returns the byte range covered by the text below n. ok is
// false when n has no positioned text.
func InnerRange(n ast.Node) (start, stop int, ok bool) {
	start, stop = -1, -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, isText := c.(*ast.Text); isText {
			if start < 0 || t.Segment.Start < start {
				start = t.Segment.Start
			}
			if t.Segment.Stop > stop {
				stop = t.Segment.Stop
			}
		}
		return ast.WalkContinue, nil
	})
	return start, stop, start >= 0
}

// EmphasisDelimiters locates the opening and closing delimiter runs of e in
// source. It returns the offset of the opening run, the offset of the
// closing run, and the delimiter byte. ok is false when the delimiters
// cannot be located exactly, for example when the emphasis ends in a link.
func EmphasisDelimiters(e *ast.Emphasis, source []byte) (open, closing int, delim byte, ok bool) {
	start, stop, ok := InnerRange(e)
	if !ok {
		return 0, 0, 0, false
	}
	open, closing = start-e.Level, stop
	if open < 0 || closing+e.Level > len(source) {
		return 0, 0, 0, false
	}

	delim = source[open]
	if delim != '*' && delim != '_' {
		return 0, 0, 0, false
	}
	for i := range e.Level {
		if source[open+i] != delim || source[closing+i] != delim {
			return 0, 0, 0, false
		}
	}
	return open, closing, delim, true
}
