package rules

import (
	"github.com/yuin/goldmark/ast"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/fix"
	"github.com/yaklabco/gocleanup/pkg/langdetect"
	"github.com/yaklabco/gocleanup/pkg/parser/goldmark"
)

// EmphasisUnderscoreID is the ID of EmphasisUnderscoreRule.
const EmphasisUnderscoreID = "md.emphasis-underscore"

// EmphasisUnderscoreRule rewrites *emphasis* to _emphasis_.
type EmphasisUnderscoreRule struct {
	cleanup.BaseRule
}

// NewEmphasisUnderscoreRule creates a new emphasis style rule.
func NewEmphasisUnderscoreRule() *EmphasisUnderscoreRule {
	return &EmphasisUnderscoreRule{
		BaseRule: cleanup.NewBaseRule(
			EmphasisUnderscoreID,
			"Use underscores for emphasis",
			"Emphasis should use underscores instead of asterisks",
			true,
			nil,
		),
	}
}

// RequiresParsedTree reports whether doc is Markdown.
func (r *EmphasisUnderscoreRule) RequiresParsedTree(doc *cleanup.Document) bool {
	return doc.Language == langdetect.Markdown
}

// TryFix swaps both delimiters of each single-asterisk emphasis that can be
// written with underscores without changing its meaning.
func (r *EmphasisUnderscoreRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	if rc.Document.Language != langdetect.Markdown {
		return nil, nil
	}
	t, ok := rc.Tree.(*goldmark.Tree)
	if !ok {
		return nil, nil
	}
	source := t.Content()

	var edits []fix.NodeID
	err := ast.Walk(t.Root(), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if rc.Cancelled() {
			return ast.WalkStop, rc.Ctx.Err()
		}
		e, isEmphasis := n.(*ast.Emphasis)
		if !isEmphasis || e.Level != 1 {
			return ast.WalkContinue, nil
		}
		open, closing, delim, found := goldmark.EmphasisDelimiters(e, source)
		if !found || delim != '*' || !underscoreSafe(source, open, closing) {
			return ast.WalkContinue, nil
		}
		edits = append(edits, rc.Edits.Replace(open, 1, "_"), rc.Edits.Replace(closing, 1, "_"))
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return rc.NewFix("Use underscores for emphasis", edits...)
}

// underscoreSafe reports whether the delimiters at open and closing can
// become underscores. Underscores do not work inside words and must not
// merge with neighbouring delimiters.
func underscoreSafe(source []byte, open, closing int) bool {
	if open > 0 && (isWordByte(source[open-1]) || isDelim(source[open-1])) {
		return false
	}
	if closing+1 < len(source) && (isWordByte(source[closing+1]) || isDelim(source[closing+1])) {
		return false
	}
	return !isDelim(source[open+1]) && !isDelim(source[closing-1])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}

func isDelim(b byte) bool {
	return b == '*' || b == '_'
}
