package rules

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/fix"
	"github.com/yaklabco/gocleanup/pkg/langdetect"
	"github.com/yaklabco/gocleanup/pkg/parser/treesitter"
)

// Rule IDs.
const (
	VarToLetID      = "js.var-to-let"
	SingleQuotesID  = "js.single-quotes"
	ControlBracesID = "js.control-braces"
)

// jsRule is the common base of rules that need a JavaScript tree.
type jsRule struct {
	cleanup.BaseRule
}

func newJSRule(id, name, desc string, options cleanup.Options) jsRule {
	return jsRule{BaseRule: cleanup.NewBaseRule(id, name, desc, true, options)}
}

// RequiresParsedTree reports whether doc is JavaScript.
func (r *jsRule) RequiresParsedTree(doc *cleanup.Document) bool {
	return doc.Language == langdetect.JavaScript
}

// jsTree returns the JavaScript tree of rc, or nil if there is none.
func jsTree(rc *cleanup.RuleContext) *treesitter.Tree {
	if rc.Document.Language != langdetect.JavaScript {
		return nil
	}
	t, _ := rc.Tree.(*treesitter.Tree)
	return t
}

// recoveredStatus flags fixes computed on a tree with syntax errors.
func recoveredStatus(t *treesitter.Tree) cleanup.Status {
	if t.HasErrors() {
		return cleanup.Warning("source has syntax errors; fix computed on a recovered tree")
	}
	return cleanup.OK()
}

// VarToLetRule rewrites var declarations to let.
type VarToLetRule struct {
	jsRule
}

// NewVarToLetRule creates a new var-to-let rule. It only runs on trees
// without syntax errors.
func NewVarToLetRule() *VarToLetRule {
	return &VarToLetRule{
		jsRule: newJSRule(
			VarToLetID,
			"Convert var to let",
			"Variable declarations should use let instead of var",
			cleanup.Options{treesitter.OptionRejectSyntaxErrors: "true"},
		),
	}
}

// NeedsFreshTree reports whether the tree contains a for statement. Loop
// rewrites by other rules change the scopes this rule inspects, so it must
// not run on a tree built before they were applied.
func (r *VarToLetRule) NeedsFreshTree(tree cleanup.Tree) bool {
	t, ok := tree.(*treesitter.Tree)
	return ok && t.Contains("for_statement")
}

// TryFix replaces each var keyword with let.
func (r *VarToLetRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	t := jsTree(rc)
	if t == nil {
		return nil, nil
	}

	var edits []fix.NodeID
	var cancelled bool
	treesitter.Walk(t.Root(), func(n *sitter.Node) bool {
		if cancelled = rc.Cancelled(); cancelled {
			return false
		}
		if n.Type() != "variable_declaration" || n.ChildCount() == 0 {
			return true
		}
		if kw := n.Child(0); kw.Type() == "var" {
			start, end := treesitter.Span(kw)
			edits = append(edits, rc.Edits.Replace(start, end-start, "let"))
		}
		return true
	})
	if cancelled {
		return nil, fmt.Errorf("rule cancelled: %w", rc.Ctx.Err())
	}

	return rc.NewFix("Convert var to let", edits...)
}

// SingleQuotesRule converts simple double-quoted strings to single quotes.
type SingleQuotesRule struct {
	jsRule
}

// NewSingleQuotesRule creates a new single quotes rule.
func NewSingleQuotesRule() *SingleQuotesRule {
	return &SingleQuotesRule{
		jsRule: newJSRule(
			SingleQuotesID,
			"Use single quotes",
			"String literals without quotes or escapes should use single quotes",
			nil,
		),
	}
}

// TryFix swaps the delimiters of every double-quoted string whose body has
// no quotes, backslashes, or line breaks.
func (r *SingleQuotesRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	t := jsTree(rc)
	if t == nil {
		return nil, nil
	}
	content := t.Content()

	var edits []fix.NodeID
	treesitter.Walk(t.Root(), func(n *sitter.Node) bool {
		if n.Type() != "string" {
			return true
		}
		start, end := treesitter.Span(n)
		if end-start < 2 || content[start] != '"' || content[end-1] != '"' {
			return false
		}
		if bytes.ContainsAny(content[start+1:end-1], "'\"\\\n\r") {
			return false
		}
		edits = append(edits,
			rc.Edits.Replace(start, 1, "'"),
			rc.Edits.Replace(end-1, 1, "'"),
		)
		return false
	})

	f, err := rc.NewFix("Use single quotes", edits...)
	if f != nil {
		f.Status = recoveredStatus(t)
	}
	return f, err
}

// ControlBracesRule wraps non-block bodies of control statements in braces.
type ControlBracesRule struct {
	jsRule
}

// NewControlBracesRule creates a new control braces rule.
func NewControlBracesRule() *ControlBracesRule {
	return &ControlBracesRule{
		jsRule: newJSRule(
			ControlBracesID,
			"Add braces to control statements",
			"Bodies of if, else, for, while, and do statements should be blocks",
			nil,
		),
	}
}

// TryFix inserts braces around every unbraced body. Bodies that end at the
// same offset share one insertion.
func (r *ControlBracesRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	t := jsTree(rc)
	if t == nil {
		return nil, nil
	}

	opens := make(map[int]string)
	closes := make(map[int]string)
	wrap := func(body *sitter.Node) {
		if body == nil {
			return
		}
		switch body.Type() {
		case "statement_block", "empty_statement", "if_statement":
			return
		}
		start, end := treesitter.Span(body)
		opens[start] += "{ "
		closes[end] += " }"
	}

	treesitter.Walk(t.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "if_statement":
			wrap(n.ChildByFieldName("consequence"))
		case "else_clause":
			if c := n.NamedChildCount(); c > 0 {
				wrap(n.NamedChild(int(c) - 1))
			}
		case "for_statement", "for_in_statement", "while_statement", "do_statement":
			wrap(n.ChildByFieldName("body"))
		}
		return true
	})

	inserts := make(map[int]string, len(opens)+len(closes))
	for off, text := range closes {
		inserts[off] = text
	}
	for off, text := range opens {
		inserts[off] += text
	}

	edits := make([]fix.NodeID, 0, len(inserts))
	for _, off := range slices.Sorted(maps.Keys(inserts)) {
		edits = append(edits, rc.Edits.Insert(off, inserts[off]))
	}

	f, err := rc.NewFix("Add braces to control statements", edits...)
	if f != nil {
		f.Status = recoveredStatus(t)
	}
	return f, err
}
