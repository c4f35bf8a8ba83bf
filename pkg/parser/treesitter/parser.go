// Package treesitter provides a cleanup.Parser for JavaScript built on
// tree-sitter.
package treesitter

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/langdetect"
)

// Option keys read by Parse.
const (
	// OptionRejectSyntaxErrors turns trees with ERROR or MISSING nodes into
	// parse failures.
	OptionRejectSyntaxErrors = "js.reject-syntax-errors"

	// OptionMaxFileSize bounds the document size in bytes.
	OptionMaxFileSize = "parser.max-file-size"
)

// DefaultMaxFileSize applies when OptionMaxFileSize is unset.
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	// ErrSyntax indicates the tree contains syntax errors and the options
	// asked for them to be rejected.
	ErrSyntax = errors.New("syntax errors in source")

	// ErrTooLarge indicates the document exceeds the configured size limit.
	ErrTooLarge = errors.New("file too large")
)

// Parser parses JavaScript documents. A fresh tree-sitter parser is created
// per call, so Parser is safe for concurrent use.
type Parser struct{}

// New creates a JavaScript parser.
func New() *Parser {
	return &Parser{}
}

// Parse implements cleanup.Parser.
//
//nolint:ireturn // cleanup.Parser returns the Tree interface
func (p *Parser) Parse(ctx context.Context, doc *cleanup.Document, opts cleanup.Options) (cleanup.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	limit := opts.Int(OptionMaxFileSize, DefaultMaxFileSize)
	if limit > 0 && len(doc.Content) > limit {
		return nil, fmt.Errorf("%s: %d bytes exceeds %d: %w", doc.Path, len(doc.Content), limit, ErrTooLarge)
	}
	// Node offsets are uint32.
	if _, err := safecast.Conv[uint32](len(doc.Content)); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", doc.Path, ErrTooLarge, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.Path, err)
	}

	t := &Tree{tree: tree, root: tree.RootNode(), content: doc.Content}
	if t.HasErrors() && opts.Bool(OptionRejectSyntaxErrors, false) {
		pos := firstError(t.root)
		t.Close()
		return nil, fmt.Errorf("%s at line %d: %w", doc.Path, pos+1, ErrSyntax)
	}
	return t, nil
}

// firstError returns the zero-based row of the first ERROR or MISSING node.
func firstError(n *sitter.Node) uint32 {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n.StartPoint().Row
	}
	for i := range int(n.ChildCount()) {
		c := n.Child(i)
		if c.HasError() || c.IsMissing() {
			return firstError(c)
		}
	}
	return n.StartPoint().Row
}

// Tree is a parsed JavaScript document.
type Tree struct {
	tree    *sitter.Tree
	root    *sitter.Node
	content []byte
}

var _ cleanup.Tree = (*Tree)(nil)

// Root returns the program node.
func (t *Tree) Root() *sitter.Node { return t.root }

// Content returns the source the tree was parsed from.
func (t *Tree) Content() []byte { return t.content }

// Language returns "javascript".
func (t *Tree) Language() string { return langdetect.JavaScript }

// HasErrors reports whether tree-sitter had to recover from syntax errors.
func (t *Tree) HasErrors() bool { return t.root.HasError() }

// Close releases the underlying C tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Contains reports whether any node of the given type exists in the tree.
func (t *Tree) Contains(nodeType string) bool {
	found := false
	Walk(t.root, func(n *sitter.Node) bool {
		if n.Type() == nodeType {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from visit skips the children of that node.
func Walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := range int(n.ChildCount()) {
		Walk(n.Child(i), visit)
	}
}

// Span returns the byte range of n as ints.
func Span(n *sitter.Node) (start, end int) {
	return int(n.StartByte()), int(n.EndByte())
}

// Text returns the source text of n.
func Text(n *sitter.Node, content []byte) string {
	start, end := Span(n)
	return string(content[start:end])
}
