// Package goldmark parses Markdown documents for clean up rules with the
// goldmark library.
package goldmark

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/langdetect"
)

// Supported flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// OptionFlavor is the document option that overrides the parser's flavor.
const OptionFlavor = "markdown.flavor"

// flavorExtensions lists the goldmark extensions enabled per flavor.
//
//nolint:gochecknoglobals // Read-only lookup table.
var flavorExtensions = map[string][]goldmark.Extender{
	FlavorCommonMark: nil,
	FlavorGFM:        {extension.GFM},
}

// Parser is a cleanup.Parser for Markdown. It is safe for concurrent use.
type Parser struct {
	flavor   string
	markdown map[string]goldmark.Markdown
}

// New returns a parser whose default flavor is flavor. Unknown flavors
// fall back to CommonMark.
func New(flavor string) *Parser {
	p := &Parser{
		flavor:   normalizeFlavor(flavor),
		markdown: make(map[string]goldmark.Markdown, len(flavorExtensions)),
	}
	for name, exts := range flavorExtensions {
		p.markdown[name] = goldmark.New(goldmark.WithExtensions(exts...))
	}
	return p
}

// Flavor returns the default flavor.
func (p *Parser) Flavor() string { return p.flavor }

// Parse builds the AST of doc. Goldmark accepts any input, so the only
// errors are context errors.
//
//nolint:ireturn // cleanup.Parser returns the Tree interface
func (p *Parser) Parse(ctx context.Context, doc *cleanup.Document, opts cleanup.Options) (cleanup.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.ID, err)
	}

	flavor := p.flavor
	if f, ok := opts[OptionFlavor]; ok {
		flavor = normalizeFlavor(f)
	}

	// The tree keeps its own copy so later edits to the document cannot
	// shift the node segments.
	src := bytes.Clone(doc.Content)
	root := p.markdown[flavor].Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.ID, err)
	}
	return &Tree{root: root, content: src, flavor: flavor}, nil
}

func normalizeFlavor(flavor string) string {
	if _, ok := flavorExtensions[flavor]; ok {
		return flavor
	}
	return FlavorCommonMark
}

// Tree is a parsed Markdown document. Node segments index into Content.
type Tree struct {
	root    ast.Node
	content []byte
	flavor  string
}

var _ cleanup.Tree = (*Tree)(nil)

//nolint:ireturn // goldmark's node type is an interface
func (t *Tree) Root() ast.Node   { return t.root }
func (t *Tree) Content() []byte  { return t.content }
func (t *Tree) Language() string { return langdetect.Markdown }
func (t *Tree) Flavor() string   { return t.flavor }

// HasErrors is always false; every input is valid Markdown.
func (t *Tree) HasErrors() bool { return false }

// Close is a no-op.
func (t *Tree) Close() {}
