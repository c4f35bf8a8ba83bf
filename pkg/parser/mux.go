// Package parser routes documents to the parser for their language.
package parser

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/langdetect"
	"github.com/yaklabco/gocleanup/pkg/parser/goldmark"
	"github.com/yaklabco/gocleanup/pkg/parser/treesitter"
)

// ErrUnsupportedLanguage indicates no parser is registered for a document's language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Mux dispatches Parse by Document.Language.
// A Mux must not be modified after it is handed to an engine.
type Mux struct {
	parsers map[string]cleanup.Parser
}

var _ cleanup.Parser = (*Mux)(nil)

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{parsers: make(map[string]cleanup.Parser)}
}

// Default returns a Mux with the built-in JavaScript and Markdown parsers.
// flavor is the default Markdown flavor.
func Default(flavor string) *Mux {
	m := NewMux()
	m.Handle(langdetect.JavaScript, treesitter.New())
	m.Handle(langdetect.Markdown, goldmark.New(flavor))
	return m
}

// Handle registers p for language, replacing any earlier registration.
func (m *Mux) Handle(language string, p cleanup.Parser) {
	m.parsers[language] = p
}

// Languages returns the registered languages in sorted order.
func (m *Mux) Languages() []string {
	return slices.Sorted(maps.Keys(m.parsers))
}

// Parse implements cleanup.Parser.
//
//nolint:ireturn // cleanup.Parser returns the Tree interface
func (m *Mux) Parse(ctx context.Context, doc *cleanup.Document, opts cleanup.Options) (cleanup.Tree, error) {
	p, ok := m.parsers[doc.Language]
	if !ok {
		return nil, &cleanup.ParseError{
			DocumentID: doc.ID,
			Err:        fmt.Errorf("%q: %w", doc.Language, ErrUnsupportedLanguage),
		}
	}
	return p.Parse(ctx, doc, opts)
}
