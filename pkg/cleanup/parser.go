package cleanup

import "context"

// Tree is a parsed, language-specific syntax tree for one document.
type Tree interface {
	// Content returns the text the tree was parsed from.
	Content() []byte

	// Language returns the language of the parser that produced the tree.
	Language() string

	// HasErrors reports whether the parser recovered from syntax errors.
	HasErrors() bool

	// Close releases resources held by the tree. The tree must not be used
	// afterwards.
	Close()
}

// Parser turns document text into a Tree.
//
// The cleanup package defines this interface in the consumer package.
// Implementations (e.g., parser/treesitter) provide the concrete parsing logic.
//
// Implementations must be:
//   - deterministic for a given (content, options) pair,
//   - safe for concurrent use by multiple goroutines,
//   - side-effect free (no I/O, no global state mutation).
type Parser interface {
	// Parse parses doc.Content with the given options. doc.Content holds the
	// working copy when earlier passes changed the document.
	Parse(ctx context.Context, doc *Document, opts Options) (Tree, error)
}
