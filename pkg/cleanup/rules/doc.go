// Package rules contains the built-in clean up rules.
//
// Text rules work on raw bytes and run on every document. JavaScript rules
// need a tree-sitter tree; Markdown rules need a goldmark tree. Each rule
// returns at most one fix per document per pass and leaves conflict
// resolution to the cleanup iterator.
//
// Rules are registered in a fixed order by [Register]. That order is the
// priority the iterator uses when two fixes intersect.
package rules
