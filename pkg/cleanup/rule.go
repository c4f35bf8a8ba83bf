// Package cleanup provides the rule contract, rule registry, batch parser,
// fixpoint iterator and change assembler for gocleanup.
package cleanup

import "context"

// Rule defines the interface that all clean up rules must implement.
type Rule interface {
	// ID returns the unique identifier for this rule (e.g., "js.var-to-let").
	ID() string

	// Name returns the human-readable name of the rule.
	Name() string

	// Description returns a detailed description of what the rule rewrites.
	Description() string

	// RequiresParsedTree reports whether TryFix needs a parsed tree for doc.
	// Documents for which no pending rule needs a tree are fixed from text alone.
	RequiresParsedTree(doc *Document) bool

	// RequiredOptions returns parser options this rule needs baked into the parse.
	RequiredOptions() Options

	// NeedsFreshTree reports whether the rule must see a tree that reflects
	// edits deferred earlier in the same pass. When it returns true after a
	// conflict, the rule and everything after it wait for the next pass.
	NeedsFreshTree(tree Tree) bool

	// TryFix computes the rule's edits for the document in rc.
	//
	// Rules must:
	//   - Return nil when there is nothing to change.
	//   - Allocate edit nodes from rc.Edits only.
	//   - Never mutate the document or tree.
	//   - Return error only for internal failures. Wrap ErrUnrecoverable to
	//     abort the whole project.
	TryFix(rc *RuleContext) (*Fix, error)
}

// PreconditionChecker is implemented by rules that validate a project before
// any document is processed.
type PreconditionChecker interface {
	CheckPreconditions(ctx context.Context, project *Project, docs []*Document) Status
}

// PostconditionChecker is implemented by rules that validate a project after
// the fixpoint is reached.
type PostconditionChecker interface {
	CheckPostconditions(ctx context.Context) Status
}
