package cleanup

import (
	"context"

	"github.com/yaklabco/gocleanup/pkg/fix"
)

// RuleContext provides all context needed by a rule to compute a fix.
//
// RuleContext stores context.Context as a field (Ctx) because it is a
// short-lived parameter object created per document per pass.
type RuleContext struct {
	// Ctx is the context for cancellation.
	Ctx context.Context

	// Document is the document being cleaned up.
	Document *Document

	// Content is the text the rule must compute offsets against. It holds
	// the working copy when earlier passes changed the document.
	Content []byte

	// Tree is the parsed tree, or nil if no pending rule required one.
	Tree Tree

	// Options are the effective parser options for this document.
	Options Options

	// Edits is the arena every edit node must be allocated from.
	Edits *fix.Arena
}

// Cancelled returns true if the context has been cancelled.
func (rc *RuleContext) Cancelled() bool {
	select {
	case <-rc.Ctx.Done():
		return true
	default:
		return false
	}
}

// NewFix builds a Fix from edits allocated in rc.Edits. It returns nil if
// edits is empty, which tells the iterator the rule has nothing to do.
func (rc *RuleContext) NewFix(label string, edits ...fix.NodeID) (*Fix, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	root := rc.Edits.Multi()
	for _, e := range edits {
		if err := rc.Edits.AddChild(root, e); err != nil {
			return nil, err
		}
	}
	return &Fix{Label: label, Root: root}, nil
}
