package cleanup

import (
	"bytes"
	"fmt"

	"github.com/yaklabco/gocleanup/pkg/fix"
)

// SaveMode tells the host what to do with a document after applying a change.
type SaveMode int

const (
	// ForceSave writes the document after the change is applied.
	ForceSave SaveMode = iota

	// LeaveDirty applies the change to the buffer without saving.
	LeaveDirty
)

func (m SaveMode) String() string {
	if m == LeaveDirty {
		return "leave-dirty"
	}
	return "force-save"
}

// Pass is one pass's contribution to a document.
type Pass struct {
	// Index is the 1-based pass number that produced the edits.
	Index int

	// Label names the pass: the rule's label, or MultiFixLabel.
	Label string

	// Rules lists the IDs of the rules whose edits were merged, in order.
	Rules []string

	// Before is the text the pass observed.
	Before []byte

	// After is Before with Edits applied.
	After []byte

	// Edits are the sorted leaf edits, in Before coordinates.
	Edits []fix.TextEdit

	// Undo turns After back into Before. Offsets are in After coordinates.
	Undo []fix.TextEdit

	// Groups are the named change groups of the merged fixes.
	Groups []Group

	// Status merges the warnings of the merged fixes.
	Status Status
}

// Change is the assembled result for one document.
type Change interface {
	// Document returns the document the change applies to.
	Document() *Document

	// Name is the label shown to the user.
	Name() string

	// Passes returns the passes in order. It is never empty.
	Passes() []*Pass

	// Preview returns the document text after every pass.
	Preview() []byte

	// Apply replays the change on content, which must equal the text the
	// first pass observed.
	Apply(content []byte) ([]byte, error)

	// UndoEdits returns the reverse edits of each pass, in pass order.
	UndoEdits() [][]fix.TextEdit

	// SaveMode tells the host whether to save after applying.
	SaveMode() SaveMode

	// Status merges the statuses of all passes.
	Status() Status
}

// TextChange is a change produced by a single pass.
type TextChange struct {
	doc  *Document
	pass *Pass
	mode SaveMode
}

// Document returns the document the change applies to.
func (c *TextChange) Document() *Document { return c.doc }

// Name returns the pass label.
func (c *TextChange) Name() string { return c.pass.Label }

// Passes returns the single pass.
func (c *TextChange) Passes() []*Pass { return []*Pass{c.pass} }

// Preview returns the edited text.
func (c *TextChange) Preview() []byte { return c.pass.After }

// SaveMode tells the host whether to save after applying.
func (c *TextChange) SaveMode() SaveMode { return c.mode }

// Status returns the pass status.
func (c *TextChange) Status() Status { return c.pass.Status }

// UndoEdits returns the reverse edits of the pass.
func (c *TextChange) UndoEdits() [][]fix.TextEdit { return [][]fix.TextEdit{c.pass.Undo} }

// Apply applies the pass edits to content.
func (c *TextChange) Apply(content []byte) ([]byte, error) {
	return replay(content, c.pass)
}

// MultiStateChange is a change produced by several passes. Each pass
// replays on the snapshot the previous pass produced.
type MultiStateChange struct {
	doc    *Document
	passes []*Pass
	mode   SaveMode
}

// Document returns the document the change applies to.
func (c *MultiStateChange) Document() *Document { return c.doc }

// Name returns the document path.
func (c *MultiStateChange) Name() string { return c.doc.Path }

// Passes returns the passes in order.
func (c *MultiStateChange) Passes() []*Pass { return c.passes }

// Preview returns the text after the last pass.
func (c *MultiStateChange) Preview() []byte { return c.passes[len(c.passes)-1].After }

// SaveMode tells the host whether to save after applying.
func (c *MultiStateChange) SaveMode() SaveMode { return c.mode }

// Status merges the statuses of all passes.
func (c *MultiStateChange) Status() Status {
	var st Status
	for _, p := range c.passes {
		st = st.Merge(p.Status)
	}
	return st
}

// UndoEdits returns the reverse edits of each pass, in pass order.
func (c *MultiStateChange) UndoEdits() [][]fix.TextEdit {
	out := make([][]fix.TextEdit, 0, len(c.passes))
	for _, p := range c.passes {
		out = append(out, p.Undo)
	}
	return out
}

// Apply replays every pass in order, checking each against its snapshot.
func (c *MultiStateChange) Apply(content []byte) ([]byte, error) {
	var err error
	for _, p := range c.passes {
		content, err = replay(content, p)
		if err != nil {
			return nil, err
		}
	}
	return content, nil
}

func replay(content []byte, p *Pass) ([]byte, error) {
	if !bytes.Equal(content, p.Before) {
		return nil, fmt.Errorf("pass %d: %w", p.Index, ErrStaleSnapshot)
	}
	return fix.ApplyEdits(content, p.Edits), nil
}

// Revert undoes c on final, the text produced by applying c. Passes are
// undone in reverse order.
func Revert(c Change, final []byte) ([]byte, error) {
	passes := c.Passes()
	content := final
	for i := len(passes) - 1; i >= 0; i-- {
		p := passes[i]
		if !bytes.Equal(content, p.After) {
			return nil, fmt.Errorf("revert pass %d: %w", p.Index, ErrStaleSnapshot)
		}
		undo, err := fix.PrepareEdits(p.Undo, len(content))
		if err != nil {
			return nil, fmt.Errorf("revert pass %d: %w", p.Index, err)
		}
		content = fix.ApplyEdits(content, undo)
	}
	return content, nil
}

// assemble builds the change for doc from its passes. It returns nil if
// passes is empty.
func assemble(doc *Document, passes []*Pass, leaveDirty bool) Change {
	mode := ForceSave
	if leaveDirty || doc.Dirty {
		mode = LeaveDirty
	}

	switch len(passes) {
	case 0:
		return nil
	case 1:
		return &TextChange{doc: doc, pass: passes[0], mode: mode}
	default:
		return &MultiStateChange{doc: doc, passes: passes, mode: mode}
	}
}
