package fix

import (
	"bytes"
	"fmt"
)

// ApplyEdits applies a sorted, validated slice of edits to content.
// Edits must be prepared with PrepareEdits before calling.
// Returns the modified content.
func ApplyEdits(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	// Estimate result size.
	delta := 0
	for _, e := range edits {
		delta += len(e.NewText) - (e.EndOffset - e.StartOffset)
	}

	var out bytes.Buffer
	out.Grow(len(content) + delta)

	cursor := 0
	for _, e := range edits {
		// Copy content before this edit.
		out.Write(content[cursor:e.StartOffset])
		// Write replacement text.
		out.WriteString(e.NewText)
		cursor = e.EndOffset
	}
	// Copy remaining content.
	out.Write(content[cursor:])

	return out.Bytes()
}

// Apply validates the leaves of the tree rooted at id against content and
// applies them. The tree itself is left untouched.
func Apply(a *Arena, id NodeID, content []byte) ([]byte, error) {
	edits, err := PrepareEdits(a.Edits(id), len(content))
	if err != nil {
		return nil, fmt.Errorf("apply edit tree: %w", err)
	}
	return ApplyEdits(content, edits), nil
}

// UndoEdits returns the edits that turn ApplyEdits(content, edits) back into
// content. Offsets of the result refer to the edited text. Edits that touch
// are undone by a single edit, so the result never holds two insertions at
// one offset. Edits must be prepared with PrepareEdits.
func UndoEdits(content []byte, edits []TextEdit) []TextEdit {
	if len(edits) == 0 {
		return nil
	}

	undo := make([]TextEdit, 0, len(edits))
	delta, prevEnd := 0, -1
	for _, e := range edits {
		original := string(content[e.StartOffset:e.EndOffset])
		if e.StartOffset == prevEnd {
			last := &undo[len(undo)-1]
			last.EndOffset += len(e.NewText)
			last.NewText += original
		} else {
			start := e.StartOffset + delta
			undo = append(undo, TextEdit{
				StartOffset: start,
				EndOffset:   start + len(e.NewText),
				NewText:     original,
			})
		}
		delta += len(e.NewText) - (e.EndOffset - e.StartOffset)
		prevEnd = e.EndOffset
	}
	return undo
}
