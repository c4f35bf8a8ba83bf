// Package fix provides the edit tree, the edit algebra used to combine
// independently produced edits, and the logic to apply them to text.
package fix

import (
	"errors"
	"fmt"
	"slices"
)

// TextEdit represents a single text replacement in a file.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

func (e TextEdit) isInsert() bool {
	return e.StartOffset == e.EndOffset
}

// NodeID addresses a node inside an Arena.
type NodeID int32

// NoNode marks the absence of a node.
const NoNode NodeID = -1

// Kind distinguishes leaf edits from composite edits.
type Kind uint8

const (
	// KindReplace is a leaf that replaces [offset, offset+length) with text.
	KindReplace Kind = iota

	// KindMulti is a composite holding sorted, non-overlapping children.
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindReplace:
		return "replace"
	case KindMulti:
		return "multi"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Tree construction errors.
var (
	// ErrOverlap indicates a child overlaps one of its future siblings.
	ErrOverlap = errors.New("edit overlaps sibling")

	// ErrNotNested indicates a child lies outside its parent's explicit range.
	ErrNotNested = errors.New("edit not nested in parent range")

	// ErrHasParent indicates the child is still owned by another tree.
	ErrHasParent = errors.New("edit already has a parent")

	// ErrNotComposite indicates a leaf was used where a composite is required.
	ErrNotComposite = errors.New("edit is not a composite")

	// ErrIntersect indicates merge was called on intersecting edits.
	ErrIntersect = errors.New("edits intersect")
)

type node struct {
	kind     Kind
	offset   int
	length   int
	text     string
	explicit bool // composite with a fixed range rather than covering its children
	parent   NodeID
	children []NodeID
}

// Arena owns every edit node built for one document during one pass.
// Nodes are never freed individually; the arena is dropped as a whole.
// An Arena is not safe for concurrent use.
type Arena struct {
	nodes []node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{nodes: make([]node, 0, 64)}
}

// Len returns the number of nodes allocated so far.
func (a *Arena) Len() int {
	return len(a.nodes)
}

func (a *Arena) alloc(n node) NodeID {
	n.parent = NoNode
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

func (a *Arena) get(id NodeID) *node {
	return &a.nodes[id]
}

// Replace allocates a leaf replacing bytes [offset, offset+length) with text.
func (a *Arena) Replace(offset, length int, text string) NodeID {
	return a.alloc(node{kind: KindReplace, offset: offset, length: length, text: text})
}

// Insert allocates a leaf inserting text at offset.
func (a *Arena) Insert(offset int, text string) NodeID {
	return a.Replace(offset, 0, text)
}

// Delete allocates a leaf deleting bytes [offset, offset+length).
func (a *Arena) Delete(offset, length int) NodeID {
	return a.Replace(offset, length, "")
}

// Multi allocates an empty composite whose range covers its children.
func (a *Arena) Multi() NodeID {
	return a.alloc(node{kind: KindMulti})
}

// MultiRange allocates an empty composite with a fixed range.
// Children added later must nest inside [offset, offset+length).
func (a *Arena) MultiRange(offset, length int) NodeID {
	return a.alloc(node{kind: KindMulti, offset: offset, length: length, explicit: true})
}

// Kind returns the node kind.
func (a *Arena) Kind(id NodeID) Kind {
	return a.get(id).kind
}

// IsComposite reports whether id is a composite node.
func (a *Arena) IsComposite(id NodeID) bool {
	return a.get(id).kind == KindMulti
}

// Text returns the replacement text of a leaf, or "" for composites.
func (a *Arena) Text(id NodeID) string {
	return a.get(id).text
}

// Parent returns the owning node, or NoNode for roots.
func (a *Arena) Parent(id NodeID) NodeID {
	return a.get(id).parent
}

// Children returns the children of a composite in offset order.
// The returned slice must not be modified.
func (a *Arena) Children(id NodeID) []NodeID {
	return a.get(id).children
}

// IsEmpty reports whether id is a composite without children.
func (a *Arena) IsEmpty(id NodeID) bool {
	n := a.get(id)
	return n.kind == KindMulti && len(n.children) == 0
}

// Offset returns the start of the node range.
func (a *Arena) Offset(id NodeID) int {
	n := a.get(id)
	if n.kind == KindMulti && !n.explicit {
		if len(n.children) == 0 {
			return 0
		}
		return a.Offset(n.children[0])
	}
	return n.offset
}

// End returns the exclusive end of the node range.
func (a *Arena) End(id NodeID) int {
	n := a.get(id)
	if n.kind == KindMulti && !n.explicit {
		if len(n.children) == 0 {
			return 0
		}
		return a.End(n.children[len(n.children)-1])
	}
	return n.offset + n.length
}

// Length returns the length of the node range.
func (a *Arena) Length(id NodeID) int {
	return a.End(id) - a.Offset(id)
}

// AddChild inserts child into parent at its sorted position.
func (a *Arena) AddChild(parent, child NodeID) error {
	p := a.get(parent)
	if p.kind != KindMulti {
		return fmt.Errorf("add child to %d: %w", parent, ErrNotComposite)
	}
	if a.get(child).parent != NoNode {
		return fmt.Errorf("add child %d: %w", child, ErrHasParent)
	}
	if p.explicit && (a.Offset(child) < p.offset || a.End(child) > p.offset+p.length) {
		return fmt.Errorf("add child [%d:%d] to [%d:%d]: %w",
			a.Offset(child), a.End(child), p.offset, p.offset+p.length, ErrNotNested)
	}

	idx, _ := slices.BinarySearchFunc(p.children, child, func(existing, target NodeID) int {
		if a.before(existing, target) {
			return -1
		}
		return 1
	})
	if idx > 0 && !a.before(p.children[idx-1], child) {
		return a.overlapErr(p.children[idx-1], child)
	}
	if idx < len(p.children) && !a.before(child, p.children[idx]) {
		return a.overlapErr(child, p.children[idx])
	}

	p.children = slices.Insert(p.children, idx, child)
	a.get(child).parent = parent
	return nil
}

func (a *Arena) overlapErr(first, second NodeID) error {
	return fmt.Errorf("[%d:%d] and [%d:%d]: %w",
		a.Offset(first), a.End(first), a.Offset(second), a.End(second), ErrOverlap)
}

// appendChild adds child after all existing children without range checks.
// Callers guarantee ordering.
func (a *Arena) appendChild(parent, child NodeID) {
	p := a.get(parent)
	p.children = append(p.children, child)
	a.get(child).parent = parent
}

// takeChildren detaches and returns all children of a composite.
func (a *Arena) takeChildren(id NodeID) []NodeID {
	n := a.get(id)
	children := n.children
	n.children = nil
	for _, c := range children {
		a.get(c).parent = NoNode
	}
	return children
}

// detach removes id from its parent, if any.
func (a *Arena) detach(id NodeID) {
	n := a.get(id)
	if n.parent == NoNode {
		return
	}
	p := a.get(n.parent)
	if i := slices.Index(p.children, id); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = NoNode
}

// Edits flattens the tree rooted at id into its leaf edits in offset order.
func (a *Arena) Edits(id NodeID) []TextEdit {
	var out []TextEdit
	a.Walk(id, func(leaf NodeID) {
		n := a.get(leaf)
		out = append(out, TextEdit{
			StartOffset: n.offset,
			EndOffset:   n.offset + n.length,
			NewText:     n.text,
		})
	})
	return out
}

// Walk visits every leaf below id (or id itself if it is a leaf) depth-first in order.
func (a *Arena) Walk(id NodeID, visit func(leaf NodeID)) {
	n := a.get(id)
	if n.kind != KindMulti {
		visit(id)
		return
	}
	for _, c := range n.children {
		a.Walk(c, visit)
	}
}

// Build allocates a covering composite holding one leaf per edit.
// Edits are sorted first; overlapping edits yield ErrOverlap.
func (a *Arena) Build(edits []TextEdit) (NodeID, error) {
	root := a.Multi()
	sorted := slices.Clone(edits)
	SortEdits(sorted)
	for _, e := range sorted {
		leaf := a.Replace(e.StartOffset, e.EndOffset-e.StartOffset, e.NewText)
		if err := a.AddChild(root, leaf); err != nil {
			return NoNode, err
		}
	}
	return root, nil
}
