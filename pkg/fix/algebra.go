package fix

import "fmt"

// before reports whether x ends before y starts. Two empty ranges at the
// same offset are never ordered; neither is before the other.
func (a *Arena) before(x, y NodeID) bool {
	xEnd, yStart := a.End(x), a.Offset(y)
	if xEnd < yStart {
		return true
	}
	if xEnd > yStart {
		return false
	}
	return a.Length(x) != 0 || a.Length(y) != 0
}

// Intersects reports whether any leaf below x overlaps any leaf below y.
//
// Leaves overlap when their half-open ranges do. Two insertions at the same
// offset also overlap, since their relative order would be undefined.
// Composite pairs are compared with a two-pointer sweep over their sorted
// children, recursing only where child ranges actually meet.
func (a *Arena) Intersects(x, y NodeID) bool {
	xc, yc := a.IsComposite(x), a.IsComposite(y)

	switch {
	case xc && yc:
		cx, cy := a.Children(x), a.Children(y)
		i, j := 0, 0
		for i < len(cx) && j < len(cy) {
			switch {
			case a.before(cx[i], cy[j]):
				i++
			case a.before(cy[j], cx[i]):
				j++
			case a.Intersects(cx[i], cy[j]):
				return true
			case a.End(cx[i]) <= a.End(cy[j]):
				i++
			default:
				j++
			}
		}
		return false

	case xc:
		for _, c := range a.Children(x) {
			if a.Intersects(c, y) {
				return true
			}
		}
		return false

	case yc:
		for _, c := range a.Children(y) {
			if a.Intersects(x, c) {
				return true
			}
		}
		return false

	default:
		return !a.before(x, y) && !a.before(y, x)
	}
}

// Merge combines two non-intersecting trees into a new composite.
//
// Both inputs are consumed: their nodes are re-parented into the result and
// must not be used afterwards. If either input is an empty composite the
// other is returned unchanged. Children whose ranges meet without their
// leaves intersecting are merged recursively.
//
// Merge returns ErrIntersect if two leaves overlap; callers are expected to
// test with Intersects first.
func (a *Arena) Merge(x, y NodeID) (NodeID, error) {
	if a.IsEmpty(x) {
		return y, nil
	}
	if a.IsEmpty(y) {
		return x, nil
	}

	left, right := a.consume(x), a.consume(y)
	out := make([]NodeID, 0, len(left)+len(right))

	i, j := 0, 0
	for i < len(left) || j < len(right) {
		var next NodeID
		switch {
		case j >= len(right):
			next = left[i]
			i++
		case i >= len(left):
			next = right[j]
			j++
		case a.Offset(right[j]) < a.Offset(left[i]) || a.before(right[j], left[i]):
			next = right[j]
			j++
		default:
			next = left[i]
			i++
		}

		last := len(out) - 1
		if last < 0 || a.before(out[last], next) {
			out = append(out, next)
			continue
		}
		if !a.IsComposite(out[last]) && !a.IsComposite(next) {
			return NoNode, fmt.Errorf("merge %s: %w", a.rangeString(out[last], next), ErrIntersect)
		}
		merged, err := a.Merge(out[last], next)
		if err != nil {
			return NoNode, err
		}
		out[last] = merged
	}

	result := a.Multi()
	for _, c := range out {
		a.appendChild(result, c)
	}
	return result, nil
}

// consume detaches id and returns the nodes it contributes to a merge:
// the children of a composite, or the leaf itself.
func (a *Arena) consume(id NodeID) []NodeID {
	a.detach(id)
	if a.IsComposite(id) {
		return a.takeChildren(id)
	}
	return []NodeID{id}
}

// Pack flattens the tree rooted at id into a new composite whose children
// are exactly the leaves of the tree, in offset order. The old tree is
// consumed.
func (a *Arena) Pack(id NodeID) NodeID {
	a.detach(id)

	var leaves []NodeID
	a.collectLeaves(id, &leaves)

	result := a.Multi()
	for _, leaf := range leaves {
		a.appendChild(result, leaf)
	}
	return result
}

func (a *Arena) collectLeaves(id NodeID, out *[]NodeID) {
	if !a.IsComposite(id) {
		*out = append(*out, id)
		return
	}
	for _, c := range a.takeChildren(id) {
		a.collectLeaves(c, out)
	}
}

func (a *Arena) rangeString(x, y NodeID) string {
	return fmt.Sprintf("[%d:%d] and [%d:%d]", a.Offset(x), a.End(x), a.Offset(y), a.End(y))
}
