package model

import (
	"sort"
	"strings"
)

// Mark is a piece of information attached to inline content, such as emphasis
// or a link. Marks are immutable; the helpers below return new mark sets.
type Mark struct {
	Type  *MarkType
	Attrs Attrs
}

// NoMarks is the empty mark set.
//
//nolint:gochecknoglobals // Shared immutable empty set.
var NoMarks = []*Mark{}

// AddToSet returns a mark set containing this mark. If the mark is already in
// the set, the set itself is returned. Marks excluded by this one are dropped;
// if a mark in the set excludes this one, the set is returned unchanged.
func (m *Mark) AddToSet(set []*Mark) []*Mark {
	var out []*Mark
	copied, placed := false, false

	for i, other := range set {
		if m.Eq(other) {
			return set
		}
		switch {
		case m.Type.Excludes(other.Type):
			if !copied {
				out = append(make([]*Mark, 0, len(set)), set[:i]...)
				copied = true
			}
		case other.Type.Excludes(m.Type):
			return set
		default:
			if !placed && other.Type.rank > m.Type.rank {
				if !copied {
					out = append(make([]*Mark, 0, len(set)+1), set[:i]...)
					copied = true
				}
				out = append(out, m)
				placed = true
			}
			if copied {
				out = append(out, other)
			}
		}
	}

	if !copied {
		out = append(make([]*Mark, 0, len(set)+1), set...)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns the set without this mark.
func (m *Mark) RemoveFromSet(set []*Mark) []*Mark {
	for i, other := range set {
		if m.Eq(other) {
			out := make([]*Mark, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	return set
}

// IsInSet reports whether this mark is in the given set.
func (m *Mark) IsInSet(set []*Mark) bool {
	for _, other := range set {
		if m.Eq(other) {
			return true
		}
	}
	return false
}

// Eq reports whether two marks have the same type and attributes.
func (m *Mark) Eq(other *Mark) bool {
	if m == other {
		return true
	}
	if other == nil {
		return false
	}
	return m.Type == other.Type && attrsEqual(m.Attrs, other.Attrs)
}

func (m *Mark) String() string {
	return m.Type.Name
}

// SameMarkSet reports whether two mark sets are the same, element by element.
func SameMarkSet(a, b []*Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// MarkSetFrom creates a properly sorted mark set from the given marks.
func MarkSetFrom(marks ...*Mark) []*Mark {
	if len(marks) == 0 {
		return NoMarks
	}
	out := make([]*Mark, len(marks))
	copy(out, marks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Type.rank < out[j].Type.rank
	})
	return out
}

func wrapMarks(marks []*Mark, str string) string {
	var sb strings.Builder
	for _, mark := range marks {
		sb.WriteString(mark.Type.Name)
		sb.WriteString("(")
	}
	sb.WriteString(str)
	for range marks {
		sb.WriteString(")")
	}
	return sb.String()
}
