package model

import (
	"fmt"
	"strings"
)

// Fragment is an immutable sequence of sibling nodes with a cached size.
// Fragments are shared between document versions and must never be modified.
type Fragment struct {
	children []*Node
	size     int
}

// EmptyFragment is the canonical empty fragment.
//
//nolint:gochecknoglobals // Canonical empty value.
var EmptyFragment = &Fragment{}

func newFragment(children []*Node, size int) *Fragment {
	if len(children) == 0 {
		return EmptyFragment
	}
	return &Fragment{children: children, size: size}
}

// FragmentFromArray builds a fragment from a list of nodes, joining adjacent
// text nodes with the same marks.
func FragmentFromArray(nodes []*Node) *Fragment {
	if len(nodes) == 0 {
		return EmptyFragment
	}
	var joined []*Node
	size := 0
	for i, node := range nodes {
		size += node.NodeSize()
		if i > 0 && node.IsText() && nodes[i-1].SameMarkup(node) {
			if joined == nil {
				joined = append(make([]*Node, 0, len(nodes)), nodes[:i]...)
			}
			last := joined[len(joined)-1]
			joined[len(joined)-1] = last.withText(last.Text + node.Text)
		} else if joined != nil {
			joined = append(joined, node)
		}
	}
	if joined == nil {
		joined = append(make([]*Node, 0, len(nodes)), nodes...)
	}
	return newFragment(joined, size)
}

// FragmentFrom builds a fragment from the given nodes.
func FragmentFrom(nodes ...*Node) *Fragment {
	return FragmentFromArray(nodes)
}

// Size is the total size of the fragment in position units.
func (f *Fragment) Size() int {
	return f.size
}

// ChildCount returns the number of child nodes.
func (f *Fragment) ChildCount() int {
	return len(f.children)
}

// Children returns the child nodes. The slice must not be modified.
func (f *Fragment) Children() []*Node {
	return f.children
}

// Child returns the child at index. It panics when index is out of range,
// like indexing a slice.
func (f *Fragment) Child(index int) *Node {
	if index < 0 || index >= len(f.children) {
		panic(fmt.Sprintf("index %d out of range for %s", index, f))
	}
	return f.children[index]
}

// MaybeChild returns the child at index, or nil.
func (f *Fragment) MaybeChild(index int) *Node {
	if index < 0 || index >= len(f.children) {
		return nil
	}
	return f.children[index]
}

// FirstChild returns the first child, or nil.
func (f *Fragment) FirstChild() *Node {
	return f.MaybeChild(0)
}

// LastChild returns the last child, or nil.
func (f *Fragment) LastChild() *Node {
	return f.MaybeChild(len(f.children) - 1)
}

// ForEach calls fn for each child with its offset and index.
func (f *Fragment) ForEach(fn func(node *Node, offset, index int)) {
	pos := 0
	for i, child := range f.children {
		fn(child, pos, i)
		pos += child.NodeSize()
	}
}

// NodeVisitor is called for each node by NodesBetween. Returning false skips
// the node's children.
type NodeVisitor func(node *Node, pos int, parent *Node, index int) bool

// NodesBetween calls fn for every node overlapping [from, to), descending
// into children. nodeStart is added to reported positions.
func (f *Fragment) NodesBetween(from, to int, fn NodeVisitor, nodeStart int, parent *Node) {
	pos := 0
	for i := 0; pos < to && i < len(f.children); i++ {
		child := f.children[i]
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.Content.Size() > 0 {
			start := pos + 1
			child.NodesBetween(max(0, from-start), min(child.Content.Size(), to-start), fn, nodeStart+start)
		}
		pos = end
	}
}

// Descendants calls fn for every descendant node.
func (f *Fragment) Descendants(fn NodeVisitor) {
	f.NodesBetween(0, f.size, fn, 0, nil)
}

// TextBetween extracts the text in [from, to). blockSeparator is inserted
// between textblocks; leafText is used for leaf nodes without a LeafText spec.
func (f *Fragment) TextBetween(from, to int, blockSeparator, leafText string) string {
	var sb strings.Builder
	first := true
	f.NodesBetween(from, to, func(node *Node, pos int, _ *Node, _ int) bool {
		var nodeText string
		switch {
		case node.IsText():
			nodeText = runeSlice(node.Text, max(from, pos)-pos, min(node.textLen, to-pos))
		case !node.IsLeaf():
			nodeText = ""
		case leafText != "":
			nodeText = leafText
		case node.Type.Spec.LeafText != nil:
			nodeText = node.Type.Spec.LeafText(node)
		}
		if node.IsBlock() && ((node.IsLeaf() && nodeText != "") || node.IsTextblock()) && blockSeparator != "" {
			if first {
				first = false
			} else {
				sb.WriteString(blockSeparator)
			}
		}
		sb.WriteString(nodeText)
		return true
	}, 0, nil)
	return sb.String()
}

// Append returns a fragment with other's children after this fragment's,
// joining the boundary text nodes when they have the same marks.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other.size == 0 {
		return f
	}
	if f.size == 0 {
		return other
	}
	last, first := f.LastChild(), other.FirstChild()
	content := make([]*Node, 0, len(f.children)+len(other.children))
	content = append(content, f.children...)
	i := 0
	if last.IsText() && last.SameMarkup(first) {
		content[len(content)-1] = last.withText(last.Text + first.Text)
		i = 1
	}
	content = append(content, other.children[i:]...)
	return newFragment(content, f.size+other.size)
}

// Cut returns the part of the fragment between from and to.
func (f *Fragment) Cut(from, to int) *Fragment {
	if from == 0 && to == f.size {
		return f
	}
	var result []*Node
	size := 0
	if to > from {
		pos := 0
		for i := 0; pos < to && i < len(f.children); i++ {
			child := f.children[i]
			end := pos + child.NodeSize()
			if end > from {
				if pos < from || end > to {
					if child.IsText() {
						child = child.Cut(max(0, from-pos), min(child.textLen, to-pos))
					} else {
						child = child.Cut(max(0, from-pos-1), min(child.Content.Size(), to-pos-1))
					}
				}
				result = append(result, child)
				size += child.NodeSize()
			}
			pos = end
		}
	}
	return newFragment(result, size)
}

// CutByIndex returns the children in [from, to) as a fragment.
func (f *Fragment) CutByIndex(from, to int) *Fragment {
	if from == to {
		return EmptyFragment
	}
	if from == 0 && to == len(f.children) {
		return f
	}
	children := f.children[from:to]
	size := 0
	for _, child := range children {
		size += child.NodeSize()
	}
	return newFragment(append([]*Node(nil), children...), size)
}

// ReplaceChild returns a fragment with the child at index replaced by node.
func (f *Fragment) ReplaceChild(index int, node *Node) *Fragment {
	current := f.Child(index)
	if current == node {
		return f
	}
	children := append([]*Node(nil), f.children...)
	children[index] = node
	return newFragment(children, f.size+node.NodeSize()-current.NodeSize())
}

// AddToStart returns a fragment with node prepended.
func (f *Fragment) AddToStart(node *Node) *Fragment {
	children := make([]*Node, 0, len(f.children)+1)
	children = append(children, node)
	children = append(children, f.children...)
	return newFragment(children, f.size+node.NodeSize())
}

// AddToEnd returns a fragment with node appended.
func (f *Fragment) AddToEnd(node *Node) *Fragment {
	children := make([]*Node, 0, len(f.children)+1)
	children = append(children, f.children...)
	children = append(children, node)
	return newFragment(children, f.size+node.NodeSize())
}

// Eq reports whether two fragments hold equal nodes.
func (f *Fragment) Eq(other *Fragment) bool {
	if len(f.children) != len(other.children) {
		return false
	}
	for i, child := range f.children {
		if !child.Eq(other.children[i]) {
			return false
		}
	}
	return true
}

// FindIndex returns the index of the child that contains pos and the offset
// at which that child starts. A position at the end of a child resolves to the
// following index. Inside a child, a positive round also moves to the next
// index.
func (f *Fragment) FindIndex(pos, round int) (index, offset int, err error) {
	if pos < 0 || pos > f.size {
		return 0, 0, fmt.Errorf("%w: position %d outside of fragment (%s)", ErrOutOfRange, pos, f)
	}
	index, offset = f.findIndex(pos, round)
	return index, offset, nil
}

// findIndex is FindIndex for positions already known to be in range.
func (f *Fragment) findIndex(pos, round int) (int, int) {
	if pos == 0 {
		return 0, 0
	}
	if pos == f.size {
		return len(f.children), pos
	}
	curPos := 0
	for i, child := range f.children {
		end := curPos + child.NodeSize()
		if end >= pos {
			if end == pos || round > 0 {
				return i + 1, end
			}
			return i, curPos
		}
		curPos = end
	}
	return len(f.children), f.size
}

// FindDiffStart returns the first position at which this fragment and other
// differ, or false when they are the same.
func (f *Fragment) FindDiffStart(other *Fragment) (int, bool) {
	return findDiffStart(f, other, 0)
}

// DiffEnd holds the end positions of a difference in two fragments.
type DiffEnd struct {
	A int
	B int
}

// FindDiffEnd returns the positions, in this fragment and in other, at which
// the two fragments stop differing when scanned from the end, or false when
// they are the same.
func (f *Fragment) FindDiffEnd(other *Fragment) (DiffEnd, bool) {
	return findDiffEnd(f, other, f.size, other.size)
}

func (f *Fragment) String() string {
	return "<" + f.innerString() + ">"
}

func (f *Fragment) innerString() string {
	parts := make([]string, len(f.children))
	for i, child := range f.children {
		parts[i] = child.String()
	}
	return strings.Join(parts, ", ")
}
