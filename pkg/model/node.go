package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Node is an immutable document node. Nodes are shared between document
// versions, so none of their fields may be changed after construction; use
// the methods below to derive new nodes.
//
// Text nodes have type "text", no content, and a non-empty Text. Their size is
// the number of code points in Text.
type Node struct {
	Type    *NodeType
	Attrs   Attrs
	Content *Fragment
	Marks   []*Mark
	Text    string

	textLen int
}

func newNode(t *NodeType, attrs Attrs, content *Fragment, marks []*Mark) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: t, Attrs: attrs, Content: content, Marks: marks}
}

func newTextNode(t *NodeType, attrs Attrs, text string, marks []*Mark) (*Node, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text nodes are not allowed", ErrEmptyText)
	}
	if marks == nil {
		marks = NoMarks
	}
	return &Node{
		Type:    t,
		Attrs:   attrs,
		Content: EmptyFragment,
		Marks:   marks,
		Text:    text,
		textLen: utf8.RuneCountInString(text),
	}, nil
}

// NodeSize is the size of the node in position units: the text length for
// text nodes, 1 for other leaves, and the content size plus 2 otherwise.
func (n *Node) NodeSize() int {
	switch {
	case n.Type.isText:
		return n.textLen
	case n.IsLeaf():
		return 1
	default:
		return 2 + n.Content.Size()
	}
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return n.Content.ChildCount() }

// Child returns the child at index, panicking when out of range.
func (n *Node) Child(index int) *Node { return n.Content.Child(index) }

// MaybeChild returns the child at index, or nil.
func (n *Node) MaybeChild(index int) *Node { return n.Content.MaybeChild(index) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.Content.FirstChild() }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.Content.LastChild() }

// ForEach calls fn for each child.
func (n *Node) ForEach(fn func(node *Node, offset, index int)) { n.Content.ForEach(fn) }

// NodesBetween calls fn for every descendant overlapping [from, to).
func (n *Node) NodesBetween(from, to int, fn NodeVisitor, startPos int) {
	n.Content.NodesBetween(from, to, fn, startPos, n)
}

// Descendants calls fn for every descendant node.
func (n *Node) Descendants(fn NodeVisitor) {
	n.NodesBetween(0, n.Content.Size(), fn, 0)
}

// TextContent concatenates all the text in the node.
func (n *Node) TextContent() string {
	if n.Type.isText {
		return n.Text
	}
	if n.IsLeaf() && n.Type.Spec.LeafText != nil {
		return n.Type.Spec.LeafText(n)
	}
	return n.TextBetween(0, n.Content.Size(), "", "")
}

// TextBetween returns the text in [from, to) of the node's content.
func (n *Node) TextBetween(from, to int, blockSeparator, leafText string) string {
	if n.Type.isText {
		return runeSlice(n.Text, from, to)
	}
	return n.Content.TextBetween(from, to, blockSeparator, leafText)
}

// SameMarkup reports whether the node has the same type, attributes and marks
// as other.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.Type, other.Attrs, other.Marks)
}

// HasMarkup reports whether the node has the given type, attributes and marks.
// nil attrs means the type's defaults.
func (n *Node) HasMarkup(t *NodeType, attrs Attrs, marks []*Mark) bool {
	if attrs == nil {
		attrs = t.defaultAttrs
	}
	if marks == nil {
		marks = NoMarks
	}
	return n.Type == t && attrsEqual(n.Attrs, attrs) && SameMarkSet(n.Marks, marks)
}

// Eq reports whether two nodes are structurally equal.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if other == nil || !n.SameMarkup(other) {
		return false
	}
	if n.Type.isText {
		return n.Text == other.Text
	}
	return n.Content.Eq(other.Content)
}

// Copy returns a node with the same markup and the given content.
func (n *Node) Copy(content *Fragment) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if content == n.Content {
		return n
	}
	return newNode(n.Type, n.Attrs, content, n.Marks)
}

// Mark returns a copy of the node with the given marks.
func (n *Node) Mark(marks []*Mark) *Node {
	if marks == nil {
		marks = NoMarks
	}
	if SameMarkSet(marks, n.Marks) {
		return n
	}
	if n.Type.isText {
		return &Node{Type: n.Type, Attrs: n.Attrs, Content: EmptyFragment, Marks: marks, Text: n.Text, textLen: n.textLen}
	}
	return newNode(n.Type, n.Attrs, n.Content, marks)
}

// withText returns a text node with the same markup and different text.
func (n *Node) withText(text string) *Node {
	if text == n.Text {
		return n
	}
	return &Node{
		Type:    n.Type,
		Attrs:   n.Attrs,
		Content: EmptyFragment,
		Marks:   n.Marks,
		Text:    text,
		textLen: utf8.RuneCountInString(text),
	}
}

// Cut returns a copy of the node holding only the content between from and
// to. For text nodes the positions count code points.
func (n *Node) Cut(from, to int) *Node {
	if n.Type.isText {
		if from == 0 && to == n.textLen {
			return n
		}
		return n.withText(runeSlice(n.Text, from, to))
	}
	if from == 0 && to == n.Content.Size() {
		return n
	}
	return n.Copy(n.Content.Cut(from, to))
}

// Slice cuts the document between from and to. When includeParents is set,
// the slice's open ends include the full ancestor nodes.
func (n *Node) Slice(from, to int, includeParents bool) (*Slice, error) {
	if from == to {
		return EmptySlice, nil
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	depth := 0
	if !includeParents {
		depth = rFrom.SharedDepth(to)
	}
	start := rFrom.Start(depth)
	node := rFrom.Node(depth)
	content := node.Content.Cut(rFrom.Pos-start, rTo.Pos-start)
	return NewSlice(content, rFrom.Depth-depth, rTo.Depth-depth), nil
}

// Replace replaces [from, to) with the given slice. The slice must fit into
// the position's parents; otherwise a *ReplaceError is returned.
func (n *Node) Replace(from, to int, slice *Slice) (*Node, error) {
	if from > to {
		return nil, fmt.Errorf("%w: replace range %d-%d is reversed", ErrOutOfRange, from, to)
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	return replace(rFrom, rTo, slice)
}

// NodeAt returns the node starting directly after pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.Content.FindIndex(pos, -1)
		if err != nil {
			return nil
		}
		child := node.MaybeChild(index)
		if child == nil {
			return nil
		}
		if offset == pos || child.Type.isText {
			return child
		}
		pos -= offset + 1
		node = child
	}
}

// ChildInfo describes a direct child and its position.
type ChildInfo struct {
	Node   *Node
	Index  int
	Offset int
}

// ChildAfter returns the direct child starting at or containing pos.
func (n *Node) ChildAfter(pos int) (ChildInfo, error) {
	index, offset, err := n.Content.FindIndex(pos, -1)
	if err != nil {
		return ChildInfo{}, err
	}
	return ChildInfo{Node: n.Content.MaybeChild(index), Index: index, Offset: offset}, nil
}

// ChildBefore returns the direct child ending at or containing pos.
func (n *Node) ChildBefore(pos int) (ChildInfo, error) {
	if pos == 0 {
		return ChildInfo{}, nil
	}
	index, offset, err := n.Content.FindIndex(pos, -1)
	if err != nil {
		return ChildInfo{}, err
	}
	if offset < pos {
		return ChildInfo{Node: n.Content.Child(index), Index: index, Offset: offset}, nil
	}
	node := n.Content.Child(index - 1)
	return ChildInfo{Node: node, Index: index - 1, Offset: offset - node.NodeSize()}, nil
}

// Resolve resolves a position in the document. The result is not cached; use
// a ResolveCache for repeated lookups.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	return resolvePos(n, pos)
}

// RangeHasMark reports whether a mark of the given type occurs in [from, to).
func (n *Node) RangeHasMark(from, to int, markType *MarkType) bool {
	found := false
	if to > from {
		n.NodesBetween(from, to, func(node *Node, _ int, _ *Node, _ int) bool {
			if markType.IsInSet(node.Marks) != nil {
				found = true
			}
			return !found
		}, 0)
	}
	return found
}

// IsBlock reports whether the node is a block node.
func (n *Node) IsBlock() bool { return n.Type.isBlock }

// IsTextblock reports whether the node is a block with inline content.
func (n *Node) IsTextblock() bool { return n.Type.IsTextblock() }

// InlineContent reports whether the node has inline content.
func (n *Node) InlineContent() bool { return n.Type.inlineContent }

// IsInline reports whether the node is inline.
func (n *Node) IsInline() bool { return !n.Type.isBlock }

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool { return n.Type.isText }

// IsLeaf reports whether the node allows no content.
func (n *Node) IsLeaf() bool { return n.Type.IsLeaf() }

// IsAtom reports whether the node is a leaf or declared atomic.
func (n *Node) IsAtom() bool { return n.Type.IsAtom() }

// ContentMatchAt returns the content automaton state after the child at index.
func (n *Node) ContentMatchAt(index int) (*ContentMatch, error) {
	match := n.Type.contentMatch.MatchFragmentRange(n.Content, 0, index)
	if match == nil {
		return nil, fmt.Errorf("%w: called ContentMatchAt on a node with invalid content", ErrInvalidContent)
	}
	return match, nil
}

// CanReplace reports whether replacing children [from, to) with
// replacement[start:end] would leave the node's content valid.
func (n *Node) CanReplace(from, to int, replacement *Fragment, start, end int) bool {
	if replacement == nil {
		replacement = EmptyFragment
	}
	one, err := n.ContentMatchAt(from)
	if err != nil {
		return false
	}
	one = one.MatchFragmentRange(replacement, start, end)
	var two *ContentMatch
	if one != nil {
		two = one.MatchFragmentRange(n.Content, to, n.Content.ChildCount())
	}
	if two == nil || !two.ValidEnd {
		return false
	}
	for i := start; i < end; i++ {
		if !n.Type.AllowsMarks(replacement.Child(i).Marks) {
			return false
		}
	}
	return true
}

// CanReplaceWith reports whether replacing children [from, to) with a node of
// the given type and marks would be valid.
func (n *Node) CanReplaceWith(from, to int, t *NodeType, marks []*Mark) bool {
	if marks != nil && !n.Type.AllowsMarks(marks) {
		return false
	}
	start, err := n.ContentMatchAt(from)
	if err != nil {
		return false
	}
	start = start.MatchType(t)
	var end *ContentMatch
	if start != nil {
		end = start.MatchFragmentRange(n.Content, to, n.Content.ChildCount())
	}
	return end != nil && end.ValidEnd
}

// CanAppend reports whether other's content can be appended to this node's.
func (n *Node) CanAppend(other *Node) bool {
	if other.Content.Size() > 0 {
		return n.CanReplace(n.ChildCount(), n.ChildCount(), other.Content, 0, other.ChildCount())
	}
	return n.Type.CompatibleContent(other.Type)
}

// Check verifies the node and its descendants against the schema: content,
// attributes and marks.
func (n *Node) Check() error {
	if err := n.Type.CheckContent(n.Content); err != nil {
		return err
	}
	if err := n.Type.CheckAttrs(n.Attrs); err != nil {
		return err
	}
	copied := NoMarks
	for _, mark := range n.Marks {
		if err := mark.Type.CheckAttrs(mark.Attrs); err != nil {
			return err
		}
		copied = mark.AddToSet(copied)
	}
	if !SameMarkSet(copied, n.Marks) {
		return fmt.Errorf("%w: invalid collection of marks for node %s: %s",
			ErrInvalidMarks, n.Type.Name, markNames(n.Marks))
	}
	for _, child := range n.Content.children {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

func markNames(marks []*Mark) string {
	names := make([]string, len(marks))
	for i, m := range marks {
		names[i] = m.Type.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// String renders the node for debugging, e.g. doc(paragraph("hi")).
func (n *Node) String() string {
	if n.Type.isText {
		return wrapMarks(n.Marks, strconv.Quote(n.Text))
	}
	name := n.Type.Name
	if n.Content.Size() > 0 {
		name += "(" + n.Content.innerString() + ")"
	}
	return wrapMarks(n.Marks, name)
}

// runeSlice returns the code points of s in [from, to).
func runeSlice(s string, from, to int) string {
	if from <= 0 && to >= len(s) {
		return s
	}
	start, end := -1, len(s)
	i := 0
	for byteIdx := range s {
		if i == from {
			start = byteIdx
		}
		if i == to {
			end = byteIdx
			break
		}
		i++
	}
	if start < 0 {
		return ""
	}
	return s[start:end]
}
