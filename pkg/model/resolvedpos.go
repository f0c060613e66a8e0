package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type pathEntry struct {
	node   *Node
	index  int
	offset int
}

// ResolvedPos is a position in a document decoded into its ancestor path.
// It is read-only and valid only for the document it was resolved in.
//
// Depth arguments may be negative to count back from the position's own
// depth, so Node(-1) is the grandparent.
type ResolvedPos struct {
	// Pos is the resolved position.
	Pos int

	// Depth is the number of ancestors above the parent node; 0 when the
	// position points directly into the document root.
	Depth int

	// ParentOffset is the offset of the position into its parent node.
	ParentOffset int

	path []pathEntry
}

func resolvePos(doc *Node, pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > doc.Content.Size() {
		return nil, fmt.Errorf("%w: position %d out of range", ErrOutOfRange, pos)
	}
	var path []pathEntry
	start, parentOffset := 0, pos
	for node := doc; ; {
		index, offset := node.Content.findIndex(parentOffset, -1)
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, Depth: len(path) - 1, ParentOffset: parentOffset, path: path}, nil
}

func (r *ResolvedPos) resolveDepth(depth int) int {
	if depth < 0 {
		return r.Depth + depth
	}
	return depth
}

// Parent returns the node directly containing the position.
func (r *ResolvedPos) Parent() *Node { return r.path[r.Depth].node }

// Doc returns the root node the position was resolved in.
func (r *ResolvedPos) Doc() *Node { return r.path[0].node }

// Node returns the ancestor node at the given depth.
func (r *ResolvedPos) Node(depth int) *Node { return r.path[r.resolveDepth(depth)].node }

// Index returns the index into the ancestor at the given depth.
func (r *ResolvedPos) Index(depth int) int { return r.path[r.resolveDepth(depth)].index }

// IndexAfter returns the index pointing after this position in the ancestor
// at the given depth.
func (r *ResolvedPos) IndexAfter(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == r.Depth && r.TextOffset() == 0 {
		return r.Index(depth)
	}
	return r.Index(depth) + 1
}

// Start returns the position at the start of the node at the given depth.
func (r *ResolvedPos) Start(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == 0 {
		return 0
	}
	return r.path[depth-1].offset + 1
}

// End returns the position at the end of the node at the given depth.
func (r *ResolvedPos) End(depth int) int {
	depth = r.resolveDepth(depth)
	return r.Start(depth) + r.Node(depth).Content.Size()
}

// Before returns the position directly before the ancestor at the given
// depth. It panics for depth 0, since the root has no position before it.
func (r *ResolvedPos) Before(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == 0 {
		panic("there is no position before the top-level node")
	}
	if depth == r.Depth+1 {
		return r.Pos
	}
	return r.path[depth-1].offset
}

// After returns the position directly after the ancestor at the given depth.
// It panics for depth 0.
func (r *ResolvedPos) After(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == 0 {
		panic("there is no position after the top-level node")
	}
	if depth == r.Depth+1 {
		return r.Pos
	}
	return r.path[depth-1].offset + r.path[depth].node.NodeSize()
}

// TextOffset is the offset into a text node when the position points into
// one, and zero otherwise.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[len(r.path)-1].offset
}

// NodeAfter returns the node directly after the position, or nil. A text node
// the position points into is cut at the position.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if off := r.TextOffset(); off > 0 {
		return child.Cut(off, child.textLen)
	}
	return child
}

// NodeBefore returns the node directly before the position, or nil.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.Depth)
	if off := r.TextOffset(); off > 0 {
		return r.Parent().Child(index).Cut(0, off)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().Child(index - 1)
}

// PosAtIndex returns the position of the child at index in the ancestor at
// the given depth.
func (r *ResolvedPos) PosAtIndex(index, depth int) int {
	depth = r.resolveDepth(depth)
	node := r.path[depth].node
	pos := 0
	if depth > 0 {
		pos = r.path[depth-1].offset + 1
	}
	for i := 0; i < index; i++ {
		pos += node.Child(i).NodeSize()
	}
	return pos
}

// Marks returns the marks active at this position. Marks of the node before
// the position apply, except non-inclusive marks that the node after does not
// also carry. When there is no node before, the node after is used.
func (r *ResolvedPos) Marks() []*Mark {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if parent.Content.Size() == 0 {
		return NoMarks
	}
	if r.TextOffset() > 0 {
		return parent.Child(index).Marks
	}
	main, other := parent.MaybeChild(index-1), parent.MaybeChild(index)
	if main == nil {
		main, other = other, main
	}
	return dropNonInclusive(main.Marks, other)
}

// MarksAcross returns the marks that should be kept when content from this
// position to end is deleted, or nil when the position is not before an
// inline node.
func (r *ResolvedPos) MarksAcross(end *ResolvedPos) []*Mark {
	after := r.Parent().MaybeChild(r.Index(r.Depth))
	if after == nil || !after.IsInline() {
		return nil
	}
	next := end.Parent().MaybeChild(end.Index(end.Depth))
	return dropNonInclusive(after.Marks, next)
}

func dropNonInclusive(marks []*Mark, other *Node) []*Mark {
	for i := 0; i < len(marks); i++ {
		m := marks[i]
		if !m.Type.Inclusive() && (other == nil || !m.IsInSet(other.Marks)) {
			marks = m.RemoveFromSet(marks)
			i--
		}
	}
	return marks
}

// SharedDepth returns the depth up to which this position and pos share the
// same parent nodes.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for depth := r.Depth; depth > 0; depth-- {
		if r.Start(depth) <= pos && r.End(depth) >= pos {
			return depth
		}
	}
	return 0
}

// BlockRange returns the range of block nodes around this position and
// other, optionally restricted to ancestors accepted by pred. other may be
// nil to use this position. Returns nil when no such range exists.
func (r *ResolvedPos) BlockRange(other *ResolvedPos, pred func(*Node) bool) *NodeRange {
	if other == nil {
		other = r
	}
	if other.Pos < r.Pos {
		return other.BlockRange(r, pred)
	}
	d := r.Depth
	if r.Parent().InlineContent() || r.Pos == other.Pos {
		d--
	}
	for ; d >= 0; d-- {
		if other.Pos <= r.End(d) && (pred == nil || pred(r.Node(d))) {
			return &NodeRange{From: r, To: other, Depth: d}
		}
	}
	return nil
}

// SameParent reports whether this position and other point into the same node.
func (r *ResolvedPos) SameParent(other *ResolvedPos) bool {
	return r.Pos-r.ParentOffset == other.Pos-other.ParentOffset
}

// Max returns the greater of this position and other.
func (r *ResolvedPos) Max(other *ResolvedPos) *ResolvedPos {
	if other.Pos > r.Pos {
		return other
	}
	return r
}

// Min returns the smaller of this position and other.
func (r *ResolvedPos) Min(other *ResolvedPos) *ResolvedPos {
	if other.Pos < r.Pos {
		return other
	}
	return r
}

// String renders the path, e.g. "paragraph_0:3".
func (r *ResolvedPos) String() string {
	parts := make([]string, 0, r.Depth)
	for i := 1; i <= r.Depth; i++ {
		parts = append(parts, r.Node(i).Type.Name+"_"+strconv.Itoa(r.Index(i-1)))
	}
	return strings.Join(parts, "/") + ":" + strconv.Itoa(r.ParentOffset)
}

// NodeRange is a flat range of content: the children of the node at Depth
// between two positions.
type NodeRange struct {
	From  *ResolvedPos
	To    *ResolvedPos
	Depth int
}

// Start is the position at the start of the range.
func (nr *NodeRange) Start() int { return nr.From.Before(nr.Depth + 1) }

// End is the position at the end of the range.
func (nr *NodeRange) End() int { return nr.To.After(nr.Depth + 1) }

// Parent is the node the range points into.
func (nr *NodeRange) Parent() *Node { return nr.From.Node(nr.Depth) }

// StartIndex is the index of the first child in the range.
func (nr *NodeRange) StartIndex() int { return nr.From.Index(nr.Depth) }

// EndIndex is the index after the last child in the range.
func (nr *NodeRange) EndIndex() int { return nr.To.IndexAfter(nr.Depth) }

// DefaultResolveCacheSize is the capacity of a ResolveCache created with a
// non-positive size.
const DefaultResolveCacheSize = 12

// ResolveCache memoizes resolved positions in a fixed-size ring. Entries are
// keyed by document identity and position, so a new document version never
// hits a stale entry. It is safe for concurrent use and may be cleared at any
// time.
type ResolveCache struct {
	mu      sync.Mutex
	entries []*ResolvedPos
	next    int
}

// NewResolveCache creates a cache holding up to size positions.
func NewResolveCache(size int) *ResolveCache {
	if size <= 0 {
		size = DefaultResolveCacheSize
	}
	return &ResolveCache{entries: make([]*ResolvedPos, size)}
}

// Resolve resolves pos in doc, reusing a cached result when one exists.
func (c *ResolveCache) Resolve(doc *Node, pos int) (*ResolvedPos, error) {
	c.mu.Lock()
	for _, cached := range c.entries {
		if cached != nil && cached.Pos == pos && cached.Doc() == doc {
			c.mu.Unlock()
			return cached, nil
		}
	}
	c.mu.Unlock()

	resolved, err := resolvePos(doc, pos)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[c.next] = resolved
	c.next = (c.next + 1) % len(c.entries)
	c.mu.Unlock()
	return resolved, nil
}

// Len returns the number of cached positions.
func (c *ResolveCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e != nil {
			n++
		}
	}
	return n
}

// Clear drops every cached position.
func (c *ResolveCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.next = 0
}
