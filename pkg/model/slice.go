package model

import (
	"fmt"
	"strconv"
)

// Slice is a piece of a document: a fragment whose outer OpenStart and
// OpenEnd levels of nesting on either side are cut open.
type Slice struct {
	Content   *Fragment
	OpenStart int
	OpenEnd   int
}

// EmptySlice is the canonical empty slice.
//
//nolint:gochecknoglobals // Canonical empty value.
var EmptySlice = &Slice{Content: EmptyFragment}

// NewSlice creates a slice. openStart and openEnd must not exceed the depth
// of the fragment's first and last descendants.
func NewSlice(content *Fragment, openStart, openEnd int) *Slice {
	if content == nil {
		content = EmptyFragment
	}
	return &Slice{Content: content, OpenStart: openStart, OpenEnd: openEnd}
}

// MaxOpen creates a slice from a fragment, opened as far as possible on both
// sides. Isolating nodes are only opened when openIsolating is set.
func MaxOpen(fragment *Fragment, openIsolating bool) *Slice {
	openStart, openEnd := 0, 0
	for n := fragment.FirstChild(); n != nil && !n.IsLeaf() && (openIsolating || !n.Type.Spec.Isolating); n = n.FirstChild() {
		openStart++
	}
	for n := fragment.LastChild(); n != nil && !n.IsLeaf() && (openIsolating || !n.Type.Spec.Isolating); n = n.LastChild() {
		openEnd++
	}
	return NewSlice(fragment, openStart, openEnd)
}

// Size is the size the slice takes up when inserted into a document.
func (s *Slice) Size() int {
	return s.Content.Size() - s.OpenStart - s.OpenEnd
}

// InsertAt returns a slice with fragment inserted at pos, or nil when the
// insertion would produce invalid content or pos is out of range.
func (s *Slice) InsertAt(pos int, fragment *Fragment) *Slice {
	content := insertInto(s.Content, pos+s.OpenStart, fragment, nil)
	if content == nil {
		return nil
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd)
}

// RemoveBetween returns a slice with [from, to) removed. The range must be
// flat: both ends in the same parent node.
func (s *Slice) RemoveBetween(from, to int) (*Slice, error) {
	content, err := removeRange(s.Content, from+s.OpenStart, to+s.OpenStart)
	if err != nil {
		return nil, err
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd), nil
}

// Eq reports whether two slices are equal.
func (s *Slice) Eq(other *Slice) bool {
	return s.Content.Eq(other.Content) && s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd
}

func (s *Slice) String() string {
	return s.Content.String() + "(" + strconv.Itoa(s.OpenStart) + "," + strconv.Itoa(s.OpenEnd) + ")"
}

// checkOpen verifies the open depths against the fragment's actual nesting.
func (s *Slice) checkOpen() error {
	if s.OpenStart < 0 || s.OpenEnd < 0 {
		return fmt.Errorf("%w: negative open depth in slice %s", ErrOutOfRange, s)
	}
	depth := 0
	for n := s.Content.FirstChild(); n != nil && !n.IsLeaf() && depth < s.OpenStart; n = n.FirstChild() {
		depth++
	}
	if depth < s.OpenStart {
		return fmt.Errorf("%w: openStart %d exceeds slice depth %d", ErrOutOfRange, s.OpenStart, depth)
	}
	depth = 0
	for n := s.Content.LastChild(); n != nil && !n.IsLeaf() && depth < s.OpenEnd; n = n.LastChild() {
		depth++
	}
	if depth < s.OpenEnd {
		return fmt.Errorf("%w: openEnd %d exceeds slice depth %d", ErrOutOfRange, s.OpenEnd, depth)
	}
	return nil
}

func removeRange(content *Fragment, from, to int) (*Fragment, error) {
	index, offset, err := content.FindIndex(from, -1)
	if err != nil {
		return nil, err
	}
	indexTo, offsetTo, err := content.FindIndex(to, -1)
	if err != nil {
		return nil, err
	}
	child := content.MaybeChild(index)
	if offset == from || child.IsText() {
		if offsetTo != to && !content.Child(indexTo).IsText() {
			return nil, fmt.Errorf("%w: removing non-flat range", ErrOutOfRange)
		}
		return content.Cut(0, from).Append(content.Cut(to, content.Size())), nil
	}
	if index != indexTo {
		return nil, fmt.Errorf("%w: removing non-flat range", ErrOutOfRange)
	}
	inner, err := removeRange(child.Content, from-offset-1, to-offset-1)
	if err != nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}

func insertInto(content *Fragment, dist int, insert *Fragment, parent *Node) *Fragment {
	index, offset, err := content.FindIndex(dist, -1)
	if err != nil {
		return nil
	}
	child := content.MaybeChild(index)
	if offset == dist || child.IsText() {
		if parent != nil && !parent.CanReplace(index, index, insert, 0, insert.ChildCount()) {
			return nil
		}
		return content.Cut(0, dist).Append(insert).Append(content.Cut(dist, content.Size()))
	}
	inner := insertInto(child.Content, dist-offset-1, insert, child)
	if inner == nil {
		return nil
	}
	return content.ReplaceChild(index, child.Copy(inner))
}
