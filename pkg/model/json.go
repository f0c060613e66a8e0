package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// nodeJSON is the interchange shape of a node. Empty attrs, content and marks
// are omitted.
type nodeJSON struct {
	Type    string    `json:"type"`
	Attrs   Attrs     `json:"attrs,omitempty"`
	Content *Fragment `json:"content,omitempty"`
	Marks   []*Mark   `json:"marks,omitempty"`
	Text    *string   `json:"text,omitempty"`
}

type markJSON struct {
	Type  string `json:"type"`
	Attrs Attrs  `json:"attrs,omitempty"`
}

type sliceJSON struct {
	Content   *Fragment `json:"content"`
	OpenStart int       `json:"openStart,omitempty"`
	OpenEnd   int       `json:"openEnd,omitempty"`
}

// rawNode is the decoding shape; fields are pointers so missing and
// mistyped values can be told apart.
type rawNode struct {
	Type    *string        `json:"type"`
	Attrs   map[string]any `json:"attrs"`
	Content []*rawNode     `json:"content"`
	Marks   []*rawMark     `json:"marks"`
	Text    *string        `json:"text"`
}

type rawMark struct {
	Type  *string        `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

type rawSlice struct {
	Content   []*rawNode `json:"content"`
	OpenStart int        `json:"openStart"`
	OpenEnd   int        `json:"openEnd"`
}

// MarshalJSON encodes the node as {type, attrs?, content?, marks?} or, for
// text, {type: "text", marks?, text}.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{Type: n.Type.Name}
	if len(n.Attrs) > 0 {
		out.Attrs = n.Attrs
	}
	if n.Content.Size() > 0 {
		out.Content = n.Content
	}
	if len(n.Marks) > 0 {
		out.Marks = n.Marks
	}
	if n.IsText() {
		text := n.Text
		out.Text = &text
	}
	return json.Marshal(out)
}

// MarshalJSON encodes the fragment as an array of nodes, or null when empty.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	if f == nil || len(f.children) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(f.children)
}

// MarshalJSON encodes the mark as {type, attrs?}.
func (m *Mark) MarshalJSON() ([]byte, error) {
	out := markJSON{Type: m.Type.Name}
	if len(m.Attrs) > 0 {
		out.Attrs = m.Attrs
	}
	return json.Marshal(out)
}

// MarshalJSON encodes the slice as {content, openStart?, openEnd?}, or null
// when it is empty.
func (s *Slice) MarshalJSON() ([]byte, error) {
	if s == nil || s.Content.Size() == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(sliceJSON{Content: s.Content, OpenStart: s.OpenStart, OpenEnd: s.OpenEnd})
}

// NodeFromJSON decodes a node, checking types and attributes against the schema.
func (s *Schema) NodeFromJSON(data []byte) (*Node, error) {
	var raw *rawNode
	if err := decodeStrict(data, &raw); err != nil {
		return nil, err
	}
	return s.nodeFromRaw(raw)
}

// FragmentFromJSON decodes a fragment from an array of nodes. null decodes to
// the empty fragment.
func (s *Schema) FragmentFromJSON(data []byte) (*Fragment, error) {
	var raw []*rawNode
	if err := decodeStrict(data, &raw); err != nil {
		return nil, err
	}
	return s.fragmentFromRaw(raw)
}

// MarkFromJSON decodes a mark.
func (s *Schema) MarkFromJSON(data []byte) (*Mark, error) {
	var raw *rawMark
	if err := decodeStrict(data, &raw); err != nil {
		return nil, err
	}
	return s.markFromRaw(raw)
}

// SliceFromJSON decodes a slice. null decodes to EmptySlice.
func (s *Schema) SliceFromJSON(data []byte) (*Slice, error) {
	var raw *rawSlice
	if err := decodeStrict(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return EmptySlice, nil
	}
	content, err := s.fragmentFromRaw(raw.Content)
	if err != nil {
		return nil, err
	}
	slice := NewSlice(content, raw.OpenStart, raw.OpenEnd)
	if err := slice.checkOpen(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return slice, nil
}

func decodeStrict(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}

func (s *Schema) nodeFromRaw(raw *rawNode) (*Node, error) {
	if raw == nil || raw.Type == nil {
		return nil, fmt.Errorf("%w: node without a type", ErrInvalidJSON)
	}

	var marks []*Mark
	for _, rm := range raw.Marks {
		mark, err := s.markFromRaw(rm)
		if err != nil {
			return nil, err
		}
		marks = append(marks, mark)
	}

	if *raw.Type == "text" {
		if raw.Text == nil {
			return nil, fmt.Errorf("%w: text node without text", ErrInvalidJSON)
		}
		return s.Text(*raw.Text, marks...)
	}

	content, err := s.fragmentFromRaw(raw.Content)
	if err != nil {
		return nil, err
	}
	t, err := s.NodeType(*raw.Type)
	if err != nil {
		return nil, err
	}
	node, err := t.Create(raw.Attrs, content, marks)
	if err != nil {
		return nil, err
	}
	if err := t.CheckAttrs(node.Attrs); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *Schema) fragmentFromRaw(raw []*rawNode) (*Fragment, error) {
	if len(raw) == 0 {
		return EmptyFragment, nil
	}
	nodes := make([]*Node, 0, len(raw))
	for _, rn := range raw {
		node, err := s.nodeFromRaw(rn)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return FragmentFromArray(nodes), nil
}

func (s *Schema) markFromRaw(raw *rawMark) (*Mark, error) {
	if raw == nil || raw.Type == nil {
		return nil, fmt.Errorf("%w: mark without a type", ErrInvalidJSON)
	}
	t, err := s.MarkType(*raw.Type)
	if err != nil {
		return nil, err
	}
	mark, err := t.Create(raw.Attrs)
	if err != nil {
		return nil, err
	}
	if err := t.CheckAttrs(mark.Attrs); err != nil {
		return nil, err
	}
	return mark, nil
}
