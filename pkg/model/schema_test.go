package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docmodel/pkg/model"
)

func strPtr(s string) *string { return &s }

func TestNewSchema_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec *model.SchemaSpec
	}{
		{name: "nil spec", spec: nil},
		{
			name: "missing text",
			spec: &model.SchemaSpec{Nodes: []*model.NodeSpec{{Name: "doc", Content: "paragraph*"}, {Name: "paragraph"}}},
		},
		{
			name: "missing top node",
			spec: &model.SchemaSpec{Nodes: []*model.NodeSpec{{Name: "page", Content: "text*"}, {Name: "text"}}},
		},
		{
			name: "duplicate node",
			spec: &model.SchemaSpec{Nodes: []*model.NodeSpec{{Name: "doc", Content: "text*"}, {Name: "text"}, {Name: "text"}}},
		},
		{
			name: "unnamed node",
			spec: &model.SchemaSpec{Nodes: []*model.NodeSpec{{Name: "doc", Content: "text*"}, {Name: "text"}, {}}},
		},
		{
			name: "duplicate mark",
			spec: &model.SchemaSpec{
				Nodes: []*model.NodeSpec{{Name: "doc", Content: "text*"}, {Name: "text"}},
				Marks: []*model.MarkSpec{{Name: "em"}, {Name: "em"}},
			},
		},
		{
			name: "node and mark share a name",
			spec: &model.SchemaSpec{
				Nodes: []*model.NodeSpec{{Name: "doc", Content: "text*"}, {Name: "text"}, {Name: "em", Inline: true}},
				Marks: []*model.MarkSpec{{Name: "em"}},
			},
		},
		{
			name: "text with attributes",
			spec: &model.SchemaSpec{Nodes: []*model.NodeSpec{
				{Name: "doc", Content: "text*"},
				{Name: "text", Attrs: map[string]*model.AttributeSpec{"lang": {Default: "en"}}},
			}},
		},
		{
			name: "unknown type in content",
			spec: &model.SchemaSpec{Nodes: []*model.NodeSpec{{Name: "doc", Content: "widget+"}, {Name: "text"}}},
		},
		{
			name: "unknown mark in excludes",
			spec: &model.SchemaSpec{
				Nodes: []*model.NodeSpec{{Name: "doc", Content: "text*"}, {Name: "text"}},
				Marks: []*model.MarkSpec{{Name: "em", Excludes: strPtr("blink")}},
			},
		},
		{
			name: "unknown mark in node marks",
			spec: &model.SchemaSpec{
				Nodes: []*model.NodeSpec{{Name: "doc", Content: "text*", Marks: strPtr("blink")}, {Name: "text"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			schema, err := model.NewSchema(tt.spec)
			require.ErrorIs(t, err, model.ErrSchema)
			assert.Nil(t, schema)
		})
	}
}

func TestNewSchema_UnknownMarkIsSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := model.NewSchema(&model.SchemaSpec{
		Nodes: []*model.NodeSpec{{Name: "doc", Content: "text*"}, {Name: "text"}},
		Marks: []*model.MarkSpec{{Name: "em", Excludes: strPtr("blink")}},
	})

	var syntaxErr *model.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Contains(t, syntaxErr.Message, "blink")
}

func TestNewSchema_TopNode(t *testing.T) {
	t.Parallel()

	schema, err := model.NewSchema(&model.SchemaSpec{
		TopNode: "page",
		Nodes:   []*model.NodeSpec{{Name: "page", Content: "text*"}, {Name: "text"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "page", schema.TopNodeType().Name)
	assert.Len(t, schema.Nodes(), 2)
	assert.Empty(t, schema.Marks())
}

func TestNewSchema_AllowedMarks(t *testing.T) {
	t.Parallel()

	schema, err := model.NewSchema(&model.SchemaSpec{
		Nodes: []*model.NodeSpec{
			{Name: "doc", Content: "block+"},
			{Name: "para", Content: "text*", Group: "block"},
			{Name: "plain", Content: "text*", Group: "block", Marks: strPtr("")},
			{Name: "styled", Content: "text*", Group: "block", Marks: strPtr("font")},
			{Name: "any", Content: "block*", Group: "block", Marks: strPtr("_")},
			{Name: "text"},
		},
		Marks: []*model.MarkSpec{
			{Name: "bold", Group: "font"},
			{Name: "italic", Group: "font"},
			{Name: "comment"},
		},
	})
	require.NoError(t, err)

	lookup := func(name string) *model.NodeType {
		nt, err := schema.NodeType(name)
		require.NoError(t, err)
		return nt
	}
	markType := func(name string) *model.MarkType {
		mt, err := schema.MarkType(name)
		require.NoError(t, err)
		return mt
	}

	tests := []struct {
		node, mark string
		want       bool
	}{
		{node: "doc", mark: "bold", want: false},
		{node: "para", mark: "bold", want: true},
		{node: "para", mark: "comment", want: true},
		{node: "plain", mark: "bold", want: false},
		{node: "styled", mark: "italic", want: true},
		{node: "styled", mark: "comment", want: false},
		{node: "any", mark: "comment", want: true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lookup(tt.node).AllowsMarkType(markType(tt.mark)), "%s allows %s", tt.node, tt.mark)
	}

	bold, err := schema.Mark("bold", nil)
	require.NoError(t, err)
	comment, err := schema.Mark("comment", nil)
	require.NoError(t, err)
	kept := lookup("styled").AllowedMarks([]*model.Mark{bold, comment})
	assert.Equal(t, []string{"bold"}, markNames(kept))
	assert.Empty(t, lookup("plain").AllowedMarks([]*model.Mark{bold}))
	assert.Equal(t, 0, markType("bold").Rank())
	assert.Equal(t, 2, markType("comment").Rank())
}

func TestNodeType_Classification(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)

	tests := []struct {
		name                                string
		block, textblock, inline, leaf, txt bool
		whitespace                          string
	}{
		{name: "doc", block: true, whitespace: model.WhitespaceNormal},
		{name: "paragraph", block: true, textblock: true, whitespace: model.WhitespaceNormal},
		{name: "horizontal_rule", block: true, leaf: true, whitespace: model.WhitespaceNormal},
		{name: "code_block", block: true, textblock: true, whitespace: model.WhitespacePre},
		{name: "text", inline: true, leaf: true, txt: true, whitespace: model.WhitespaceNormal},
		{name: "image", inline: true, leaf: true, whitespace: model.WhitespaceNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nt, err := b.schema.NodeType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.block, nt.IsBlock(), "block")
			assert.Equal(t, tt.textblock, nt.IsTextblock(), "textblock")
			assert.Equal(t, tt.inline, nt.IsInline(), "inline")
			assert.Equal(t, tt.leaf, nt.IsLeaf(), "leaf")
			assert.Equal(t, tt.leaf, nt.IsAtom(), "atom")
			assert.Equal(t, tt.txt, nt.IsText(), "text")
			assert.Equal(t, tt.whitespace, nt.Whitespace())
		})
	}

	image, err := b.schema.NodeType("image")
	require.NoError(t, err)
	assert.True(t, image.HasRequiredAttrs())
	assert.Nil(t, image.DefaultAttrs())
	assert.True(t, image.IsInGroup("inline"))
	assert.False(t, image.IsInGroup("block"))

	list, err := b.schema.NodeType("bullet_list")
	require.NoError(t, err)
	ordered, err := b.schema.NodeType("ordered_list")
	require.NoError(t, err)
	assert.True(t, list.CompatibleContent(ordered))
	assert.Equal(t, model.Attrs{"tight": false}, list.DefaultAttrs())
}
