package basic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docmodel/pkg/model"
	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

func TestSchema_Compiles(t *testing.T) {
	t.Parallel()

	schema := basic.Schema()
	require.NotNil(t, schema)
	assert.Same(t, schema, basic.Schema(), "compiled once")
	assert.Equal(t, basic.Doc, schema.TopNodeType().Name)
	assert.Empty(t, schema.Warnings())

	for _, name := range []string{
		basic.Doc, basic.Paragraph, basic.Blockquote, basic.HorizontalRule, basic.Heading, basic.CodeBlock,
		basic.OrderedList, basic.BulletList, basic.ListItem, basic.Text, basic.Image, basic.HardBreak,
	} {
		_, err := schema.NodeType(name)
		require.NoError(t, err, name)
	}
	for _, name := range []string{basic.Em, basic.Strong, basic.Link, basic.Code} {
		_, err := schema.MarkType(name)
		require.NoError(t, err, name)
	}
}

func TestSpec_IsFreshCopy(t *testing.T) {
	t.Parallel()

	spec := basic.Spec()
	spec.Nodes = append(spec.Nodes, &model.NodeSpec{Name: "aside", Content: "block+", Group: "block"})

	extended, err := model.NewSchema(spec)
	require.NoError(t, err)
	_, err = extended.NodeType("aside")
	require.NoError(t, err)

	_, err = basic.Schema().NodeType("aside")
	require.ErrorIs(t, err, model.ErrUnknownType)
}

func TestSchema_ListDocument(t *testing.T) {
	t.Parallel()

	schema := basic.Schema()
	item, err := schema.NodeType(basic.ListItem)
	require.NoError(t, err)

	filled := item.CreateAndFill(nil, nil, nil)
	require.NotNil(t, filled)

	list, err := schema.Node(basic.OrderedList, model.Attrs{"order": 3}, model.FragmentFrom(filled))
	require.NoError(t, err)
	doc, err := schema.Node(basic.Doc, nil, model.FragmentFrom(list))
	require.NoError(t, err)

	require.NoError(t, doc.Check())
	assert.Equal(t, "doc(ordered_list(list_item(paragraph)))", doc.String())
	assert.Equal(t, false, list.Attrs["tight"])
}

func TestSchema_HardBreakText(t *testing.T) {
	t.Parallel()

	schema := basic.Schema()
	left, err := schema.Text("a")
	require.NoError(t, err)
	right, err := schema.Text("b")
	require.NoError(t, err)
	br, err := schema.Node(basic.HardBreak, nil, nil)
	require.NoError(t, err)
	para, err := schema.Node(basic.Paragraph, nil, model.FragmentFrom(left, br, right))
	require.NoError(t, err)

	assert.Equal(t, "a\nb", para.TextContent())
}

func TestSchema_LinkIsNotInclusive(t *testing.T) {
	t.Parallel()

	schema := basic.Schema()
	link, err := schema.MarkType(basic.Link)
	require.NoError(t, err)
	em, err := schema.MarkType(basic.Em)
	require.NoError(t, err)

	assert.False(t, link.Inclusive())
	assert.True(t, em.Inclusive())

	_, err = schema.Mark(basic.Link, nil)
	require.ErrorIs(t, err, model.ErrInvalidAttrs, "href is required")
}
