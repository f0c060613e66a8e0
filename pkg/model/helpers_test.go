package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docmodel/pkg/model"
	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

// builder creates nodes in the basic schema, failing the test on error.
type builder struct {
	t      testing.TB
	schema *model.Schema
}

func newBuilder(t testing.TB) *builder {
	t.Helper()
	return &builder{t: t, schema: basic.Schema()}
}

func (b *builder) node(name string, attrs model.Attrs, children ...*model.Node) *model.Node {
	b.t.Helper()
	n, err := b.schema.Node(name, attrs, model.FragmentFrom(children...))
	require.NoError(b.t, err)
	return n
}

func (b *builder) doc(children ...*model.Node) *model.Node {
	b.t.Helper()
	return b.node(basic.Doc, nil, children...)
}

func (b *builder) p(children ...*model.Node) *model.Node {
	b.t.Helper()
	return b.node(basic.Paragraph, nil, children...)
}

func (b *builder) blockquote(children ...*model.Node) *model.Node {
	b.t.Helper()
	return b.node(basic.Blockquote, nil, children...)
}

func (b *builder) h(level int, children ...*model.Node) *model.Node {
	b.t.Helper()
	return b.node(basic.Heading, model.Attrs{"level": level}, children...)
}

func (b *builder) ul(children ...*model.Node) *model.Node {
	b.t.Helper()
	return b.node(basic.BulletList, nil, children...)
}

func (b *builder) li(children ...*model.Node) *model.Node {
	b.t.Helper()
	return b.node(basic.ListItem, nil, children...)
}

func (b *builder) hr() *model.Node {
	b.t.Helper()
	return b.node(basic.HorizontalRule, nil)
}

func (b *builder) br() *model.Node {
	b.t.Helper()
	return b.node(basic.HardBreak, nil)
}

func (b *builder) img(src string) *model.Node {
	b.t.Helper()
	return b.node(basic.Image, model.Attrs{"src": src})
}

func (b *builder) text(s string, marks ...*model.Mark) *model.Node {
	b.t.Helper()
	n, err := b.schema.Text(s, marks...)
	require.NoError(b.t, err)
	return n
}

func (b *builder) mark(name string, attrs model.Attrs) *model.Mark {
	b.t.Helper()
	m, err := b.schema.Mark(name, attrs)
	require.NoError(b.t, err)
	return m
}

func (b *builder) em() *model.Mark {
	b.t.Helper()
	return b.mark(basic.Em, nil)
}

func (b *builder) strong() *model.Mark {
	b.t.Helper()
	return b.mark(basic.Strong, nil)
}

func (b *builder) link(href string) *model.Mark {
	b.t.Helper()
	return b.mark(basic.Link, model.Attrs{"href": href})
}

// frag builds a fragment from nodes.
func frag(nodes ...*model.Node) *model.Fragment {
	return model.FragmentFrom(nodes...)
}

// sumSizes adds up the sizes of a fragment's children.
func sumSizes(f *model.Fragment) int {
	total := 0
	for _, child := range f.Children() {
		total += child.NodeSize()
	}
	return total
}

// testSchema compiles a small schema with the given doc content expression.
func testSchema(t testing.TB, docContent string) *model.Schema {
	t.Helper()
	schema, err := model.NewSchema(&model.SchemaSpec{
		Nodes: []*model.NodeSpec{
			{Name: "doc", Content: docContent},
			{Name: "paragraph", Content: "text*", Group: "block"},
			{Name: "horizontal_rule", Group: "block"},
			{Name: "text"},
		},
	})
	require.NoError(t, err)
	return schema
}
