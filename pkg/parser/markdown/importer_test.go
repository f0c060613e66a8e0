package markdown_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docmodel/pkg/model"
	"github.com/yaklabco/docmodel/pkg/parser/markdown"
	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

func importString(t *testing.T, source string, opts ...markdown.Option) *model.Node {
	t.Helper()
	im, err := markdown.New(basic.Schema(), opts...)
	require.NoError(t, err)
	doc, err := im.Import(context.Background(), []byte(source))
	require.NoError(t, err)
	require.NoError(t, doc.Check())
	return doc
}

func TestImport_Structure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "empty", source: "", want: `doc(paragraph)`},
		{name: "heading and emphasis", source: "# Title\n\nHello *world* and **you**\n", want: `doc(heading("Title"), paragraph("Hello ", em("world"), " and ", strong("you")))`},
		{name: "nested marks", source: "***both***", want: `doc(paragraph(em(strong("both"))))`},
		{name: "soft break", source: "one\ntwo", want: `doc(paragraph("one two"))`},
		{name: "hard break", source: "one  \ntwo", want: `doc(paragraph("one", hard_break, "two"))`},
		{name: "blockquote and rule", source: "> quoted\n\n---\n", want: `doc(blockquote(paragraph("quoted")), horizontal_rule)`},
		{name: "bullet list", source: "- a\n- b\n", want: `doc(bullet_list(list_item(paragraph("a")), list_item(paragraph("b"))))`},
		{name: "nested list", source: "- a\n  - b\n", want: `doc(bullet_list(list_item(paragraph("a"), bullet_list(list_item(paragraph("b"))))))`},
		{name: "empty list item is filled", source: "-\n", want: `doc(bullet_list(list_item(paragraph)))`},
		{name: "escapes and entities", source: `a \*b\* &amp; &#65;`, want: `doc(paragraph("a *b* & A"))`},
		{name: "code span is literal", source: "`a\\*b`", want: `doc(paragraph(code("a\\*b")))`},
		{name: "strikethrough is literal in commonmark", source: "~~s~~", want: `doc(paragraph("~~s~~"))`},
		{name: "html block", source: "<div>\nhi\n</div>\n", want: `doc(code_block("<div>\nhi\n</div>"))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, importString(t, tt.source).String())
		})
	}
}

func TestImport_Attributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "heading level",
			source: "### Three",
			want:   `{"type":"doc","content":[{"type":"heading","attrs":{"level":3},"content":[{"type":"text","text":"Three"}]}]}`,
		},
		{
			name:   "ordered list start",
			source: "3. x\n4. y\n",
			want: `{"type":"doc","content":[{"type":"ordered_list","attrs":{"order":3,"tight":true},"content":[
				{"type":"list_item","content":[{"type":"paragraph","content":[{"type":"text","text":"x"}]}]},
				{"type":"list_item","content":[{"type":"paragraph","content":[{"type":"text","text":"y"}]}]}]}]}`,
		},
		{
			name:   "loose list",
			source: "- a\n\n- b\n",
			want: `{"type":"doc","content":[{"type":"bullet_list","attrs":{"tight":false},"content":[
				{"type":"list_item","content":[{"type":"paragraph","content":[{"type":"text","text":"a"}]}]},
				{"type":"list_item","content":[{"type":"paragraph","content":[{"type":"text","text":"b"}]}]}]}]}`,
		},
		{
			name:   "link with title",
			source: `[x](http://e.test "T")`,
			want:   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","marks":[{"type":"link","attrs":{"href":"http://e.test","title":"T"}}],"text":"x"}]}]}`,
		},
		{
			name:   "autolink",
			source: `<http://e.test>`,
			want:   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","marks":[{"type":"link","attrs":{"href":"http://e.test","title":null}}],"text":"http://e.test"}]}]}`,
		},
		{
			name:   "image",
			source: `![a cat](cat.png)`,
			want:   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"image","attrs":{"src":"cat.png","alt":"a cat","title":null}}]}]}`,
		},
		{
			name:   "fenced code with info",
			source: "```go title=x\nfmt.Println()\n```\n",
			want:   `{"type":"doc","content":[{"type":"code_block","attrs":{"params":"go"},"content":[{"type":"text","text":"fmt.Println()"}]}]}`,
		},
		{
			name:   "empty fenced code",
			source: "```\n```\n",
			want:   `{"type":"doc","content":[{"type":"code_block","attrs":{"params":""}}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(importString(t, tt.source))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestImport_LanguageDetection(t *testing.T) {
	t.Parallel()

	source := "```\npackage main\n\nfunc main() {}\n```\n"

	detected := importString(t, source)
	assert.Equal(t, "go", detected.Child(0).Attrs["params"])

	plain := importString(t, source, markdown.WithLanguageDetection(false))
	assert.Equal(t, "", plain.Child(0).Attrs["params"])

	indented := importString(t, "    SELECT 1;\n")
	assert.Equal(t, "sql", indented.Child(0).Attrs["params"])
	assert.Equal(t, "SELECT 1;", indented.Child(0).TextContent())
}

func TestImport_GFM(t *testing.T) {
	t.Parallel()

	im, err := markdown.New(basic.Schema(), markdown.WithFlavor(markdown.FlavorGFM))
	require.NoError(t, err)
	assert.Equal(t, markdown.FlavorGFM, im.Flavor())

	doc, err := im.Import(context.Background(), []byte("~~gone~~ kept\n\n| a | b |\n|---|---|\n| 1 | *2* |\n\n- [x] done\n"))
	require.NoError(t, err)

	assert.Equal(t,
		`doc(paragraph("gone kept"), paragraph("a | b"), paragraph("1 | ", em("2")), bullet_list(list_item(paragraph("[x] done"))))`,
		doc.String())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	im, err := markdown.New(basic.Schema(), markdown.WithFlavor("pandoc"))
	require.NoError(t, err)
	assert.Equal(t, markdown.FlavorCommonMark, im.Flavor())

	tiny, err := model.NewSchema(&model.SchemaSpec{
		Nodes: []*model.NodeSpec{
			{Name: "doc", Content: "paragraph+"},
			{Name: "paragraph", Content: "text*"},
			{Name: "text"},
		},
	})
	require.NoError(t, err)

	_, err = markdown.New(tiny)
	require.ErrorIs(t, err, markdown.ErrUnsupportedSchema)
	require.ErrorIs(t, err, model.ErrUnknownType)
}

func TestImport_Cancelled(t *testing.T) {
	t.Parallel()

	im, err := markdown.New(basic.Schema())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = im.Import(ctx, []byte("# x"))
	require.ErrorIs(t, err, context.Canceled)
}
