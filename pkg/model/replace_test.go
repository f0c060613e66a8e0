package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docmodel/pkg/model"
)

func TestReplace_DeleteWord(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	d := b.doc(b.p(b.text("hello world")))

	result, err := d.Replace(6, 12, model.EmptySlice)
	require.NoError(t, err)
	assert.True(t, result.Eq(b.doc(b.p(b.text("hello")))), "got %s", result)
	assert.Equal(t, d.NodeSize()-6, result.NodeSize())
	assert.Equal(t, "hello world", d.TextContent(), "the original document is unchanged")
}

func TestReplace_Cases(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	twoParas := b.doc(b.p(b.text("hello")), b.p(b.text("world")))
	openSlice, err := twoParas.Slice(3, 10, false)
	require.NoError(t, err)

	tests := []struct {
		name     string
		doc      *model.Node
		from, to int
		slice    *model.Slice
		want     *model.Node
	}{
		{
			name:  "insert flat text",
			doc:   b.doc(b.p(b.text("ab"))),
			from:  2,
			to:    2,
			slice: model.NewSlice(frag(b.text("X")), 0, 0),
			want:  b.doc(b.p(b.text("aXb"))),
		},
		{
			name:  "replace marked text",
			doc:   b.doc(b.p(b.text("abc"))),
			from:  2,
			to:    3,
			slice: model.NewSlice(frag(b.text("B", b.strong())), 0, 0),
			want:  b.doc(b.p(b.text("a"), b.text("B", b.strong()), b.text("c"))),
		},
		{
			name:  "join paragraphs",
			doc:   twoParas,
			from:  3,
			to:    10,
			slice: model.EmptySlice,
			want:  b.doc(b.p(b.text("herld"))),
		},
		{
			name:  "insert open slice",
			doc:   b.doc(b.p(b.text("ab"))),
			from:  2,
			to:    2,
			slice: openSlice,
			want:  b.doc(b.p(b.text("allo")), b.p(b.text("wob"))),
		},
		{
			name:  "insert closed block between blocks",
			doc:   b.doc(b.p(b.text("a")), b.p(b.text("b"))),
			from:  3,
			to:    3,
			slice: model.NewSlice(frag(b.hr()), 0, 0),
			want:  b.doc(b.p(b.text("a")), b.hr(), b.p(b.text("b"))),
		},
		{
			name:  "delete whole block",
			doc:   b.doc(b.p(b.text("a")), b.hr(), b.p(b.text("b"))),
			from:  3,
			to:    4,
			slice: model.EmptySlice,
			want:  b.doc(b.p(b.text("a")), b.p(b.text("b"))),
		},
		{
			name:  "join across nesting",
			doc:   b.doc(b.blockquote(b.p(b.text("ab"))), b.blockquote(b.p(b.text("cd")))),
			from:  4,
			to:    9,
			slice: model.EmptySlice,
			want:  b.doc(b.blockquote(b.p(b.text("abd")))),
		},
		{
			name:  "replace inside nested child only",
			doc:   b.doc(b.p(b.text("x")), b.blockquote(b.p(b.text("abc")))),
			from:  6,
			to:    7,
			slice: model.EmptySlice,
			want:  b.doc(b.p(b.text("x")), b.blockquote(b.p(b.text("ac")))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := tt.doc.Replace(tt.from, tt.to, tt.slice)
			require.NoError(t, err)
			assert.True(t, result.Eq(tt.want), "got %s, want %s", result, tt.want)
			require.NoError(t, result.Check())
		})
	}
}

func TestReplace_SharesUnchangedSiblings(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	first := b.p(b.text("keep"))
	d := b.doc(first, b.p(b.text("edit")))

	result, err := d.Replace(7, 8, model.EmptySlice)
	require.NoError(t, err)
	assert.Equal(t, `doc(paragraph("keep"), paragraph("dit"))`, result.String())
	assert.Same(t, first, result.Child(0))
}

func TestReplace_Errors(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)

	tests := []struct {
		name      string
		doc       *model.Node
		from, to  int
		slice     *model.Slice
		reason    model.ReplaceReason
		nodeType  string
		otherType string
	}{
		{
			name:   "slice deeper than position",
			doc:    b.doc(b.p(b.text("ab"))),
			from:   1,
			to:     1,
			slice:  model.NewSlice(frag(b.blockquote(b.p(b.text("x")))), 2, 2),
			reason: model.ReasonTooDeep,
		},
		{
			name:   "inconsistent depths",
			doc:    b.doc(b.p(b.text("ab"))),
			from:   1,
			to:     1,
			slice:  model.NewSlice(frag(b.p(b.text("x"))), 1, 0),
			reason: model.ReasonInconsistentDepths,
		},
		{
			name:      "incompatible join",
			doc:       b.doc(b.p(b.text("ab"))),
			from:      1,
			to:        1,
			slice:     model.NewSlice(frag(b.blockquote(b.p(b.text("x")))), 1, 1),
			reason:    model.ReasonIncompatibleJoin,
			nodeType:  "paragraph",
			otherType: "blockquote",
		},
		{
			name:     "emptying a block+ document",
			doc:      b.doc(b.p(b.text("ab"))),
			from:     0,
			to:       4,
			slice:    model.EmptySlice,
			reason:   model.ReasonInvalidContent,
			nodeType: "doc",
		},
		{
			name:   "open depth beyond slice nesting",
			doc:    b.doc(b.p(b.text("hello"))),
			from:   3,
			to:     3,
			slice:  model.NewSlice(frag(b.text("x")), 1, 1),
			reason: model.ReasonTooDeep,
		},
		{
			name:   "negative open depth",
			doc:    b.doc(b.p(b.text("hello"))),
			from:   3,
			to:     3,
			slice:  model.NewSlice(frag(b.text("x")), -1, -1),
			reason: model.ReasonTooDeep,
		},
		{
			name:     "text directly in doc",
			doc:      b.doc(b.p(b.text("ab"))),
			from:     0,
			to:       0,
			slice:    model.NewSlice(frag(b.text("x")), 0, 0),
			reason:   model.ReasonInvalidContent,
			nodeType: "doc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := tt.doc.Replace(tt.from, tt.to, tt.slice)
			require.Error(t, err)
			assert.Nil(t, result)

			var replaceErr *model.ReplaceError
			require.True(t, errors.As(err, &replaceErr), "got %T: %v", err, err)
			assert.Equal(t, tt.reason, replaceErr.Reason)
			if tt.nodeType != "" {
				assert.Equal(t, tt.nodeType, replaceErr.NodeType)
			}
			if tt.otherType != "" {
				assert.Equal(t, tt.otherType, replaceErr.OtherType)
			}
		})
	}
}

func TestReplace_InvalidContentUnwraps(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	d := b.doc(b.p(b.text("ab")))

	_, err := d.Replace(0, 4, model.EmptySlice)
	require.ErrorIs(t, err, model.ErrInvalidContent)
	assert.Contains(t, err.Error(), "doc")
}

func TestReplace_OutOfRange(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	d := b.doc(b.p(b.text("ab")))

	_, err := d.Replace(0, 50, model.EmptySlice)
	require.ErrorIs(t, err, model.ErrOutOfRange)

	var replaceErr *model.ReplaceError
	assert.False(t, errors.As(err, &replaceErr))
}

func TestReplace_ReversedRange(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	d := b.doc(b.p(b.text("hello")), b.p(b.text("world")))

	for _, r := range [][2]int{{10, 3}, {5, 2}} {
		result, err := d.Replace(r[0], r[1], model.EmptySlice)
		require.ErrorIs(t, err, model.ErrOutOfRange, "range %d-%d", r[0], r[1])
		assert.Nil(t, result)
	}

	result, err := d.Replace(3, 3, model.EmptySlice)
	require.NoError(t, err)
	assert.True(t, result.Eq(d))
}

func TestReplace_OpenDepthUnwraps(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	d := b.doc(b.p(b.text("hello")))

	_, err := d.Replace(3, 3, model.NewSlice(frag(b.text("x")), 1, 1))
	require.ErrorIs(t, err, model.ErrOutOfRange)
	assert.Contains(t, err.Error(), "openStart 1 exceeds slice depth 0")
}

func TestReplace_FillRepairsEmptiedDocument(t *testing.T) {
	t.Parallel()

	schema := testSchema(t, "block+")
	para, err := schema.NodeType("paragraph")
	require.NoError(t, err)
	text, err := schema.Text("x")
	require.NoError(t, err)
	p, err := para.Create(nil, frag(text), nil)
	require.NoError(t, err)
	d, err := schema.Node("doc", nil, frag(p))
	require.NoError(t, err)

	_, err = d.Replace(0, d.Content.Size(), model.EmptySlice)
	require.Error(t, err)

	fill := schema.TopNodeType().ContentMatch().FillBefore(model.EmptyFragment, true)
	require.NotNil(t, fill)
	repaired, err := d.Replace(0, d.Content.Size(), model.NewSlice(fill, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "doc(paragraph)", repaired.String())
}
