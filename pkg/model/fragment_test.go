package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docmodel/pkg/model"
)

func TestFragment_MergesAdjacentText(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	f := frag(b.text("a"), b.text("b"), b.text("c", b.em()), b.text("d", b.em()), b.text("e"))

	require.Equal(t, 3, f.ChildCount())
	assert.Equal(t, "ab", f.Child(0).Text)
	assert.Equal(t, "cd", f.Child(1).Text)
	assert.Equal(t, "e", f.Child(2).Text)
	assert.Equal(t, 5, f.Size())

	for i := 1; i < f.ChildCount(); i++ {
		prev, cur := f.Child(i-1), f.Child(i)
		assert.False(t, prev.IsText() && cur.IsText() && prev.SameMarkup(cur), "adjacent mergeable text at %d", i)
	}
}

func TestFragment_SizeIsSumOfChildren(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	fragments := []*model.Fragment{
		model.EmptyFragment,
		frag(b.p()),
		frag(b.p(b.text("hello")), b.hr(), b.blockquote(b.p(b.text("x")))),
		frag(b.text("héllo wörld")),
		frag(b.ul(b.li(b.p(b.text("one"))), b.li(b.p(b.text("two"))))),
	}
	for _, f := range fragments {
		assert.Equal(t, sumSizes(f), f.Size(), "fragment %s", f)
	}
}

func TestFragment_EmptyIsCanonical(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	f := frag(b.text("abc"))

	assert.Same(t, model.EmptyFragment, model.FragmentFrom())
	assert.Same(t, model.EmptyFragment, model.FragmentFromArray(nil))
	assert.Same(t, model.EmptyFragment, f.Cut(1, 1))
	assert.Same(t, model.EmptyFragment, f.CutByIndex(0, 0))
	assert.Same(t, model.EmptyFragment, model.EmptyFragment.Append(model.EmptyFragment))
}

func TestFragment_Cut(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	f := frag(b.p(b.text("hello")), b.p(b.text("world")))

	tests := []struct {
		name     string
		from, to int
		want     string
	}{
		{name: "whole", from: 0, to: 14, want: `<paragraph("hello"), paragraph("world")>`},
		{name: "into first", from: 3, to: 7, want: `<paragraph("llo")>`},
		{name: "across", from: 3, to: 10, want: `<paragraph("llo"), paragraph("wo")>`},
		{name: "second only", from: 7, to: 14, want: `<paragraph("world")>`},
		{name: "empty range", from: 4, to: 4, want: `<>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, f.Cut(tt.from, tt.to).String())
		})
	}
}

func TestFragment_CutTextCountsCodePoints(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	f := frag(b.text("añb€c"))

	require.Equal(t, 5, f.Size())
	assert.Equal(t, "ñb€", f.Cut(1, 4).Child(0).Text)
}

func TestFragment_AppendJoinsText(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	left := frag(b.text("foo"))
	right := frag(b.text("bar"), b.br())

	joined := left.Append(right)
	require.Equal(t, 2, joined.ChildCount())
	assert.Equal(t, "foobar", joined.Child(0).Text)
	assert.Equal(t, 7, joined.Size())

	marked := left.Append(frag(b.text("bar", b.strong())))
	assert.Equal(t, 2, marked.ChildCount())
}

func TestFragment_ReplaceAndAdd(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	first, second := b.p(b.text("a")), b.p(b.text("b"))
	f := frag(first, second)

	replaced := f.ReplaceChild(1, b.hr())
	assert.Equal(t, "<paragraph(\"a\"), horizontal_rule>", replaced.String())
	assert.Equal(t, 4, replaced.Size())
	assert.Same(t, first, replaced.Child(0), "unchanged siblings are shared")
	assert.Same(t, f, f.ReplaceChild(0, first))

	assert.Equal(t, 7, f.AddToStart(b.hr()).Size())
	assert.Equal(t, "horizontal_rule", f.AddToEnd(b.hr()).LastChild().Type.Name)
	assert.Equal(t, `<paragraph("b")>`, f.CutByIndex(1, 2).String())
}

func TestFragment_ChildAccess(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	f := frag(b.p(), b.hr())

	assert.Nil(t, f.MaybeChild(2))
	assert.Nil(t, f.MaybeChild(-1))
	assert.Panics(t, func() { f.Child(2) })
	assert.Equal(t, "paragraph", f.FirstChild().Type.Name)
	assert.Nil(t, model.EmptyFragment.FirstChild())
}

func TestFragment_FindIndex(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	f := frag(b.p(b.text("ab")), b.hr(), b.p())

	tests := []struct {
		name       string
		pos, round int
		index      int
		offset     int
	}{
		{name: "start", pos: 0, round: -1, index: 0, offset: 0},
		{name: "inside first", pos: 2, round: -1, index: 0, offset: 0},
		{name: "inside first rounded up", pos: 2, round: 1, index: 1, offset: 4},
		{name: "boundary", pos: 4, round: -1, index: 1, offset: 4},
		{name: "after hr", pos: 5, round: -1, index: 2, offset: 5},
		{name: "end", pos: 7, round: -1, index: 3, offset: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			index, offset, err := f.FindIndex(tt.pos, tt.round)
			require.NoError(t, err)
			assert.Equal(t, tt.index, index)
			assert.Equal(t, tt.offset, offset)
		})
	}

	_, _, err := f.FindIndex(8, -1)
	require.ErrorIs(t, err, model.ErrOutOfRange)
	_, _, err = f.FindIndex(-1, -1)
	require.ErrorIs(t, err, model.ErrOutOfRange)
}

func TestFragment_Diff(t *testing.T) {
	t.Parallel()

	t.Run("equal fragments", func(t *testing.T) {
		t.Parallel()
		b := newBuilder(t)
		a := b.doc(b.p(b.text("hello")), b.hr()).Content
		c := b.doc(b.p(b.text("hello")), b.hr()).Content
		require.True(t, a.Eq(c))

		_, ok := a.FindDiffStart(c)
		assert.False(t, ok)
		_, ok = a.FindDiffEnd(c)
		assert.False(t, ok)
	})

	t.Run("one character", func(t *testing.T) {
		t.Parallel()
		b := newBuilder(t)
		a := b.doc(b.p(b.text("hello"))).Content
		c := b.doc(b.p(b.text("hallo"))).Content

		start, ok := a.FindDiffStart(c)
		require.True(t, ok)
		assert.Equal(t, 2, start)

		end, ok := a.FindDiffEnd(c)
		require.True(t, ok)
		assert.Equal(t, model.DiffEnd{A: 3, B: 3}, end)
	})

	t.Run("different markup", func(t *testing.T) {
		t.Parallel()
		b := newBuilder(t)
		a := b.doc(b.p(b.text("x")), b.p(b.text("y"))).Content
		c := b.doc(b.p(b.text("x")), b.h(1, b.text("y"))).Content

		start, ok := a.FindDiffStart(c)
		require.True(t, ok)
		assert.Equal(t, 3, start)
	})

	t.Run("extra child", func(t *testing.T) {
		t.Parallel()
		b := newBuilder(t)
		shared := b.p(b.text("same"))
		a := frag(shared)
		c := frag(shared, b.hr())

		start, ok := a.FindDiffStart(c)
		require.True(t, ok)
		assert.Equal(t, 6, start)

		end, ok := a.FindDiffEnd(c)
		require.True(t, ok)
		assert.Equal(t, model.DiffEnd{A: 6, B: 7}, end)
	})
}

func TestFragment_TextBetween(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	d := b.doc(b.p(b.text("ab")), b.hr(), b.p(b.text("c"), b.br(), b.text("d")))

	assert.Equal(t, "ab\nc\nd", d.Content.TextBetween(0, d.Content.Size(), "\n", ""))
	assert.Equal(t, "abc\nd", d.TextContent())
	assert.Equal(t, "b", d.Content.TextBetween(2, 3, "", ""))
	assert.Equal(t, "ab|*|c*d", d.Content.TextBetween(0, d.Content.Size(), "|", "*"))
}

func TestFragment_NodesBetween(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	d := b.doc(b.p(b.text("ab")), b.blockquote(b.p(b.text("cd"))))

	var visited []string
	var positions []int
	d.NodesBetween(0, d.Content.Size(), func(node *model.Node, pos int, _ *model.Node, _ int) bool {
		visited = append(visited, node.Type.Name)
		positions = append(positions, pos)
		return true
	}, 0)
	assert.Equal(t, []string{"paragraph", "text", "blockquote", "paragraph", "text"}, visited)
	assert.Equal(t, []int{0, 1, 4, 5, 6}, positions)

	var shallow []string
	d.Descendants(func(node *model.Node, _ int, _ *model.Node, _ int) bool {
		shallow = append(shallow, node.Type.Name)
		return false
	})
	assert.Equal(t, []string{"paragraph", "blockquote"}, shallow)
}
