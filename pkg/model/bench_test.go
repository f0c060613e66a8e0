package model_test

import (
	"encoding/json"
	"testing"

	"github.com/yaklabco/docmodel/pkg/model"
)

const benchParagraphs = 200

// benchDoc builds a flat document of paragraphs holding "lorem ipsum dolor"
// with the middle word emphasized. Each paragraph has size 19.
func benchDoc(b *testing.B) (*builder, *model.Node) {
	b.Helper()
	bld := newBuilder(b)
	paragraphs := make([]*model.Node, benchParagraphs)
	for i := range paragraphs {
		paragraphs[i] = bld.p(bld.text("lorem "), bld.text("ipsum", bld.em()), bld.text(" dolor"))
	}
	return bld, bld.doc(paragraphs...)
}

func BenchmarkResolve(b *testing.B) {
	_, doc := benchDoc(b)
	pos := benchParagraphs/2*19 + 8

	b.ResetTimer()
	for range b.N {
		if _, err := doc.Resolve(pos); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolveCache(b *testing.B) {
	_, doc := benchDoc(b)
	cache := model.NewResolveCache(model.DefaultResolveCacheSize)
	pos := benchParagraphs/2*19 + 8

	b.ResetTimer()
	for range b.N {
		if _, err := cache.Resolve(doc, pos); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReplaceInsertText(b *testing.B) {
	bld, doc := benchDoc(b)
	slice := model.NewSlice(frag(bld.text("x")), 0, 0)
	pos := benchParagraphs/2*19 + 3

	b.ResetTimer()
	for range b.N {
		if _, err := doc.Replace(pos, pos, slice); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReplaceJoinParagraphs(b *testing.B) {
	_, doc := benchDoc(b)
	from := 10*19 + 7
	to := 20*19 + 7

	b.ResetTimer()
	for range b.N {
		if _, err := doc.Replace(from, to, model.EmptySlice); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCheck(b *testing.B) {
	_, doc := benchDoc(b)

	b.ResetTimer()
	for range b.N {
		if err := doc.Check(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNodeFromJSON(b *testing.B) {
	bld, doc := benchDoc(b)
	data, err := json.Marshal(doc)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for range b.N {
		if _, err := bld.schema.NodeFromJSON(data); err != nil {
			b.Fatal(err)
		}
	}
}
