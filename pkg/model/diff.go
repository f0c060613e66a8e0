package model

func findDiffStart(a, b *Fragment, pos int) (int, bool) {
	for i := 0; ; i++ {
		if i == a.ChildCount() || i == b.ChildCount() {
			if a.ChildCount() == b.ChildCount() {
				return 0, false
			}
			return pos, true
		}

		childA, childB := a.children[i], b.children[i]
		if childA == childB {
			pos += childA.NodeSize()
			continue
		}
		if !childA.SameMarkup(childB) {
			return pos, true
		}
		if childA.IsText() && childA.Text != childB.Text {
			ra, rb := []rune(childA.Text), []rune(childB.Text)
			for j := 0; j < len(ra) && j < len(rb) && ra[j] == rb[j]; j++ {
				pos++
			}
			return pos, true
		}
		if childA.Content.Size() > 0 || childB.Content.Size() > 0 {
			if inner, ok := findDiffStart(childA.Content, childB.Content, pos+1); ok {
				return inner, true
			}
		}
		pos += childA.NodeSize()
	}
}

func findDiffEnd(a, b *Fragment, posA, posB int) (DiffEnd, bool) {
	iA, iB := a.ChildCount(), b.ChildCount()
	for {
		if iA == 0 || iB == 0 {
			if iA == iB {
				return DiffEnd{}, false
			}
			return DiffEnd{A: posA, B: posB}, true
		}

		iA--
		iB--
		childA, childB := a.children[iA], b.children[iB]
		size := childA.NodeSize()
		if childA == childB {
			posA -= size
			posB -= size
			continue
		}
		if !childA.SameMarkup(childB) {
			return DiffEnd{A: posA, B: posB}, true
		}
		if childA.IsText() && childA.Text != childB.Text {
			ra, rb := []rune(childA.Text), []rune(childB.Text)
			for same := 0; same < len(ra) && same < len(rb) && ra[len(ra)-same-1] == rb[len(rb)-same-1]; same++ {
				posA--
				posB--
			}
			return DiffEnd{A: posA, B: posB}, true
		}
		if childA.Content.Size() > 0 || childB.Content.Size() > 0 {
			if inner, ok := findDiffEnd(childA.Content, childB.Content, posA-1, posB-1); ok {
				return inner, true
			}
		}
		posA -= size
		posB -= childB.NodeSize()
	}
}
