package model

// replace implements Node.Replace. Every level of the result is checked
// against its node type before it is returned; on error nothing is built.
func replace(from, to *ResolvedPos, slice *Slice) (*Node, error) {
	if slice == nil {
		slice = EmptySlice
	}
	if err := slice.checkOpen(); err != nil {
		return nil, &ReplaceError{Reason: ReasonTooDeep, Err: err}
	}
	if slice.OpenStart > from.Depth {
		return nil, &ReplaceError{Reason: ReasonTooDeep}
	}
	if from.Depth-slice.OpenStart != to.Depth-slice.OpenEnd {
		return nil, &ReplaceError{Reason: ReasonInconsistentDepths}
	}
	return replaceOuter(from, to, slice, 0)
}

func replaceOuter(from, to *ResolvedPos, slice *Slice, depth int) (*Node, error) {
	index, node := from.Index(depth), from.Node(depth)

	switch {
	case index == to.Index(depth) && depth < from.Depth-slice.OpenStart:
		inner, err := replaceOuter(from, to, slice, depth+1)
		if err != nil {
			return nil, err
		}
		return node.Copy(node.Content.ReplaceChild(index, inner)), nil

	case slice.Content.Size() == 0:
		content, err := replaceTwoWay(from, to, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, content)

	case slice.OpenStart == 0 && slice.OpenEnd == 0 && from.Depth == depth && to.Depth == depth:
		parent := from.Parent()
		content := parent.Content
		return closeNode(parent, content.Cut(0, from.ParentOffset).
			Append(slice.Content).
			Append(content.Cut(to.ParentOffset, content.Size())))

	default:
		start, end, err := prepareSliceForReplace(slice, from)
		if err != nil {
			return nil, err
		}
		content, err := replaceThreeWay(from, start, end, to, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, content)
	}
}

func checkJoin(main, sub *Node) error {
	if !sub.Type.CompatibleContent(main.Type) {
		return &ReplaceError{Reason: ReasonIncompatibleJoin, NodeType: main.Type.Name, OtherType: sub.Type.Name}
	}
	return nil
}

func joinable(before, after *ResolvedPos, depth int) (*Node, error) {
	node := before.Node(depth)
	if err := checkJoin(node, after.Node(depth)); err != nil {
		return nil, err
	}
	return node, nil
}

// nodeList accumulates children, merging adjacent text with equal markup.
type nodeList struct {
	nodes []*Node
	size  int
}

func (l *nodeList) add(child *Node) {
	last := len(l.nodes) - 1
	if last >= 0 && child.IsText() && child.SameMarkup(l.nodes[last]) {
		l.nodes[last] = child.withText(l.nodes[last].Text + child.Text)
	} else {
		l.nodes = append(l.nodes, child)
	}
	l.size += child.NodeSize()
}

func (l *nodeList) fragment() *Fragment {
	return newFragment(l.nodes, l.size)
}

// addRange adds the children at depth between start and end. Either bound
// may be nil to mean the start or end of the node.
func addRange(start, end *ResolvedPos, depth int, target *nodeList) {
	var node *Node
	if end != nil {
		node = end.Node(depth)
	} else {
		node = start.Node(depth)
	}

	startIndex, endIndex := 0, node.ChildCount()
	if end != nil {
		endIndex = end.Index(depth)
	}
	if start != nil {
		startIndex = start.Index(depth)
		if start.Depth > depth {
			startIndex++
		} else if start.TextOffset() > 0 {
			target.add(start.NodeAfter())
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		target.add(node.Child(i))
	}
	if end != nil && end.Depth == depth && end.TextOffset() > 0 {
		target.add(end.NodeBefore())
	}
}

func closeNode(node *Node, content *Fragment) (*Node, error) {
	if err := node.Type.CheckContent(content); err != nil {
		return nil, &ReplaceError{Reason: ReasonInvalidContent, NodeType: node.Type.Name, Err: err}
	}
	return node.Copy(content), nil
}

func replaceThreeWay(from, start, end, to *ResolvedPos, depth int) (*Fragment, error) {
	var openStart, openEnd *Node
	var err error
	if from.Depth > depth {
		if openStart, err = joinable(from, start, depth+1); err != nil {
			return nil, err
		}
	}
	if to.Depth > depth {
		if openEnd, err = joinable(end, to, depth+1); err != nil {
			return nil, err
		}
	}

	var content nodeList
	addRange(nil, from, depth, &content)

	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return nil, err
		}
		inner, err := replaceThreeWay(from, start, end, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeNode(openStart, inner)
		if err != nil {
			return nil, err
		}
		content.add(closed)
	} else {
		if openStart != nil {
			inner, err := replaceTwoWay(from, start, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := closeNode(openStart, inner)
			if err != nil {
				return nil, err
			}
			content.add(closed)
		}
		addRange(start, end, depth, &content)
		if openEnd != nil {
			inner, err := replaceTwoWay(end, to, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := closeNode(openEnd, inner)
			if err != nil {
				return nil, err
			}
			content.add(closed)
		}
	}

	addRange(to, nil, depth, &content)
	return content.fragment(), nil
}

func replaceTwoWay(from, to *ResolvedPos, depth int) (*Fragment, error) {
	var content nodeList
	addRange(nil, from, depth, &content)
	if from.Depth > depth {
		node, err := joinable(from, to, depth+1)
		if err != nil {
			return nil, err
		}
		inner, err := replaceTwoWay(from, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeNode(node, inner)
		if err != nil {
			return nil, err
		}
		content.add(closed)
	}
	addRange(to, nil, depth, &content)
	return content.fragment(), nil
}

// prepareSliceForReplace wraps the slice content in copies of the ancestors
// of along, so the slice's open boundaries can be resolved like document
// positions.
func prepareSliceForReplace(slice *Slice, along *ResolvedPos) (start, end *ResolvedPos, err error) {
	extra := along.Depth - slice.OpenStart
	parent := along.Node(extra)
	node := parent.Copy(slice.Content)
	for i := extra - 1; i >= 0; i-- {
		node = along.Node(i).Copy(FragmentFrom(node))
	}
	if start, err = resolvePos(node, slice.OpenStart+extra); err != nil {
		return nil, nil, err
	}
	if end, err = resolvePos(node, node.Content.Size()-slice.OpenEnd-extra); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
