package pretty

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/docmodel/pkg/model"
)

// treeIndent is the indentation added per nesting level.
const treeIndent = "  "

// FormatTree renders a node and its descendants one per line. Each line
// starts with the position directly before that node, counted from the start
// of the root's content, so positions can be fed straight back to resolve or
// replace.
func (s *Styles) FormatTree(root *model.Node) string {
	width := len(strconv.Itoa(root.Content.Size()))

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width+1))
	sb.WriteString(s.formatNodeLabel(root))
	sb.WriteByte('\n')
	s.writeChildren(&sb, root, 0, 1, width)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (s *Styles) writeChildren(sb *strings.Builder, parent *model.Node, start, depth, width int) {
	parent.ForEach(func(child *model.Node, offset, _ int) {
		pos := start + offset
		sb.WriteString(s.Position.Render(fmt.Sprintf("%*d", width, pos)))
		sb.WriteByte(' ')
		sb.WriteString(strings.Repeat(treeIndent, depth))
		sb.WriteString(s.formatNodeLabel(child))
		sb.WriteByte('\n')
		if !child.IsLeaf() {
			s.writeChildren(sb, child, pos+1, depth+1, width)
		}
	})
}

func (s *Styles) formatNodeLabel(node *model.Node) string {
	var parts []string
	if node.IsText() {
		parts = append(parts, s.Text.Render(strconv.Quote(node.Text)))
	} else {
		style := s.BlockType
		if node.IsInline() {
			style = s.InlineType
		}
		parts = append(parts, style.Render(node.Type.Name))
		if len(node.Attrs) > 0 {
			parts = append(parts, s.Attr.Render(FormatAttrs(node.Attrs)))
		}
	}
	if len(node.Marks) > 0 {
		marks := lo.Map(node.Marks, func(m *model.Mark, _ int) string { return FormatMark(m) })
		parts = append(parts, s.Mark.Render("["+strings.Join(marks, ", ")+"]"))
	}
	return strings.Join(parts, " ")
}

// FormatAttrs renders attributes as {key=value, ...} in key order.
func FormatAttrs(attrs model.Attrs) string {
	keys := lo.Keys(attrs)
	slices.Sort(keys)
	pairs := lo.Map(keys, func(key string, _ int) string {
		return key + "=" + formatAttrValue(attrs[key])
	})
	return "{" + strings.Join(pairs, ", ") + "}"
}

// FormatMark renders a mark as its name, followed by its attributes if it has any.
func FormatMark(mark *model.Mark) string {
	if len(mark.Attrs) == 0 {
		return mark.Type.Name
	}
	return mark.Type.Name + FormatAttrs(mark.Attrs)
}

func formatAttrValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}
