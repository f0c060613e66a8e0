package pretty

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/docmodel/pkg/model"
)

// FormatResolved summarizes a resolved position: its path of ancestors with
// their index and bounds, the nodes on either side and the active marks.
func (s *Styles) FormatResolved(r *model.ResolvedPos) string {
	var sb strings.Builder

	s.writeField(&sb, "position", fmt.Sprintf("%d (%s)", r.Pos, r.String()))
	s.writeField(&sb, "depth", fmt.Sprint(r.Depth))
	s.writeField(&sb, "parent offset", fmt.Sprint(r.ParentOffset))

	sb.WriteString(s.SummaryTitle.Render("path"))
	sb.WriteByte('\n')
	for d := 0; d <= r.Depth; d++ {
		node := r.Node(d)
		fmt.Fprintf(&sb, "  %s %s %s\n",
			s.Position.Render(fmt.Sprintf("%d", d)),
			s.BlockType.Render(node.Type.Name),
			s.Dim.Render(fmt.Sprintf("index=%d start=%d end=%d", r.Index(d), r.Start(d), r.End(d))),
		)
	}

	s.writeField(&sb, "before", s.describeNode(r.NodeBefore()))
	s.writeField(&sb, "after", s.describeNode(r.NodeAfter()))

	marks := lo.Map(r.Marks(), func(m *model.Mark, _ int) string { return FormatMark(m) })
	markText := "(none)"
	if len(marks) > 0 {
		markText = s.Mark.Render(strings.Join(marks, ", "))
	}
	s.writeField(&sb, "marks", markText)

	if snippet := s.FormatTextContext(r); snippet != "" {
		sb.WriteString(snippet)
		sb.WriteByte('\n')
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// FormatTextContext shows the parent textblock's text with a caret under the
// position. It returns "" when the parent has no inline content.
func (s *Styles) FormatTextContext(r *model.ResolvedPos) string {
	parent := r.Parent()
	if !parent.InlineContent() {
		return ""
	}

	// Leaf inline nodes are shown as one placeholder character so the caret
	// column matches the position offset.
	line := parent.TextBetween(0, parent.Content.Size(), "", "￼")
	line = strings.ReplaceAll(line, "\n", " ")

	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(s.Text.Render(line))
	sb.WriteString("\n  ")
	sb.WriteString(strings.Repeat(" ", r.ParentOffset))
	sb.WriteString(s.Caret.Render("^"))
	return sb.String()
}

func (s *Styles) describeNode(node *model.Node) string {
	if node == nil {
		return "(none)"
	}
	return s.formatNodeLabel(node)
}

func (s *Styles) writeField(sb *strings.Builder, key, value string) {
	sb.WriteString(s.SummaryTitle.Render(key))
	sb.WriteString(": ")
	sb.WriteString(s.SummaryValue.Render(value))
	sb.WriteByte('\n')
}
