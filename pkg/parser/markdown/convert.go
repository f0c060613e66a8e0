package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/docmodel/pkg/model"
	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

// tableCellSeparator joins cells when a table row is flattened to a paragraph.
const tableCellSeparator = " | "

// converter holds the state of one Import call.
type converter struct {
	im     *Importer
	source []byte
	logger *log.Logger

	// lossy counts constructs the schema has no exact node for.
	lossy map[string]int
}

func (c *converter) document(root ast.Node) (*model.Node, error) {
	blocks, err := c.blocks(root)
	if err != nil {
		return nil, err
	}
	return c.container(basic.Doc, nil, blocks)
}

func (c *converter) blocks(parent ast.Node) ([]*model.Node, error) {
	var out []*model.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := c.block(child)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (c *converter) block(n ast.Node) ([]*model.Node, error) {
	var (
		node *model.Node
		err  error
	)

	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		node, err = c.textblock(basic.Paragraph, nil, n)

	case *ast.Heading:
		node, err = c.textblock(basic.Heading, model.Attrs{"level": n.Level}, n)

	case *ast.Blockquote:
		node, err = c.wrap(basic.Blockquote, nil, n)

	case *ast.ThematicBreak:
		node, err = c.container(basic.HorizontalRule, nil, nil)

	case *ast.FencedCodeBlock:
		info := ""
		if n.Info != nil {
			info = string(n.Info.Segment.Value(c.source))
		}
		node, err = c.codeBlock(info, n)

	case *ast.CodeBlock:
		node, err = c.codeBlock("", n)

	case *ast.HTMLBlock:
		c.lossy["html_block"]++
		node, err = c.codeText("html", c.lines(n)+c.closure(n))

	case *ast.List:
		node, err = c.list(n)

	case *ast.ListItem:
		node, err = c.wrap(basic.ListItem, nil, n)

	case *east.Table:
		c.lossy["table"]++
		return c.table(n)

	default:
		c.lossy[n.Kind().String()]++
		return c.blocks(n)
	}

	if err != nil {
		return nil, err
	}
	return []*model.Node{node}, nil
}

func (c *converter) list(n *ast.List) (*model.Node, error) {
	if n.IsOrdered() {
		return c.wrap(basic.OrderedList, model.Attrs{"order": n.Start, "tight": n.IsTight}, n)
	}
	return c.wrap(basic.BulletList, model.Attrs{"tight": n.IsTight}, n)
}

func (c *converter) wrap(typeName string, attrs model.Attrs, n ast.Node) (*model.Node, error) {
	children, err := c.blocks(n)
	if err != nil {
		return nil, err
	}
	return c.container(typeName, attrs, children)
}

// container creates a node and fills in whatever required content is missing,
// such as the paragraph a list item must start with.
func (c *converter) container(typeName string, attrs model.Attrs, children []*model.Node) (*model.Node, error) {
	nodeType, err := c.im.schema.NodeType(typeName)
	if err != nil {
		return nil, err
	}
	node := nodeType.CreateAndFill(attrs, model.FragmentFromArray(children), nil)
	if node == nil {
		return nil, fmt.Errorf("%w: cannot build %s from %s", model.ErrInvalidContent, typeName, model.FragmentFromArray(children))
	}
	return node, nil
}

func (c *converter) textblock(typeName string, attrs model.Attrs, n ast.Node) (*model.Node, error) {
	var inline []*model.Node
	if err := c.inlines(n, model.NoMarks, &inline); err != nil {
		return nil, err
	}
	return c.container(typeName, attrs, inline)
}

func (c *converter) codeBlock(info string, n ast.Node) (*model.Node, error) {
	code := c.lines(n)
	params := c.im.detector.Params(info, []byte(code), c.im.detect)
	return c.codeText(params, code)
}

func (c *converter) codeText(params, code string) (*model.Node, error) {
	code = strings.TrimSuffix(code, "\n")
	var children []*model.Node
	if code != "" {
		textNode, err := c.im.schema.Text(code)
		if err != nil {
			return nil, err
		}
		children = append(children, textNode)
	}
	return c.container(basic.CodeBlock, model.Attrs{"params": params}, children)
}

func (c *converter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(c.source))
	}
	return buf.String()
}

// closure returns the closing line of an HTML block, which goldmark keeps apart.
func (c *converter) closure(n ast.Node) string {
	block, ok := n.(*ast.HTMLBlock)
	if !ok || !block.HasClosure() {
		return ""
	}
	return string(block.ClosureLine.Value(c.source))
}

// table flattens each row into a paragraph of cells.
func (c *converter) table(n *east.Table) ([]*model.Node, error) {
	var out []*model.Node
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var inline []*model.Node
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if cell != row.FirstChild() {
				sep, err := c.im.schema.Text(tableCellSeparator)
				if err != nil {
					return nil, err
				}
				inline = append(inline, sep)
			}
			if err := c.inlines(cell, model.NoMarks, &inline); err != nil {
				return nil, err
			}
		}
		para, err := c.container(basic.Paragraph, nil, inline)
		if err != nil {
			return nil, err
		}
		out = append(out, para)
	}
	return out, nil
}

func (c *converter) inlines(parent ast.Node, marks []*model.Mark, out *[]*model.Node) error {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if err := c.inline(child, marks, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) inline(n ast.Node, marks []*model.Mark, out *[]*model.Node) error {
	switch n := n.(type) {
	case *ast.Text:
		if err := c.appendText(decode(n.Segment.Value(c.source)), marks, out); err != nil {
			return err
		}
		switch {
		case n.HardLineBreak():
			return c.appendLeaf(basic.HardBreak, nil, out)
		case n.SoftLineBreak():
			return c.appendText(" ", marks, out)
		}
		return nil

	case *ast.String:
		return c.appendText(string(n.Value), marks, out)

	case *ast.Emphasis:
		name := basic.Em
		if n.Level >= 2 {
			name = basic.Strong
		}
		return c.withMark(name, nil, n, marks, out)

	case *ast.CodeSpan:
		mark, err := c.im.schema.Mark(basic.Code, nil)
		if err != nil {
			return err
		}
		return c.appendText(c.plainText(n, false), mark.AddToSet(marks), out)

	case *ast.Link:
		return c.withMark(basic.Link, linkAttrs(n.Destination, n.Title), n, marks, out)

	case *ast.AutoLink:
		mark, err := c.im.schema.Mark(basic.Link, linkAttrs(n.URL(c.source), nil))
		if err != nil {
			return err
		}
		return c.appendText(string(n.Label(c.source)), mark.AddToSet(marks), out)

	case *ast.Image:
		return c.appendLeaf(basic.Image, model.Attrs{
			"src":   string(n.Destination),
			"alt":   optional([]byte(c.plainText(n, true))),
			"title": optional(n.Title),
		}, out)

	case *ast.RawHTML:
		c.lossy["raw_html"]++
		var buf bytes.Buffer
		for i := range n.Segments.Len() {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(c.source))
		}
		return c.appendText(buf.String(), marks, out)

	case *east.Strikethrough:
		c.lossy["strikethrough"]++
		return c.inlines(n, marks, out)

	case *east.TaskCheckBox:
		box := "[ ] "
		if n.IsChecked {
			box = "[x] "
		}
		return c.appendText(box, marks, out)

	default:
		c.lossy[n.Kind().String()]++
		return c.inlines(n, marks, out)
	}
}

func (c *converter) withMark(name string, attrs model.Attrs, n ast.Node, marks []*model.Mark, out *[]*model.Node) error {
	mark, err := c.im.schema.Mark(name, attrs)
	if err != nil {
		return err
	}
	return c.inlines(n, mark.AddToSet(marks), out)
}

func (c *converter) appendText(value string, marks []*model.Mark, out *[]*model.Node) error {
	if value == "" {
		return nil
	}
	node, err := c.im.schema.Text(value, marks...)
	if err != nil {
		return err
	}
	*out = append(*out, node)
	return nil
}

func (c *converter) appendLeaf(typeName string, attrs model.Attrs, out *[]*model.Node) error {
	node, err := c.im.schema.Node(typeName, attrs, nil)
	if err != nil {
		return err
	}
	*out = append(*out, node)
	return nil
}

// plainText concatenates the text below n, ignoring markup. Code span text is
// literal, so escapes are only decoded when asked.
func (c *converter) plainText(n ast.Node, decodeEscapes bool) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch child := child.(type) {
		case *ast.Text:
			raw := child.Segment.Value(c.source)
			if decodeEscapes {
				sb.WriteString(decode(raw))
			} else {
				sb.Write(raw)
			}
		case *ast.String:
			sb.Write(child.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// decode resolves backslash escapes and character references in raw text.
func decode(raw []byte) string {
	return string(util.UnescapePunctuations(util.ResolveNumericReferences(util.ResolveEntityNames(raw))))
}

func linkAttrs(href, title []byte) model.Attrs {
	return model.Attrs{"href": string(href), "title": optional(title)}
}

// optional maps empty values to nil so they serialize as null.
func optional(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return string(value)
}
