// Package basic provides a CommonMark-shaped document schema: the block and
// inline nodes a Markdown document can hold, plus emphasis, strong, link and
// code marks.
package basic

import (
	"sync"

	"github.com/yaklabco/docmodel/pkg/model"
)

// Node type names.
const (
	Doc            = "doc"
	Paragraph      = "paragraph"
	Blockquote     = "blockquote"
	HorizontalRule = "horizontal_rule"
	Heading        = "heading"
	CodeBlock      = "code_block"
	OrderedList    = "ordered_list"
	BulletList     = "bullet_list"
	ListItem       = "list_item"
	Text           = "text"
	Image          = "image"
	HardBreak      = "hard_break"
)

// Mark type names.
const (
	Em     = "em"
	Strong = "strong"
	Link   = "link"
	Code   = "code"
)

func str(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// Spec returns a fresh copy of the schema specification, so callers can
// extend it before compiling.
func Spec() *model.SchemaSpec {
	return &model.SchemaSpec{
		Nodes: []*model.NodeSpec{
			{Name: Doc, Content: "block+"},
			{Name: Paragraph, Content: "inline*", Group: "block"},
			{Name: Blockquote, Content: "block+", Group: "block", Defining: true},
			{Name: HorizontalRule, Group: "block"},
			{
				Name:     Heading,
				Content:  "(text | image)*",
				Group:    "block",
				Defining: true,
				Attrs: map[string]*model.AttributeSpec{
					"level": {Default: 1, Validate: "number"},
				},
			},
			{
				Name:     CodeBlock,
				Content:  "text*",
				Marks:    str(""),
				Group:    "block",
				Code:     true,
				Defining: true,
				Attrs: map[string]*model.AttributeSpec{
					"params": {Default: "", Validate: "string"},
				},
			},
			{
				Name:    OrderedList,
				Content: "list_item+",
				Group:   "block",
				Attrs: map[string]*model.AttributeSpec{
					"order": {Default: 1, Validate: "number"},
					"tight": {Default: false, Validate: "boolean"},
				},
			},
			{
				Name:    BulletList,
				Content: "list_item+",
				Group:   "block",
				Attrs: map[string]*model.AttributeSpec{
					"tight": {Default: false, Validate: "boolean"},
				},
			},
			{Name: ListItem, Content: "paragraph block*", Defining: true},
			{Name: Text, Group: "inline"},
			{
				Name:   Image,
				Inline: true,
				Group:  "inline",
				Attrs: map[string]*model.AttributeSpec{
					"src":   {Required: true, Validate: "string"},
					"alt":   {Default: nil, Validate: "string|null"},
					"title": {Default: nil, Validate: "string|null"},
				},
			},
			{
				Name:     HardBreak,
				Inline:   true,
				Group:    "inline",
				LeafText: func(*model.Node) string { return "\n" },
			},
		},
		Marks: []*model.MarkSpec{
			{Name: Em},
			{Name: Strong},
			{
				Name:      Link,
				Inclusive: boolPtr(false),
				Attrs: map[string]*model.AttributeSpec{
					"href":  {Required: true, Validate: "string"},
					"title": {Default: nil, Validate: "string|null"},
				},
			},
			{Name: Code},
		},
	}
}

//nolint:gochecknoglobals // Compiled once on first use.
var compiled = sync.OnceValues(func() (*model.Schema, error) {
	return model.NewSchema(Spec())
})

// Schema returns the compiled basic schema. The schema is immutable and
// shared by every caller.
func Schema() *model.Schema {
	schema, err := compiled()
	if err != nil {
		panic("basic schema: " + err.Error())
	}
	return schema
}
