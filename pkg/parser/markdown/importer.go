// Package markdown imports Markdown into documents of the basic schema, or of
// any schema that defines the same node and mark type names.
package markdown

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/pkg/langdetect"
	"github.com/yaklabco/docmodel/pkg/model"
	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

// Markdown flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// ErrUnsupportedSchema is returned when the target schema lacks a node or
// mark type the importer produces.
var ErrUnsupportedSchema = errors.New("schema cannot hold imported markdown")

//nolint:gochecknoglobals // Type names the importer creates.
var (
	requiredNodes = []string{
		basic.Doc, basic.Paragraph, basic.Blockquote, basic.HorizontalRule, basic.Heading,
		basic.CodeBlock, basic.OrderedList, basic.BulletList, basic.ListItem,
		basic.Text, basic.Image, basic.HardBreak,
	}
	requiredMarks = []string{basic.Em, basic.Strong, basic.Link, basic.Code}
)

// Importer converts Markdown source into a model.Node.
type Importer struct {
	schema   *model.Schema
	flavor   string
	md       goldmark.Markdown
	detector *langdetect.Detector
	detect   bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithFlavor selects commonmark or gfm. Unknown flavors fall back to commonmark.
func WithFlavor(flavor string) Option {
	return func(im *Importer) {
		im.flavor = flavorOrDefault(flavor)
	}
}

// WithLanguageDetection guesses code block languages when a fence has no info string.
func WithLanguageDetection(enabled bool) Option {
	return func(im *Importer) {
		im.detect = enabled
	}
}

// WithDetector replaces the language detector.
func WithDetector(d *langdetect.Detector) Option {
	return func(im *Importer) {
		im.detector = d
	}
}

// New creates an Importer targeting schema.
func New(schema *model.Schema, opts ...Option) (*Importer, error) {
	for _, name := range requiredNodes {
		if _, err := schema.NodeType(name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedSchema, err)
		}
	}
	for _, name := range requiredMarks {
		if _, err := schema.MarkType(name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedSchema, err)
		}
	}

	im := &Importer{
		schema:   schema,
		flavor:   FlavorCommonMark,
		detector: langdetect.New(),
		detect:   true,
	}
	for _, opt := range opts {
		opt(im)
	}
	im.md = newGoldmarkInstance(im.flavor)
	return im, nil
}

// Flavor returns the configured Markdown flavor.
func (im *Importer) Flavor() string {
	return im.flavor
}

// Import parses source and builds a checked document.
func (im *Importer) Import(ctx context.Context, source []byte) (*model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("import cancelled: %w", err)
	}

	root := im.md.Parser().Parse(text.NewReader(source))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("import cancelled: %w", err)
	}

	c := &converter{
		im:     im,
		source: source,
		logger: logging.FromContext(ctx),
		lossy:  make(map[string]int),
	}
	doc, err := c.document(root)
	if err != nil {
		return nil, err
	}
	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("imported document is invalid: %w", err)
	}

	for kind, count := range c.lossy {
		c.logger.Warn("markdown construct approximated", logging.FieldNodeType, kind, "count", count)
	}
	c.logger.Debug("imported markdown", logging.FieldSize, doc.Content.Size(), "flavor", im.flavor)

	return doc, nil
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	if flavor == FlavorGFM {
		return goldmark.New(goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New()
}
