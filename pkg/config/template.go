package config

import (
	"bytes"
	"fmt"

	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value instead of a commented
	// minimal file.
	Full bool

	// SchemaPath, when set, is written as the schema setting.
	SchemaPath string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate(opts)
	}
	return generateMinimalTemplate(opts), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n\n")

	buf.WriteString("# Schema definition file; leave empty for the built-in basic schema\n")
	if opts.SchemaPath != "" {
		fmt.Fprintf(&buf, "schema: %s\n", opts.SchemaPath)
	} else {
		buf.WriteString("# schema: schema.yml\n")
	}

	buf.WriteString(`
# Resolved positions cached per document session
# resolve_cache_size: 12

# Output settings: format is json or tree
# output:
#   format: json
#   indent: 2

# Markdown import settings
# markdown:
#   flavor: commonmark
#   detect_language: true

# Directory checks: file extensions, excluded globs and parallelism
# check:
#   extensions: [".json"]
#   exclude: ["fixtures/**"]
#   jobs: 0
`)

	return buf.Bytes()
}

// generateFullTemplate writes the defaults explicitly.
func generateFullTemplate(opts TemplateOptions) ([]byte, error) {
	cfg := NewConfig()
	cfg.Schema = opts.SchemaPath

	return cfg.ToYAMLWithHeader(DefaultTemplateHeader())
}

// SchemaTemplate returns the basic schema as an editable YAML definition.
func SchemaTemplate() ([]byte, error) {
	body, err := SchemaDefFromSchema(basic.Schema()).ToYAML()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`# docmodel schema definition
#
# nodes are listed in order; the first member of a group is the one
# inserted when content has to be filled in.
# content uses the content expression grammar: names, groups, "|", "?",
# "*", "+", "{n}", "{n,}", "{n,m}" and parentheses.

`)
	buf.Write(body)
	return buf.Bytes(), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# docmodel configuration
# See: https://github.com/yaklabco/docmodel`
}
