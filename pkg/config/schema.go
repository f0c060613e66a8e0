package config

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/docmodel/pkg/model"
)

// ErrInvalidSchemaDef is returned when a schema definition file fails validation.
var ErrInvalidSchemaDef = errors.New("invalid schema definition")

// AttrDef declares one attribute in a schema definition file.
type AttrDef struct {
	Name     string `yaml:"name" validate:"required"`
	Default  any    `yaml:"default"`
	Required bool   `yaml:"required,omitempty"`
	Validate string `yaml:"validate,omitempty" validate:"omitempty,attrtypes"`
}

// NodeDef is the file form of a model.NodeSpec.
type NodeDef struct {
	Name       string    `yaml:"name" validate:"required,typename"`
	Content    string    `yaml:"content,omitempty"`
	Marks      *string   `yaml:"marks,omitempty"`
	Group      string    `yaml:"group,omitempty"`
	Inline     bool      `yaml:"inline,omitempty"`
	Atom       bool      `yaml:"atom,omitempty"`
	Code       bool      `yaml:"code,omitempty"`
	Whitespace string    `yaml:"whitespace,omitempty" validate:"omitempty,oneof=normal pre"`
	Defining   bool      `yaml:"defining,omitempty"`
	Isolating  bool      `yaml:"isolating,omitempty"`
	LeafText   *string   `yaml:"leaf_text,omitempty"`
	Attrs      []AttrDef `yaml:"attrs,omitempty" validate:"unique=Name,dive"`
}

// MarkDef is the file form of a model.MarkSpec.
type MarkDef struct {
	Name      string    `yaml:"name" validate:"required,typename"`
	Attrs     []AttrDef `yaml:"attrs,omitempty" validate:"unique=Name,dive"`
	Inclusive *bool     `yaml:"inclusive,omitempty"`
	Excludes  *string   `yaml:"excludes,omitempty"`
	Group     string    `yaml:"group,omitempty"`
	Spanning  *bool     `yaml:"spanning,omitempty"`
}

// SchemaDef is a schema definition as written in YAML. Node order matters:
// the first node of a group is the default when the group must be filled.
type SchemaDef struct {
	TopNode string    `yaml:"top_node,omitempty"`
	Nodes   []NodeDef `yaml:"nodes" validate:"required,min=1,unique=Name,dive"`
	Marks   []MarkDef `yaml:"marks,omitempty" validate:"unique=Name,dive"`
}

// ParseSchemaDef decodes and validates a YAML schema definition.
func ParseSchemaDef(data []byte) (*SchemaDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	def := &SchemaDef{}
	if err := dec.Decode(def); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %w", ErrInvalidSchemaDef, err)
	}

	if errs := Check(def); len(errs) > 0 {
		msgs := lo.Map(errs, func(fe FieldError, _ int) string {
			return fe.Field + ": " + fe.Message()
		})
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchemaDef, strings.Join(msgs, "; "))
	}
	return def, nil
}

// ToSpec converts the definition to a model.SchemaSpec.
func (d *SchemaDef) ToSpec() *model.SchemaSpec {
	return &model.SchemaSpec{
		TopNode: d.TopNode,
		Nodes: lo.Map(d.Nodes, func(n NodeDef, _ int) *model.NodeSpec {
			spec := &model.NodeSpec{
				Name:       n.Name,
				Content:    n.Content,
				Marks:      n.Marks,
				Group:      n.Group,
				Inline:     n.Inline,
				Atom:       n.Atom,
				Attrs:      attrSpecs(n.Attrs),
				Code:       n.Code,
				Whitespace: n.Whitespace,
				Defining:   n.Defining,
				Isolating:  n.Isolating,
			}
			if n.LeafText != nil {
				text := *n.LeafText
				spec.LeafText = func(*model.Node) string { return text }
			}
			return spec
		}),
		Marks: lo.Map(d.Marks, func(m MarkDef, _ int) *model.MarkSpec {
			return &model.MarkSpec{
				Name:      m.Name,
				Attrs:     attrSpecs(m.Attrs),
				Inclusive: m.Inclusive,
				Excludes:  m.Excludes,
				Group:     m.Group,
				Spanning:  m.Spanning,
			}
		}),
	}
}

// Compile converts the definition and compiles it into a schema.
func (d *SchemaDef) Compile() (*model.Schema, error) {
	schema, err := model.NewSchema(d.ToSpec())
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func attrSpecs(defs []AttrDef) map[string]*model.AttributeSpec {
	if len(defs) == 0 {
		return nil
	}
	return lo.SliceToMap(defs, func(a AttrDef) (string, *model.AttributeSpec) {
		return a.Name, &model.AttributeSpec{Default: a.Default, Required: a.Required, Validate: a.Validate}
	})
}

// SchemaDefFromSchema describes a compiled schema as a definition, so it can
// be written out and edited. Leaf text is captured by rendering a default
// node of each leaf type that declares it.
func SchemaDefFromSchema(schema *model.Schema) *SchemaDef {
	spec := schema.Spec
	def := &SchemaDef{TopNode: spec.TopNode}

	for _, ns := range spec.Nodes {
		nd := NodeDef{
			Name:       ns.Name,
			Content:    ns.Content,
			Marks:      ns.Marks,
			Group:      ns.Group,
			Inline:     ns.Inline,
			Atom:       ns.Atom,
			Code:       ns.Code,
			Whitespace: ns.Whitespace,
			Defining:   ns.Defining,
			Isolating:  ns.Isolating,
			Attrs:      attrDefs(ns.Attrs),
		}
		if ns.LeafText != nil {
			if nt, err := schema.NodeType(ns.Name); err == nil {
				if node, err := nt.Create(nil, nil, nil); err == nil {
					text := ns.LeafText(node)
					nd.LeafText = &text
				}
			}
		}
		def.Nodes = append(def.Nodes, nd)
	}

	def.Marks = lo.Map(spec.Marks, func(ms *model.MarkSpec, _ int) MarkDef {
		return MarkDef{
			Name:      ms.Name,
			Attrs:     attrDefs(ms.Attrs),
			Inclusive: ms.Inclusive,
			Excludes:  ms.Excludes,
			Group:     ms.Group,
			Spanning:  ms.Spanning,
		}
	})
	return def
}

func attrDefs(specs map[string]*model.AttributeSpec) []AttrDef {
	names := lo.Keys(specs)
	slices.Sort(names)
	return lo.Map(names, func(name string, _ int) AttrDef {
		spec := specs[name]
		if spec == nil {
			return AttrDef{Name: name}
		}
		return AttrDef{Name: name, Default: spec.Default, Required: spec.Required, Validate: spec.Validate}
	})
}

// ToYAML serializes the definition.
func (d *SchemaDef) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent())

	if err := encoder.Encode(d); err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}
