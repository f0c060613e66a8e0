package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Attrs holds the attribute values of a node or mark.
// Attrs attached to a node or mark are shared and must not be modified.
type Attrs map[string]any

// AttributeSpec declares one attribute of a node or mark type.
type AttributeSpec struct {
	// Default is the value used when none is supplied. Ignored when Required is set.
	Default any `yaml:"default"`

	// Required means the attribute has no default and must always be given.
	Required bool `yaml:"required"`

	// Validate is an optional "|"-separated list of value types the attribute
	// accepts: string, number, boolean, null, object, array.
	Validate string `yaml:"validate"`
}

// attribute is the compiled form of an AttributeSpec.
type attribute struct {
	name       string
	hasDefault bool
	def        any
	validTypes []string
}

func (a *attribute) isRequired() bool {
	return !a.hasDefault
}

func (a *attribute) validate(typeName string, value any) error {
	if len(a.validTypes) == 0 {
		return nil
	}
	kind := valueKind(value)
	for _, t := range a.validTypes {
		if t == kind {
			return nil
		}
	}
	return fmt.Errorf("%w: expected value of type %s for attribute %s on type %s, got %s",
		ErrInvalidAttrs, strings.Join(a.validTypes, "|"), a.name, typeName, kind)
}

// attrTable is the ordered set of attributes declared by a type.
type attrTable struct {
	names []string
	byKey map[string]*attribute
}

func initAttrs(specs map[string]*AttributeSpec) attrTable {
	table := attrTable{byKey: make(map[string]*attribute, len(specs))}
	for name := range specs {
		table.names = append(table.names, name)
	}
	sort.Strings(table.names)

	for _, name := range table.names {
		spec := specs[name]
		if spec == nil {
			spec = &AttributeSpec{}
		}
		attr := &attribute{
			name:       name,
			hasDefault: !spec.Required,
			def:        spec.Default,
		}
		if spec.Validate != "" {
			for _, t := range strings.Split(spec.Validate, "|") {
				attr.validTypes = append(attr.validTypes, strings.TrimSpace(t))
			}
		}
		table.byKey[name] = attr
	}
	return table
}

func (t attrTable) len() int {
	return len(t.names)
}

// defaults returns the default attrs, or nil when any attribute is required.
func (t attrTable) defaults() Attrs {
	out := make(Attrs, len(t.names))
	for _, name := range t.names {
		attr := t.byKey[name]
		if !attr.hasDefault {
			return nil
		}
		out[name] = attr.def
	}
	return out
}

func (t attrTable) hasRequired() bool {
	for _, name := range t.names {
		if t.byKey[name].isRequired() {
			return true
		}
	}
	return false
}

// compute fills in defaults for the attributes not present in value.
func (t attrTable) compute(typeName string, value Attrs) (Attrs, error) {
	built := make(Attrs, len(t.names))
	for _, name := range t.names {
		given, ok := value[name]
		if !ok {
			attr := t.byKey[name]
			if !attr.hasDefault {
				return nil, fmt.Errorf("%w: no value supplied for attribute %s of %s", ErrInvalidAttrs, name, typeName)
			}
			given = attr.def
		}
		built[name] = given
	}
	return built, nil
}

// check rejects unknown attributes and runs the declared validators.
func (t attrTable) check(kind, typeName string, values Attrs) error {
	for name := range values {
		if _, ok := t.byKey[name]; !ok {
			return fmt.Errorf("%w: unsupported attribute %s for %s of type %s", ErrInvalidAttrs, name, kind, typeName)
		}
	}
	for _, name := range t.names {
		if err := t.byKey[name].validate(typeName, values[name]); err != nil {
			return err
		}
	}
	return nil
}

func valueKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case map[string]any, Attrs:
		return "object"
	case []any:
		return "array"
	default:
		return reflect.TypeOf(value).Kind().String()
	}
}

// compareDeep reports whether two attribute values are structurally equal.
// Numbers compare by value regardless of their Go type, so a default of int 1
// equals a float64 1 decoded from JSON.
func compareDeep(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}

	switch va := a.(type) {
	case Attrs:
		return compareMaps(va, b)
	case map[string]any:
		return compareMaps(va, b)
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !compareDeep(va[i], vb[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func compareMaps(a map[string]any, b any) bool {
	var mb map[string]any
	switch vb := b.(type) {
	case Attrs:
		mb = vb
	case map[string]any:
		mb = vb
	default:
		return false
	}
	if len(a) != len(mb) {
		return false
	}
	for key, val := range a {
		other, ok := mb[key]
		if !ok || !compareDeep(val, other) {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// attrsEqual compares two attribute maps, treating nil and empty as equal.
func attrsEqual(a, b Attrs) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return compareMaps(a, b)
}
