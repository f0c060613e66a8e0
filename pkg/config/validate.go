package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	// Field is the YAML path of the field, e.g. "output.indent" or "nodes[2].name".
	Field string

	// Value is the rejected value.
	Value any

	// Rule is the validation tag that failed, e.g. "oneof".
	Rule string

	// Param is the tag parameter, e.g. "json tree".
	Param string
}

// Message renders the failure for people.
func (e FieldError) Message() string {
	switch e.Rule {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("invalid value %v; must be one of: %s", e.Value, strings.ReplaceAll(e.Param, " ", ", "))
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param)
	case "lte":
		return fmt.Sprintf("must be <= %s", e.Param)
	case "min":
		return fmt.Sprintf("needs at least %s entries", e.Param)
	case "unique":
		return fmt.Sprintf("entries must have unique %s values", strings.ToLower(e.Param))
	case "startswith":
		return fmt.Sprintf("%q must start with %q", e.Value, e.Param)
	case "typename":
		return fmt.Sprintf("invalid type name %q; use letters, digits and underscores", e.Value)
	case "attrtypes":
		return fmt.Sprintf("invalid attribute type list %q; use string, number, boolean, null, object, array", e.Value)
	default:
		return fmt.Sprintf("failed %s validation", e.Rule)
	}
}

//nolint:gochecknoglobals // Valid name pattern for node and mark types.
var typeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

//nolint:gochecknoglobals // Attribute value kinds understood by the model.
var attrTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "null": true, "object": true, "array": true,
}

//nolint:gochecknoglobals // Built once; validator caches struct metadata.
var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "typename", func(fl validator.FieldLevel) bool {
		return typeNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "attrtypes", func(fl validator.FieldLevel) bool {
		for _, t := range strings.Split(fl.Field().String(), "|") {
			if !attrTypes[strings.TrimSpace(t)] {
				return false
			}
		}
		return true
	})
	return v
})

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Check validates a Config or SchemaDef against its struct tags and returns
// every failure. A nil result means the value is valid.
func Check(value any) []FieldError {
	err := structValidator().Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []FieldError{{Rule: "struct", Value: err.Error()}}
	}

	out := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field: fieldPath(fe.Namespace()),
			Value: fe.Value(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}
