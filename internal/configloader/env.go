package configloader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yaklabco/docmodel/pkg/config"
)

// envVarPrefix is the prefix for all docmodel environment variables.
const envVarPrefix = "DOCMODEL_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"SCHEMA":                   {field: "schema", typ: envTypeString, description: "Path to a YAML schema definition"},
	"RESOLVE_CACHE_SIZE":       {field: "resolve_cache_size", typ: envTypeInt, description: "Resolved position cache capacity (0 = default)"},
	"LOG_LEVEL":                {field: "log_level", typ: envTypeString, description: "Log level: debug, info, warn, or error"},
	"COLOR":                    {field: "color", typ: envTypeString, description: "Color output: auto, always, or never"},
	"OUTPUT_FORMAT":            {field: "output.format", typ: envTypeString, description: "Document output: json or tree"},
	"OUTPUT_INDENT":            {field: "output.indent", typ: envTypeInt, description: "JSON indent width (0 = compact)"},
	"MARKDOWN_FLAVOR":          {field: "markdown.flavor", typ: envTypeString, description: "Markdown import flavor: commonmark or gfm"},
	"MARKDOWN_DETECT_LANGUAGE": {field: "markdown.detect_language", typ: envTypeBool, description: "Guess code block languages: true or false"},
	"CHECK_JOBS":               {field: "check.jobs", typ: envTypeInt, description: "Files checked concurrently (0 = all CPUs)"},
	"CHECK_FOLLOW_SYMLINKS":    {field: "check.follow_symlinks", typ: envTypeBool, description: "Traverse symlinked directories: true or false"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with DOCMODEL_ (e.g., DOCMODEL_SCHEMA).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value, ok := os.LookupEnv(envVar)
		if !ok || value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "schema":
		cfg.Schema = value
	case "log_level":
		cfg.LogLevel = value
	case "color":
		cfg.Color = config.ColorMode(value)
	case "output.format":
		cfg.Output.Format = config.OutputFormat(value)
	case "markdown.flavor":
		cfg.Markdown.Flavor = config.Flavor(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "markdown.detect_language":
		cfg.Markdown.DetectLanguage = &value
	case "check.follow_symlinks":
		cfg.Check.FollowSymlinks = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "resolve_cache_size":
		cfg.ResolveCacheSize = value
	case "output.indent":
		cfg.Output.Indent = value
	case "check.jobs":
		cfg.Check.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.description
	}
	return vars
}
