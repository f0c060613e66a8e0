// Package config defines core configuration types for docmodel.
// These types are pure data structures; discovery and merging live in internal/configloader.
package config

import "github.com/yaklabco/docmodel/pkg/model"

// Flavor specifies the Markdown flavor used by the importer.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// OutputFormat specifies how documents are printed.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatTree OutputFormat = "tree"
)

// ColorMode controls styled terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// OutputConfig controls how documents and results are printed.
type OutputConfig struct {
	// Format is "json" or "tree".
	Format OutputFormat `yaml:"format" validate:"omitempty,oneof=json tree"`

	// Indent is the JSON indent width. 0 prints compact JSON.
	Indent int `yaml:"indent" validate:"gte=0,lte=8"`
}

// MarkdownConfig controls the Markdown importer.
type MarkdownConfig struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor" validate:"omitempty,oneof=commonmark gfm"`

	// DetectLanguage fills in a code block's params when the fence has no info string.
	DetectLanguage *bool `yaml:"detect_language"`
}

// CheckConfig controls which files "check" selects when given directories.
type CheckConfig struct {
	// Extensions selects files while walking directories. Empty means ".json".
	Extensions []string `yaml:"extensions" validate:"dive,startswith=."`

	// Exclude lists glob patterns for files and directories to skip.
	Exclude []string `yaml:"exclude"`

	// Jobs is the number of files checked concurrently. 0 uses every CPU.
	Jobs int `yaml:"jobs" validate:"gte=0"`

	// FollowSymlinks traverses symlinked directories.
	FollowSymlinks bool `yaml:"follow_symlinks"`
}

// Config is the root configuration structure for docmodel.
type Config struct {
	// Schema is the path to a YAML schema definition. Empty selects the basic schema.
	Schema string `yaml:"schema"`

	// ResolveCacheSize is the number of resolved positions kept per session.
	ResolveCacheSize int `yaml:"resolve_cache_size" validate:"gte=0,lte=4096"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Color is one of auto, always, never.
	Color ColorMode `yaml:"color" validate:"omitempty,oneof=auto always never"`

	Output   OutputConfig   `yaml:"output"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Check    CheckConfig    `yaml:"check"`

	// CLI-level options (not persisted to config files).

	// DocPath is a gjson path locating the document inside a JSON envelope.
	DocPath string `yaml:"-"`

	// Write replaces the input file instead of printing the result.
	Write bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	detect := true
	return &Config{
		ResolveCacheSize: model.DefaultResolveCacheSize,
		LogLevel:         "info",
		Color:            ColorAuto,
		Output: OutputConfig{
			Format: FormatJSON,
			Indent: 2,
		},
		Markdown: MarkdownConfig{
			Flavor:         FlavorCommonMark,
			DetectLanguage: &detect,
		},
		Check: CheckConfig{
			Extensions: []string{".json"},
		},
	}
}

// ShouldDetectLanguage reports whether code block languages are guessed on import.
func (c *Config) ShouldDetectLanguage() bool {
	return c.Markdown.DetectLanguage == nil || *c.Markdown.DetectLanguage
}
