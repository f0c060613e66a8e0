package configloader

import (
	"slices"

	"github.com/yaklabco/docmodel/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer values: override overwrites base if override is non-nil
//   - Booleans: true in override wins
//   - Exclude patterns accumulate across layers
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Schema != "" {
		result.Schema = override.Schema
	}
	if override.ResolveCacheSize != 0 {
		result.ResolveCacheSize = override.ResolveCacheSize
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Color != "" {
		result.Color = override.Color
	}

	if override.Output.Format != "" {
		result.Output.Format = override.Output.Format
	}
	if override.Output.Indent != 0 {
		result.Output.Indent = override.Output.Indent
	}

	if override.Markdown.Flavor != "" {
		result.Markdown.Flavor = override.Markdown.Flavor
	}
	if override.Markdown.DetectLanguage != nil {
		detect := *override.Markdown.DetectLanguage
		result.Markdown.DetectLanguage = &detect
	}

	if len(override.Check.Extensions) > 0 {
		result.Check.Extensions = slices.Clone(override.Check.Extensions)
	}
	if len(override.Check.Exclude) > 0 {
		result.Check.Exclude = append(result.Check.Exclude, override.Check.Exclude...)
	}
	if override.Check.Jobs != 0 {
		result.Check.Jobs = override.Check.Jobs
	}
	if override.Check.FollowSymlinks {
		result.Check.FollowSymlinks = true
	}

	if override.DocPath != "" {
		result.DocPath = override.DocPath
	}
	if override.Write {
		result.Write = true
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
