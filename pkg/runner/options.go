// Package runner checks many document files concurrently.
package runner

// Options controls discovery and checking of document files.
type Options struct {
	// Paths are the files or directories to process. Defaults to ".".
	Paths []string

	// WorkingDir resolves relative Paths and exclude patterns.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions selects files found while walking directories (lowercase,
	// with leading dot). Defaults to DefaultExtensions(). Files named
	// explicitly in Paths are always included.
	Extensions []string

	// ExcludeGlobs skip files or directories whose path relative to
	// WorkingDir matches. "*" stays within one path segment, "**" spans any.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs is the maximum number of concurrent workers.
	// 0 or negative means runtime.NumCPU().
	Jobs int
}

// DefaultExtensions returns the default document file extensions.
func DefaultExtensions() []string {
	return []string{".json"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
