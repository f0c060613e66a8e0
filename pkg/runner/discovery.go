package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/lo"
)

// ErrInvalidPattern is returned for an exclude pattern that does not compile.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

// discoverer holds the compiled state of one Discover call.
type discoverer struct {
	workDir    string
	extensions []string
	excludes   []glob.Glob
	follow     bool
}

// Discover lists the document files selected by opts as a sorted,
// deduplicated list of absolute paths. A path that does not exist is kept so
// that reading it reports the error against that file.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	excludes := make([]glob.Glob, 0, len(opts.ExcludeGlobs))
	for _, pattern := range opts.ExcludeGlobs {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
		}
		excludes = append(excludes, g)
	}

	d := &discoverer{
		workDir: workDir,
		extensions: lo.Map(opts.effectiveExtensions(), func(ext string, _ int) string {
			return strings.ToLower(ext)
		}),
		excludes: excludes,
		follow:   opts.FollowSymlinks,
	}

	var files []string
	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		switch {
		case err != nil:
			files = append(files, absPath)
		case info.IsDir():
			found, err := d.walk(ctx, absPath)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		case !d.excluded(absPath):
			files = append(files, absPath)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(workDir)
}

// walk returns the matching files below root. Hidden entries are skipped.
func (d *discoverer) walk(ctx context.Context, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || (path != root && d.excluded(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil //nolint:nilerr // Broken symlinks are skipped.
			}
			if info.IsDir() {
				if !d.follow {
					return nil
				}
				target, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil //nolint:nilerr // Unresolvable symlinks are skipped.
				}
				sub, err := d.walk(ctx, target)
				if err != nil {
					return err
				}
				files = append(files, sub...)
				return nil
			}
		}

		if d.matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

func (d *discoverer) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(d.extensions, ext) && !d.excluded(path)
}

// excluded matches path, relative to the working directory, and its base name
// against the exclude patterns.
func (d *discoverer) excluded(path string) bool {
	rel, err := filepath.Rel(d.workDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)

	return lo.SomeBy(d.excludes, func(g glob.Glob) bool {
		return g.Match(rel) || g.Match(base)
	})
}
