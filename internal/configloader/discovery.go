package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"
)

// Sources lists the configuration files found for one invocation. An empty
// field means no file exists for that layer.
type Sources struct {
	// System lives under /etc/docmodel, or %ProgramData%\docmodel on Windows.
	System string

	// User lives under $XDG_CONFIG_HOME/docmodel.
	User string

	// Project is the nearest .docmodel.yml at or above the working directory.
	Project string

	// Explicit comes from --config.
	Explicit string
}

// Config file names, most preferred first.
//
//nolint:gochecknoglobals // Read-only lookup tables.
var (
	layerFileNames   = []string{"config.yaml", "config.yml"}
	projectFileNames = []string{".docmodel.yml", ".docmodel.yaml", "docmodel.yml", "docmodel.yaml"}
	repositoryDirs   = []string{".git", ".hg", ".svn"}
)

// LocateSources looks up the system, user and project configuration files
// for a run started in workDir.
func LocateSources(ctx context.Context, workDir string) (*Sources, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("locate config: %w", err)
	}

	project, err := FindProjectFile(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &Sources{
		System:  firstRegularFile(systemConfigDir(), layerFileNames),
		User:    firstRegularFile(userConfigDir(), layerFileNames),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return "/etc/docmodel"
	}
	base := os.Getenv("ProgramData")
	if base == "" {
		base = `C:\ProgramData`
	}
	return filepath.Join(base, "docmodel")
}

// userConfigDir is empty when neither XDG_CONFIG_HOME nor a home directory
// is available.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "docmodel")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "docmodel")
}

// firstRegularFile returns the first of names that exists in dir.
func firstRegularFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	path, _ := lo.Find(lo.Map(names, func(name string, _ int) string {
		return filepath.Join(dir, name)
	}), isRegularFile)
	return path
}

// FindProjectFile walks from startDir towards the filesystem root and
// returns the first project config file. The walk ends without a result at
// a repository root or at the home directory.
func FindProjectFile(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	// Without a home directory the walk only stops at a repository or the root.
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("locate project config: %w", err)
		}

		if found := firstRegularFile(dir, projectFileNames); found != "" {
			return found, nil
		}
		if isRepositoryRoot(dir) || (home != "" && dir == home) {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isRepositoryRoot(dir string) bool {
	return lo.SomeBy(repositoryDirs, func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.IsDir()
	})
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
