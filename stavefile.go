//go:build stave

package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const (
	binName  = "docmodel"
	binPath  = "bin/" + binName
	mainPkg  = "./cmd/" + binName
	coverOut = "coverage.out"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"l":   Lint.Default,
	"c":   Check,
	"i":   Install,
	"fmt": Lint.Fmt,
	"bm":  Bench.Model,
	"s":   Smoke,
}

type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

// releasePlatforms are the GOOS/GOARCH pairs CI.Cross builds.
var releasePlatforms = []string{
	"linux/amd64", "linux/arm64",
	"darwin/amd64", "darwin/arm64",
	"windows/amd64", "windows/arm64",
	"freebsd/amd64", "freebsd/arm64",
	"openbsd/amd64", "netbsd/amd64",
}

// Build compiles bin/docmodel with version info, unless it is newer than
// every source file.
func Build() error {
	stale, err := target.Dir(binPath, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !stale {
		fmt.Println(binPath, "is up to date")
		return nil
	}
	fmt.Println("Building", binName+"...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binPath, mainPkg)
}

// Smoke runs every document command of a fresh build against a sample
// document and a Markdown file.
func Smoke() error {
	st.Deps(Build)

	dir, err := os.MkdirTemp("", binName+"-smoke-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	samples := map[string]string{
		"doc.json": `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello world"}]}]}`,
		"doc.md":   "# Title\n\nSome *text*.\n\n```\npackage main\n```\n",
	}
	for name, content := range samples {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	doc, md := filepath.Join(dir, "doc.json"), filepath.Join(dir, "doc.md")

	for _, args := range [][]string{
		{"check", doc},
		{"resolve", doc, "0", "7"},
		{"replace", doc, "--from", "6", "--to", "12"},
		{"diff", doc, doc},
		{"schema", "--automaton", "doc", "paragraph"},
		{"import", md, "--format", "tree"},
	} {
		fmt.Println("$", binName, strings.Join(args, " "))
		if err := sh.RunV(binPath, append([]string{"--no-config"}, args...)...); err != nil {
			return fmt.Errorf("%s %s: %w", binName, args[0], err)
		}
	}
	fmt.Println("✓ Smoke run passed")
	return nil
}

// Check formats, lints and tests, in that order.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes the binary and coverage output.
func Clean() error {
	for _, path := range []string{"bin", coverOut, "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install runs go install with version info.
func Install() error {
	fmt.Println("Installing", binName+"...")
	return sh.RunV("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Uninstall deletes the binary go install placed.
func Uninstall() error {
	path, err := installPath()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Println(binName, "is not installed")
	case err != nil:
		return fmt.Errorf("remove %s: %w", path, err)
	default:
		fmt.Println("Removed", path)
	}
	return nil
}

// Deps downloads modules and tidies go.mod.
func Deps() error {
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "mod", "tidy")
}

// Coverage renders coverage.out as HTML and opens it.
func Coverage() error {
	st.Deps(Test.Default)
	if err := sh.RunV("go", "tool", "cover", "-html="+coverOut, "-o", "coverage.html"); err != nil {
		return err
	}
	return sh.RunV("open", "coverage.html")
}

// Default runs the race-enabled suite with coverage, printing failures only.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails")
}

// Verbose is Default with every test name printed.
func (Test) Verbose() error {
	return gotestsum("standard-verbose")
}

// Default runs golangci-lint with --fix.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without changing files.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt rewrites files with gofmt.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck fails when gofmt would change a file.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt -l: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nRun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Gate is the full pre-merge pipeline.
func (CI) Gate() error {
	st.SerialDeps(
		Lint.FmtCheck,
		Lint.Vet,
		Lint.CI,
		Build,
		Test.Default,
		CI.ModTidy,
		CI.Cross,
	)
	fmt.Println("✓ CI gate passed")
	return nil
}

// ModTidy fails when go mod tidy changes go.mod or go.sum.
func (CI) ModTidy() error {
	files := []string{"go.mod", "go.sum"}
	before, err := readAll(files)
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := readAll(files)
	if err != nil {
		return err
	}
	for i, name := range files {
		if !bytes.Equal(before[i], after[i]) {
			return fmt.Errorf("%s changed after 'go mod tidy'; commit the result", name)
		}
	}
	return nil
}

// Cross builds the binary for every release platform without cgo.
func (CI) Cross() error {
	for _, platform := range releasePlatforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		fmt.Println("  building", platform)
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", os.DevNull, mainPkg); err != nil {
			return fmt.Errorf("build %s: %w", platform, err)
		}
	}
	return nil
}

// Default runs every benchmark once.
func (Bench) Default() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Model runs the document model benchmarks BENCH_COUNT times (default 6)
// and saves the output under bench/ for benchstat.
func (Bench) Model() error {
	count := cmp.Or(os.Getenv("BENCH_COUNT"), "6")
	out, err := sh.Output("go", "test", "-run=^$", "-bench=.", "-benchmem", "-count", count, "./pkg/model/")
	if err != nil {
		return err
	}
	if err := os.MkdirAll("bench", 0o750); err != nil {
		return fmt.Errorf("create bench directory: %w", err)
	}
	path := filepath.Join("bench", "model-"+time.Now().UTC().Format("20060102-150405")+".txt")
	if err := os.WriteFile(path, []byte(out+"\n"), 0o600); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Println("Wrote", path)
	return nil
}

func gotestsum(format string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	return sh.RunV("go", "tool", "gotestsum", "-f", format, "--",
		"-v", "-race", "-p", procs, "-parallel", procs,
		"./...", "-coverprofile="+coverOut, "-covermode=atomic")
}

func readAll(paths []string) ([][]byte, error) {
	contents := make([][]byte, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		contents[i] = data
	}
	return contents, nil
}

// git returns the trimmed output of a git command, or "" when it fails.
func git(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func ldflags() string {
	vars := map[string]string{
		"version": cmp.Or(git("describe", "--tags", "--always", "--dirty"), "dev"),
		"commit":  cmp.Or(git("rev-parse", "--short", "HEAD"), "none"),
		"date":    time.Now().UTC().Format(time.RFC3339),
	}
	flags := make([]string, 0, len(vars))
	for _, name := range []string{"version", "commit", "date"} {
		flags = append(flags, "-X main."+name+"="+vars[name])
	}
	return strings.Join(flags, " ")
}

// installPath mirrors where go install writes the binary: $GOBIN, else
// $GOPATH/bin, else ~/go/bin.
func installPath() (string, error) {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return filepath.Join(gobin, binName), nil
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		gopath = filepath.Join(home, "go")
	}
	return filepath.Join(gopath, "bin", binName), nil
}
