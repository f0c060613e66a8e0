package reporter

import (
	"io"
	"os"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer receives results (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter receives per-file failures in text format (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output: "auto", "always" or "never".
	Color string

	// ShowSummary prints a closing line with counts when more than one
	// document was checked.
	ShowSummary bool

	// Compact writes JSON on a single line.
	Compact bool

	// WorkingDir makes reported paths relative to it. Empty keeps them as-is.
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Format:      FormatText,
		Color:       "auto",
		ShowSummary: true,
	}
}
