package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/docmodel/internal/ui/pretty"
	"github.com/yaklabco/docmodel/pkg/runner"
)

// TextReporter writes one line per document: valid ones to Writer, failures
// to ErrorWriter.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
	ew     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
		ew:     bufio.NewWriterSize(opts.ErrorWriter, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.ew.Flush(); err == nil {
			err = flushErr
		}
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	for _, file := range result.Files {
		if file.Err != nil {
			fmt.Fprintln(r.ew, r.styles.FormatError(file.Err))
			continue
		}
		if file.Node == nil {
			continue
		}
		fmt.Fprintln(r.bw, r.styles.FormatSuccess(fmt.Sprintf("%s: valid %s document of size %d",
			displayPath(file.Path, r.opts.WorkingDir), file.Node.Type.Name, file.Node.Content.Size())))
	}

	if r.opts.ShowSummary && len(result.Files) > 1 {
		fmt.Fprint(r.bw, r.styles.FormatCheckSummary(result.Stats.FilesValid, result.Stats.FilesFailed))
	}

	return result.Stats.FilesFailed, nil
}
