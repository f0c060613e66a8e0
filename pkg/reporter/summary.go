package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/docmodel/internal/ui/pretty"
	"github.com/yaklabco/docmodel/pkg/runner"
)

// SummaryReporter prints only failures and the closing counts.
type SummaryReporter struct {
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	return &SummaryReporter{
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		result = &runner.Result{}
	}

	for _, file := range result.Files {
		if file.Err != nil {
			fmt.Fprintln(r.bw, r.styles.FormatError(file.Err))
		}
	}
	fmt.Fprint(r.bw, r.styles.FormatCheckSummary(result.Stats.FilesValid, result.Stats.FilesFailed))

	return result.Stats.FilesFailed, nil
}
