package cli

import (
	"errors"
	"fmt"

	"github.com/yaklabco/docmodel/internal/configloader"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/fsutil"
	"github.com/yaklabco/docmodel/pkg/model"
)

// Exit codes for docmodel.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a generic failure, or that diff found a difference.
	ExitFailure = 1

	// ExitEditRejected indicates that a replace did not fit the document.
	ExitEditRejected = 3

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitInvalidContent indicates a document that does not conform to its schema
	// or is not valid document JSON.
	ExitInvalidContent = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74

	// ExitConfigError indicates configuration or schema definition errors.
	ExitConfigError = 78
)

// ExitError carries an explicit exit code out of a command.
type ExitError struct {
	Code int
	Err  error

	// Reported means the command already printed the error.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var replaceErr *model.ReplaceError
	var validationErr *configloader.ValidationError
	var syntaxErr *model.SyntaxError
	switch {
	case errors.As(err, &replaceErr):
		return ExitEditRejected
	case errors.As(err, &validationErr), errors.As(err, &syntaxErr),
		errors.Is(err, model.ErrSchema), errors.Is(err, config.ErrInvalidSchemaDef):
		return ExitConfigError
	case isContentError(err):
		return ExitInvalidContent
	case errors.Is(err, fsutil.ErrNotFound), errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory), errors.Is(err, fsutil.ErrModified):
		return ExitIOError
	case errors.Is(err, errUsage), errors.Is(err, model.ErrOutOfRange):
		return ExitInvalidUsage
	default:
		return ExitFailure
	}
}

// IsReported reports whether the error was already printed by the command.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

func isContentError(err error) bool {
	for _, target := range []error{
		model.ErrInvalidContent,
		model.ErrInvalidJSON,
		model.ErrInvalidAttrs,
		model.ErrInvalidMarks,
		model.ErrUnknownType,
		model.ErrEmptyText,
		errDocPathNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
