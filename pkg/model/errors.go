package model

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by model operations.
var (
	// ErrOutOfRange is returned when a position or index lies outside a node or fragment.
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidContent is returned when a node's content does not satisfy its type.
	ErrInvalidContent = errors.New("invalid content")

	// ErrInvalidAttrs is returned when attributes are missing, unknown or of the wrong type.
	ErrInvalidAttrs = errors.New("invalid attributes")

	// ErrInvalidMarks is returned when a mark set is unsorted, conflicting or disallowed.
	ErrInvalidMarks = errors.New("invalid marks")

	// ErrUnknownType is returned when a node or mark type name is not in the schema.
	ErrUnknownType = errors.New("unknown type")

	// ErrInvalidJSON is returned when a JSON document does not have the expected shape.
	ErrInvalidJSON = errors.New("invalid JSON input")

	// ErrSchema is returned when a schema specification is inconsistent.
	ErrSchema = errors.New("invalid schema")

	// ErrEmptyText is returned when a text node would be created with no characters.
	ErrEmptyText = errors.New("empty text nodes are not allowed")
)

// ReplaceReason classifies why a replace was rejected.
type ReplaceReason string

const (
	// ReasonTooDeep means the slice is open deeper than the insertion position.
	ReasonTooDeep ReplaceReason = "inserted content deeper than insertion position"

	// ReasonInconsistentDepths means the two ends are not open to matching depths.
	ReasonInconsistentDepths ReplaceReason = "inconsistent open depths"

	// ReasonIncompatibleJoin means two boundary nodes cannot be merged.
	ReasonIncompatibleJoin ReplaceReason = "cannot join"

	// ReasonInvalidContent means the assembled content is not valid for its parent.
	ReasonInvalidContent ReplaceReason = "invalid content"
)

// ReplaceError is returned by Node.Replace when the given slice does not fit the range.
// It is the one error the editing layer is expected to catch and surface to the user.
type ReplaceError struct {
	Reason ReplaceReason

	// NodeType names the node whose content was being assembled, or the node
	// being joined onto, when known.
	NodeType string

	// OtherType names the node that could not be joined onto NodeType.
	OtherType string

	// Err is an underlying validation error, if any.
	Err error
}

func (e *ReplaceError) Error() string {
	switch {
	case e.Reason == ReasonIncompatibleJoin:
		return fmt.Sprintf("cannot join %s onto %s", e.OtherType, e.NodeType)
	case e.Err != nil:
		return e.Err.Error()
	case e.NodeType != "":
		return fmt.Sprintf("%s for node %s", e.Reason, e.NodeType)
	default:
		return string(e.Reason)
	}
}

// Unwrap returns the underlying validation error.
func (e *ReplaceError) Unwrap() error {
	return e.Err
}

// SyntaxError reports a malformed content or mark expression.
type SyntaxError struct {
	// Message describes the problem, including the offending token.
	Message string

	// Expr is the full expression being parsed.
	Expr string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (in content expression '%s')", e.Message, e.Expr)
}

// Is lets callers match any SyntaxError against ErrSchema.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSchema
}
