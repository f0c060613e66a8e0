package pretty

import (
	"errors"
	"strings"

	"github.com/yaklabco/docmodel/pkg/model"
)

// FormatError renders an error for the terminal. Rejected edits get their
// reason and the node types involved on separate lines.
func (s *Styles) FormatError(err error) string {
	var sb strings.Builder
	sb.WriteString(s.Error.Render("error"))
	sb.WriteString(": ")

	var replaceErr *model.ReplaceError
	if !errors.As(err, &replaceErr) {
		sb.WriteString(err.Error())
		return sb.String()
	}

	sb.WriteString("edit rejected: ")
	sb.WriteString(replaceErr.Error())
	sb.WriteString(s.detail("reason", string(replaceErr.Reason)))
	if replaceErr.NodeType != "" {
		sb.WriteString(s.detail("node", replaceErr.NodeType))
	}
	if replaceErr.OtherType != "" {
		sb.WriteString(s.detail("other", replaceErr.OtherType))
	}
	return sb.String()
}

// FormatWarning renders a non-fatal message.
func (s *Styles) FormatWarning(msg string) string {
	return s.Warning.Render("warning") + ": " + msg
}

// FormatSuccess renders a success message.
func (s *Styles) FormatSuccess(msg string) string {
	return s.Success.Render("ok") + ": " + msg
}

func (s *Styles) detail(key, value string) string {
	return "\n  " + s.Dim.Render(key+":") + " " + value
}
