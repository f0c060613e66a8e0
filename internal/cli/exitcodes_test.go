package cli_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/docmodel/internal/cli"
	"github.com/yaklabco/docmodel/internal/configloader"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/fsutil"
	"github.com/yaklabco/docmodel/pkg/model"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: cli.ExitSuccess},
		{name: "explicit", err: &cli.ExitError{Code: 42}, want: 42},
		{name: "wrapped explicit", err: fmt.Errorf("run: %w", &cli.ExitError{Code: cli.ExitIOError}), want: cli.ExitIOError},
		{
			name: "replace error",
			err:  fmt.Errorf("edit: %w", &model.ReplaceError{Reason: model.ReasonInvalidContent, Err: model.ErrInvalidContent}),
			want: cli.ExitEditRejected,
		},
		{name: "invalid content", err: fmt.Errorf("doc.json: %w", model.ErrInvalidContent), want: cli.ExitInvalidContent},
		{name: "invalid json", err: model.ErrInvalidJSON, want: cli.ExitInvalidContent},
		{name: "invalid attrs", err: model.ErrInvalidAttrs, want: cli.ExitInvalidContent},
		{name: "out of range", err: fmt.Errorf("resolve 9: %w", model.ErrOutOfRange), want: cli.ExitInvalidUsage},
		{name: "config validation", err: errors.Join(errors.New("load"), &configloader.ValidationError{Field: "color"}), want: cli.ExitConfigError},
		{name: "schema", err: fmt.Errorf("compile schema: %w", model.ErrSchema), want: cli.ExitConfigError},
		{name: "schema syntax", err: &model.SyntaxError{Message: "Unexpected token"}, want: cli.ExitConfigError},
		{name: "schema definition", err: config.ErrInvalidSchemaDef, want: cli.ExitConfigError},
		{name: "not found", err: fmt.Errorf("%w: x.json", fsutil.ErrNotFound), want: cli.ExitIOError},
		{name: "modified", err: fsutil.ErrModified, want: cli.ExitIOError},
		{name: "other", err: context.Canceled, want: cli.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}

func TestIsReported(t *testing.T) {
	t.Parallel()

	assert.False(t, cli.IsReported(nil))
	assert.False(t, cli.IsReported(errors.New("plain")))
	assert.False(t, cli.IsReported(&cli.ExitError{Code: 1}))
	assert.True(t, cli.IsReported(fmt.Errorf("wrap: %w", &cli.ExitError{Code: 1, Reported: true})))
	assert.Equal(t, "exit status 3", (&cli.ExitError{Code: 3}).Error())
}
