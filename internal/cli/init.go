package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/docmodel/internal/configloader"
	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/pkg/config"
)

// Default file names written by init.
const (
	defaultConfigFile = ".docmodel.yml"
	defaultSchemaFile = "schema.yml"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force      bool
	full       bool
	withSchema bool
	output     string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new docmodel configuration file",
		Long: `Create a new .docmodel.yml configuration file in the current directory.

With --with-schema, also write schema.yml: the built-in basic schema as an
editable definition, referenced from the new configuration.

Examples:
  docmodel init                      Create minimal .docmodel.yml
  docmodel init --full               Write every setting with its default
  docmodel init --with-schema        Also write schema.yml to customize
  docmodel init --output custom.yml  Write to a custom file path`,
		GroupID: groupSetup,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Write every setting with its default value")
	cmd.Flags().BoolVar(&flags.withSchema, "with-schema", false, "Also write an editable schema definition")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .docmodel.yml)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := initLogger(cmd)

	outputPath := flags.output
	if outputPath == "" {
		outputPath = defaultConfigFile
	}
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	opts := config.TemplateOptions{Full: flags.full}

	if flags.withSchema {
		schemaPath := filepath.Join(filepath.Dir(absPath), defaultSchemaFile)
		content, err := config.SchemaTemplate()
		if err != nil {
			return fmt.Errorf("generate schema template: %w", err)
		}
		if err := configloader.WriteConfig(ctx, schemaPath, content, flags.force); err != nil {
			return err
		}
		logger.Info("created schema definition", logging.FieldPath, schemaPath)

		// The config refers to the schema relative to its own directory.
		opts.SchemaPath = defaultSchemaFile
	}

	content, err := config.GenerateTemplate(opts)
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}
	if err := configloader.WriteConfig(ctx, absPath, content, flags.force); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if flags.withSchema {
		logger.Info("edit schema.yml to change node and mark types")
		logger.Info("run 'docmodel schema --automaton' to inspect the compiled content expressions")
	}

	return nil
}

// initLogger talks to a person when stderr is a terminal and falls back to
// the plain logger otherwise.
func initLogger(cmd *cobra.Command) *log.Logger {
	if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return logging.NewInteractive()
	}
	return logging.NewWriter(cmd.ErrOrStderr(), "info")
}
