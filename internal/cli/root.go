// Package cli provides the Cobra command structure for docmodel.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docmodel/internal/logging"
)

// Command group IDs used by the help output.
const (
	groupDocument = "document"
	groupSetup    = "setup"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root docmodel command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var color string

	rootCmd := &cobra.Command{
		Use:   "docmodel",
		Short: "Inspect and edit schema-checked structured documents",
		Long: `docmodel works with structured documents: trees of typed nodes whose
allowed content is described by a schema of content expressions.

It checks JSON documents against a schema, applies position-based replace
edits that keep the document valid, resolves positions to their path in the
tree, compares documents, prints the automata compiled from a schema and
imports Markdown.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: groupDocument, Title: "Document Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.PersistentFlags().Bool("no-config", false, "ignore system, user and project config files")
	rootCmd.PersistentFlags().String("schema", "", "path to a schema definition (default: built-in basic schema)")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newReplaceCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newDiffCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
