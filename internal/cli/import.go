package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/fsutil"
	"github.com/yaklabco/docmodel/pkg/parser/markdown"
)

type importFlags struct {
	flavor   string
	noDetect bool
	output   string
}

func newImportCommand() *cobra.Command {
	var cfg config.Config
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import FILE.md",
		Short: "Convert Markdown to a JSON document",
		Long: `Parse a Markdown file and print it as a document of the active schema.
The schema must provide the node and mark types of the basic schema.

Code blocks without an info string get a language guessed from their content
unless --no-detect is given. Constructs the schema has no node for, such as
HTML blocks and tables, are approximated and reported as warnings.

Examples:
  docmodel import README.md
  docmodel import --flavor gfm -o doc.json README.md
  docmodel import --color always README.md | less -R`,
		GroupID: groupDocument,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.flavor, "flavor", "commonmark", "Markdown flavor: commonmark, gfm")
	cmd.Flags().BoolVar(&flags.noDetect, "no-detect", false, "do not guess code block languages")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().StringVar((*string)(&cfg.Output.Format), "format", "", "output format: json, tree")

	return cmd
}

func runImport(cmd *cobra.Command, path string, cfg *config.Config, flags *importFlags) error {
	if cmd.Flags().Changed("flavor") {
		cfg.Markdown.Flavor = config.Flavor(flags.flavor)
	}
	if flags.noDetect {
		detect := false
		cfg.Markdown.DetectLanguage = &detect
	}

	sess, err := loadSession(cmd, cfg)
	if err != nil {
		return err
	}

	source, _, err := sess.readInput(path)
	if err != nil {
		return err
	}

	importer, err := markdown.New(sess.schema,
		markdown.WithFlavor(string(sess.cfg.Markdown.Flavor)),
		markdown.WithLanguageDetection(sess.cfg.ShouldDetectLanguage()),
	)
	if err != nil {
		return err
	}

	node, err := importer.Import(logging.WithFields(sess.ctx, logging.FieldInput, path), source)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	if flags.output == "" {
		return sess.printDocument(node)
	}

	data, err := sess.marshal(node)
	if err != nil {
		return err
	}
	outPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := fsutil.WriteAtomic(sess.ctx, outPath, data, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}

	sess.logger.Info("imported document",
		logging.FieldInput, path,
		logging.FieldOutput, flags.output,
		logging.FieldSize, node.Content.Size(),
	)
	return nil
}
