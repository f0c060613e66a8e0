package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/pkg/config"
)

func newResolveCommand() *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "resolve FILE POS...",
		Short: "Show where positions fall in a document",
		Long: `Resolve positions to their path through the document tree: depth,
parent node, child indices, the nodes before and after, the marks active at
the position and, inside text, the surrounding text with a caret.

Examples:
  docmodel resolve doc.json 0
  docmodel resolve doc.json 3 7 12`,
		GroupID: groupDocument,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], args[1:], &cfg)
		},
	}

	addDocPathFlag(cmd, &cfg)

	return cmd
}

func runResolve(cmd *cobra.Command, path string, rawPositions []string, cfg *config.Config) error {
	positions := make([]int, 0, len(rawPositions))
	for _, raw := range rawPositions {
		pos, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: position %q is not an integer", errUsage, raw)
		}
		positions = append(positions, pos)
	}

	sess, err := loadSession(cmd, cfg)
	if err != nil {
		return err
	}

	doc, err := sess.readCheckedDocument(path)
	if err != nil {
		return err
	}

	for i, pos := range positions {
		resolved, err := sess.cache.Resolve(doc.node, pos)
		if err != nil {
			return fmt.Errorf("resolve %d: %w", pos, err)
		}
		sess.logger.Debug("resolved position", logging.FieldPos, pos, logging.FieldDepth, resolved.Depth)

		if i > 0 {
			fmt.Fprintln(sess.stdout)
		}
		fmt.Fprintln(sess.stdout, sess.styles.FormatResolved(resolved))
	}
	return nil
}
