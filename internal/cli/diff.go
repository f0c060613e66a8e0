package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/model"
)

var errDocumentsDiffer = errors.New("documents differ")

func newDiffCommand() *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Find the changed range between two documents",
		Long: `Compare two documents and print the first position where they differ
and where the difference ends in each of them, scanning from the end.

Exits with status 1 when the documents differ, like diff(1).

Examples:
  docmodel diff before.json after.json`,
		GroupID: groupDocument,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0], args[1], &cfg)
		},
	}

	addDocPathFlag(cmd, &cfg)

	return cmd
}

func runDiff(cmd *cobra.Command, pathA, pathB string, cfg *config.Config) error {
	sess, err := loadSession(cmd, cfg)
	if err != nil {
		return err
	}

	docA, err := sess.readDocument(pathA)
	if err != nil {
		return err
	}
	docB, err := sess.readDocument(pathB)
	if err != nil {
		return err
	}
	a, b := docA.node.Content, docB.node.Content

	start, ok := a.FindDiffStart(b)
	if !ok {
		fmt.Fprintln(sess.stdout, sess.styles.FormatSuccess("documents are identical"))
		return nil
	}
	end, _ := a.FindDiffEnd(b)
	end = clampDiffEnd(start, end)

	sess.logger.Debug("documents differ", logging.FieldFrom, start, "end_a", end.A, "end_b", end.B)

	fmt.Fprintf(sess.stdout, "%s: %s\n", sess.styles.SummaryTitle.Render("start"), sess.styles.Position.Render(fmt.Sprint(start)))
	fmt.Fprintf(sess.stdout, "%s: %s\n", sess.styles.SummaryTitle.Render("end"),
		sess.styles.Position.Render(fmt.Sprintf("a=%d b=%d", end.A, end.B)))

	if removed := changedText(a, start, end.A); removed != "" {
		fmt.Fprintln(sess.stdout, sess.styles.DiffRemove.Render("- "+removed))
	}
	if added := changedText(b, start, end.B); added != "" {
		fmt.Fprintln(sess.stdout, sess.styles.DiffAdd.Render("+ "+added))
	}

	return &ExitError{Code: ExitFailure, Err: errDocumentsDiffer, Reported: true}
}

// clampDiffEnd moves the end past start when the scan from the end overlaps the
// scan from the start, which happens when content is repeated around the change.
func clampDiffEnd(start int, end model.DiffEnd) model.DiffEnd {
	overlap := start - min(end.A, end.B)
	if overlap > 0 {
		end.A += overlap
		end.B += overlap
	}
	return end
}

func changedText(f *model.Fragment, from, to int) string {
	if to <= from {
		return ""
	}
	return f.TextBetween(from, to, " ", "￼")
}
