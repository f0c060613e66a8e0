package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/fsutil"
	"github.com/yaklabco/docmodel/pkg/model"
)

type replaceFlags struct {
	from   int
	to     int
	slice  string
	backup bool
}

func newReplaceCommand() *cobra.Command {
	var cfg config.Config
	flags := &replaceFlags{}

	cmd := &cobra.Command{
		Use:   "replace FILE",
		Short: "Replace a range of a document with a slice",
		Long: `Replace the positions [--from, --to) of a document with a slice and
print the resulting document. The slice is given as JSON, or as @path to read
it from a file; without --slice the range is deleted.

The edit is rejected with status 3 when the slice cannot be fitted into the
range, for example when it would leave a node with invalid content.

Examples:
  docmodel replace doc.json --from 6 --to 12
  docmodel replace doc.json --from 1 --to 1 --slice '{"content":[{"type":"text","text":"Hi "}]}'
  docmodel replace doc.json --from 3 --to 3 --slice @hr.json --write --backup
  docmodel replace page.json --doc-path body --from 1 --to 4 --write`,
		GroupID: groupDocument,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplace(cmd, args[0], &cfg, flags)
		},
	}

	cmd.Flags().IntVar(&flags.from, "from", 0, "start position of the replaced range")
	cmd.Flags().IntVar(&flags.to, "to", -1, "end position of the replaced range (default: --from)")
	cmd.Flags().StringVar(&flags.slice, "slice", "", "slice JSON, or @file to read it from a file")
	cmd.Flags().BoolVarP(&cfg.Write, "write", "w", false, "write the result back to FILE")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep a backup of FILE when writing")
	addDocPathFlag(cmd, &cfg)

	return cmd
}

func runReplace(cmd *cobra.Command, path string, cfg *config.Config, flags *replaceFlags) error {
	if cfg.Write && path == stdinPath {
		return fmt.Errorf("%w: --write needs a file, not stdin", errUsage)
	}
	if flags.backup && !cfg.Write {
		return fmt.Errorf("%w: --backup only applies with --write", errUsage)
	}

	sess, err := loadSession(cmd, cfg)
	if err != nil {
		return err
	}

	doc, err := sess.readCheckedDocument(path)
	if err != nil {
		return err
	}

	slice, err := sess.readSlice(flags.slice)
	if err != nil {
		return err
	}

	from, to := flags.from, flags.to
	if to < 0 {
		to = from
	}

	result, err := doc.node.Replace(from, to, slice)
	if err != nil {
		var replaceErr *model.ReplaceError
		if errors.As(err, &replaceErr) {
			sess.logger.Debug("edit rejected",
				logging.FieldFrom, from,
				logging.FieldTo, to,
				logging.FieldReason, string(replaceErr.Reason),
			)
			return sess.reportFailure(ExitEditRejected, err)
		}
		return err
	}

	sess.logger.Debug("replaced range",
		logging.FieldFrom, from,
		logging.FieldTo, to,
		logging.FieldSize, result.Content.Size(),
	)

	if !sess.cfg.Write {
		if doc.envelope != nil {
			out, err := sess.encode(doc, result)
			if err != nil {
				return err
			}
			_, err = sess.stdout.Write(out)
			return err
		}
		return sess.printDocument(result)
	}

	out, err := sess.encode(doc, result)
	if err != nil {
		return err
	}
	saved, err := fsutil.SaveDocument(sess.ctx, doc.info, out, fsutil.SaveOptions{Backup: flags.backup})
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	switch {
	case !saved.Written:
		sess.logger.Info("document unchanged", logging.FieldPath, path)
	case saved.BackupPath != "":
		sess.logger.Info("wrote document", logging.FieldPath, path, "backup", saved.BackupPath)
	default:
		sess.logger.Info("wrote document", logging.FieldPath, path)
	}
	return nil
}

// readSlice parses the --slice value. An empty value is the empty slice.
func (s *session) readSlice(value string) (*model.Slice, error) {
	if value == "" {
		return model.EmptySlice, nil
	}

	data := []byte(value)
	if file, ok := strings.CutPrefix(value, "@"); ok {
		content, _, err := s.readInput(file)
		if err != nil {
			return nil, err
		}
		data = content
	}

	slice, err := s.schema.SliceFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("slice: %w", err)
	}
	return slice, nil
}
