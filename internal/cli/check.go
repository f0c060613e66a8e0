package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/model"
	"github.com/yaklabco/docmodel/pkg/reporter"
	"github.com/yaklabco/docmodel/pkg/runner"
)

func newCheckCommand() *cobra.Command {
	var cfg config.Config
	var format string
	var compact bool

	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Check documents against the schema",
		Long: `Parse JSON documents and check that every node's content, attributes
and marks conform to the schema. Directories are searched for files with the
configured extensions. Use "-" to read a document from stdin.

Exits with status 65 when a document is invalid.

Examples:
  docmodel check doc.json
  docmodel check --schema schema.yml a.json b.json
  docmodel check --exclude 'fixtures/**' --jobs 4 docs/
  docmodel check --format json docs/ > report.json
  docmodel check --doc-path data.body envelope.json`,
		GroupID: groupDocument,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := reporter.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}
			return runCheck(cmd, args, &cfg, reporter.Options{Format: parsed, Compact: compact, ShowSummary: true})
		},
	}

	addDocPathFlag(cmd, &cfg)
	cmd.Flags().IntVarP(&cfg.Check.Jobs, "jobs", "j", 0, "files checked concurrently (0 = all CPUs)")
	cmd.Flags().StringSliceVar(&cfg.Check.Extensions, "ext", nil, "file extensions searched in directories (default .json)")
	cmd.Flags().StringArrayVar(&cfg.Check.Exclude, "exclude", nil, "glob of files or directories to skip (repeatable)")
	cmd.Flags().BoolVar(&cfg.Check.FollowSymlinks, "follow-symlinks", false, "traverse symlinked directories")
	cmd.Flags().StringVar(&format, "format", "text", "report format: text, json, summary")
	cmd.Flags().BoolVar(&compact, "compact", false, "write the JSON report on one line")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, cfg *config.Config, reportOpts reporter.Options) error {
	sess, err := loadSession(cmd, cfg)
	if err != nil {
		return err
	}

	result := &runner.Result{}

	paths := args
	if slices.Contains(args, stdinPath) {
		paths = slices.DeleteFunc(slices.Clone(args), func(p string) bool { return p == stdinPath })

		outcome := runner.FileOutcome{Path: stdinPath}
		doc, err := sess.readCheckedDocument(stdinPath)
		if err != nil {
			outcome.Err = err
		} else {
			outcome.Node = doc.node
		}
		result.Add(outcome)
	}

	if len(paths) > 0 {
		checker := runner.New(func(_ context.Context, path string) (*model.Node, error) {
			doc, err := sess.readDocument(path)
			if err != nil {
				return nil, err
			}
			return doc.node, nil
		})

		found, err := checker.Run(sess.ctx, runner.Options{
			Paths:          paths,
			WorkingDir:     sess.workDir,
			Extensions:     sess.cfg.Check.Extensions,
			ExcludeGlobs:   sess.cfg.Check.Exclude,
			FollowSymlinks: sess.cfg.Check.FollowSymlinks,
			Jobs:           sess.cfg.Check.Jobs,
		})
		if err != nil {
			return err
		}
		if found.Stats.FilesDiscovered == 0 {
			sess.logger.Warn("no documents found", "paths", paths, "extensions", sess.cfg.Check.Extensions)
		}
		for _, outcome := range found.Files {
			result.Add(outcome)
		}
	}

	sess.logger.Debug("check finished",
		"files", result.Stats.FilesDiscovered,
		"valid", result.Stats.FilesValid,
		"failed", result.Stats.FilesFailed,
	)

	reportOpts.Writer = sess.stdout
	reportOpts.ErrorWriter = sess.stderr
	reportOpts.Color = string(sess.cfg.Color)
	reportOpts.WorkingDir = sess.workDir
	rep, err := reporter.New(reportOpts)
	if err != nil {
		return err
	}
	if _, err := rep.Report(sess.ctx, result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if firstErr := result.FirstError(); firstErr != nil {
		code := ExitCode(firstErr)
		if code == ExitFailure {
			code = ExitInvalidContent
		}
		return &ExitError{Code: code, Err: firstErr, Reported: true}
	}
	return nil
}

func addDocPathFlag(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.DocPath, "doc-path", "",
		"gjson path of the document inside a larger JSON file")
}
