package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/yaklabco/docmodel/internal/configloader"
	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/internal/ui/pretty"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/fsutil"
	"github.com/yaklabco/docmodel/pkg/model"
)

// stdinPath reads a document from standard input.
const stdinPath = "-"

var (
	errUsage           = errors.New("invalid usage")
	errDocPathNotFound = errors.New("document path not found")
)

// session is the resolved configuration a document command runs with.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	schema *model.Schema
	cache  *model.ResolveCache
	styles *pretty.Styles
	logger *log.Logger

	workDir string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// loadSession loads configuration and the schema for cmd. cliCfg carries the
// values set by the command's own flags.
func loadSession(cmd *cobra.Command, cliCfg *config.Config) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cliCfg == nil {
		cliCfg = &config.Config{}
	}

	if err := applyGlobalFlags(cmd, cliCfg); err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}
	noConfig, err := cmd.Flags().GetBool("no-config")
	if err != nil {
		return nil, fmt.Errorf("get no-config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:          workDir,
		ExplicitPath:        configPath,
		IgnoreSystemConfig:  noConfig,
		IgnoreUserConfig:    noConfig,
		IgnoreProjectConfig: noConfig,
		CLIConfig:           cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}
	cfg := loadResult.Config

	logger := logging.NewWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	ctx = logging.WithLogger(ctx, logger)

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	schema, err := configloader.LoadSchema(ctx, cfg.Schema)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		logging.FieldSchema, schemaLabel(cfg.Schema),
		logging.FieldCacheSize, cfg.ResolveCacheSize,
		"format", cfg.Output.Format,
	)

	return &session{
		ctx:     ctx,
		cfg:     cfg,
		schema:  schema,
		cache:   model.NewResolveCache(cfg.ResolveCacheSize),
		styles:  pretty.NewStyles(pretty.IsColorEnabled(string(cfg.Color), cmd.OutOrStdout())),
		logger:  logger,
		workDir: workDir,
		stdin:   cmd.InOrStdin(),
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
	}, nil
}

// applyGlobalFlags copies explicitly set persistent flags into cliCfg.
func applyGlobalFlags(cmd *cobra.Command, cliCfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("color") {
		color, err := flags.GetString("color")
		if err != nil {
			return fmt.Errorf("get color flag: %w", err)
		}
		cliCfg.Color = config.ColorMode(color)
	}
	if flags.Changed("schema") {
		schema, err := flags.GetString("schema")
		if err != nil {
			return fmt.Errorf("get schema flag: %w", err)
		}
		cliCfg.Schema = schema
	}
	if flags.Changed("log-level") {
		level, err := flags.GetString("log-level")
		if err != nil {
			return fmt.Errorf("get log-level flag: %w", err)
		}
		cliCfg.LogLevel = level
	}
	debug, err := flags.GetBool("debug")
	if err != nil {
		return fmt.Errorf("get debug flag: %w", err)
	}
	if debug {
		cliCfg.LogLevel = "debug"
	}
	return nil
}

func schemaLabel(path string) string {
	if path == "" {
		return "basic"
	}
	return path
}

// document is a parsed input file. When the document sits inside a larger
// JSON value, envelope holds that value and docPath locates the document.
type document struct {
	path     string
	info     *fsutil.FileInfo
	envelope []byte
	docPath  string
	node     *model.Node
}

// readInput returns the bytes of path, or of standard input for "-".
func (s *session) readInput(path string) ([]byte, *fsutil.FileInfo, error) {
	if path == stdinPath {
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil, nil
	}
	return fsutil.ReadFile(s.ctx, path)
}

// readDocument parses the document stored at path without checking its content.
func (s *session) readDocument(path string) (*document, error) {
	data, info, err := s.readInput(path)
	if err != nil {
		return nil, err
	}

	doc := &document{path: path, info: info, docPath: s.cfg.DocPath}
	raw := data
	if doc.docPath != "" {
		result := gjson.GetBytes(data, doc.docPath)
		if !result.Exists() {
			return nil, fmt.Errorf("%w: %q in %s", errDocPathNotFound, doc.docPath, path)
		}
		doc.envelope = data
		raw = []byte(result.Raw)
	}

	node, err := s.schema.NodeFromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.node = node

	s.logger.Debug("read document",
		logging.FieldPath, path,
		logging.FieldDocPath, doc.docPath,
		logging.FieldSize, node.Content.Size(),
	)
	return doc, nil
}

// readCheckedDocument parses the document at path and checks it against the schema.
func (s *session) readCheckedDocument(path string) (*document, error) {
	doc, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}
	if err := doc.node.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// marshal encodes node as JSON using the configured indent.
func (s *session) marshal(node *model.Node) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if s.cfg.Output.Indent > 0 {
		data, err = json.MarshalIndent(node, "", strings.Repeat(" ", s.cfg.Output.Indent))
	} else {
		data, err = json.Marshal(node)
	}
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// encode returns the bytes that replace the input: node alone, or the envelope
// with node written back at its document path.
func (s *session) encode(doc *document, node *model.Node) ([]byte, error) {
	if doc.envelope == nil {
		return s.marshal(node)
	}

	data, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out, err := sjson.SetRawBytesOptions(doc.envelope, doc.docPath, data, &sjson.Options{Optimistic: true})
	if err != nil {
		return nil, fmt.Errorf("write document into %s: %w", doc.docPath, err)
	}
	return out, nil
}

// printDocument writes node to stdout in the configured output format.
func (s *session) printDocument(node *model.Node) error {
	if s.cfg.Output.Format == config.FormatTree {
		_, err := fmt.Fprintln(s.stdout, s.styles.FormatTree(node))
		return err
	}
	data, err := s.marshal(node)
	if err != nil {
		return err
	}
	_, err = s.stdout.Write(data)
	return err
}

// reportFailure prints err in the styled form and wraps it with an exit code.
func (s *session) reportFailure(code int, err error) error {
	fmt.Fprintln(s.stderr, s.styles.FormatError(err))
	return &ExitError{Code: code, Err: err, Reported: true}
}
