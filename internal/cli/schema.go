package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/docmodel/internal/ui/pretty"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/model"
)

type schemaFlags struct {
	automaton bool
	export    bool
}

func newSchemaCommand() *cobra.Command {
	flags := &schemaFlags{}

	cmd := &cobra.Command{
		Use:   "schema [TYPE...]",
		Short: "List the node and mark types of the schema",
		Long: `List the node and mark types of the active schema: the built-in basic
schema, or the definition given by --schema or the schema config setting.

With --automaton, print the automaton compiled from each node type's content
expression: one row per state, its outgoing edges, and a * where the content
may end. Name node types to limit the output.

With --export, print the schema as a YAML definition that can be edited and
loaded again with --schema.

Examples:
  docmodel schema
  docmodel schema --automaton list_item bullet_list
  docmodel schema --export > schema.yml`,
		GroupID: groupSetup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.automaton, "automaton", false, "print the content automaton of each node type")
	cmd.Flags().BoolVar(&flags.export, "export", false, "print the schema as a YAML definition")
	cmd.MarkFlagsMutuallyExclusive("automaton", "export")

	return cmd
}

func runSchema(cmd *cobra.Command, names []string, flags *schemaFlags) error {
	sess, err := loadSession(cmd, nil)
	if err != nil {
		return err
	}

	nodeTypes, err := selectNodeTypes(sess.schema, names)
	if err != nil {
		return err
	}

	switch {
	case flags.export:
		data, err := config.SchemaDefFromSchema(sess.schema).ToYAML()
		if err != nil {
			return err
		}
		_, err = sess.stdout.Write(data)
		return err

	case flags.automaton:
		formatter := pretty.NewAutomatonFormatter(sess.styles, terminalWidth(sess.stdout))
		tables := lo.Map(nodeTypes, func(nt *model.NodeType, _ int) string {
			return formatter.FormatNodeType(nt)
		})
		_, err := fmt.Fprintln(sess.stdout, strings.Join(tables, "\n\n"))
		return err

	default:
		writeSchemaListing(sess.stdout, sess.styles, sess.schema, nodeTypes)
		return nil
	}
}

// selectNodeTypes returns the named node types, or all of them when names is empty.
func selectNodeTypes(schema *model.Schema, names []string) ([]*model.NodeType, error) {
	if len(names) == 0 {
		return schema.Nodes(), nil
	}
	types := make([]*model.NodeType, 0, len(names))
	for _, name := range names {
		nt, err := schema.NodeType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, nt)
	}
	return types, nil
}

func writeSchemaListing(w io.Writer, styles *pretty.Styles, schema *model.Schema, nodeTypes []*model.NodeType) {
	nameWidth := lo.Max(lo.Map(nodeTypes, func(nt *model.NodeType, _ int) int { return len(nt.Name) }))
	exprWidth := lo.Max(lo.Map(nodeTypes, func(nt *model.NodeType, _ int) int { return len(contentLabel(nt)) }))

	fmt.Fprintln(w, styles.SummaryTitle.Render("NODES"))
	for _, nt := range nodeTypes {
		name := fmt.Sprintf("%-*s", nameWidth, nt.Name)
		if nt == schema.TopNodeType() {
			name = styles.Bold.Render(name)
		} else if nt.IsInline() {
			name = styles.InlineType.Render(name)
		} else {
			name = styles.BlockType.Render(name)
		}
		line := fmt.Sprintf("  %s  %-*s  %s", name, exprWidth, contentLabel(nt), styles.Dim.Render(strings.Join(nodeTraits(nt), " ")))
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	markTypes := schema.Marks()
	if len(markTypes) == 0 {
		return
	}
	markWidth := lo.Max(lo.Map(markTypes, func(mt *model.MarkType, _ int) int { return len(mt.Name) }))

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.SummaryTitle.Render("MARKS"))
	for _, mt := range markTypes {
		line := fmt.Sprintf("  %s  %s", styles.Mark.Render(fmt.Sprintf("%-*s", markWidth, mt.Name)),
			styles.Dim.Render(strings.Join(markTraits(mt), " ")))
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func contentLabel(nt *model.NodeType) string {
	switch {
	case nt.IsText():
		return "(text)"
	case nt.Spec.Content == "":
		return "(leaf)"
	default:
		return nt.Spec.Content
	}
}

func nodeTraits(nt *model.NodeType) []string {
	var traits []string
	if len(nt.Groups) > 0 {
		traits = append(traits, "group="+strings.Join(nt.Groups, ","))
	}
	if nt.IsTextblock() {
		traits = append(traits, "textblock")
	}
	if nt.Spec.Atom {
		traits = append(traits, "atom")
	}
	if nt.Spec.Code {
		traits = append(traits, "code")
	}
	if nt.Spec.Defining {
		traits = append(traits, "defining")
	}
	if nt.Spec.Isolating {
		traits = append(traits, "isolating")
	}
	if nt.Spec.Marks != nil && !nt.IsText() {
		traits = append(traits, fmt.Sprintf("marks=%q", *nt.Spec.Marks))
	}
	if len(nt.Spec.Attrs) > 0 {
		traits = append(traits, "attrs="+attrNames(nt.Spec.Attrs))
	}
	return traits
}

func markTraits(mt *model.MarkType) []string {
	var traits []string
	if mt.Spec.Group != "" {
		traits = append(traits, "group="+strings.Join(strings.Fields(mt.Spec.Group), ","))
	}
	if mt.Spec.Inclusive != nil && !*mt.Spec.Inclusive {
		traits = append(traits, "non-inclusive")
	}
	if mt.Spec.Excludes != nil {
		traits = append(traits, fmt.Sprintf("excludes=%q", *mt.Spec.Excludes))
	}
	if mt.Spec.Spanning != nil && !*mt.Spec.Spanning {
		traits = append(traits, "non-spanning")
	}
	if len(mt.Spec.Attrs) > 0 {
		traits = append(traits, "attrs="+attrNames(mt.Spec.Attrs))
	}
	return traits
}

func attrNames(attrs map[string]*model.AttributeSpec) string {
	names := lo.Keys(attrs)
	slices.Sort(names)
	return strings.Join(names, ",")
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
