package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/docmodel/pkg/model"
)

// Table formatting constants.
const (
	tablePadding     = 2
	stateColumnWidth = 5
	endColumnWidth   = 3
	minEdgesWidth    = 20
	defaultTermWidth = 100
	validEndSymbol   = "*"
	heavySeparator   = "="
	lightSeparator   = "-"
)

// AutomatonFormatter renders content-expression automata as tables.
type AutomatonFormatter struct {
	styles    *Styles
	termWidth int
}

// NewAutomatonFormatter creates a formatter that fits rows into termWidth columns.
func NewAutomatonFormatter(styles *Styles, termWidth int) *AutomatonFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &AutomatonFormatter{styles: styles, termWidth: termWidth}
}

// FormatNodeType renders the automaton compiled from a node type's content
// expression. State 0 is the start state; a * marks states where the content
// may end.
func (f *AutomatonFormatter) FormatNodeType(nodeType *model.NodeType) string {
	var sb strings.Builder

	expr := nodeType.Spec.Content
	if expr == "" {
		expr = "(empty)"
	}
	sb.WriteString(f.styles.SummaryTitle.Render(nodeType.Name))
	sb.WriteString(" ")
	sb.WriteString(f.styles.Dim.Render(expr))
	sb.WriteByte('\n')
	sb.WriteString(f.FormatMatch(nodeType.ContentMatch()))
	return sb.String()
}

// FormatMatch renders every state reachable from start.
func (f *AutomatonFormatter) FormatMatch(start *model.ContentMatch) string {
	states := start.States()
	index := make(map[*model.ContentMatch]int, len(states))
	for i, state := range states {
		index[state] = i
	}

	edgesWidth := max(f.termWidth-stateColumnWidth-endColumnWidth-2*tablePadding, minEdgesWidth)
	totalWidth := stateColumnWidth + endColumnWidth + edgesWidth + 2*tablePadding

	var sb strings.Builder
	sb.WriteString(f.styles.TableHeader.Render(fmt.Sprintf("%-*s  %-*s  %s", stateColumnWidth, "STATE", endColumnWidth, "END", "EDGES")))
	sb.WriteByte('\n')
	sb.WriteString(f.styles.TableSeparator.Render(strings.Repeat(heavySeparator, totalWidth)))
	sb.WriteByte('\n')

	for i, state := range states {
		end := " "
		if state.ValidEnd {
			end = f.styles.TableValidEnd.Render(validEndSymbol)
		}

		edges := make([]string, 0, state.EdgeCount())
		for n := range state.EdgeCount() {
			edge, err := state.Edge(n)
			if err != nil {
				break
			}
			edges = append(edges, edge.Type.Name+" -> "+strconv.Itoa(index[edge.Next]))
		}
		edgeText := strings.Join(edges, ", ")
		if edgeText == "" {
			edgeText = "(none)"
		}

		fmt.Fprintf(&sb, "%-*d  %s%s  %s\n",
			stateColumnWidth, i,
			end, strings.Repeat(" ", endColumnWidth-1),
			truncateString(edgeText, edgesWidth),
		)
	}

	sb.WriteString(f.styles.TableSeparator.Render(strings.Repeat(lightSeparator, totalWidth)))
	return sb.String()
}

// truncateString truncates a string to maxLen runes, adding ellipsis if needed.
func truncateString(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
