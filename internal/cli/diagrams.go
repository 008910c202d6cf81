package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/snhsdiag/pkg/definition"
	"github.com/matzehuels/snhsdiag/pkg/diagram"
	"github.com/matzehuels/snhsdiag/pkg/diagram/analysis"
	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
)

// buildTarget resolves arg and builds its graph.
func buildTarget(arg string) (builtin.Definition, *diagram.Graph, error) {
	d, err := resolveTarget(arg)
	if err != nil {
		return d, nil, err
	}
	g, err := d.Build()
	if err != nil {
		return d, nil, fmt.Errorf("build %s: %w", d.Name, err)
	}
	return d, g, nil
}

// =============================================================================
// list
// =============================================================================

func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the builtin diagrams",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := diagramRows(builtin.All())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), diagramTable(rows).Render())
			return nil
		},
	}
}

// diagramRows builds one table row per definition.
func diagramRows(defs []builtin.Definition) ([][]string, error) {
	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		g, err := d.Build()
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", d.Name, err)
		}
		rows = append(rows, []string{
			d.Name,
			strings.Join(d.Aliases, ", "),
			d.Output + "." + g.Format(),
			strconv.Itoa(g.NodeCount()),
			strconv.Itoa(g.EdgeCount()),
			d.Title,
		})
	}
	return rows, nil
}

func diagramTable(rows [][]string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Aliases", "Output", "Nodes", "Edges", "Title").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorCyan)
			case col == 3 || col == 4:
				return base.Foreground(colorWhite).Align(lipgloss.Right)
			}
			return base.Foreground(colorGray)
		})
}

// =============================================================================
// source
// =============================================================================

func (c *CLI) sourceCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "source <diagram|file>",
		Short:             "Print the DOT source of a diagram",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDiagrams,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, err := buildTarget(args[0])
			if err != nil {
				return err
			}
			return diagram.WriteDOT(g, cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// inspect
// =============================================================================

func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "inspect <diagram|file>",
		Short:             "Analyze the structure of a diagram",
		Long:              `Inspect reports node and edge counts, style categories, connected components, cycles, sources and sinks of a diagram.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDiagrams,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, err := buildTarget(args[0])
			if err != nil {
				return err
			}
			report := analysis.Analyze(g)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(r analysis.Report) {
	fmt.Println(StyleTitle.Render(r.Name))
	printKeyValue("Nodes", StyleNumber.Render(strconv.Itoa(r.Nodes)))
	printKeyValue("Edges", fmt.Sprintf("%s (%d labeled, %d parallel)", StyleNumber.Render(strconv.Itoa(r.Edges)), r.LabeledEdges, r.ParallelEdges))
	printKeyValue("Components", strconv.Itoa(r.Components))
	printKeyValue("Categories", formatCategories(r.Categories))
	printKeyValue("Sources", listOrDash(r.Sources))
	printKeyValue("Sinks", listOrDash(r.Sinks))
	if len(r.Isolated) > 0 {
		printKeyValue("Isolated", strings.Join(r.Isolated, ", "))
	}
	if len(r.SelfLoops) > 0 {
		printKeyValue("Self loops", strings.Join(r.SelfLoops, ", "))
	}

	printNewline()
	if r.Acyclic() {
		printSuccess("acyclic")
		return
	}
	printWarning("%d cycle(s)", len(r.Cycles)+len(r.SelfLoops))
	for _, cycle := range r.Cycles {
		printDetail("%s", strings.Join(cycle, " "+iconArrow+" "))
	}
}

// formatCategories renders counts in a fixed category order.
func formatCategories(m map[string]int) string {
	var parts []string
	for _, cat := range diagram.Categories {
		if n := m[cat.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", cat, n))
		}
	}
	return listOrDash(parts)
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// =============================================================================
// export
// =============================================================================

func (c *CLI) exportCommand() *cobra.Command {
	var as, output string

	cmd := &cobra.Command{
		Use:   "export <diagram>",
		Short: "Export a diagram as an editable definition file",
		Long: `Export writes a diagram as a TOML or YAML definition file. The file can be
edited and rendered with "snhsdiag render --file".`,
		Example: `  snhsdiag export dfd > dfd.toml
  snhsdiag export architecture --as yaml -o arch.yaml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDiagrams,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := exportKind(as, output)
			if err != nil {
				return err
			}
			d, err := resolveTarget(args[0])
			if err != nil {
				return err
			}
			f, err := definition.FromDefinition(d)
			if err != nil {
				return fmt.Errorf("export %s: %w", d.Name, err)
			}
			if output == "" {
				return f.Encode(cmd.OutOrStdout(), kind)
			}
			return writeDefinition(output, f, kind)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "definition syntax: toml (default), yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// exportKind picks the syntax from --as, then from the output extension.
func exportKind(as, output string) (definition.Kind, error) {
	if as != "" {
		return definition.ParseKind(as)
	}
	if output != "" {
		return definition.KindFromPath(output)
	}
	return definition.KindTOML, nil
}

func writeDefinition(path string, f *definition.File, kind definition.Kind) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create %s", path)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errs.Wrap(errs.ErrCodeIO, cerr, "close %s", path)
		}
	}()
	if err := f.Encode(out, kind); err != nil {
		return err
	}
	printSuccess("Exported %s", f.Name)
	printFile(path)
	printNextStep("Render it", "snhsdiag render --file "+path)
	return nil
}
