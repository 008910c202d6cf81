package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// errNoSelection reports a picker closed without a choice.
var errNoSelection = errors.New("no diagram selected")

// =============================================================================
// DiagramListModel - Interactive diagram selection
// =============================================================================

// DiagramListModel is the bubbletea model for interactive diagram selection.
// Space toggles a diagram, enter confirms the toggled set or, with nothing
// toggled, the diagram under the cursor.
type DiagramListModel struct {
	Diagrams []builtin.Definition
	Cursor   int
	Marked   map[int]bool
	Selected []builtin.Definition
}

// NewDiagramListModel creates a new diagram list model.
func NewDiagramListModel(defs []builtin.Definition) DiagramListModel {
	return DiagramListModel{Diagrams: defs, Marked: map[int]bool{}}
}

func (m DiagramListModel) Init() tea.Cmd {
	return nil
}

func (m DiagramListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Diagrams) == 0 {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Diagrams)-1 {
			m.Cursor++
		}
	case " ", "space", "x":
		marked := make(map[int]bool, len(m.Marked)+1)
		for i, v := range m.Marked {
			marked[i] = v
		}
		marked[m.Cursor] = !marked[m.Cursor]
		m.Marked = marked
	case "a":
		marked := make(map[int]bool, len(m.Diagrams))
		for i := range m.Diagrams {
			marked[i] = true
		}
		m.Marked = marked
	case "enter":
		m.Selected = nil
		for i, d := range m.Diagrams {
			if m.Marked[i] {
				m.Selected = append(m.Selected, d)
			}
		}
		if len(m.Selected) == 0 {
			m.Selected = []builtin.Definition{m.Diagrams[m.Cursor]}
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m DiagramListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagrams"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ render  q quit"))
	b.WriteString("\n\n")

	for i, d := range m.Diagrams {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Marked[i] {
			box = "[" + iconSuccess + "]"
		}

		line := fmt.Sprintf("%s%s %-14s %s", cursor, box, d.Name, listDimStyle.Render(d.Title))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Diagrams))))
	return b.String()
}

// =============================================================================
// pick
// =============================================================================

func (c *CLI) pickCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose diagrams to render interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			final, err := tea.NewProgram(NewDiagramListModel(builtin.All()), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			m, ok := final.(DiagramListModel)
			if !ok || len(m.Selected) == 0 {
				printInfo("%s", errNoSelection)
				return nil
			}

			runner, err := c.newRunner(cmd.Context(), opts.engineFlags)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts.out = cmd.OutOrStdout()
			for _, d := range m.Selected {
				res, err := renderWithSpinner(cmd.Context(), cmd.ErrOrStderr(), runner, d, c.pipelineOptions(&opts))
				if err != nil {
					return err
				}
				printFile(res.Path)
				printStats(res)
				if d.Message != "" {
					fmt.Fprintln(opts.out, d.Message)
				}
			}
			return nil
		},
	}

	opts.engineFlags.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", "", "output format override")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory")
	cmd.Flags().BoolVar(&opts.noCleanup, "no-cleanup", false, "keep the intermediate DOT source next to the image")
	return cmd
}
