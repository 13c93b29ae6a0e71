package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/pkg/edit"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle = lipgloss.NewStyle().Foreground(colorRed)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit <notation|file|->",
		Short: "Interactively delete monomers",
		Long: `Open a structure in an interactive list of its monomers.

Mark monomers with space and delete them with d. Deletions can be undone
with u. Quitting with q prints the edited notation; esc discards the edits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := c.parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			p := tea.NewProgram(newEditorModel(m), tea.WithOutput(os.Stderr), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "run editor")
			}
			em := final.(editorModel)
			if !em.done {
				printInfo("Edits discarded")
				return nil
			}
			if err := writeOutput(output, []byte(translate.Serialize(em.m)+"\n")); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Saved %s", plural(em.deleted, "deletion"))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited notation to a file (stdout if empty)")
	return cmd
}

// editorRow is one monomer in the list.
type editorRow struct {
	ref    string
	node   graph.NodeID
	symbol string
	poly   string
	role   string
}

// editorModel is the bubbletea model of the interactive editor.
type editorModel struct {
	m       *graph.Manager
	rows    []editorRow
	marked  map[graph.NodeID]bool
	history []*graph.Manager
	cursor  int
	offset  int
	height  int
	deleted int
	status  string
	done    bool
}

func newEditorModel(m *graph.Manager) editorModel {
	em := editorModel{m: m, marked: make(map[graph.NodeID]bool), height: 15}
	em.rows = editorRows(m)
	return em
}

// editorRows lists nodes by canonical reference, polymers in name order.
func editorRows(m *graph.Manager) []editorRow {
	g := m.Graph()
	positions := translate.Positions(m)
	var rows []editorRow
	for _, id := range slices.Sorted(maps.Keys(positions)) {
		for i, n := range positions[id] {
			node, ok := g.Node(n)
			if !ok {
				continue
			}
			rows = append(rows, editorRow{
				ref:    fmt.Sprintf("%s:%d", id, i+1),
				node:   n,
				symbol: node.Symbol,
				poly:   string(node.Polymer),
				role:   node.Role.String(),
			})
		}
	}
	return rows
}

func (em editorModel) Init() tea.Cmd {
	return nil
}

func (em editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			em.done = true
			return em, tea.Quit
		case "ctrl+c", "esc":
			return em, tea.Quit
		case "up", "k":
			if em.cursor > 0 {
				em.cursor--
			}
		case "down", "j":
			if em.cursor < len(em.rows)-1 {
				em.cursor++
			}
		case " ", "x":
			if len(em.rows) > 0 {
				n := em.rows[em.cursor].node
				if em.marked[n] {
					delete(em.marked, n)
				} else {
					em.marked[n] = true
				}
			}
		case "d":
			em = em.deleteMarked()
		case "u":
			em = em.undo()
		}
	case tea.WindowSizeMsg:
		em.height = max(msg.Height-8, 5)
	}
	em = em.scroll()
	return em, nil
}

// deleteMarked deletes the marked nodes, or the node under the cursor when
// nothing is marked.
func (em editorModel) deleteMarked() editorModel {
	if len(em.rows) == 0 {
		return em
	}
	var sel edit.Selection
	for _, r := range em.rows {
		if em.marked[r.node] {
			sel.Nodes = append(sel.Nodes, r.node)
		}
	}
	if sel.Empty() {
		sel.Nodes = []graph.NodeID{em.rows[em.cursor].node}
	}

	before := em.m.Clone()
	res, err := edit.Delete(em.m, sel)
	if err != nil {
		em.status = StyleDanger.Render(errors.UserMessage(err))
		return em
	}
	em.history = append(em.history, before)
	em.deleted += len(sel.Nodes)
	em.marked = make(map[graph.NodeID]bool)
	em.rows = editorRows(em.m)
	em.cursor = min(em.cursor, max(len(em.rows)-1, 0))
	em.status = fmt.Sprintf("deleted %s", plural(len(sel.Nodes), "monomer"))
	if n := len(res.AddedStarts); n > 0 {
		em.status += fmt.Sprintf(", %s added", plural(n, "chain"))
	}
	return em
}

func (em editorModel) undo() editorModel {
	if len(em.history) == 0 {
		em.status = "nothing to undo"
		return em
	}
	last := len(em.history) - 1
	em.m = em.history[last]
	em.history = em.history[:last]
	em.marked = make(map[graph.NodeID]bool)
	em.rows = editorRows(em.m)
	em.cursor = min(em.cursor, max(len(em.rows)-1, 0))
	em.status = "undone"
	return em
}

func (em editorModel) scroll() editorModel {
	if em.cursor < em.offset {
		em.offset = em.cursor
	}
	if em.cursor >= em.offset+em.height {
		em.offset = em.cursor - em.height + 1
	}
	return em
}

func (em editorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edit Structure"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(translate.Serialize(em.m)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  d delete  u undo  q done  esc discard"))
	b.WriteString("\n\n")

	end := min(em.offset+em.height, len(em.rows))
	rows := [][]string{}
	for i := em.offset; i < end; i++ {
		r := em.rows[i]
		cursor := "  "
		if i == em.cursor {
			cursor = "▸ "
		}
		mark := " "
		if em.marked[r.node] {
			mark = "×"
		}
		rows = append(rows, []string{cursor, mark, r.ref, r.symbol, r.poly, r.role})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Node", "Monomer", "Polymer", "Role").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := em.offset + row
			if idx >= len(em.rows) {
				return lipgloss.NewStyle()
			}
			switch {
			case em.marked[em.rows[idx].node]:
				return listMarkedStyle
			case idx == em.cursor:
				return StyleHighlight.Bold(true)
			case col >= 4:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(em.cursor+1, len(em.rows)), len(em.rows))))
	if em.status != "" {
		b.WriteString("  " + em.status)
	}
	b.WriteString("\n")
	return b.String()
}
