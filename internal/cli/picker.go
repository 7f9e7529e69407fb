package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/diagramkit/pkg/classify"
	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/markdown"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// blockRow describes one mermaid block for display.
type blockRow struct {
	Block markdown.Block
	Kind  string
	Lines int
}

// describeBlocks classifies every block of a Markdown document.
func describeBlocks(blocks []markdown.Block) []blockRow {
	rows := make([]blockRow, len(blocks))
	for i, b := range blocks {
		kind := "-"
		if res, err := classify.Classify(b.Text); err == nil {
			kind = string(res.Kind)
		}
		rows[i] = blockRow{
			Block: b,
			Kind:  kind,
			Lines: strings.Count(strings.TrimRight(b.Text, "\n"), "\n") + 1,
		}
	}
	return rows
}

// blockTable renders rows as a bordered table. A cursor >= 0 highlights
// that row and adds a marker column.
func blockTable(rows []blockRow, cursor, offset, height int) string {
	end := len(rows)
	if height > 0 && offset+height < end {
		end = offset + height
	}

	headers := []string{"#", "Line", "Kind", "Lines", "Header"}
	if cursor >= 0 {
		headers = append([]string{""}, headers...)
	}

	data := [][]string{}
	for i := offset; i < end; i++ {
		r := rows[i]
		row := []string{
			fmt.Sprintf("%d", r.Block.Index),
			fmt.Sprintf("%d", r.Block.Line),
			r.Kind,
			fmt.Sprintf("%d", r.Lines),
			truncate(r.Block.Header(), 40),
		}
		if cursor >= 0 {
			marker := "  "
			if i == cursor {
				marker = "▸ "
			}
			row = append([]string{marker}, row...)
		}
		data = append(data, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := offset + row
			if idx >= len(rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if rows[idx].Kind == "-" {
				base = base.Foreground(colorDim)
			}
			if idx == cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})
	return t.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// =============================================================================
// BlockListModel - Interactive block selection
// =============================================================================

// listKeys are the picker's key bindings.
type listKeys struct {
	Up, Down, Select, Quit key.Binding
}

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultListKeys = listKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// BlockListModel is the bubbletea model for interactive block selection.
type BlockListModel struct {
	Rows     []blockRow
	Cursor   int
	Selected *int
	Height   int
	Offset   int

	keys listKeys
	help help.Model
}

// NewBlockListModel creates a new block list model.
func NewBlockListModel(blocks []markdown.Block) BlockListModel {
	return BlockListModel{
		Rows:   describeBlocks(blocks),
		Height: 15,
		keys:   defaultListKeys,
		help:   help.New(),
	}
}

func (m BlockListModel) Init() tea.Cmd {
	return nil
}

func (m BlockListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = min(m.Offset, m.Cursor)
			}
		case key.Matches(msg, m.keys.Down):
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.Rows) == 0 {
				return m, tea.Quit
			}
			idx := m.Rows[m.Cursor].Block.Index
			m.Selected = &idx
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 3)
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m BlockListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagram Block"))
	b.WriteString("\n\n")
	b.WriteString(blockTable(m.Rows, m.Cursor, m.Offset, m.Height))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// pickBlock lets the user choose a mermaid block of src. A document with
// one block skips the prompt; more than one needs a terminal on stdin.
func (c *CLI) pickBlock(src []byte) (int, error) {
	blocks := markdown.Blocks(src)
	switch len(blocks) {
	case 0:
		return 0, errors.New(errors.ErrCodeNoDiagramBlock, "no %s block found", markdown.Language)
	case 1:
		return blocks[0].Index, nil
	}
	if !isTerminal(c.Stdin) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "--pick needs a terminal; use --block with one of %d blocks", len(blocks))
	}

	final, err := tea.NewProgram(NewBlockListModel(blocks), tea.WithInput(c.Stdin), tea.WithOutput(c.Stderr)).Run()
	if err != nil {
		return 0, fmt.Errorf("block picker: %w", err)
	}
	m, ok := final.(BlockListModel)
	if !ok || m.Selected == nil {
		return 0, fmt.Errorf("no block selected")
	}
	return *m.Selected, nil
}
