package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/ckanindex/pkg/fuzzy"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// errNoSelection is returned when the picker is closed without a choice.
var errNoSelection = errors.New("no selection made")

// =============================================================================
// MatchListModel - Interactive selection among fuzzy matches
// =============================================================================

// MatchListModel is the bubbletea model for choosing one of several
// candidate names, shown with their similarity to the query.
type MatchListModel struct {
	Title    string
	Query    string
	Matches  []string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewMatchListModel creates a picker for matches of query.
func NewMatchListModel(title, query string, matches []string) MatchListModel {
	return MatchListModel{
		Title:   title,
		Query:   query,
		Matches: matches,
		Height:  15,
	}
}

func (m MatchListModel) Init() tea.Cmd {
	return nil
}

func (m MatchListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Matches) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Matches[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m MatchListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Matches))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		score := fmt.Sprintf("%.2f", fuzzy.Score(m.Query, m.Matches[i]))
		rows = append(rows, []string{cursor, m.Matches[i], score})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Similarity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Matches))))

	return b.String()
}

// interactive reports whether stdin and stdout are terminals.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// pickMatch runs the picker and returns the chosen name.
func pickMatch(title, query string, matches []string) (string, error) {
	if !interactive() {
		return "", errors.New("interactive selection requires a terminal")
	}
	final, err := tea.NewProgram(NewMatchListModel(title, query, matches)).Run()
	if err != nil {
		return "", fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(MatchListModel)
	if !ok || m.Selected == "" {
		return "", errNoSelection
	}
	return m.Selected, nil
}
