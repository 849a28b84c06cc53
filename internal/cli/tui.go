package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/archview/pkg/catalog"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// JourneyListModel - Interactive journey selection
// =============================================================================

// JourneyListModel is the bubbletea model behind "journeys --pick".
// Typing "/" starts a filter that matches names and tags.
type JourneyListModel struct {
	Items    []catalog.JourneyListItem
	Cursor   int
	Offset   int
	Height   int
	Filter   string
	Selected *catalog.JourneyListItem

	filtering bool
}

// NewJourneyListModel creates a picker over items. The synthetic "all
// journeys" entry is listed first.
func NewJourneyListModel(items []catalog.JourneyListItem) JourneyListModel {
	all := catalog.JourneyListItem{ID: catalog.AllJourneyID, Name: "All Journeys", Label: "🌐 All Journeys"}
	return JourneyListModel{
		Items:  append([]catalog.JourneyListItem{all}, items...),
		Height: 15,
	}
}

// visible returns the items matching the current filter.
func (m JourneyListModel) visible() []catalog.JourneyListItem {
	if m.Filter == "" {
		return m.Items
	}
	out := make([]catalog.JourneyListItem, 0, len(m.Items))
	for _, item := range m.Items {
		if catalog.MatchJourney(item, m.Filter) {
			out = append(out, item)
		}
	}
	return out
}

func (m JourneyListModel) Init() tea.Cmd {
	return nil
}

func (m JourneyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		items := m.visible()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.filtering = true
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(items) == 0 {
				return m, nil
			}
			item := items[m.Cursor]
			m.Selected = &item
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m JourneyListModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.Filter); len(r) > 0 {
			m.Filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Filter += string(msg.Runes)
	}
	m.Cursor, m.Offset = 0, 0
	return m, nil
}

func (m JourneyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Journey"))
	b.WriteString("\n")
	if m.filtering || m.Filter != "" {
		b.WriteString(StyleHighlight.Render("/" + m.Filter))
		if m.filtering {
			b.WriteString(listDimStyle.Render("▏"))
		}
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  ⏎ select  q quit"))
	}
	b.WriteString("\n\n")

	items := m.visible()
	if len(items) == 0 {
		b.WriteString(listDimStyle.Render("  no matching journeys"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(items))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		item := items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		group := catalog.OtherGroup
		if head, _, ok := strings.Cut(item.ID, "/"); ok {
			group = head
		}
		rows = append(rows, []string{cursor, item.DisplayName(), group, strings.Join(item.Tags, ", ")})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Journey", "Group", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(items))))

	return b.String()
}
