package cli

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PageListModel - Interactive page selection
// =============================================================================

// PageEntry is one row of the page picker.
type PageEntry struct {
	Index  int
	ID     string
	Blocks int // top-level blocks
	Nodes  int // reachable nodes
}

// pageEntries summarizes the pages of doc.
func pageEntries(doc *document.Document) []PageEntry {
	out := make([]PageEntry, len(doc.Pages))
	for i, p := range doc.Pages {
		out[i] = PageEntry{
			Index:  i,
			ID:     p.ID,
			Blocks: len(p.Children),
			Nodes:  len(doc.Reachable(i)),
		}
	}
	return out
}

// PageListModel is the bubbletea model for interactive page selection.
type PageListModel struct {
	Pages    []PageEntry
	Cursor   int
	Selected *PageEntry
	Height   int
	Offset   int
}

// NewPageListModel creates a new page list model.
func NewPageListModel(pages []PageEntry) PageListModel {
	return PageListModel{
		Pages:  pages,
		Height: 15,
	}
}

func (m PageListModel) Init() tea.Cmd {
	return nil
}

func (m PageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Pages)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Pages) == 0 {
				return m, tea.Quit
			}
			p := m.Pages[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Page"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Pages))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Pages[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		id := p.ID
		if id == "" {
			id = "—"
		}
		rows = append(rows, []string{cursor, strconv.Itoa(p.Index), id, strconv.Itoa(p.Blocks), strconv.Itoa(p.Nodes)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Page", "Blocks", "Nodes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch {
			case m.Offset+row == m.Cursor:
				return listSelectedStyle
			case col >= 3:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.String())
	b.WriteString("\n")

	if len(m.Pages) > m.Height {
		b.WriteString(listDimStyle.Render(strconv.Itoa(m.Cursor+1) + "/" + strconv.Itoa(len(m.Pages))))
		b.WriteString("\n")
	}
	return b.String()
}

// pickPage asks the user to choose a page of doc. ok is false when the user
// quit without choosing. A single-page document needs no prompt.
func pickPage(ctx context.Context, doc *document.Document) (index int, ok bool, err error) {
	if len(doc.Pages) == 1 {
		return 0, true, nil
	}
	p := tea.NewProgram(NewPageListModel(pageEntries(doc)), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return 0, false, err
	}
	fm, isList := final.(PageListModel)
	if !isList || fm.Selected == nil {
		return 0, false, nil
	}
	return fm.Selected.Index, true, nil
}
