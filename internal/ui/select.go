package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted is returned when the user leaves a selector without choosing.
var ErrAborted = errors.New("selection aborted")

// SelectItem is one row of a selector: a label and an optional dimmed note.
type SelectItem struct {
	Label string
	Note  string
}

// selectModel is the bubbletea model for the selector.
type selectModel struct {
	title    string
	items    []SelectItem
	cursor   int
	selected int
	aborted  bool
	styles   selectStyles
}

type selectStyles struct {
	title   lipgloss.Style
	cursor  lipgloss.Style
	current lipgloss.Style
	other   lipgloss.Style
	note    lipgloss.Style
	hint    lipgloss.Style
}

func newSelectStyles() selectStyles {
	if NoColor {
		return selectStyles{
			title:   lipgloss.NewStyle(),
			cursor:  lipgloss.NewStyle(),
			current: lipgloss.NewStyle().Bold(true),
			other:   lipgloss.NewStyle(),
			note:    lipgloss.NewStyle(),
			hint:    lipgloss.NewStyle(),
		}
	}
	return selectStyles{
		title:   TitleStyle,
		cursor:  AccentStyle,
		current: lipgloss.NewStyle().Foreground(lipgloss.Color("#f2e8dc")).Bold(true),
		other:   lipgloss.NewStyle().Foreground(lipgloss.Color("#a39b92")),
		note:    DimStyle,
		hint:    DimStyle,
	}
}

func newSelectModel(title string, items []SelectItem) selectModel {
	return selectModel{
		title:    title,
		items:    items,
		selected: -1,
		styles:   newSelectStyles(),
	}
}

// Init implements tea.Model.
func (m selectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.items) - 1
	case "enter", " ":
		m.selected = m.cursor
		return m, tea.Quit
	case "ctrl+c", "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key.String()[0] - '1')
		if idx < len(m.items) {
			m.selected = idx
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m selectModel) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(m.styles.title.Render(m.title))
		b.WriteString("\n")
	}

	hint := "↑/↓ move • enter choose • q cancel"
	if NoColor {
		hint = "up/down move, enter choose, q cancel"
	}
	b.WriteString(m.styles.hint.Render(hint))
	b.WriteString("\n\n")

	for i, item := range m.items {
		if i == m.cursor {
			marker := "› "
			if NoColor {
				marker = "> "
			}
			b.WriteString(m.styles.cursor.Render(marker))
			b.WriteString(m.styles.current.Render(item.Label))
		} else {
			b.WriteString("  ")
			b.WriteString(m.styles.other.Render(item.Label))
		}
		if item.Note != "" {
			b.WriteString("  ")
			b.WriteString(m.styles.note.Render(item.Note))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Select shows an arrow-key selector and returns the chosen index.
func Select(title string, items []SelectItem) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("nothing to choose from")
	}
	scope, err := beginPrompt()
	if err != nil {
		return -1, err
	}

	p := tea.NewProgram(newSelectModel(title, items), tea.WithContext(scope.ctx), tea.WithOutput(statusOut))
	finalModel, err := p.Run()
	if err != nil {
		return -1, scope.settle(fmt.Errorf("selector failed: %w", err))
	}

	result := finalModel.(selectModel)
	if result.aborted || result.selected < 0 {
		return -1, ErrAborted
	}
	return result.selected, nil
}
