package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testItems() []SelectItem {
	return []SelectItem{
		{Label: "Alice", Note: "npub1alice…"},
		{Label: "Bob"},
		{Label: "Carol", Note: "since Mar 3"},
	}
}

func press(t *testing.T, m selectModel, msg tea.KeyMsg) (selectModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	return model.(selectModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectModel(t *testing.T) {
	m := newSelectModel("Unfollow", testItems())

	if m.cursor != 0 || m.selected != -1 {
		t.Fatalf("unexpected initial state: cursor %d, selected %d", m.cursor, m.selected)
	}

	m, _ = press(t, m, runes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor at 1 after j, got %d", m.cursor)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Errorf("expected cursor clamped at 2, got %d", m.cursor)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 1 {
		t.Errorf("expected cursor at 1 after up, got %d", m.cursor)
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.selected != 1 {
		t.Errorf("expected selected 1, got %d", m.selected)
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestSelectModelJumps(t *testing.T) {
	m := newSelectModel("", testItems())

	m, _ = press(t, m, runes("G"))
	if m.cursor != 2 {
		t.Errorf("expected cursor at end, got %d", m.cursor)
	}
	m, _ = press(t, m, runes("g"))
	if m.cursor != 0 {
		t.Errorf("expected cursor at start, got %d", m.cursor)
	}
}

func TestSelectModelNumberKeys(t *testing.T) {
	m := newSelectModel("Pick", testItems())

	m, cmd := press(t, m, runes("3"))
	if m.selected != 2 || cmd == nil {
		t.Errorf("expected quick selection of index 2, got %d", m.selected)
	}

	m = newSelectModel("Pick", testItems())
	m, cmd = press(t, m, runes("9"))
	if m.selected != -1 || cmd != nil {
		t.Errorf("out of range number selected %d", m.selected)
	}
}

func TestSelectModelAbort(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEscape}, runes("q"), {Type: tea.KeyCtrlC}} {
		m, cmd := press(t, newSelectModel("Test", testItems()), msg)
		if !m.aborted || cmd == nil {
			t.Errorf("%s did not abort", msg)
		}
	}
}

func TestSelectModelView(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	view := newSelectModel("Unfollow whom?", testItems()).View()
	for _, want := range []string{"Unfollow whom?", "Alice", "Bob", "since Mar 3", "q cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if i := strings.Index(view, ">"); i < 0 || i > strings.Index(view, "Alice") {
		t.Errorf("cursor not on first row:\n%s", view)
	}
}

func TestSelectEmpty(t *testing.T) {
	if _, err := Select("none", nil); err == nil {
		t.Error("expected error for empty selector")
	}
}
