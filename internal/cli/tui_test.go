package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(t *testing.T, m MatchListModel, msgs ...tea.Msg) (MatchListModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(MatchListModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func TestMatchListNavigation(t *testing.T) {
	m := NewMatchListModel("Select organization", "minstry",
		[]string{"ministry-of-justice", "ministry-of-defence", "ministry-of-housing"})

	m, _ = press(t, m, keyDown, keyDown, keyDown)
	if m.Cursor != 2 {
		t.Errorf("cursor after 3 downs = %d, want 2 (clamped)", m.Cursor)
	}
	m, _ = press(t, m, keyUp)
	if m.Cursor != 1 {
		t.Errorf("cursor after up = %d, want 1", m.Cursor)
	}

	m, cmd := press(t, m, keyEnter)
	if m.Selected != "ministry-of-defence" {
		t.Errorf("Selected = %q, want ministry-of-defence", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestMatchListQuitWithoutSelection(t *testing.T) {
	m := NewMatchListModel("Select package", "q", []string{"a", "b"})
	m, cmd := press(t, m, keyQuit)
	if m.Selected != "" {
		t.Errorf("Selected = %q, want none", m.Selected)
	}
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestMatchListScrolls(t *testing.T) {
	names := make([]string, 20)
	for i := range names {
		names[i] = strings.Repeat("x", i+1)
	}
	m := NewMatchListModel("Select", "x", names)
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 11})
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}
	for range 7 {
		m, _ = press(t, m, keyDown)
	}
	if m.Cursor != 7 || m.Offset != 3 {
		t.Errorf("cursor/offset = %d/%d, want 7/3", m.Cursor, m.Offset)
	}
}

func TestMatchListView(t *testing.T) {
	m := NewMatchListModel("Select organization", "minstry",
		[]string{"ministry-of-justice", "ministry-of-defence"})
	view := m.View()
	for _, want := range []string{"Select organization", "ministry-of-justice", "ministry-of-defence", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
