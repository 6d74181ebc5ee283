package listview

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(item string, selected bool) string {
	if selected {
		return "> " + item
	}
	return "  " + item
}

func subjects(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Subject %d", i)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestVirtualListModel_Window(t *testing.T) {
	m := NewVirtualListModel(subjects(100), 5, 40, render)
	assert.Equal(t, 0, m.VisibleFrom())
	assert.Equal(t, 5, m.VisibleTo())

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "> Subject 0", lines[0])

	for range 7 {
		m.Update(key("down"))
	}
	assert.Equal(t, 7, m.Selected())
	assert.Equal(t, 3, m.VisibleFrom())
	assert.Equal(t, 8, m.VisibleTo())

	m.Update(key("end"))
	assert.Equal(t, 99, m.Selected())
	assert.Equal(t, 95, m.VisibleFrom())
	from, to, total := m.ScrollInfo()
	assert.Equal(t, []int{96, 100, 100}, []int{from, to, total})

	m.Update(key("home"))
	assert.Equal(t, 0, m.Selected())
	m.Update(key("pgdown"))
	assert.Equal(t, 5, m.Selected())
	m.Update(key("k"))
	assert.Equal(t, 4, m.Selected())
	assert.Equal(t, "Subject 4", *m.SelectedItem())
}

func TestVirtualListModel_Short(t *testing.T) {
	m := NewVirtualListModel(subjects(2), 10, 40, render)
	assert.Equal(t, 2, m.VisibleTo())
	m.Update(key("down"))
	m.Update(key("down"))
	assert.Equal(t, 1, m.Selected())
	assert.Equal(t, "  Subject 0\n> Subject 1", m.View())
}

func TestVirtualListModel_Empty(t *testing.T) {
	m := NewVirtualListModel([]string{}, 5, 40, render)
	m.Update(key("down"))
	assert.Empty(t, m.View())
	assert.Nil(t, m.SelectedItem())
	assert.Equal(t, 0, m.ItemCount())
	from, to, total := m.ScrollInfo()
	assert.Zero(t, from+to+total)
}
