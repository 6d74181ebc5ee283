package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item.
type RenderFunc[T any] func(item T, selected bool) string

// VirtualListModel is a scrollable list that renders only its visible window.
type VirtualListModel[T any] struct {
	items      []T
	renderFunc RenderFunc[T]
	selected   int
	from, to   int
	height     int
	width      int
}

// NewVirtualListModel creates a list of items shown height rows at a time.
func NewVirtualListModel[T any](items []T, height, width int, renderFunc RenderFunc[T]) *VirtualListModel[T] {
	m := &VirtualListModel[T]{
		items:      items,
		renderFunc: renderFunc,
		height:     max(height, 1),
		width:      width,
	}
	m.updateVisibleRange()
	return m
}

// Init implements tea.Model.
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update moves the selection on up/down/j/k/pgup/pgdown/home/end.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.updateVisibleRange()
	}
	return m, nil
}

func (m *VirtualListModel[T]) handleKey(key string) {
	if len(m.items) == 0 {
		return
	}
	switch key {
	case "up", "k":
		m.SetSelected(m.selected - 1)
	case "down", "j":
		m.SetSelected(m.selected + 1)
	case "pgup":
		m.SetSelected(m.selected - m.height)
	case "pgdown":
		m.SetSelected(m.selected + m.height)
	case "home", "g":
		m.SetSelected(0)
	case "end", "G":
		m.SetSelected(len(m.items) - 1)
	}
}

// updateVisibleRange keeps the selection inside [from, to).
func (m *VirtualListModel[T]) updateVisibleRange() {
	if len(m.items) == 0 {
		m.from, m.to = 0, 0
		return
	}
	if m.selected < m.from {
		m.from = m.selected
	}
	if m.selected >= m.from+m.height {
		m.from = m.selected - m.height + 1
	}
	m.from = max(0, min(m.from, len(m.items)-m.height))
	m.to = min(m.from+m.height, len(m.items))
}

// View renders the visible window.
func (m *VirtualListModel[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}
	lines := make([]string, 0, m.to-m.from)
	for i := m.from; i < m.to; i++ {
		lines = append(lines, m.renderFunc(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// ItemCount returns the number of items.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Selected returns the selected index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected moves the selection, clamped to the list.
func (m *VirtualListModel[T]) SetSelected(index int) {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	m.selected = max(0, min(index, len(m.items)-1))
	m.updateVisibleRange()
}

// VisibleFrom is the first rendered index.
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.from
}

// VisibleTo is one past the last rendered index.
func (m *VirtualListModel[T]) VisibleTo() int {
	return m.to
}

// Height returns the viewport height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// SelectedItem returns the selected item, or nil for an empty list.
func (m *VirtualListModel[T]) SelectedItem() *T {
	if len(m.items) == 0 {
		return nil
	}
	return &m.items[m.selected]
}

// ScrollInfo describes the window as "from-to of total", 1-based.
func (m *VirtualListModel[T]) ScrollInfo() (from, to, total int) { //nolint:nonamedreturns // Documented triple.
	if len(m.items) == 0 {
		return 0, 0, 0
	}
	return m.from + 1, m.to, len(m.items)
}
