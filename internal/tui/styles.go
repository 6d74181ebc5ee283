package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants.
const (
	defaultWidth  = 120
	defaultHeight = 30
	summaryHeight = 6
	minHeight     = 5
	borderPadding = 4
)

// Palette.
const (
	colorAccent  = lipgloss.Color("39")
	colorSubtle  = lipgloss.Color("241")
	colorText    = lipgloss.Color("252")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("196")
	colorInfoBg  = lipgloss.Color("24")
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	LabelStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	ValueStyle  = lipgloss.NewStyle().Foreground(colorText)
	SubtleStyle = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true)

	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(colorInfoBg)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorSubtle).
				BorderBottom(true)
	TableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)
