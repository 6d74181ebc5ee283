package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how results are written to stdout.
type OutputMode int

// Output modes.
const (
	// OutputModePlain is tab-aligned text without color.
	OutputModePlain OutputMode = iota
	// OutputModeStyled is a lipgloss-rendered table printed once.
	OutputModeStyled
	// OutputModeInteractive runs the Bubble Tea table.
	OutputModeInteractive
)

func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

const fallbackTerminalWidth = 80

// isTerminal is swapped in tests.
//
//nolint:gochecknoglobals // Test seam.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// DetectOutputMode picks the output mode. forcePlain wins over everything;
// NO_COLOR or noColor disable styling; CI and non-terminal stdout never get the
// interactive table; forceStyled prints a styled table instead of running it.
func DetectOutputMode(forcePlain, forceStyled, noColor bool) OutputMode {
	if forcePlain {
		return OutputModePlain
	}
	if noColor || os.Getenv("NO_COLOR") != "" {
		return OutputModePlain
	}
	if forceStyled {
		return OutputModeStyled
	}
	if os.Getenv("CI") != "" || !isTerminal() {
		return OutputModePlain
	}
	return OutputModeInteractive
}

// TerminalWidth returns the stdout width, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTerminalWidth
	}
	return width
}
