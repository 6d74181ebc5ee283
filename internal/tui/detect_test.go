package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectOutputMode(t *testing.T) {
	tests := []struct {
		name        string
		forcePlain  bool
		forceStyled bool
		noColor     bool
		env         map[string]string
		terminal    bool
		want        OutputMode
	}{
		{name: "terminal", terminal: true, want: OutputModeInteractive},
		{name: "pipe", terminal: false, want: OutputModePlain},
		{name: "force plain", forcePlain: true, terminal: true, want: OutputModePlain},
		{name: "force styled", forceStyled: true, want: OutputModeStyled},
		{name: "no color flag", noColor: true, terminal: true, want: OutputModePlain},
		{name: "NO_COLOR env", env: map[string]string{"NO_COLOR": "1"}, terminal: true, want: OutputModePlain},
		{name: "CI", env: map[string]string{"CI": "true"}, terminal: true, want: OutputModePlain},
		{name: "plain beats styled", forcePlain: true, forceStyled: true, want: OutputModePlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "")
			t.Setenv("CI", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			orig := isTerminal
			isTerminal = func() bool { return tt.terminal }
			t.Cleanup(func() { isTerminal = orig })

			assert.Equal(t, tt.want, DetectOutputMode(tt.forcePlain, tt.forceStyled, tt.noColor))
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "plain", OutputModePlain.String())
	assert.Equal(t, "styled", OutputModeStyled.String())
	assert.Equal(t, "interactive", OutputModeInteractive.String())
	assert.Equal(t, "unknown", OutputMode(42).String())
	assert.Equal(t, "detail", ViewStateDetail.String())
}

func TestTerminalWidth(t *testing.T) {
	assert.Positive(t, TerminalWidth())
}

func TestRenderLoading(t *testing.T) {
	assert.Equal(t, "Loading...", RenderLoading(nil))
	l := NewLoadingState()
	l.SetMessage("Loading: 1/2 books (50%)")
	assert.Contains(t, RenderLoading(l), "Loading: 1/2 books (50%)")
	assert.NotNil(t, l.Init())
}
