package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/wantlist/internal/cli"
	"github.com/shelfwatch/wantlist/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "wantlist", root.Use)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error returns 0", err: nil, want: 0},
		{name: "generic error", err: errors.New("boom"), want: cli.ExitCodeError},
		{
			name: "ExitError",
			err:  &cli.ExitError{ExitCode: cli.ExitCodeLookupErrors, Reason: "3 lookup(s) failed"},
			want: 2,
		},
		{
			name: "wrapped ExitError",
			err:  fmt.Errorf("outer: %w", &cli.ExitError{ExitCode: 42, Reason: "custom"}),
			want: 42,
		},
		{
			name: "joined ExitError",
			err:  errors.Join(errors.New("outer"), &cli.ExitError{ExitCode: 3, Reason: "joined"}),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRun(t *testing.T) {
	t.Setenv("WANTLIST_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	assert.Equal(t, 0, run([]string{"version", "--short"}))
	assert.Equal(t, cli.ExitCodeError, run([]string{"no-such-command"}))
	assert.Equal(t, cli.ExitCodeError, run([]string{"books", "--page-size", "7"}))
}
