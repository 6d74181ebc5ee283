package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/wantlist/internal/config"
)

func TestResolveProjectDir(t *testing.T) {
	ctx := context.Background()

	t.Run("flag", func(t *testing.T) {
		t.Setenv(config.ProjectDirEnvVar, t.TempDir())
		flagDir := t.TempDir()
		got := config.ResolveProjectDir(ctx, flagDir, "/does/not/matter")
		assert.Equal(t, filepath.Join(flagDir, ".wantlist"), got)
	})

	t.Run("flag already ends in .wantlist", func(t *testing.T) {
		t.Setenv(config.ProjectDirEnvVar, "")
		dir := filepath.Join(t.TempDir(), ".wantlist")
		assert.Equal(t, dir, config.ResolveProjectDir(ctx, dir, ""))
	})

	t.Run("env", func(t *testing.T) {
		envDir := t.TempDir()
		t.Setenv(config.ProjectDirEnvVar, envDir)
		assert.Equal(t, filepath.Join(envDir, ".wantlist"), config.ResolveProjectDir(ctx, "", "/does/not/matter"))
	})

	t.Run("walk up", func(t *testing.T) {
		t.Setenv(config.ProjectDirEnvVar, "")
		t.Setenv(config.HomeEnvVar, t.TempDir())
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".wantlist"), 0o750))
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o750))

		assert.Equal(t, filepath.Join(root, ".wantlist"), config.ResolveProjectDir(ctx, "", nested))
	})

	t.Run("skips user config dir", func(t *testing.T) {
		t.Setenv(config.ProjectDirEnvVar, "")
		root := t.TempDir()
		userDir := filepath.Join(root, ".wantlist")
		require.NoError(t, os.Mkdir(userDir, 0o750))
		t.Setenv(config.HomeEnvVar, userDir)

		assert.Empty(t, config.ResolveProjectDir(ctx, "", root))
	})

	t.Run("none", func(t *testing.T) {
		t.Setenv(config.ProjectDirEnvVar, "")
		assert.Empty(t, config.ResolveProjectDir(ctx, "", ""))
	})
}

func TestNewWithProjectDir(t *testing.T) {
	ctx := context.Background()
	isolate(t)

	assert.Equal(t, "mekBot", config.NewWithProjectDir(ctx, "").OpenLibrary.User)

	projectDir := filepath.Join(t.TempDir(), ".wantlist")
	assert.Equal(t, "mekBot", config.NewWithProjectDir(ctx, projectDir).OpenLibrary.User, "missing overlay")

	require.NoError(t, os.MkdirAll(projectDir, 0o750))
	overlay := filepath.Join(projectDir, "config.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte(`
openlibrary:
  base_url: https://openlibrary.org
  user: bookclub
  shelf: already-read
  timeout_seconds: 10
  concurrency: 2
`), 0o600))
	t.Setenv("WANTLIST_OPENLIBRARY_CONCURRENCY", "5")

	cfg := config.NewWithProjectDir(ctx, projectDir)
	assert.Equal(t, "bookclub", cfg.OpenLibrary.User)
	assert.Equal(t, "already-read", cfg.OpenLibrary.Shelf)
	assert.Equal(t, 5, cfg.OpenLibrary.Concurrency, "environment still wins")
	assert.Equal(t, overlay, cfg.Path())

	require.NoError(t, os.WriteFile(overlay, []byte("openlibrary: [broken"), 0o600))
	assert.Equal(t, "mekBot", config.NewWithProjectDir(ctx, projectDir).OpenLibrary.User)

	config.SetResolvedProjectDir(projectDir)
	t.Cleanup(func() { config.SetResolvedProjectDir("") })
	assert.Equal(t, projectDir, config.GetResolvedProjectDir())
}
