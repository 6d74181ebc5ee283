package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/wantlist/internal/config"
	"github.com/shelfwatch/wantlist/internal/logging"
)

// isolate points WANTLIST_HOME and the working directory at temp dirs so
// neither the developer's config nor a stray .env leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)
	t.Chdir(t.TempDir())
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func TestDefault(t *testing.T) {
	home := isolate(t)
	cfg := config.Default()

	assert.Equal(t, "mekBot", cfg.OpenLibrary.User)
	assert.Equal(t, "want-to-read", cfg.OpenLibrary.Shelf)
	assert.Equal(t, "https://openlibrary.org", cfg.OpenLibrary.BaseURL)
	assert.Equal(t, 8, cfg.OpenLibrary.Concurrency)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)
	assert.Equal(t, 10, cfg.Output.PageSize)
	assert.Equal(t, "title:asc", cfg.Output.Sort)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.Equal(t, filepath.Join(home, "cache"), cfg.Cache.Directory)
	assert.Equal(t, "wantlist:", cfg.Cache.Redis.Prefix)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openlibrary:
  user: someone
  concurrency: 4
output:
  default_format: json
  page_size: 50
cache:
  enabled: true
  backend: redis
  ttl_seconds: 600
  redis:
    addr: redis:6379
logging:
  level: debug
  format: json
`), 0o600))

	t.Setenv("WANTLIST_OPENLIBRARY_CONCURRENCY", "16")
	t.Setenv("WANTLIST_CACHE_REDIS_DB", "3")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "someone", cfg.OpenLibrary.User)
	assert.Equal(t, 16, cfg.OpenLibrary.Concurrency, "environment wins over the file")
	assert.Equal(t, "https://openlibrary.org", cfg.OpenLibrary.BaseURL, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.Equal(t, 50, cfg.Output.PageSize)
	assert.Equal(t, "redis", cfg.CacheBackend())
	assert.Equal(t, 3, cfg.Cache.Redis.DB)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	require.NoError(t, cfg.Validate())

	logCfg := cfg.ToLoggingConfig()
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, logging.OutputStderr, logCfg.Output)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("WANTLIST_OPENLIBRARY_USER=fromdotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WANTLIST_OPENLIBRARY_USER") })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", cfg.OpenLibrary.User)
}

func TestLoad_Errors(t *testing.T) {
	home := isolate(t)

	cfg, err := config.Load(filepath.Join(home, "missing.yaml"))
	require.NoError(t, err, "a missing file is not an error")
	assert.Equal(t, "mekBot", cfg.OpenLibrary.User)

	bad := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("openlibrary: [unclosed"), 0o600))
	_, err = config.Load(bad)
	require.Error(t, err)

	t.Setenv("WANTLIST_OPENLIBRARY_CONCURRENCY", "lots")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "empty user", mutate: func(c *config.Config) { c.OpenLibrary.User = " " }, want: "openlibrary.user"},
		{name: "bad shelf", mutate: func(c *config.Config) { c.OpenLibrary.Shelf = "to-burn" }, want: "openlibrary.shelf"},
		{name: "bad url", mutate: func(c *config.Config) { c.OpenLibrary.BaseURL = "openlibrary.org" }, want: "base_url"},
		{name: "concurrency", mutate: func(c *config.Config) { c.OpenLibrary.Concurrency = 0 }, want: "concurrency"},
		{name: "format", mutate: func(c *config.Config) { c.Output.DefaultFormat = "xml" }, want: "default_format"},
		{name: "page size", mutate: func(c *config.Config) { c.Output.PageSize = 25 }, want: "page_size"},
		{name: "backend", mutate: func(c *config.Config) { c.Cache.Backend = "memcached" }, want: "cache.backend"},
		{name: "ttl", mutate: func(c *config.Config) { c.Cache.TTLSeconds = 5 }, want: "ttl_seconds"},
		{name: "redis addr", mutate: func(c *config.Config) {
			c.Cache.Backend = "redis"
			c.Cache.Redis.Addr = ""
		}, want: "redis.addr"},
		{name: "log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, want: "logging.level"},
		{name: "log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, want: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("ttl ignored when disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Enabled = false
		cfg.Cache.TTLSeconds = 0
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "none", cfg.CacheBackend())
	})
}

func TestSave(t *testing.T) {
	home := isolate(t)
	cfg := config.Default()
	cfg.OpenLibrary.User = "saved"
	cfg.Logging.File = filepath.Join(home, "logs", "wantlist.log")

	path := filepath.Join(home, "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))
	assert.Equal(t, path, cfg.Path())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.OpenLibrary.User)
	assert.Equal(t, logging.OutputFile, loaded.ToLoggingConfig().Output)

	require.NoError(t, config.EnsureLogDir(loaded))
	_, err = os.Stat(filepath.Join(home, "logs"))
	assert.NoError(t, err)
}

func TestGlobalConfig(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("openlibrary:\n  user: globaluser\n"), 0o600))

	assert.Equal(t, filepath.Join(home, "config.yaml"), config.DefaultConfigPath())
	cfg := config.GetGlobalConfig()
	assert.Equal(t, "globaluser", cfg.OpenLibrary.User)
	assert.Same(t, cfg, config.GetGlobalConfig())

	custom := config.Default()
	config.SetGlobalConfig(custom)
	assert.Same(t, custom, config.GetGlobalConfig())
}

func TestEnsureDirs(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.RemoveAll(home))

	require.NoError(t, config.EnsureConfigDir())
	info, err := os.Stat(home)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	cfg := config.Default()
	require.NoError(t, config.EnsureCacheDir(cfg))
	_, err = os.Stat(cfg.Cache.Directory)
	assert.NoError(t, err)

	assert.NoError(t, config.EnsureLogDir(nil))
	assert.NoError(t, config.EnsureCacheDir(nil))
}
