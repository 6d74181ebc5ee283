package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// HomeEnvVar overrides the configuration directory.
const HomeEnvVar = "WANTLIST_HOME"

var (
	globalConfig   *Config      //nolint:gochecknoglobals // Singleton pattern for configuration
	globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects globalConfig
)

// SetGlobalConfig installs cfg as the process-wide configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the process-wide configuration, loading it with New on first use.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	cfg := globalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if globalConfig == nil {
		globalConfig = New()
	}
	return globalConfig
}

// ResetGlobalConfigForTest drops the cached configuration.
func ResetGlobalConfigForTest() {
	SetGlobalConfig(nil)
}

// GetConfigDir returns $WANTLIST_HOME or ~/.wantlist.
func GetConfigDir() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wantlist"), nil
}

// EnsureConfigDir creates the configuration directory.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, dirPerm)
}

// EnsureLogDir creates the parent directory of the configured log file, if any.
func EnsureLogDir(cfg *Config) error {
	if cfg == nil || cfg.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// EnsureCacheDir creates the file cache directory when the file backend is active.
func EnsureCacheDir(cfg *Config) error {
	if cfg == nil || cfg.CacheBackend() != "file" || cfg.Cache.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Cache.Directory, dirPerm); err != nil {
		return fmt.Errorf("failed to create cache directory %q: %w", cfg.Cache.Directory, err)
	}
	return nil
}
