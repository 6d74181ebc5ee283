// Package config loads wantlist settings from ~/.wantlist/config.yaml, an
// optional project overlay, a .env file and WANTLIST_* environment variables,
// in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shelfwatch/wantlist/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WANTLIST_"

// Defaults.
const (
	DefaultUser           = "mekBot"
	DefaultShelf          = "want-to-read"
	DefaultBaseURL        = "https://openlibrary.org"
	DefaultTimeoutSeconds = 30
	DefaultConcurrency    = 8
	MaxConcurrency        = 64
	DefaultFormat         = "table"
	DefaultPageSize       = 10
	DefaultSort           = "title:asc"
	DefaultCacheBackend   = "file"
	DefaultCacheTTL       = 3600
	MinCacheTTL           = 60
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPrefix    = "wantlist:"
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "console"

	configFileName = "config.yaml"
	dirPerm        = 0o700
	filePerm       = 0o600
)

//nolint:gochecknoglobals // Fixed option lists.
var (
	validFormats   = []string{"table", "json", "ndjson", "csv"}
	validShelves   = []string{"want-to-read", "currently-reading", "already-read"}
	validBackends  = []string{"file", "redis", "none"}
	validLogLevels = []string{"trace", "debug", "info", "warn", "error"}
	validPageSizes = []int{10, 50, 100}
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full wantlist configuration.
type Config struct {
	OpenLibrary OpenLibraryConfig `yaml:"openlibrary" envPrefix:"OPENLIBRARY_"`
	Output      OutputConfig      `yaml:"output"      envPrefix:"OUTPUT_"`
	Cache       CacheConfig       `yaml:"cache"       envPrefix:"CACHE_"`
	Logging     LoggingConfig     `yaml:"logging"     envPrefix:"LOG_"`

	path string
}

// OpenLibraryConfig selects the account and bounds the request fan-out.
type OpenLibraryConfig struct {
	BaseURL        string `yaml:"base_url"        env:"BASE_URL"`
	User           string `yaml:"user"            env:"USER"`
	Shelf          string `yaml:"shelf"           env:"SHELF"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
	Concurrency    int    `yaml:"concurrency"     env:"CONCURRENCY"`
	MaxPages       int    `yaml:"max_pages"       env:"MAX_PAGES"`
	UserAgent      string `yaml:"user_agent"      env:"USER_AGENT"`
}

// OutputConfig holds rendering defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" env:"FORMAT"`
	PageSize      int    `yaml:"page_size"      env:"PAGE_SIZE"`
	Sort          string `yaml:"sort"           env:"SORT"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Enabled    bool        `yaml:"enabled"     env:"ENABLED"`
	Backend    string      `yaml:"backend"     env:"BACKEND"`
	Directory  string      `yaml:"directory"   env:"DIR"`
	TTLSeconds int         `yaml:"ttl_seconds" env:"TTL"`
	Redis      RedisConfig `yaml:"redis"       envPrefix:"REDIS_"`
}

// RedisConfig is used when Cache.Backend is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db"       env:"DB"`
	Prefix   string `yaml:"prefix"   env:"PREFIX"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file"   env:"FILE"`
	Caller bool   `yaml:"caller" env:"CALLER"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cacheDir := ""
	if dir, err := GetConfigDir(); err == nil {
		cacheDir = filepath.Join(dir, "cache")
	}
	return &Config{
		OpenLibrary: OpenLibraryConfig{
			BaseURL:        DefaultBaseURL,
			User:           DefaultUser,
			Shelf:          DefaultShelf,
			TimeoutSeconds: DefaultTimeoutSeconds,
			Concurrency:    DefaultConcurrency,
		},
		Output: OutputConfig{
			DefaultFormat: DefaultFormat,
			PageSize:      DefaultPageSize,
			Sort:          DefaultSort,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    DefaultCacheBackend,
			Directory:  cacheDir,
			TTLSeconds: DefaultCacheTTL,
			Redis: RedisConfig{
				Addr:   DefaultRedisAddr,
				Prefix: DefaultRedisPrefix,
			},
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// New returns the defaults overlaid with the user config file and the
// environment. Load errors are ignored; use Load to see them.
func New() *Config {
	cfg, err := Load(DefaultConfigPath())
	if err != nil {
		return Default()
	}
	return cfg
}

// Load reads path (a missing file is not an error), then applies .env and
// WANTLIST_* overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err = yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads ./.env when present and applies WANTLIST_* variables.
// Variables already set in the environment win over .env entries.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load(".env")
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing %s environment: %w", EnvPrefix, err)
	}
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	c.path = path
	return nil
}

// Validate reports every invalid value, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.OpenLibrary.User) == "" {
		add("openlibrary.user cannot be empty")
	}
	if !slices.Contains(validShelves, c.OpenLibrary.Shelf) {
		add("openlibrary.shelf %q must be one of %s", c.OpenLibrary.Shelf, strings.Join(validShelves, ", "))
	}
	if !strings.HasPrefix(c.OpenLibrary.BaseURL, "http://") && !strings.HasPrefix(c.OpenLibrary.BaseURL, "https://") {
		add("openlibrary.base_url %q must be an http(s) URL", c.OpenLibrary.BaseURL)
	}
	if c.OpenLibrary.TimeoutSeconds <= 0 {
		add("openlibrary.timeout_seconds must be positive")
	}
	if c.OpenLibrary.Concurrency < 1 || c.OpenLibrary.Concurrency > MaxConcurrency {
		add("openlibrary.concurrency must be between 1 and %d", MaxConcurrency)
	}
	if c.OpenLibrary.MaxPages < 0 {
		add("openlibrary.max_pages cannot be negative")
	}
	if !slices.Contains(validFormats, c.Output.DefaultFormat) {
		add("output.default_format %q must be one of %s", c.Output.DefaultFormat, strings.Join(validFormats, ", "))
	}
	if !slices.Contains(validPageSizes, c.Output.PageSize) {
		add("output.page_size must be 10, 50 or 100")
	}
	if !slices.Contains(validBackends, c.Cache.Backend) {
		add("cache.backend %q must be one of %s", c.Cache.Backend, strings.Join(validBackends, ", "))
	}
	if c.Cache.Enabled && c.Cache.TTLSeconds < MinCacheTTL {
		add("cache.ttl_seconds must be at least %d", MinCacheTTL)
	}
	if c.Cache.Enabled && c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		add("cache.redis.addr is required for the redis backend")
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level %q must be one of %s", c.Logging.Level, strings.Join(validLogLevels, ", "))
	}
	if c.Logging.Format != logging.FormatConsole && c.Logging.Format != logging.FormatJSON {
		add("logging.format %q must be console or json", c.Logging.Format)
	}

	return errors.Join(errs...)
}

// ToLoggingConfig converts the logging section for logging.NewLoggerWithPath.
func (c *Config) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if c.Logging.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: output,
		File:   c.Logging.File,
		Caller: c.Logging.Caller,
	}
}

// CacheBackend returns the effective backend, "none" when caching is disabled.
func (c *Config) CacheBackend() string {
	if !c.Cache.Enabled {
		return "none"
	}
	return c.Cache.Backend
}

// DefaultConfigPath is ~/.wantlist/config.yaml, or "" when no home is known.
func DefaultConfigPath() string {
	dir, err := GetConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configFileName)
}
