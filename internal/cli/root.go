package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shelfwatch/wantlist/internal/config"
	"github.com/shelfwatch/wantlist/internal/engine/cache"
	"github.com/shelfwatch/wantlist/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the wantlist CLI.
// It loads configuration, wires up logging and tracing, and registers the
// books, author, cache, config and version subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "wantlist",
		Short:         "Browse an Open Library reading log as a sortable table",
		Long:          "wantlist: fetch an Open Library shelf, enrich it with subjects and author details, then sort and page through it",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default is $WANTLIST_HOME/config.yaml or ~/.wantlist/config.yaml)")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding a .wantlist/config.yaml overlay")
	cmd.PersistentFlags().
		String("cache-ttl", "", "cache TTL as seconds or a duration such as 30m (overrides config file and env var)")

	cmd.AddCommand(NewBooksCmd(), NewAuthorCmd(), newCacheCmd(), newConfigCmd(), NewVersionCmd())

	return cmd
}

const rootCmdExample = `  # Show the default want-to-read shelf
  wantlist books

  # Another user's shelf, newest first, 50 rows per page
  wantlist books --user alice --sort firstPublishYear:desc --page-size 50

  # Machine-readable output
  wantlist books --output json --page 2

  # Look up one author
  wantlist author "Ursula K. Le Guin"

  # Inspect or clear the response cache
  wantlist cache stats
  wantlist cache clear

  # Cache responses for a day
  wantlist books --cache-ttl 24h

  # Initialize configuration
  wantlist config init`

// loadConfig resolves the effective configuration and installs it globally.
// An explicit --config file replaces the user config; otherwise a project
// overlay found from the working directory is merged over it.
func loadConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()

	var cfg *config.Config
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		flagDir, _ := cmd.Flags().GetString("project-dir")
		wd, _ := os.Getwd()
		projectDir := config.ResolveProjectDir(ctx, flagDir, wd)
		config.SetResolvedProjectDir(projectDir)
		cfg = config.NewWithProjectDir(ctx, projectDir)
	}

	if raw, _ := cmd.Flags().GetString("cache-ttl"); raw != "" {
		ttl, err := cache.ParseTTL(raw)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl: %w", err)
		}
		cfg.Cache.TTLSeconds = ttl
	}

	config.SetGlobalConfig(cfg)
	return nil
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Response cache commands"}
	cmd.AddCommand(NewCacheStatsCmd(), NewCacheClearCmd(), NewCachePruneCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
