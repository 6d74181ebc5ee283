package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shelfwatch/wantlist/internal/config"
)

const (
	configFileName = "config.yaml"
	redactedValue  = "********"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// Inside a project (a .wantlist directory was found, or --project is given) it
// writes .wantlist/config.yaml and a .gitignore; otherwise the user config.
func NewConfigInitCmd() *cobra.Command {
	var (
		force   bool
		global  bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

When a project .wantlist/ directory is found (or --project is given), creates
.wantlist/config.yaml with a .gitignore that keeps caches and logs out of git.
Use --global to write ~/.wantlist/config.yaml even inside a project.`,
		Example: `  # Create the user configuration
  wantlist config init

  # Create a project configuration in the current directory
  wantlist config init --project

  # Overwrite an existing file
  wantlist config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if global && project {
				return errors.New("--global and --project are mutually exclusive")
			}

			projectDir := config.GetResolvedProjectDir()
			if project && projectDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolving working directory: %w", err)
				}
				projectDir = filepath.Join(wd, config.ProjectDirName)
			}

			if projectDir != "" && !global {
				return initProjectConfig(cmd, projectDir, force)
			}
			return initGlobalConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "write the user configuration even inside a project")
	cmd.Flags().BoolVar(&project, "project", false, "create .wantlist/ in the current directory")

	return cmd
}

// checkWritable refuses to replace an existing file unless force is set.
func checkWritable(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}

// initProjectConfig creates projectDir/config.yaml with a .gitignore.
func initProjectConfig(cmd *cobra.Command, projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, configFileName)
	if err := checkWritable(configPath, force); err != nil {
		return err
	}

	if err := config.Default().Save(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	created, err := config.EnsureGitignore(projectDir)
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore to keep caches and logs out of git\n")
	}
	return nil
}

// initGlobalConfig creates the user config file.
func initGlobalConfig(cmd *cobra.Command, force bool) error {
	configPath := config.DefaultConfigPath()
	if configPath == "" {
		return errors.New("cannot determine the configuration directory")
	}
	if err := checkWritable(configPath, force); err != nil {
		return err
	}

	if err := config.Default().Save(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", configPath)
	return nil
}

// NewConfigShowCmd creates the config show command that prints the effective configuration.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration after the config file, project overlay, .env file
and WANTLIST_* environment variables have been applied. Secrets are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *config.GetGlobalConfig()
			if cfg.Cache.Redis.Password != "" {
				cfg.Cache.Redis.Password = redactedValue
			}

			if path := cfg.Path(); path != "" {
				cmd.Printf("# %s\n", path)
			}
			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration: shelf and user, Open Library URL and
timeouts, output defaults, cache backend and TTL, and logging settings.`,
		Example: `  # Validate current configuration
  wantlist config validate

  # Validate and show detailed information
  wantlist config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}

			cmd.Printf("✅ Configuration is valid\n")
			if verbose {
				printVerboseDetails(cmd, cfg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	if path := cfg.Path(); path != "" {
		cmd.Printf("Config file: %s\n", path)
	}
	if projectDir := config.GetResolvedProjectDir(); projectDir != "" {
		cmd.Printf("Project directory: %s\n", projectDir)
	}
	cmd.Printf("Open Library: %s (user %s, shelf %s)\n",
		cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.User, cfg.OpenLibrary.Shelf)
	cmd.Printf("Concurrency: %d\n", cfg.OpenLibrary.Concurrency)
	cmd.Printf("Output: %s, %d rows per page, sort %s\n",
		cfg.Output.DefaultFormat, cfg.Output.PageSize, cfg.Output.Sort)
	cmd.Printf("Cache: %s (ttl %ds)\n", cfg.CacheBackend(), cfg.Cache.TTLSeconds)
	cmd.Printf("Logging: %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
}
