package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/wantlist/internal/config"
	"github.com/shelfwatch/wantlist/internal/engine/cache"
)

// NewCacheStatsCmd creates the cache stats command.
func NewCacheStatsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show response cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()

			store, closeFn, err := openCache(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			if !store.IsEnabled() {
				cmd.Println("Cache is disabled")
				return nil
			}

			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("reading cache stats: %w", err)
			}

			if output == outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			cmd.Printf("Backend: %s\n", stats.Backend)
			if stats.Backend == cache.BackendFile {
				cmd.Printf("Directory: %s\n", cfg.Cache.Directory)
			}
			cmd.Printf("Entries: %d (%d expired)\n", stats.Entries, stats.Expired)
			if stats.Bytes > 0 {
				cmd.Printf("Size: %d bytes\n", stats.Bytes)
			}
			cmd.Printf("TTL: %s\n", cache.FormatDuration(time.Duration(cfg.Cache.TTLSeconds)*time.Second))
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", outputTable, "output format: table or json")
	return cmd
}

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()

			store, closeFn, err := openCache(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			if !store.IsEnabled() {
				cmd.Println("Cache is disabled, nothing to clear")
				return nil
			}
			if err = store.Clear(ctx); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			cmd.Println("Cache cleared")
			return nil
		},
	}
}

// NewCachePruneCmd creates the cache prune command, which drops expired file
// entries. Redis expires keys on its own.
func NewCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries from the file cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()

			store, closeFn, err := openCache(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			fileStore, ok := store.(*cache.FileStore)
			if !ok || !fileStore.IsEnabled() {
				cmd.Printf("Nothing to prune for the %s backend\n", cfg.CacheBackend())
				return nil
			}
			removed, err := fileStore.CleanupExpired()
			if err != nil {
				return fmt.Errorf("pruning cache: %w", err)
			}
			cmd.Printf("Removed %d expired entries\n", removed)
			return nil
		},
	}
}
