package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/cache"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response snapshot cache",
	Long: `Manage the snapshot cache under ~/.mastostat.

Every successful API response is recorded so reports can be re-rendered
with --offline. The cache holds raw responses only, never rendered reports.

Examples:
  mastostat cache stats    # Show cache contents
  mastostat cache clear    # Remove all snapshots`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached snapshots",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// openCacheForCommand opens the cache at the configured location, creating
// the data directory if needed.
func openCacheForCommand() (*cache.Cache, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		dir, err = config.EnsureDataDir()
		if err != nil {
			return nil, err
		}
	}

	return cache.Open(dir)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCacheForCommand()
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.GetStats()
	if err != nil {
		return err
	}

	fmt.Printf("Cache: %s\n", c.Path())
	fmt.Printf("Snapshots: %d\n", stats.Snapshots)
	fmt.Printf("Instances: %d\n", stats.Instances)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCacheForCommand()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(); err != nil {
		return err
	}

	fmt.Println("Cache cleared")
	return nil
}
