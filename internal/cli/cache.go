package cli

import (
	"fmt"

	"github.com/citewatch/citewatch/internal/pipeline"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the verification cache",
	Long: `Manage the on-disk verification cache.

DOI lookups are cached for 7 days, bibliographic searches for 1 hour.
Expired entries are evicted automatically at startup.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and disk usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipeline.NewPipeline(loadConfig())
		if err != nil {
			return fmt.Errorf("error creating pipeline: %w", err)
		}
		stats, err := p.CacheStats()
		if err != nil {
			return err
		}
		fmt.Printf("Entries:  %d\n", stats.TotalEntries)
		fmt.Printf("Expired:  %d\n", stats.ExpiredEntries)
		fmt.Printf("Size:     %d bytes\n", stats.DiskBytes)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached verification results",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipeline.NewPipeline(loadConfig())
		if err != nil {
			return fmt.Errorf("error creating pipeline: %w", err)
		}
		cleared, err := p.ClearCache()
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d cache entries\n", cleared)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
