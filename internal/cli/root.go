package cli

import (
	"github.com/spf13/cobra"

	"github.com/eleven-am/trellis/internal/logger"
	"github.com/eleven-am/trellis/pkg/trellis"
)

// Global configuration variables
var (
	configFile    string
	trellisConfig *TrellisConfig
	databaseURL   string
	debug         bool
	verbose       bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trellis",
		Short: "Trellis - ordered hierarchical entity store",
		Long: `Trellis maintains ordered, multi-tenant kanban hierarchies
(workspaces, boards, columns, cards) on PostgreSQL with optimistic
concurrency control on every mutation.

The CLI manages the store's schema and housekeeping:
- Schema migration against the target layout
- Cleanup of orphaned rows
- Version and build information`,
		Version: trellis.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case verbose:
				logger.SetLevel(logger.LevelDebug)
			case debug:
				logger.SetLevel(logger.LevelInfo)
			}

			var err error
			trellisConfig, err = LoadTrellisConfig(configFile)
			if err != nil {
				logger.CLI().Warn("failed to load config file: %v", err)
			}

			if trellisConfig != nil && databaseURL == "" && trellisConfig.Database.URL != "" {
				databaseURL = trellisConfig.Database.URL
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: trellis.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
