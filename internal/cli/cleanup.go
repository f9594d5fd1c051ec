package cli

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/eleven-am/trellis/internal/logger"
	"github.com/eleven-am/trellis/internal/store"
)

var (
	cleanupTenant string
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Soft-delete orphaned columns",
	Long: `Find columns whose board no longer exists (or is deleted) and
soft-delete them together with their cards. Orphans appear when rows are
purged out of band.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupTenant, "tenant", "", "Tenant to clean up (required)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "List orphans without deleting them")
	cleanupCmd.MarkFlagRequired("tenant")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dsn, err := resolveDSN()
	if err != nil {
		return err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if trellisConfig != nil {
		db.SetMaxOpenConns(trellisConfig.Database.MaxConnections)
	}

	s := store.New(db, storeOptions())

	orphans, err := s.Columns.FindOrphans(ctx, cleanupTenant)
	if err != nil {
		return err
	}

	if len(orphans) == 0 {
		cmd.Println("No orphaned columns found.")
		return nil
	}

	cmd.Printf("Found %d orphaned column(s):\n", len(orphans))
	for _, col := range orphans {
		cmd.Printf("  - %s %q (board %s)\n", col.ID, col.Title, col.BoardID)
	}

	if cleanupDryRun {
		cmd.Println("Dry run, nothing deleted.")
		return nil
	}

	deleted := 0
	for _, col := range orphans {
		if err := s.Columns.Delete(ctx, cleanupTenant, col.ID, nil); err != nil {
			logger.CLI().Error("failed to delete column %s: %v", col.ID, err)
			continue
		}
		deleted++
	}

	cmd.Printf("Deleted %d of %d orphaned column(s).\n", deleted, len(orphans))
	return nil
}

func storeOptions() store.Options {
	var opts store.Options
	if trellisConfig != nil {
		opts.PositionStep = trellisConfig.Store.PositionStep
		opts.PositionBase = trellisConfig.Store.PositionBase
		opts.DefaultLimit = trellisConfig.Store.DefaultLimit
		opts.MaxLimit = trellisConfig.Store.MaxLimit
	}
	return opts
}
