package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/trellis/internal/migrator"
)

var (
	// Database connection flags
	dbHost     string
	dbPort     string
	dbUser     string
	dbPassword string
	dbName     string
	dbSSLMode  string

	// Migration flags
	dryRun              bool
	createDBIfNotExists bool
	allowDestructive    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema",
	Long: `Compare the live database schema with the store's target layout and
apply the difference. Destructive steps are refused unless explicitly
allowed.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&dbHost, "host", "localhost", "Database host")
	migrateCmd.Flags().StringVar(&dbPort, "port", "5432", "Database port")
	migrateCmd.Flags().StringVar(&dbUser, "user", "", "Database user")
	migrateCmd.Flags().StringVar(&dbPassword, "password", "", "Database password")
	migrateCmd.Flags().StringVar(&dbName, "dbname", "", "Database name")
	migrateCmd.Flags().StringVar(&dbSSLMode, "sslmode", "disable", "SSL mode (disable, require, verify-ca, verify-full)")

	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without applying it")
	migrateCmd.Flags().BoolVar(&createDBIfNotExists, "create-if-not-exists", false, "Create the database if it does not exist")
	migrateCmd.Flags().BoolVar(&allowDestructive, "allow-destructive", false, "Allow potentially destructive operations")
}

func resolveDSN() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if dbUser != "" && dbName != "" {
		return migrator.GetDatabaseURL(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode), nil
	}
	return "", fmt.Errorf("database connection required: use --url flag, individual connection flags, or specify in trellis.yaml")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dsn, err := resolveDSN()
	if err != nil {
		return err
	}

	if createDBIfNotExists {
		if err := migrator.EnsureDatabaseExists(dsn); err != nil {
			return err
		}
	}

	config := migrator.NewDBConfig(dsn)
	db, err := config.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	m := migrator.NewMigrator(config)
	statements, changes, err := m.Plan(ctx, db)
	if err != nil {
		return err
	}

	if len(statements) == 0 {
		cmd.Println("Schema is up to date.")
		return nil
	}

	cmd.Printf("Plan: %d change(s)\n", len(changes))
	for _, change := range changes {
		cmd.Printf("  - %s\n", migrator.DescribeChange(change))
	}

	if destructive, descriptions := migrator.CountDestructiveChanges(changes); destructive > 0 && !allowDestructive {
		cmd.Printf("\nRefusing %d destructive change(s) without --allow-destructive:\n", destructive)
		for _, d := range descriptions {
			cmd.Printf("  ! %s\n", d)
		}
		return fmt.Errorf("destructive changes require --allow-destructive")
	}

	if dryRun {
		cmd.Println("\nGenerated SQL (dry run):")
		for _, stmt := range statements {
			cmd.Printf("%s;\n", stmt)
		}
		return nil
	}

	if err := m.Apply(ctx, db, statements); err != nil {
		return err
	}
	cmd.Printf("Applied %d statement(s).\n", len(statements))
	return nil
}
