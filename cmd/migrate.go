package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/kashif/pkg/db"
	"github.com/urfave/cli/v3"
)

// MigrateCommand creates the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status without applying migrations",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return RunMigrations(c.String("config"), c.Bool("status"))
		},
	}
}

// RunMigrations handles the migration process (exported for testing)
func RunMigrations(configPath string, statusOnly bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	dbPath := cfg.DBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) && statusOnly {
		fmt.Printf("Database does not exist, will be created on first use: %s\n", dbPath)
		return nil
	}

	dbConn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			fmt.Printf("Warning: failed to close database: %v\n", err)
		}
	}()

	migrationManager := db.NewMigrationManager(dbConn)
	if statusOnly {
		if err := showMigrationStatus(migrationManager); err != nil {
			return fmt.Errorf("showing migration status: %w", err)
		}
		return nil
	}

	if err := migrationManager.ApplyPendingMigrations(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	fmt.Println("All migrations completed successfully")
	return nil
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(manager *db.MigrationManager) error {
	status, err := manager.GetMigrationStatus()
	if err != nil {
		return err
	}

	fmt.Printf("Applied migrations: %d\n", len(status.Applied))
	for _, migration := range status.Applied {
		appliedTime := "unknown"
		if migration.AppliedAt != nil {
			appliedTime = migration.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  ✓ %03d: %s (applied: %s)\n", migration.Version, migration.Name, appliedTime)
	}

	fmt.Printf("Pending migrations: %d\n", len(status.Pending))
	for _, migration := range status.Pending {
		fmt.Printf("  • %03d: %s\n", migration.Version, migration.Name)
	}

	if len(status.Pending) == 0 {
		fmt.Println("  (none - database is up to date)")
	}

	return nil
}
