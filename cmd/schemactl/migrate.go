package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"component-schema-service/config"
	"component-schema-service/internal/infra"
	"component-schema-service/internal/migrations"
	"component-schema-service/internal/repository"
	"component-schema-service/internal/usecase"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  "Manage database migrations for the component schema service",
}

// setupMigrationService はDBへ直接接続してマイグレーションランナーを構築する。
func setupMigrationService(ctx context.Context) (*usecase.MigrationService, error) {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := infra.NewDB(cfg.DatabaseURL, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	variableRepo := repository.NewVariableRepository(db)
	if err := variableRepo.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure variables table: %w", err)
	}

	migrationService := usecase.NewMigrationService(variableRepo, cfg.DDLTimeout)
	migrations.Register(migrationService, infra.NewGormIntrospector(db))
	return migrationService, nil
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long:  "Apply all pending migrations to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		migrationService, err := setupMigrationService(ctx)
		if err != nil {
			return err
		}

		result, err := migrationService.RunMigrations(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("migration failed: %s", result.Errors[0])
		}

		if result.Ran == 0 {
			fmt.Println("No pending migrations.")
		} else {
			fmt.Printf("Applied %d migration(s) successfully.\n", result.Ran)
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  "Show the status of all migrations (applied/pending)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		migrationService, err := setupMigrationService(ctx)
		if err != nil {
			return err
		}

		status, err := migrationService.GetMigrationStatus(ctx)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNAME\tSTATUS")
		fmt.Fprintln(w, "-------\t----\t------")
		for _, m := range migrationService.GetMigrations() {
			state := "pending"
			if m.Version <= status.CurrentVersion {
				state = "applied"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", m.Version, m.Name, state)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush output: %w", err)
		}

		fmt.Printf("\nCurrent version: %d (%d pending)\n", status.CurrentVersion, status.PendingMigrations)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
