package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finfacil/internal/config"
	"github.com/Veraticus/finfacil/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the SQLite database",
		Long: `Initialize or update the SQLite schema to the latest version.

With --from-json the documents of a JSON data directory are copied into the
database, replacing the documents already stored there.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")
	cmd.Flags().String("from-json", "", "Copy documents from this JSON data directory after migrating")
	cmd.Flags().Bool("backup", false, "Snapshot an existing database next to it before migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	fromJSON, _ := cmd.Flags().GetString("from-json")
	backup, _ := cmd.Flags().GetBool("backup")
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Storage.SQLitePath

	slog.Info("Starting database migration",
		"database", dbPath,
		"status_only", status)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "database: %s\ncurrent version: %d\nlatest version: %d\n",
			dbPath, current, storage.ExpectedSchemaVersion)
		return nil
	}

	if backup {
		if err := backupDatabase(cmd, store); err != nil {
			return err
		}
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("Database migrations completed", "version", storage.ExpectedSchemaVersion)

	if fromJSON == "" {
		return nil
	}

	src, err := storage.NewJSONFileStore(config.ExpandPath(fromJSON))
	if err != nil {
		return err
	}
	copied, err := storage.CopyDocuments(ctx, src, store)
	if err != nil {
		return fmt.Errorf("failed to import JSON documents: %w", err)
	}
	slog.Info("Imported JSON documents", "from", fromJSON, "documents", len(copied))

	return nil
}

// backupDatabase snapshots a database that already has a schema.
func backupDatabase(cmd *cobra.Command, store *storage.SQLiteStore) error {
	ctx := cmd.Context()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current == 0 {
		slog.Info("Skipping backup of empty database")
		return nil
	}

	abs, err := filepath.Abs(store.Path())
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}
	dest := fmt.Sprintf("%s.%s.bak", abs, time.Now().UTC().Format("20060102T150405"))
	if err := store.Backup(ctx, dest); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", dest)
	return nil
}
