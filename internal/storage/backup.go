package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidBackupPath is returned for snapshot destinations that cannot be used safely.
var ErrInvalidBackupPath = errors.New("invalid backup path")

// Backup writes a consistent copy of the database to destPath and verifies it. destPath
// must be absolute and must not exist yet.
func (s *SQLiteStore) Backup(ctx context.Context, destPath string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBackupPath(destPath); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// #nosec G201 - destPath is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	if err := verifyIntegrity(ctx, destPath); err != nil {
		if rmErr := os.Remove(destPath); rmErr != nil {
			slog.Error("failed to remove broken backup", "path", destPath, "error", rmErr)
		}
		return err
	}

	slog.Info("database backed up", "from", s.dbPath, "to", destPath)
	return nil
}

func validateBackupPath(path string) error {
	if strings.ContainsAny(path, `'";`) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidBackupPath, path)
	}
	if !filepath.IsAbs(path) || filepath.Clean(path) != path {
		return fmt.Errorf("%w: %q must be a clean absolute path", ErrInvalidBackupPath, path)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q already exists", ErrInvalidBackupPath, path)
	}
	return nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close backup", "error", err)
		}
	}()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup integrity check failed: %s", result)
	}
	return nil
}
