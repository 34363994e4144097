package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backup writes a consistent snapshot of the database to dest. VACUUM
// INTO is safe under WAL without stopping writers.
func (db *DB) Backup(ctx context.Context, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(dest, "'", "''"))); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}
	db.logger.Info().Str("path", dest).Msg("database backup written")
	return nil
}

// CleanupBackups deletes snapshot files in dir older than retention and
// returns how many were removed.
func (db *DB) CleanupBackups(dir string, retention time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read backup directory: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				db.logger.Error().Err(err).Str("file", entry.Name()).Msg("failed to delete old backup")
				continue
			}
			deleted++
		}
	}
	return deleted, nil
}
