// Package reliability provides database backup and recovery services.
package reliability

import (
	"database/sql"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/database"
)

// BackupService creates verified point-in-time copies of the SQLite
// databases.
type BackupService struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(databases map[string]*database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the backed-up database names, sorted. The cache
// database is excluded: it only holds recomputable snapshots.
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		if name == "cache" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes an atomic copy of one database to backupPath
// and verifies its integrity. A copy that fails verification is removed.
func (s *BackupService) BackupDatabase(dbName, backupPath string) error {
	db, ok := s.databases[dbName]
	if !ok {
		return fmt.Errorf("database %s not found", dbName)
	}

	s.log.Debug().
		Str("database", dbName).
		Str("backup_path", backupPath).
		Msg("Backing up database")

	// VACUUM INTO produces a fresh, WAL-free, compacted copy
	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		return fmt.Errorf("VACUUM INTO failed for %s: %w", dbName, err)
	}

	if err := s.verifyBackup(backupPath); err != nil {
		os.Remove(backupPath)
		return fmt.Errorf("backup verification failed for %s: %w", dbName, err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return fmt.Errorf("failed to stat backup: %w", err)
	}

	s.log.Debug().
		Str("database", dbName).
		Float64("size_mb", float64(info.Size())/1024/1024).
		Msg("Backup created")

	return nil
}

// verifyBackup opens the copy and runs an integrity check.
func (s *BackupService) verifyBackup(backupPath string) error {
	backupDB, err := sql.Open("sqlite", backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer backupDB.Close()

	var result string
	if err := backupDB.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}
