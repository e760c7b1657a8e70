package database

import (
	"fmt"
	"os"
)

// ExportBackup returns the raw database file bytes. The WAL is
// checkpointed first so the file on disk is complete.
func (db *DB) ExportBackup() ([]byte, error) {
	if _, err := db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	data, err := os.ReadFile(db.path)
	if err != nil {
		return nil, fmt.Errorf("read database file: %w", err)
	}
	return data, nil
}

// ImportBackup replaces the database file with the uploaded bytes. The
// open connection still points at the old pages; the process must be
// restarted afterwards.
func (db *DB) ImportBackup(data []byte) error {
	if len(data) < 16 || string(data[:15]) != "SQLite format 3" {
		return fmt.Errorf("not a sqlite database")
	}
	if err := os.WriteFile(db.path, data, 0644); err != nil {
		return fmt.Errorf("write database file: %w", err)
	}
	return nil
}
