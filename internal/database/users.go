package database

import "fmt"

// EnsureUser creates the user row if it doesn't exist yet. Safe to
// call on every request.
func (db *DB) EnsureUser(id string) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO users (id) VALUES (?)`, id)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}
