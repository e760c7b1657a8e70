package database

import (
	"database/sql"
	"fmt"

	"budgetbuddy/internal/models"
)

// CreateImport records an uploaded statement file and returns its ID.
func (db *DB) CreateImport(userID, fileName, filePath, source string) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO imports (user_id, file_name, file_path, source)
		VALUES (?, ?, ?, ?)
	`, userID, fileName, filePath, source)
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}
	return res.LastInsertId()
}

// GetImport returns an import row by ID.
func (db *DB) GetImport(id int64) (*models.Import, error) {
	var imp models.Import
	var jobID sql.NullInt64
	err := db.QueryRow(`
		SELECT id, user_id, file_name, file_path, source, parsed, inserted,
		       skipped, status, parse_job_id, created_at
		FROM imports
		WHERE id = ?
	`, id).Scan(&imp.ID, &imp.UserID, &imp.FileName, &imp.FilePath, &imp.Source,
		&imp.Parsed, &imp.Inserted, &imp.Skipped, &imp.Status, &jobID, &imp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("import not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query import: %w", err)
	}
	if jobID.Valid {
		imp.ParseJobID = &jobID.Int64
	}
	return &imp, nil
}

// ListImports returns a user's imports, newest first.
func (db *DB) ListImports(userID string) ([]models.Import, error) {
	rows, err := db.Query(`
		SELECT id, user_id, file_name, file_path, source, parsed, inserted,
		       skipped, status, parse_job_id, created_at
		FROM imports
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var out []models.Import
	for rows.Next() {
		var imp models.Import
		var jobID sql.NullInt64
		if err := rows.Scan(&imp.ID, &imp.UserID, &imp.FileName, &imp.FilePath,
			&imp.Source, &imp.Parsed, &imp.Inserted, &imp.Skipped, &imp.Status,
			&jobID, &imp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		if jobID.Valid {
			imp.ParseJobID = &jobID.Int64
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

// UpdateImportStatus sets only the status of an import.
func (db *DB) UpdateImportStatus(id int64, status string) error {
	_, err := db.Exec(`UPDATE imports SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update import status: %w", err)
	}
	return nil
}

// UpdateImportCounts records a completed parse run for an import.
func (db *DB) UpdateImportCounts(id int64, parsed, inserted, skipped int, status string) error {
	_, err := db.Exec(`
		UPDATE imports SET parsed = ?, inserted = ?, skipped = ?, status = ?
		WHERE id = ?
	`, parsed, inserted, skipped, status, id)
	if err != nil {
		return fmt.Errorf("update import counts: %w", err)
	}
	return nil
}

// UpdateImportParseJob links an import to its background re-parse job.
func (db *DB) UpdateImportParseJob(id, jobID int64) error {
	_, err := db.Exec(`UPDATE imports SET parse_job_id = ? WHERE id = ?`, jobID, id)
	if err != nil {
		return fmt.Errorf("update import job: %w", err)
	}
	return nil
}
