package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"budgetbuddy/internal/database"
	"budgetbuddy/internal/filestore"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/parser"
)

// ParseStatementPayload is the JSON payload for parse_statement jobs.
type ParseStatementPayload struct {
	ImportID int64 `json:"import_id"`
}

// ParseStatementHandler re-runs the normalization pipeline over an
// already-uploaded statement file and refreshes its import counts.
// The upload endpoint parses synchronously; this job only backs the
// re-parse action, typically after new categorization rules or an OCR
// install.
func ParseStatementHandler(files *filestore.Store, ocr parser.OCR) JobHandler {
	return func(ctx context.Context, job *models.Job, db *database.DB) error {
		var payload ParseStatementPayload
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}

		imp, err := db.GetImport(payload.ImportID)
		if err != nil {
			return fmt.Errorf("load import: %w", err)
		}

		if err := db.UpdateImportStatus(imp.ID, "parsing"); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		db.UpdateJobProgress(job.ID, 10)

		data, err := os.ReadFile(files.FullPath(imp.FilePath))
		if err != nil {
			db.UpdateImportStatus(imp.ID, "failed")
			return fmt.Errorf("read statement file: %w", err)
		}
		db.UpdateJobProgress(job.ID, 30)

		select {
		case <-ctx.Done():
			db.UpdateImportStatus(imp.ID, "pending")
			return ctx.Err()
		default:
		}

		txns := parser.ParseStatement(imp.FileName, data, ocr)
		parser.AttachFingerprints(txns)
		db.UpdateJobProgress(job.ID, 70)

		inserted, skipped, err := db.InsertTransactions(imp.UserID, txns)
		if err != nil {
			db.UpdateImportStatus(imp.ID, "failed")
			return fmt.Errorf("insert transactions: %w", err)
		}

		if err := db.UpdateImportCounts(imp.ID, len(txns), inserted, skipped, "completed"); err != nil {
			return fmt.Errorf("update import counts: %w", err)
		}

		resultJSON, _ := json.Marshal(map[string]any{
			"parsed":   len(txns),
			"inserted": inserted,
			"skipped":  skipped,
		})
		db.CompleteJob(job.ID, string(resultJSON))
		return nil
	}
}
