package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"budgetbuddy/internal/models"
)

// isUniqueViolation reports whether an insert hit a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

// InsertTransactions appends records for a user inside one
// transaction, relying on the (user_id, raw_hash) unique index for
// idempotent imports. Duplicate fingerprints are counted as skipped,
// never surfaced as errors.
func (db *DB) InsertTransactions(userID string, txns []models.Transaction) (inserted, skipped int, err error) {
	if len(txns) == 0 {
		return 0, 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO transactions
			(user_id, date, account, merchant, description, amount, currency,
			 category, subcategory, type, source, raw_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		amount, _ := t.Amount.Float64()
		_, err := stmt.Exec(userID, t.Date, t.Account, t.Merchant, t.Description,
			amount, t.Currency, t.Category, t.Subcategory, t.Type, t.Source, t.RawHash)
		if err != nil {
			if isUniqueViolation(err) {
				skipped++
				continue
			}
			return 0, 0, fmt.Errorf("insert transaction: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, skipped, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var t models.Transaction
	var amount float64
	err := row.Scan(&t.ID, &t.Date, &t.Account, &t.Merchant, &t.Description,
		&amount, &t.Currency, &t.Category, &t.Subcategory, &t.Type, &t.Source,
		&t.RawHash, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	t.Amount = decimal.NewFromFloat(amount)
	return t, nil
}

// ListTransactions returns a user's transactions ordered by date then
// id. Pass year and/or month as 0 to skip that filter. Dates are
// stored as YYYY-MM-DD strings, so the filters are substring matches.
func (db *DB) ListTransactions(userID string, year, month int) ([]models.Transaction, error) {
	query := `
		SELECT id, date, account, merchant, description, amount, currency,
		       category, subcategory, type, source, raw_hash, created_at
		FROM transactions
		WHERE user_id = ?
	`
	args := []any{userID}
	if year > 0 {
		query += ` AND substr(date, 1, 4) = ?`
		args = append(args, fmt.Sprintf("%04d", year))
	}
	if month > 0 {
		query += ` AND substr(date, 6, 2) = ?`
		args = append(args, fmt.Sprintf("%02d", month))
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransactionCategory overrides the category of a single
// transaction owned by the user.
func (db *DB) UpdateTransactionCategory(userID string, id int64, category, subcategory string) error {
	res, err := db.Exec(`
		UPDATE transactions SET category = ?, subcategory = ?
		WHERE id = ? AND user_id = ?
	`, category, subcategory, id, userID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction not found")
	}
	return nil
}
