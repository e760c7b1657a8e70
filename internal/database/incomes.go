package database

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/models"
)

// AddIncome records an income entry for a month and returns its ID.
func (db *DB) AddIncome(userID string, in models.Income) (int64, error) {
	amount, _ := in.Amount.Float64()
	res, err := db.Exec(`
		INSERT INTO incomes (user_id, year, month, source, amount)
		VALUES (?, ?, ?, ?, ?)
	`, userID, in.Year, in.Month, in.Source, amount)
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	return res.LastInsertId()
}

// ListIncomes returns the income entries for one month.
func (db *DB) ListIncomes(userID string, year, month int) ([]models.Income, error) {
	rows, err := db.Query(`
		SELECT id, year, month, source, amount, created_at
		FROM incomes
		WHERE user_id = ? AND year = ? AND month = ?
		ORDER BY id ASC
	`, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	var out []models.Income
	for rows.Next() {
		var in models.Income
		var amount float64
		if err := rows.Scan(&in.ID, &in.Year, &in.Month, &in.Source, &amount, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.Amount = decimal.NewFromFloat(amount)
		out = append(out, in)
	}
	return out, rows.Err()
}

// IncomeTotal sums all income entries for one month.
func (db *DB) IncomeTotal(userID string, year, month int) (decimal.Decimal, error) {
	var total float64
	err := db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM incomes
		WHERE user_id = ? AND year = ? AND month = ?
	`, userID, year, month).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum incomes: %w", err)
	}
	return decimal.NewFromFloat(total), nil
}
