package database

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/models"
)

// UpsertBudget sets the budget for a (year, month, category), replacing
// any previous amount.
func (db *DB) UpsertBudget(userID string, b models.Budget) error {
	amount, _ := b.Amount.Float64()
	_, err := db.Exec(`
		INSERT INTO budgets (user_id, year, month, category, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, year, month, category)
		DO UPDATE SET amount = excluded.amount
	`, userID, b.Year, b.Month, b.Category, amount)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// ListBudgets returns the budgets for one month.
func (db *DB) ListBudgets(userID string, year, month int) ([]models.Budget, error) {
	rows, err := db.Query(`
		SELECT id, year, month, category, amount, created_at
		FROM budgets
		WHERE user_id = ? AND year = ? AND month = ?
		ORDER BY category ASC
	`, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []models.Budget
	for rows.Next() {
		var b models.Budget
		var amount float64
		if err := rows.Scan(&b.ID, &b.Year, &b.Month, &b.Category, &amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Amount = decimal.NewFromFloat(amount)
		out = append(out, b)
	}
	return out, rows.Err()
}

// BudgetsByCategory returns one month's budgets keyed by category, the
// shape the overview report consumes.
func (db *DB) BudgetsByCategory(userID string, year, month int) (map[string]decimal.Decimal, error) {
	budgets, err := db.ListBudgets(userID, year, month)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		out[b.Category] = b.Amount
	}
	return out, nil
}
