package database

import (
	"fmt"

	"budgetbuddy/internal/models"
)

// AddRule stores a user categorization rule and returns its ID.
// Pattern validity is not enforced here; the rule engine treats an
// invalid pattern as one that never matches.
func (db *DB) AddRule(userID string, r models.Rule) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO rules (user_id, pattern, field, category, subcategory, priority)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, r.Pattern, r.Field, r.Category, r.Subcategory, r.Priority)
	if err != nil {
		return 0, fmt.Errorf("insert rule: %w", err)
	}
	return res.LastInsertId()
}

// ListRules returns a user's rules in evaluation order: priority
// ascending, creation order breaking ties.
func (db *DB) ListRules(userID string) ([]models.Rule, error) {
	rows, err := db.Query(`
		SELECT id, pattern, field, category, subcategory, priority, created_at
		FROM rules
		WHERE user_id = ?
		ORDER BY priority ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []models.Rule
	for rows.Next() {
		var r models.Rule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Field, &r.Category,
			&r.Subcategory, &r.Priority, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRule removes one of the user's rules.
func (db *DB) DeleteRule(userID string, id int64) error {
	res, err := db.Exec(`DELETE FROM rules WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("rule not found")
	}
	return nil
}
