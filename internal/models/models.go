package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical record every statement format is
// normalized into. Amounts are signed: negative values are outflows.
type Transaction struct {
	ID          int64           `json:"id,omitempty"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Account     string          `json:"account"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Type        string          `json:"type"`   // card, bank, bnpl, unknown
	Source      string          `json:"source"` // Revolut, Sparkasse, PDF_OCR, ...
	RawHash     string          `json:"raw_hash"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// Rule is a user-defined categorization rule. Pattern is a regular
// expression matched case-insensitively against the chosen field.
type Rule struct {
	ID          int64     `json:"id"`
	Pattern     string    `json:"pattern"`
	Field       string    `json:"field"` // merchant or description
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Priority    int       `json:"priority"` // lower wins
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Budget is a per-category monthly spending limit.
type Budget struct {
	ID        int64           `json:"id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// Income is a recorded income entry for a month.
type Income struct {
	ID        int64           `json:"id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Source    string          `json:"source"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// Import tracks one uploaded statement file and the outcome of running
// it through the normalization pipeline.
type Import struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"-"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"-"`
	Source     string    `json:"source"`
	Parsed     int       `json:"parsed"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	Status     string    `json:"status"` // pending, parsing, completed, failed
	ParseJobID *int64    `json:"parse_job_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Job is a background job in the queue.
type Job struct {
	ID          int64      `json:"id"`
	JobType     string     `json:"job_type"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"` // pending, running, completed, failed
	Progress    int        `json:"progress"`
	Result      string     `json:"result"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
