package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbuddy/internal/models"
)

func sampleTxn() models.Transaction {
	return models.Transaction{
		Date:        "2024-03-05",
		Account:     "Sparkasse",
		Merchant:    "REWE SAGT DANKE ",
		Description: "REWE SAGT DANKE - 4411",
		Amount:      decimal.RequireFromString("-49.90"),
		Currency:    "EUR",
		Type:        "bank",
		Source:      "Sparkasse",
	}
}

func TestFingerprintIsStable(t *testing.T) {
	a, b := sampleTxn(), sampleTxn()
	require.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 16)
}

func TestFingerprintChangesWithIdentityFields(t *testing.T) {
	base := Fingerprint(sampleTxn())

	mutations := map[string]func(*models.Transaction){
		"date":        func(tx *models.Transaction) { tx.Date = "2024-03-06" },
		"account":     func(tx *models.Transaction) { tx.Account = "Revolut" },
		"merchant":    func(tx *models.Transaction) { tx.Merchant = "ALDI " },
		"description": func(tx *models.Transaction) { tx.Description = "other" },
		"amount":      func(tx *models.Transaction) { tx.Amount = decimal.RequireFromString("-49.91") },
		"currency":    func(tx *models.Transaction) { tx.Currency = "USD" },
		"type":        func(tx *models.Transaction) { tx.Type = "card" },
		"source":      func(tx *models.Transaction) { tx.Source = "Sparkasse-PDF" },
	}
	for name, mutate := range mutations {
		tx := sampleTxn()
		mutate(&tx)
		assert.NotEqual(t, base, Fingerprint(tx), "mutating %s must change the fingerprint", name)
	}
}

func TestFingerprintIgnoresCategory(t *testing.T) {
	tx := sampleTxn()
	base := Fingerprint(tx)
	tx.Category = "Groceries"
	tx.Subcategory = "Other"
	assert.Equal(t, base, Fingerprint(tx))
}

func TestAttachFingerprints(t *testing.T) {
	txns := []models.Transaction{sampleTxn(), sampleTxn()}
	txns[1].Amount = decimal.RequireFromString("-1.00")

	AttachFingerprints(txns)
	assert.Equal(t, Fingerprint(txns[0]), txns[0].RawHash)
	assert.NotEqual(t, txns[0].RawHash, txns[1].RawHash)
}
