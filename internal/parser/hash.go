package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"budgetbuddy/internal/models"
)

// Fingerprint derives the dedup key for a transaction: the first 16
// hex characters of the SHA-256 over the pipe-joined identity fields.
// Category and subcategory are deliberately excluded so recategorizing
// never changes the key.
func Fingerprint(t models.Transaction) string {
	raw := strings.Join([]string{
		t.Date,
		t.Account,
		t.Merchant,
		t.Description,
		t.Amount.String(),
		t.Currency,
		t.Type,
		t.Source,
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}

// AttachFingerprints fills RawHash on every record. Hashes are assigned
// once here, after parsing and before persistence, and never recomputed.
func AttachFingerprints(txns []models.Transaction) {
	for i := range txns {
		txns[i].RawHash = Fingerprint(txns[i])
	}
}
