package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbuddy/internal/models"
)

func txn(merchant, description string) models.Transaction {
	return models.Transaction{Merchant: merchant, Description: description}
}

func TestDefaultsCatalog(t *testing.T) {
	assert.Contains(t, Categories(), "Groceries")
	assert.Contains(t, Categories(), "Income")
	assert.Contains(t, Subcategories()["Transport"], "Public Transport")
	require.NotEmpty(t, Defaults())
	// Declared order is evaluation order; groceries come first.
	assert.Equal(t, "Groceries", Defaults()[0].Category)
}

func TestApplyDefaultRules(t *testing.T) {
	txns := Apply([]models.Transaction{
		txn("REWE SAGT DANKE ", "REWE SAGT DANKE - 4411"),
		txn("Lidl Filiale", "Lidl Filiale 99"),
		txn("Telekom Deutschland", "Rechnung"),
		txn("Unbekannt", "Sonstiges"),
	}, nil)

	assert.Equal(t, "Groceries", txns[0].Category)
	// Matching is case-insensitive.
	assert.Equal(t, "Groceries", txns[1].Category)
	assert.Equal(t, "Utilities", txns[2].Category)
	assert.Equal(t, "Internet", txns[2].Subcategory)
	assert.Equal(t, "", txns[3].Category)
}

func TestApplyDescriptionFieldRules(t *testing.T) {
	txns := Apply([]models.Transaction{
		txn("Hausverwaltung GmbH", "MIETE MAERZ WOHNUNG 3"),
		txn("Arbeitgeber", "GEHALT MAERZ"),
	}, nil)
	assert.Equal(t, "Housing", txns[0].Category)
	assert.Equal(t, "Income", txns[1].Category)
}

func TestApplyUserRuleBeatsDefault(t *testing.T) {
	user := []models.Rule{
		{ID: 1, Pattern: "REWE", Field: "merchant", Category: "Dining & Cafes", Priority: 50},
	}
	txns := Apply([]models.Transaction{txn("REWE SAGT DANKE ", "x")}, user)
	assert.Equal(t, "Dining & Cafes", txns[0].Category)
}

func TestApplyUserRulePriorityOrder(t *testing.T) {
	user := []models.Rule{
		{ID: 1, Pattern: "REWE", Field: "merchant", Category: "Shopping", Priority: 90},
		{ID: 2, Pattern: "REWE", Field: "merchant", Category: "Groceries", Priority: 10},
	}
	txns := Apply([]models.Transaction{txn("REWE", "x")}, user)
	assert.Equal(t, "Groceries", txns[0].Category)
}

func TestApplyUserRuleIDBreaksPriorityTies(t *testing.T) {
	user := []models.Rule{
		{ID: 7, Pattern: "REWE", Field: "merchant", Category: "Second", Priority: 50},
		{ID: 3, Pattern: "REWE", Field: "merchant", Category: "First", Priority: 50},
	}
	txns := Apply([]models.Transaction{txn("REWE", "x")}, user)
	assert.Equal(t, "First", txns[0].Category)
}

func TestApplyInvalidPatternIsIsolated(t *testing.T) {
	user := []models.Rule{
		{ID: 1, Pattern: "([unclosed", Field: "merchant", Category: "Broken", Priority: 1},
		{ID: 2, Pattern: "REWE", Field: "merchant", Category: "Groceries", Priority: 2},
	}
	txns := Apply([]models.Transaction{txn("REWE", "x")}, user)
	// The broken rule never matches; the next one still runs.
	assert.Equal(t, "Groceries", txns[0].Category)
}

func TestApplyKeepsExistingCategoryWhenNothingMatches(t *testing.T) {
	in := txn("Unbekannt", "Sonstiges")
	in.Category = "Manual"
	in.Subcategory = "Pick"
	txns := Apply([]models.Transaction{in}, nil)
	assert.Equal(t, "Manual", txns[0].Category)
	assert.Equal(t, "Pick", txns[0].Subcategory)
}

func TestApplyInputOrderPreserved(t *testing.T) {
	txns := Apply([]models.Transaction{
		txn("ALDI", "a"),
		txn("Spotify AB", "b"),
	}, nil)
	require.Len(t, txns, 2)
	assert.Equal(t, "Groceries", txns[0].Category)
	assert.Equal(t, "Subscriptions", txns[1].Category)
	assert.Equal(t, "Streaming", txns[1].Subcategory)
}
