package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbuddy/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func spend(category, merchant, amount string) models.Transaction {
	return models.Transaction{
		Category: category,
		Merchant: merchant,
		Amount:   dec(amount),
	}
}

func TestBuildOverviewTotals(t *testing.T) {
	txns := []models.Transaction{
		spend("Groceries", "REWE", "-100.00"),
		spend("Groceries", "ALDI", "-50.00"),
		spend("Housing", "Vermieter", "-800.00"),
		spend("", "Kiosk", "-10.00"),
		// Inflows never count as spending.
		spend("Income", "Arbeitgeber", "2500.00"),
	}
	budgets := map[string]decimal.Decimal{
		"Groceries": dec("200.00"),
		"Transport": dec("80.00"),
	}

	// A past month: no weekly allowance.
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	ov := BuildOverview(txns, budgets, dec("2500.00"), 2024, 3, now)

	assert.Equal(t, "960", ov.TotalSpent.String())
	assert.Equal(t, "280", ov.TotalBudget.String())
	assert.Equal(t, "-680", ov.Remaining.String())
	assert.Equal(t, "2500", ov.Income.String())
	assert.True(t, ov.WeeklyAllowance.IsZero())

	// Union of spent and budgeted categories, sorted by name.
	require.Len(t, ov.Categories, 4)
	assert.Equal(t, "Groceries", ov.Categories[0].Category)
	assert.Equal(t, "Housing", ov.Categories[1].Category)
	assert.Equal(t, "Transport", ov.Categories[2].Category)
	assert.Equal(t, "Uncategorized", ov.Categories[3].Category)

	groceries := ov.Categories[0]
	assert.Equal(t, "150", groceries.Spent.String())
	assert.Equal(t, "200", groceries.Budget.String())
	assert.Equal(t, "50", groceries.Remaining.String())

	// Budgeted but unspent category reports zero spending.
	assert.True(t, ov.Categories[2].Spent.IsZero())
}

func TestBuildOverviewWeeklyAllowance(t *testing.T) {
	txns := []models.Transaction{spend("Groceries", "REWE", "-100.00")}
	budgets := map[string]decimal.Decimal{"Groceries": dec("380.00")}

	// March 17th: 14 days left of 31. remaining=280 -> 280/14*7 = 140.
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	ov := BuildOverview(txns, budgets, decimal.Zero, 2024, 3, now)
	assert.Equal(t, "140", ov.WeeklyAllowance.String())
}

func TestBuildOverviewWeeklyAllowanceLastDay(t *testing.T) {
	budgets := map[string]decimal.Decimal{"Groceries": dec("70.00")}
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	ov := BuildOverview(nil, budgets, decimal.Zero, 2024, 3, now)
	// Zero days left clamps to one: the whole remainder times seven.
	assert.Equal(t, "490", ov.WeeklyAllowance.String())
}

func TestBuildOverviewOverspentHasNoAllowance(t *testing.T) {
	txns := []models.Transaction{spend("Groceries", "REWE", "-300.00")}
	budgets := map[string]decimal.Decimal{"Groceries": dec("200.00")}
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	ov := BuildOverview(txns, budgets, decimal.Zero, 2024, 3, now)
	assert.True(t, ov.WeeklyAllowance.IsZero())
	assert.Equal(t, "-100", ov.Remaining.String())
}

func TestMerchantBreakdown(t *testing.T) {
	txns := []models.Transaction{
		spend("Groceries", "REWE", "-100.00"),
		spend("Groceries", "REWE", "-50.00"),
		spend("Groceries", "ALDI", "-60.00"),
		spend("Housing", "Vermieter", "-800.00"),
		spend("Groceries", "Arbeitgeber", "10.00"),
	}

	all := MerchantBreakdown(txns, "", "")
	require.Len(t, all, 3)
	assert.Equal(t, "Vermieter", all[0].Merchant)

	groceries := MerchantBreakdown(txns, "Groceries", "")
	require.Len(t, groceries, 2)
	assert.Equal(t, "REWE", groceries[0].Merchant)
	assert.Equal(t, "150", groceries[0].Total.String())
	assert.Equal(t, 2, groceries[0].Count)
	assert.Equal(t, "ALDI", groceries[1].Merchant)
}

func TestMerchantBreakdownSubcategoryFilter(t *testing.T) {
	txns := []models.Transaction{
		{Category: "Transport", Subcategory: "Taxi", Merchant: "Uber", Amount: dec("-20.00")},
		{Category: "Transport", Subcategory: "Fuel", Merchant: "Aral", Amount: dec("-60.00")},
	}
	taxi := MerchantBreakdown(txns, "Transport", "Taxi")
	require.Len(t, taxi, 1)
	assert.Equal(t, "Uber", taxi[0].Merchant)
}
