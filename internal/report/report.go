package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/models"
)

var seven = decimal.NewFromInt(7)

// CategorySpend pairs one category's spending with its budget.
type CategorySpend struct {
	Category  string          `json:"category"`
	Spent     decimal.Decimal `json:"spent"`
	Budget    decimal.Decimal `json:"budget"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Overview summarizes one month of spending against its budgets.
type Overview struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	TotalBudget     decimal.Decimal `json:"total_budget"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	Income          decimal.Decimal `json:"income"`
	WeeklyAllowance decimal.Decimal `json:"weekly_allowance"`
	Categories      []CategorySpend `json:"categories"`
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildOverview aggregates outflows by category and pairs them with
// the month's budgets. Inflows are ignored; uncategorized spending is
// grouped under "Uncategorized". The weekly allowance projects the
// remaining budget over the rest of the month and only applies while
// the reported month is the current one.
func BuildOverview(txns []models.Transaction, budgets map[string]decimal.Decimal, income decimal.Decimal, year, month int, now time.Time) Overview {
	spent := make(map[string]decimal.Decimal)
	totalSpent := decimal.Zero
	for _, t := range txns {
		if !t.Amount.IsNegative() {
			continue
		}
		amount := t.Amount.Abs()
		cat := t.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		spent[cat] = spent[cat].Add(amount)
		totalSpent = totalSpent.Add(amount)
	}

	names := make(map[string]bool, len(spent)+len(budgets))
	for c := range spent {
		names[c] = true
	}
	for c := range budgets {
		names[c] = true
	}
	ordered := make([]string, 0, len(names))
	for c := range names {
		ordered = append(ordered, c)
	}
	sort.Strings(ordered)

	totalBudget := decimal.Zero
	categories := make([]CategorySpend, 0, len(ordered))
	for _, c := range ordered {
		budget := budgets[c]
		totalBudget = totalBudget.Add(budget)
		categories = append(categories, CategorySpend{
			Category:  c,
			Spent:     spent[c],
			Budget:    budget,
			Remaining: budget.Sub(spent[c]),
		})
	}

	remaining := totalBudget.Sub(totalSpent)

	weekly := decimal.Zero
	if now.Year() == year && int(now.Month()) == month && remaining.IsPositive() {
		daysLeft := daysInMonth(year, month) - now.Day()
		if daysLeft < 1 {
			daysLeft = 1
		}
		weekly = remaining.Div(decimal.NewFromInt(int64(daysLeft))).Mul(seven).Round(2)
	}

	return Overview{
		Year:            year,
		Month:           month,
		TotalBudget:     totalBudget,
		TotalSpent:      totalSpent,
		Remaining:       remaining,
		Income:          income,
		WeeklyAllowance: weekly,
		Categories:      categories,
	}
}

// MerchantTotal is one merchant's aggregated outflow.
type MerchantTotal struct {
	Merchant string          `json:"merchant"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// MerchantBreakdown sums outflows per merchant for the drill-down
// view, largest first. Empty category or subcategory filters match
// everything.
func MerchantBreakdown(txns []models.Transaction, category, subcategory string) []MerchantTotal {
	totals := make(map[string]*MerchantTotal)
	for _, t := range txns {
		if !t.Amount.IsNegative() {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		if subcategory != "" && t.Subcategory != subcategory {
			continue
		}
		mt, ok := totals[t.Merchant]
		if !ok {
			mt = &MerchantTotal{Merchant: t.Merchant}
			totals[t.Merchant] = mt
		}
		mt.Total = mt.Total.Add(t.Amount.Abs())
		mt.Count++
	}

	out := make([]MerchantTotal, 0, len(totals))
	for _, mt := range totals {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Merchant < out[j].Merchant
	})
	return out
}
