package parser

import (
	"strings"

	"budgetbuddy/internal/models"
)

// Grid is a raw table of text cells extracted from one PDF page. Rows
// may have differing widths; cellAt pads with empty strings.
type Grid [][]string

func gridWidth(g Grid) int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func dropBlankRows(g Grid) Grid {
	var out Grid
	for _, row := range g {
		blank := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

// columnRoles holds the inferred column index per role; -1 means the
// role could not be assigned.
type columnRoles struct {
	date   int
	amount int
	desc   int
}

// inferColumns votes each column into a role. The date column is the
// one with the most date-shaped cells, the amount column the one with
// the most cells that parse as German-formatted numbers, and the
// description column the widest remaining one by average text length.
// All comparisons are strictly greater-than, so ties resolve to the
// lowest column index. Nothing stops one column from winning both the
// date and amount votes; dot-separated dates parse as numbers, which
// is why the supported statements print slash dates or keep the
// columns well apart.
func inferColumns(g Grid) columnRoles {
	roles := columnRoles{date: -1, amount: -1, desc: -1}
	if len(g) == 0 {
		return roles
	}
	width := gridWidth(g)

	bestDates, bestAmounts := -1, -1
	for c := 0; c < width; c++ {
		dates, amounts := 0, 0
		for _, row := range g {
			v := cellAt(row, c)
			if dateShapeRe.MatchString(v) {
				dates++
			}
			if _, err := ParseAmountPDF(v); err == nil {
				amounts++
			}
		}
		if dates > bestDates {
			bestDates, roles.date = dates, c
		}
		if amounts > bestAmounts {
			bestAmounts, roles.amount = amounts, c
		}
	}

	bestLen := -1.0
	for c := 0; c < width; c++ {
		if c == roles.date || c == roles.amount {
			continue
		}
		total := 0
		for _, row := range g {
			total += len(cellAt(row, c))
		}
		if avg := float64(total) / float64(len(g)); avg > bestLen {
			bestLen, roles.desc = avg, c
		}
	}
	return roles
}

// gridRecords maps a cleaned grid to canonical records via column-role
// voting. Rows missing a parseable date or amount are dropped whole;
// partial records never leave this function. Account and source tags
// stay generic here and get overridden by file-name hints upstream.
func gridRecords(g Grid) []models.Transaction {
	g = dropBlankRows(g)
	if len(g) == 0 {
		return nil
	}
	roles := inferColumns(g)
	if roles.date < 0 || roles.amount < 0 {
		return nil
	}

	var out []models.Transaction
	for _, row := range g {
		rawDate := cellAt(row, roles.date)
		if m := dateShapeRe.FindString(rawDate); m != "" {
			rawDate = m
		}
		date, err := ParseDate(rawDate)
		if err != nil {
			continue
		}
		amount, err := ParseAmountPDF(cellAt(row, roles.amount))
		if err != nil {
			continue
		}
		desc := strings.TrimSpace(cellAt(row, roles.desc))
		out = append(out, models.Transaction{
			Date:        date.Format("2006-01-02"),
			Merchant:    MerchantFromDescription(desc),
			Description: desc,
			Amount:      amount,
			Currency:    "EUR",
			Type:        "bank",
			Source:      "PDF",
		})
	}
	return out
}
