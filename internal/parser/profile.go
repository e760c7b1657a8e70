package parser

import (
	"regexp"
	"strings"

	"budgetbuddy/internal/models"
)

// Profile describes how one institution's tabular export maps onto the
// canonical schema: candidate header names per target field, plus the
// static account/source/type tags stamped on every row.
type Profile struct {
	Account string
	Source  string
	Type    string // instrument tag; a type column in the file overrides it

	DateCols     []string
	DescCols     []string
	MerchantCols []string // only Klarna-style exports carry a merchant column
	AmountCols   []string
	CurrencyCols []string
	TypeCols     []string
}

// Candidate header names are matched case-insensitively after
// trimming. German and English variants are listed because several
// banks switch export language with the account locale.
var profiles = map[string]Profile{
	"revolut": {
		Account: "Revolut", Source: "Revolut", Type: "card",
		DateCols:     []string{"completed date", "date", "started date"},
		DescCols:     []string{"description", "reference"},
		AmountCols:   []string{"amount", "value"},
		CurrencyCols: []string{"currency", "currencies currency"},
		TypeCols:     []string{"type"},
	},
	"sparkasse": {
		Account: "Sparkasse", Source: "Sparkasse", Type: "bank",
		DateCols:     []string{"buchungstag", "wertstellung", "valutadatum"},
		DescCols:     []string{"verwendungszweck", "buchungstext", "text"},
		AmountCols:   []string{"betrag"},
		CurrencyCols: []string{"währung", "waehrung"},
	},
	"gebuehrenfrei": {
		Account: "Gebührenfrei", Source: "Gebuehrenfrei", Type: "card",
		DateCols:     []string{"datum", "date", "buchungsdatum"},
		DescCols:     []string{"buchungstext", "beschreibung", "description"},
		AmountCols:   []string{"betrag", "amount"},
		CurrencyCols: []string{"währung", "currency"},
	},
	"klarna": {
		Account: "Klarna", Source: "Klarna", Type: "bnpl",
		DateCols:     []string{"date", "datum"},
		MerchantCols: []string{"merchant", "händler", "shop"},
		DescCols:     []string{"reference", "beschreibung", "description"},
		AmountCols:   []string{"amount", "betrag"},
		CurrencyCols: []string{"currency", "währung"},
	},
	"unknown": {
		Account: "Unknown", Source: "Unknown", Type: "unknown",
		DateCols:     []string{"date", "datum", "buchungstag"},
		DescCols:     []string{"description", "verwendungszweck", "buchungstext"},
		AmountCols:   []string{"amount", "betrag"},
		CurrencyCols: []string{"currency", "währung"},
	},
}

// csvHints route an uploaded file name to a profile; first match wins.
var csvHints = []struct {
	keyword string
	profile string
}{
	{"revolut", "revolut"},
	{"sparkasse", "sparkasse"},
	{"umsatz", "sparkasse"},
	{"klarna", "klarna"},
	{"gebuehrenfrei", "gebuehrenfrei"},
	{"advanzia", "gebuehrenfrei"},
	{"mastercard", "gebuehrenfrei"},
}

// ProfileFor picks the column-mapping profile for a file name. It never
// fails: anything unrecognized gets the generic profile, which maps by
// common header names or column position.
func ProfileFor(filename string) Profile {
	name := strings.ToLower(filename)
	for _, h := range csvHints {
		if strings.Contains(name, h.keyword) {
			return profiles[h.profile]
		}
	}
	return profiles["unknown"]
}

// merchantRe captures everything before the first "-", "," or "|".
var merchantRe = regexp.MustCompile(`^([^-,|]+)`)

// MerchantFromDescription takes the text before the first separator as
// the short merchant name, surrounding whitespace included. A
// description starting with a separator has no usable prefix, so the
// full text is kept.
func MerchantFromDescription(desc string) string {
	if m := merchantRe.FindString(desc); m != "" {
		return m
	}
	return desc
}

// Table is a parsed tabular input: one header row plus data rows. Rows
// may be ragged; missing cells read as empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// columnIndex resolves the first candidate header present in the table,
// or the positional fallback when none is (use -1 for "absent").
func (t Table) columnIndex(candidates []string, fallback int) int {
	byName := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := byName[key]; !ok {
			byName[key] = i
		}
	}
	for _, c := range candidates {
		if i, ok := byName[c]; ok {
			return i
		}
	}
	return fallback
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// MapTable projects a raw table into canonical records using the
// profile's header candidates. When no candidate matches, the date,
// description and amount fall back to columns 0, 1 and 2, producing
// structurally valid output even from unrecognized files. Rows whose
// date or amount fail to parse are dropped; everything else survives.
func MapTable(t Table, p Profile) []models.Transaction {
	dateIdx := t.columnIndex(p.DateCols, 0)
	merchIdx := -1
	descFallback := 1
	if len(p.MerchantCols) > 0 {
		merchIdx = t.columnIndex(p.MerchantCols, 1)
		descFallback = merchIdx
	}
	descIdx := t.columnIndex(p.DescCols, descFallback)
	amountIdx := t.columnIndex(p.AmountCols, 2)
	currencyIdx := t.columnIndex(p.CurrencyCols, -1)
	typeIdx := -1
	if len(p.TypeCols) > 0 {
		typeIdx = t.columnIndex(p.TypeCols, -1)
	}

	var out []models.Transaction
	for _, row := range t.Rows {
		date, err := ParseDate(cellAt(row, dateIdx))
		if err != nil {
			continue
		}
		amount, err := ParseAmountCSV(cellAt(row, amountIdx))
		if err != nil {
			continue
		}

		desc := cellAt(row, descIdx)
		var merchant string
		if merchIdx >= 0 {
			merchant = cellAt(row, merchIdx)
		} else {
			merchant = MerchantFromDescription(desc)
		}

		currency := "EUR"
		if c := strings.TrimSpace(cellAt(row, currencyIdx)); c != "" {
			currency = c
		}
		txType := p.Type
		if v := strings.TrimSpace(cellAt(row, typeIdx)); v != "" {
			txType = v
		}

		out = append(out, models.Transaction{
			Date:        date.Format("2006-01-02"),
			Account:     p.Account,
			Merchant:    merchant,
			Description: desc,
			Amount:      amount,
			Currency:    currency,
			Type:        txType,
			Source:      p.Source,
		})
	}
	return out
}
