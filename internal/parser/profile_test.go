package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileForFilenameHints(t *testing.T) {
	tests := []struct {
		filename string
		source   string
	}{
		{"Revolut-Statement-März.csv", "Revolut"},
		{"umsatz-2024-03.csv", "Sparkasse"},
		{"Sparkasse_Export.CSV", "Sparkasse"},
		{"klarna_statement.csv", "Klarna"},
		{"gebuehrenfrei_03.csv", "Gebuehrenfrei"},
		{"advanzia-march.csv", "Gebuehrenfrei"},
		{"my-mastercard.csv", "Gebuehrenfrei"},
		{"export.csv", "Unknown"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.source, ProfileFor(tc.filename).Source, "file %q", tc.filename)
	}
}

func TestMerchantFromDescription(t *testing.T) {
	// The prefix keeps its trailing space; trimming is the caller's
	// problem if it cares.
	assert.Equal(t, "REWE SAGT DANKE ", MerchantFromDescription("REWE SAGT DANKE - 4411 DUESSELDORF"))
	assert.Equal(t, "Amazon", MerchantFromDescription("Amazon,Bestellung 123"))
	assert.Equal(t, "PayPal ", MerchantFromDescription("PayPal |Ebay"))
	assert.Equal(t, "Plain description", MerchantFromDescription("Plain description"))
	// No prefix before the separator: fall back to the whole text.
	assert.Equal(t, "-Direct Debit", MerchantFromDescription("-Direct Debit"))
	assert.Equal(t, "", MerchantFromDescription(""))
}

func TestMapTableByHeaderNames(t *testing.T) {
	table := Table{
		Header: []string{"Buchungstag", "Verwendungszweck", "Betrag", "Währung"},
		Rows: [][]string{
			{"05.03.2024", "REWE SAGT DANKE - 4411", "-49,90", "EUR"},
			{"06.03.2024", "GEHALT MAERZ", "2500,00", "EUR"},
		},
	}
	txns := MapTable(table, ProfileFor("sparkasse.csv"))
	require.Len(t, txns, 2)

	assert.Equal(t, "2024-03-05", txns[0].Date)
	assert.Equal(t, "Sparkasse", txns[0].Account)
	assert.Equal(t, "Sparkasse", txns[0].Source)
	assert.Equal(t, "bank", txns[0].Type)
	assert.Equal(t, "REWE SAGT DANKE ", txns[0].Merchant)
	assert.Equal(t, "REWE SAGT DANKE - 4411", txns[0].Description)
	assert.Equal(t, "-49.9", txns[0].Amount.String())
	assert.Equal(t, "EUR", txns[0].Currency)

	assert.Equal(t, "2500", txns[1].Amount.String())
}

func TestMapTableHeaderMatchIsCaseInsensitive(t *testing.T) {
	table := Table{
		Header: []string{"DATE", "  Description ", "AMOUNT"},
		Rows:   [][]string{{"2024-03-05", "Coffee", "-3,50"}},
	}
	txns := MapTable(table, ProfileFor("export.csv"))
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee", txns[0].Description)
	assert.Equal(t, "-3.5", txns[0].Amount.String())
}

func TestMapTablePositionalFallback(t *testing.T) {
	// Nothing in the header matches: columns 0, 1, 2 are used anyway,
	// producing structurally valid output instead of failing.
	table := Table{
		Header: []string{"col_a", "col_b", "col_c"},
		Rows: [][]string{
			{"05.03.2024", "Something", "-12.34"},
			{"garbage", "row", "dropped"},
		},
	}
	txns := MapTable(table, ProfileFor("mystery.csv"))
	require.Len(t, txns, 1)
	assert.Equal(t, "2024-03-05", txns[0].Date)
	assert.Equal(t, "Something", txns[0].Description)
	assert.Equal(t, "Unknown", txns[0].Account)
	assert.Equal(t, "unknown", txns[0].Type)
}

func TestMapTableDropsUnparseableRows(t *testing.T) {
	table := Table{
		Header: []string{"Datum", "Buchungstext", "Betrag"},
		Rows: [][]string{
			{"05.03.2024", "ok row", "-1,00"},
			{"not-a-date", "bad date", "-2,00"},
			{"06.03.2024", "bad amount", "n/a"},
			{"07.03.2024", "short row"},
		},
	}
	txns := MapTable(table, ProfileFor("gebuehrenfrei.csv"))
	require.Len(t, txns, 1)
	assert.Equal(t, "ok row", txns[0].Description)
}

func TestMapTableKlarnaMerchantColumn(t *testing.T) {
	table := Table{
		Header: []string{"Date", "Merchant", "Reference", "Amount", "Currency"},
		Rows: [][]string{
			{"05.03.2024", "Zalando SE", "Order 42-1", "-89,99", "EUR"},
		},
	}
	txns := MapTable(table, ProfileFor("klarna.csv"))
	require.Len(t, txns, 1)
	// A real merchant column wins over prefix extraction, dashes in
	// the reference notwithstanding.
	assert.Equal(t, "Zalando SE", txns[0].Merchant)
	assert.Equal(t, "Order 42-1", txns[0].Description)
	assert.Equal(t, "bnpl", txns[0].Type)
	assert.Equal(t, "Klarna", txns[0].Account)
}

func TestMapTableKlarnaShopHeader(t *testing.T) {
	// Some Klarna exports label the merchant column "Shop". It sits
	// after the description here so a positional fallback would pick
	// the wrong column.
	table := Table{
		Header: []string{"Datum", "Beschreibung", "Shop", "Betrag"},
		Rows: [][]string{
			{"05.03.2024", "Ratenkauf 3/6", "MediaMarkt", "-55,00"},
		},
	}
	txns := MapTable(table, ProfileFor("klarna.csv"))
	require.Len(t, txns, 1)
	assert.Equal(t, "MediaMarkt", txns[0].Merchant)
	assert.Equal(t, "Ratenkauf 3/6", txns[0].Description)
}

func TestMapTableTypeColumnOverridesProfile(t *testing.T) {
	table := Table{
		Header: []string{"Completed Date", "Description", "Amount", "Currency", "Type"},
		Rows: [][]string{
			{"2024-03-05 09:30:12", "Rewe Filiale", "-49.90", "EUR", "CARD_PAYMENT"},
			{"2024-03-06 10:00:00", "Topup", "100.00", "EUR", ""},
		},
	}
	txns := MapTable(table, ProfileFor("revolut.csv"))
	require.Len(t, txns, 2)
	assert.Equal(t, "CARD_PAYMENT", txns[0].Type)
	// Empty type cell falls back to the profile tag.
	assert.Equal(t, "card", txns[1].Type)
}

func TestMapTableRevolutCurrenciesCurrencyHeader(t *testing.T) {
	// Older Revolut exports name the column "Currencies Currency".
	table := Table{
		Header: []string{"Completed Date", "Description", "Amount", "Currencies Currency"},
		Rows:   [][]string{{"2024-03-05", "Coffee", "-3.50", "GBP"}},
	}
	txns := MapTable(table, ProfileFor("revolut.csv"))
	require.Len(t, txns, 1)
	assert.Equal(t, "GBP", txns[0].Currency)
}

func TestMapTableCurrencyDefaultsToEUR(t *testing.T) {
	table := Table{
		Header: []string{"Datum", "Buchungstext", "Betrag"},
		Rows:   [][]string{{"05.03.2024", "x", "-1,00"}},
	}
	txns := MapTable(table, ProfileFor("gebuehrenfrei.csv"))
	require.Len(t, txns, 1)
	assert.Equal(t, "EUR", txns[0].Currency)
}
