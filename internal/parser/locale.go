package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// currencyReplacer strips currency symbols and spacing that banks wrap
// around numbers, including non-breaking spaces from PDF extraction.
var currencyReplacer = strings.NewReplacer("€", "", "$", "", " ", "", " ", "")

// ParseAmountCSV normalizes an amount from a CSV export. CSV files are
// machine-formatted, so only the decimal comma needs rewriting:
// "1234,56" -> 1234.56. A German thousands separator ("1.234,56") is
// NOT handled here and fails to parse, which drops the row.
func ParseAmountCSV(s string) (decimal.Decimal, error) {
	s = currencyReplacer.Replace(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse csv amount %q: %w", s, err)
	}
	return d, nil
}

// ParseAmountPDF normalizes an amount printed in a statement PDF using
// the German convention: "." is a thousands separator, "," the decimal
// mark. "1.234,56" -> 1234.56, "-49,90 €" -> -49.90.
func ParseAmountPDF(s string) (decimal.Decimal, error) {
	s = currencyReplacer.Replace(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse pdf amount %q: %w", s, err)
	}
	return d, nil
}

// dayFirstLayouts resolve ambiguous numeric dates day-first, since the
// supported banks print German-style dates. The "2" and "1" verbs also
// accept zero-padded values.
var dayFirstLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses a statement date. "05.03.2024" and "05/03/2024" are
// both the 5th of March; ISO dates pass through unchanged.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// dateShapeRe matches anything date-shaped without validating it. Used
// for column voting and OCR line scanning; actual parsing still goes
// through ParseDate.
var dateShapeRe = regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`)
