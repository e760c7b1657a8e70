package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"-49,90 €", "-49.9"},
		{"  12,00  ", "12"},
		{"-5", "-5"},
		{"0,00", "0"},
	}
	for _, tc := range tests {
		got, err := ParseAmountCSV(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got.String(), "input %q", tc.in)
	}
}

func TestParseAmountCSVRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234,56", "05.03.2024", "--5"} {
		_, err := ParseAmountCSV(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseAmountPDFGermanConvention(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"-49,90 €", "-49.9"},
		{"49,90", "49.9"},
		{"1.000.000,00", "1000000"},
		{"12", "12"},
	}
	for _, tc := range tests {
		got, err := ParseAmountPDF(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got.String(), "input %q", tc.in)
	}
}

func TestParseAmountPDFRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "Verwendungszweck", "05/03/2024"} {
		_, err := ParseAmountPDF(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseDateDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"05.03.2024", "2024-03-05"},
		{"5.3.2024", "2024-03-05"},
		{"05/03/2024", "2024-03-05"},
		{"3/4/24", "2024-04-03"},
		{"05-03-2024", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{"2024-03-05 09:30:12", "2024-03-05"},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got.Format("2006-01-02"), "input %q", tc.in)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not a date", "32.13.2024", "REWE"} {
		_, err := ParseDate(in)
		assert.Error(t, err, "input %q", in)
	}
}
