package parser

import (
	"log/slog"
	"strings"

	"budgetbuddy/internal/models"
)

// pdfHints override the generic account/source tags on PDF records
// when the file name names a known institution.
var pdfHints = []struct {
	keyword string
	account string
	source  string
}{
	{"revolut", "Revolut", "Revolut-PDF"},
	{"sparkasse", "Sparkasse", "Sparkasse-PDF"},
	{"umsatz", "Sparkasse", "Sparkasse-PDF"},
	{"gebuehrenfrei", "Gebührenfrei", "Gebuehrenfrei-PDF"},
	{"advanzia", "Gebührenfrei", "Gebuehrenfrei-PDF"},
	{"mastercard", "Gebührenfrei", "Gebuehrenfrei-PDF"},
	{"klarna", "Klarna", "Klarna-PDF"},
}

func applyPDFHints(filename string, txns []models.Transaction) {
	name := strings.ToLower(filename)
	for _, h := range pdfHints {
		if strings.Contains(name, h.keyword) {
			for i := range txns {
				txns[i].Account = h.account
				txns[i].Source = h.source
			}
			return
		}
	}
}

// ParseCSV normalizes a CSV statement export. Malformed files and
// files without a single importable row both come back empty; callers
// distinguish the two only through logs, never through errors.
func ParseCSV(filename string, data []byte) []models.Transaction {
	table, err := ReadCSV(data)
	if err != nil {
		slog.Debug("csv_read_failed", "file", filename, "error", err.Error())
		return nil
	}
	if len(table.Rows) == 0 {
		return nil
	}
	return MapTable(table, ProfileFor(filename))
}

// ParsePDF normalizes a statement PDF. Table extraction runs first;
// OCR only fires when not a single table row survived, so a partially
// extractable document never mixes both sources. Both failing is an
// empty result, not an error.
func ParsePDF(filename string, data []byte, ocr OCR) []models.Transaction {
	var txns []models.Transaction

	grids, err := ExtractTables(data)
	if err != nil {
		slog.Debug("pdf_table_extraction_failed", "file", filename, "error", err.Error())
	}
	for _, g := range grids {
		txns = append(txns, gridRecords(g)...)
	}

	if len(txns) == 0 && ocr != nil && ocr.Available() {
		lines, err := ocr.Lines(data)
		if err != nil {
			slog.Warn("ocr_failed", "file", filename, "error", err.Error())
		} else {
			txns = LinesToRecords(lines)
		}
	}

	applyPDFHints(filename, txns)
	return txns
}

// ParseStatement routes an uploaded statement on file extension: .pdf
// goes through table extraction with OCR fallback, everything else is
// treated as CSV. Fingerprints are not attached here; callers run
// AttachFingerprints once parsing is done.
func ParseStatement(filename string, data []byte, ocr OCR) []models.Transaction {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ParsePDF(filename, data, ocr)
	}
	return ParseCSV(filename, data)
}
