package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// sniffDelimiter picks the delimiter from the header line. German bank
// exports favor semicolons; Revolut uses plain commas.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	semicolons := bytes.Count(line, []byte{';'})
	commas := bytes.Count(line, []byte{','})
	tabs := bytes.Count(line, []byte{'\t'})
	switch {
	case semicolons > commas && semicolons >= tabs:
		return ';'
	case tabs > commas:
		return '\t'
	default:
		return ','
	}
}

// ReadCSV parses statement CSV bytes into a Table. A UTF-8 BOM is
// stripped so the first header name still matches. Ragged rows are
// allowed since some exports omit trailing empty cells.
func ReadCSV(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	return Table{Header: records[0], Rows: records[1:]}, nil
}
