package parser

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

const (
	// cellGap is the horizontal gap (pt) treated as a table column
	// boundary when merging text runs on a line.
	cellGap = 12.0
	// spaceGap is the smaller gap that still separates words within
	// one cell.
	spaceGap = 1.0
)

// word is one merged horizontal run of text on a page line.
type word struct {
	x, w float64
	text string
}

// mergeWords joins raw text fragments on one line into cells. Fragments
// closer than spaceGap are glued, fragments within cellGap join with a
// space, and anything wider starts a new cell.
func mergeWords(texts []pdf.Text) []word {
	if len(texts) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var out []word
	cur := word{x: sorted[0].X, w: sorted[0].W, text: sorted[0].S}
	for _, t := range sorted[1:] {
		gap := t.X - (cur.x + cur.w)
		switch {
		case gap > cellGap:
			out = append(out, cur)
			cur = word{x: t.X, w: t.W, text: t.S}
		case gap > spaceGap:
			cur.text += " " + t.S
			cur.w = t.X + t.W - cur.x
		default:
			cur.text += t.S
			cur.w = t.X + t.W - cur.x
		}
	}
	out = append(out, cur)

	kept := out[:0]
	for _, w := range out {
		w.text = strings.TrimSpace(w.text)
		if w.text != "" {
			kept = append(kept, w)
		}
	}
	return kept
}

// strictGrid keeps only the rows sharing the page's dominant cell
// count, which is what a ruled statement table produces once text runs
// are split on column gaps. Fewer than three aligned rows does not
// count as a table.
func strictGrid(lines [][]word) Grid {
	counts := make(map[int]int)
	for _, ln := range lines {
		if len(ln) >= 2 {
			counts[len(ln)]++
		}
	}
	best, bestN := 0, 0
	for n, c := range counts {
		if c > bestN || (c == bestN && n > best) {
			best, bestN = n, c
		}
	}
	if bestN < 3 {
		return nil
	}
	var g Grid
	for _, ln := range lines {
		if len(ln) != best {
			continue
		}
		row := make([]string, len(ln))
		for i, w := range ln {
			row[i] = w.text
		}
		g = append(g, row)
	}
	return g
}

// looseGrid is the retry pass: any line splitting into at least two
// cells becomes a row, widths be damned. The column voting downstream
// tolerates ragged rows.
func looseGrid(lines [][]word) Grid {
	var g Grid
	for _, ln := range lines {
		if len(ln) < 2 {
			continue
		}
		row := make([]string, len(ln))
		for i, w := range ln {
			row[i] = w.text
		}
		g = append(g, row)
	}
	if len(g) < 2 {
		return nil
	}
	return g
}

// ExtractTables pulls one cell grid per PDF page, in document order.
// The strict pass runs first on every page; pages where it finds
// nothing get the loose retry. Pages that fail to decode are skipped
// rather than aborting the document. The underlying reader panics on
// some malformed cross-reference tables, hence the recover.
func ExtractTables(data []byte) (grids []Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			grids = nil
			err = fmt.Errorf("pdf extraction: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		// Top of the page first: PDF Y grows upward.
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

		lines := make([][]word, 0, len(rows))
		for _, row := range rows {
			if ws := mergeWords(row.Content); len(ws) > 0 {
				lines = append(lines, ws)
			}
		}

		if g := strictGrid(lines); len(g) > 0 {
			grids = append(grids, g)
			continue
		}
		if g := looseGrid(lines); len(g) > 0 {
			grids = append(grids, g)
		}
	}
	return grids, nil
}
