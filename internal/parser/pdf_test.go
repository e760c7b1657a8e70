package parser

import (
	"testing"

	"github.com/dslipak/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textRun(x, w float64, s string) pdf.Text {
	return pdf.Text{X: x, W: w, S: s}
}

func cellTexts(ws []word) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.text
	}
	return out
}

// wordLine builds a line from cell texts; strictGrid and looseGrid only
// look at cell counts and text, so the geometry is arbitrary.
func wordLine(cells ...string) []word {
	ws := make([]word, len(cells))
	x := 0.0
	for i, c := range cells {
		ws[i] = word{x: x, w: 40, text: c}
		x += 60
	}
	return ws
}

func TestMergeWordsGapClasses(t *testing.T) {
	// A statement line as the extractor sees it: the merchant name
	// arrives as three runs, one of which is a mid-word split.
	ws := mergeWords([]pdf.Text{
		textRun(0, 28, "05.03.2024"),
		textRun(60, 20, "REWE"),  // 32pt gap: column boundary
		textRun(85, 12, "SAG"),   // 5pt gap: word space
		textRun(97.4, 8, "T"),    // 0.4pt gap: glued
		textRun(140, 24, "-49,90"),
	})
	assert.Equal(t, []string{"05.03.2024", "REWE SAGT", "-49,90"}, cellTexts(ws))
}

func TestMergeWordsSortsByX(t *testing.T) {
	// Fragment order in the content stream is not reading order.
	ws := mergeWords([]pdf.Text{
		textRun(15, 10, "World"),
		textRun(0, 10, "Hello"),
	})
	assert.Equal(t, []string{"Hello World"}, cellTexts(ws))
}

func TestMergeWordsDropsBlankCells(t *testing.T) {
	ws := mergeWords([]pdf.Text{
		textRun(0, 10, "   "),
		textRun(30, 10, "x"),
	})
	assert.Equal(t, []string{"x"}, cellTexts(ws))

	assert.Nil(t, mergeWords(nil))
}

func TestStrictGridKeepsDominantWidth(t *testing.T) {
	lines := [][]word{
		wordLine("Kontoauszug", "März 2024"),
		wordLine("05.03.2024", "REWE SAGT DANKE", "-49,90"),
		wordLine("06.03.2024", "GEHALT MAERZ", "2.500,00"),
		wordLine("07.03.2024", "ALDI SUED", "-12,00"),
		wordLine("Seite 1 von 2"),
	}
	g := strictGrid(lines)
	require.Len(t, g, 3)
	assert.Equal(t, []string{"05.03.2024", "REWE SAGT DANKE", "-49,90"}, g[0])
	assert.Equal(t, []string{"07.03.2024", "ALDI SUED", "-12,00"}, g[2])
}

func TestStrictGridNeedsThreeAlignedRows(t *testing.T) {
	lines := [][]word{
		wordLine("05.03.2024", "REWE", "-49,90"),
		wordLine("06.03.2024", "ALDI", "-12,00"),
	}
	assert.Nil(t, strictGrid(lines))
}

func TestStrictGridTiePrefersWiderRows(t *testing.T) {
	lines := [][]word{
		wordLine("a", "b"),
		wordLine("c", "d"),
		wordLine("e", "f"),
		wordLine("05.03.2024", "Lastschrift", "REWE", "-49,90"),
		wordLine("06.03.2024", "Gutschrift", "GEHALT", "2.500,00"),
		wordLine("07.03.2024", "Lastschrift", "ALDI", "-12,00"),
	}
	g := strictGrid(lines)
	require.Len(t, g, 3)
	assert.Len(t, g[0], 4)
}

func TestLooseGridKeepsRaggedRows(t *testing.T) {
	lines := [][]word{
		wordLine("Seite 1"),
		wordLine("05.03.2024", "REWE -49,90"),
		wordLine("06.03.2024", "GEHALT", "2.500,00"),
	}
	g := looseGrid(lines)
	require.Len(t, g, 2)
	assert.Equal(t, []string{"05.03.2024", "REWE -49,90"}, g[0])
	assert.Equal(t, []string{"06.03.2024", "GEHALT", "2.500,00"}, g[1])

	// A single usable row is not a table.
	assert.Nil(t, looseGrid([][]word{
		wordLine("05.03.2024", "REWE"),
		wordLine("footer"),
	}))
}

func TestLooseGridCatchesWhatStrictRejects(t *testing.T) {
	// Too few aligned rows for the strict pass, but still tabular
	// enough for the retry.
	lines := [][]word{
		wordLine("05.03.2024", "REWE", "-49,90"),
		wordLine("06.03.2024", "ALDI -12,00"),
	}
	assert.Nil(t, strictGrid(lines))
	g := looseGrid(lines)
	require.Len(t, g, 2)
}
