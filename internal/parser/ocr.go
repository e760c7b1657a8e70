package parser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"budgetbuddy/internal/models"
)

// OCR recognizes text lines from a PDF that yields no extractable
// text. It is an optional capability: a nil engine, or one whose
// Available reports false, simply contributes nothing.
type OCR interface {
	Available() bool
	Lines(pdfBytes []byte) ([]string, error)
}

// TesseractOCR rasterizes pages with pdftoppm and recognizes them with
// tesseract, both resolved from PATH at construction time.
type TesseractOCR struct {
	pdftoppm  string
	tesseract string
}

// NewTesseractOCR probes PATH for the required binaries. The returned
// engine reports unavailable when either is missing.
func NewTesseractOCR() *TesseractOCR {
	pp, _ := exec.LookPath("pdftoppm")
	ts, _ := exec.LookPath("tesseract")
	return &TesseractOCR{pdftoppm: pp, tesseract: ts}
}

func (t *TesseractOCR) Available() bool {
	return t != nil && t.pdftoppm != "" && t.tesseract != ""
}

// Lines rasterizes every page at 200 DPI into a temp directory and
// returns the recognized non-blank lines in page order. German plus
// English models cover the supported statements.
func (t *TesseractOCR) Lines(pdfBytes []byte) ([]string, error) {
	if !t.Available() {
		return nil, nil
	}
	dir, err := os.MkdirTemp("", "budgetbuddy-ocr-")
	if err != nil {
		return nil, fmt.Errorf("ocr tempdir: %w", err)
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "statement.pdf")
	if err := os.WriteFile(pdfPath, pdfBytes, 0600); err != nil {
		return nil, fmt.Errorf("ocr write pdf: %w", err)
	}

	cmd := exec.Command(t.pdftoppm, "-png", "-r", "200", pdfPath, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, out)
	}

	// pdftoppm zero-pads page numbers, so a plain sort keeps page order.
	pages, _ := filepath.Glob(filepath.Join(dir, "page-*.png"))
	sort.Strings(pages)

	var lines []string
	for _, img := range pages {
		cmd := exec.Command(t.tesseract, img, "stdout", "-l", "deu+eng")
		out, err := cmd.Output()
		if err != nil {
			return nil, fmt.Errorf("tesseract %s: %w", filepath.Base(img), err)
		}
		for _, ln := range strings.Split(string(out), "\n") {
			if s := strings.TrimSpace(ln); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return lines, nil
}

// ocrAmountRe matches the first amount-shaped token after the date:
// German grouped decimals first, then dot decimals, then bare digits.
var ocrAmountRe = regexp.MustCompile(`(-?\d[\d.\s]*,\d{2}|\d+\.\d{2}|\d+)`)

// LinesToRecords parses recognized lines of the shape
// "DD.MM.YYYY <description> <amount>". Lines lacking a date or an
// amount are discarded whole; this path never emits partial records.
func LinesToRecords(lines []string) []models.Transaction {
	var out []models.Transaction
	for _, ln := range lines {
		loc := dateShapeRe.FindStringIndex(ln)
		if loc == nil {
			continue
		}
		date, err := ParseDate(ln[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		rest := strings.TrimSpace(ln[loc[1]:])
		token := ocrAmountRe.FindString(rest)
		if token == "" {
			continue
		}
		amount, err := ParseAmountPDF(token)
		if err != nil {
			continue
		}
		out = append(out, models.Transaction{
			Date:        date.Format("2006-01-02"),
			Merchant:    MerchantFromDescription(rest),
			Description: rest,
			Amount:      amount,
			Currency:    "EUR",
			Type:        "bank",
			Source:      "PDF_OCR",
		})
	}
	return out
}
