package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/parser"
	"budgetbuddy/internal/rules"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: parsetest <statement.csv|statement.pdf>")
		os.Exit(1)
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	name := filepath.Base(path)
	ocr := parser.NewTesseractOCR()
	fmt.Printf("File: %s\n", name)
	fmt.Printf("Profile: %s\n", parser.ProfileFor(name).Source)
	fmt.Printf("OCR available: %v\n\n", ocr.Available())

	txns := parser.ParseStatement(name, data, ocr)
	parser.AttachFingerprints(txns)
	txns = rules.Apply(txns, nil)
	fmt.Printf("Transactions: %d\n\n", len(txns))

	// Summary by source and type
	sourceCounts := make(map[string]int)
	typeTotals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		sourceCounts[t.Source]++
		typeTotals[t.Type] = typeTotals[t.Type].Add(t.Amount)
	}

	fmt.Println("Summary by Source:")
	fmt.Println("------------------")
	for s, count := range sourceCounts {
		fmt.Printf("  %-18s: %3d transactions\n", s, count)
	}

	fmt.Println("\nSummary by Type:")
	fmt.Println("----------------")
	for t, total := range typeTotals {
		fmt.Printf("  %-12s: net %10s\n", t, total.StringFixed(2))
	}

	fmt.Println("\nAll Transactions:")
	fmt.Println("-----------------")
	for _, t := range txns {
		category := t.Category
		if t.Subcategory != "" {
			category += "/" + t.Subcategory
		}
		fmt.Printf("  %s | %-14s | %10s %s | %-25s | %s [%s]\n",
			t.Date,
			truncate(t.Merchant, 14),
			t.Amount.StringFixed(2),
			t.Currency,
			truncate(category, 25),
			truncate(t.Description, 40),
			t.RawHash,
		)
	}

	var inflows, outflows decimal.Decimal
	for _, t := range txns {
		if t.Amount.IsNegative() {
			outflows = outflows.Add(t.Amount)
		} else {
			inflows = inflows.Add(t.Amount)
		}
	}
	fmt.Println("\nTotals:")
	fmt.Println("-------")
	fmt.Printf("  Inflows:  %10s\n", inflows.StringFixed(2))
	fmt.Printf("  Outflows: %10s\n", outflows.StringFixed(2))
	fmt.Printf("  Net:      %10s\n", inflows.Add(outflows).StringFixed(2))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
