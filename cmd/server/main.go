package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/database"
	"budgetbuddy/internal/filestore"
	"budgetbuddy/internal/handlers"
	"budgetbuddy/internal/jobs"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/parser"
	"budgetbuddy/internal/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("BudgetBuddy %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		os.Exit(0)
	}

	// Load .env before reading any configuration; absence is fine.
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default()

	dbPath := os.Getenv("BUDGETBUDDY_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/budgetbuddy.db"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Open database
	db, err := database.Open(dbPath)
	if err != nil {
		log.Error("database_open_failed", "path", dbPath, "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		log.Error("database_init_failed", "error", err.Error())
		os.Exit(1)
	}

	a := auth.New(db)

	// Uploads live alongside the database file.
	uploadsPath := filepath.Join(filepath.Dir(dbPath), "uploads")
	files, err := filestore.New(uploadsPath)
	if err != nil {
		log.Error("filestore_init_failed", "path", uploadsPath, "error", err.Error())
		os.Exit(1)
	}

	// OCR is an optional capability: without the binaries (or with
	// BUDGETBUDDY_OCR=off), scanned PDFs just import zero rows.
	var ocr parser.OCR
	if os.Getenv("BUDGETBUDDY_OCR") != "off" {
		engine := parser.NewTesseractOCR()
		ocr = engine
		log.Info("ocr_engine", "available", engine.Available())
	} else {
		log.Info("ocr_engine", "available", false, "reason", "disabled")
	}

	// Background worker only backs statement re-parses; uploads are
	// handled synchronously.
	worker := jobs.NewWorker(db, log)
	worker.Register("parse_statement", jobs.ParseStatementHandler(files, ocr))
	worker.Start()
	defer worker.Stop()

	h := handlers.New(db, files, ocr)

	mux := http.NewServeMux()

	// Statements
	mux.HandleFunc("POST /api/statements/upload", h.StatementsUpload)
	mux.HandleFunc("GET /api/imports", h.ImportsList)
	mux.HandleFunc("POST /api/imports/{id}/reparse", h.ImportsReparse)

	// Transactions
	mux.HandleFunc("GET /api/transactions", h.TransactionsList)
	mux.HandleFunc("POST /api/transactions/{id}/category", h.TransactionCategorize)

	// Rules and categories
	mux.HandleFunc("GET /api/rules", h.RulesList)
	mux.HandleFunc("POST /api/rules", h.RulesCreate)
	mux.HandleFunc("POST /api/rules/{id}/delete", h.RulesDelete)
	mux.HandleFunc("GET /api/categories", h.CategoriesList)

	// Budgets and incomes
	mux.HandleFunc("GET /api/budgets", h.BudgetsList)
	mux.HandleFunc("POST /api/budgets", h.BudgetsUpsert)
	mux.HandleFunc("GET /api/incomes", h.IncomesList)
	mux.HandleFunc("POST /api/incomes", h.IncomesCreate)

	// Reports
	mux.HandleFunc("GET /api/overview", h.Overview)
	mux.HandleFunc("GET /api/reports/category", h.CategoryReport)

	// Backup
	mux.HandleFunc("GET /api/backup", h.BackupExport)
	mux.HandleFunc("POST /api/backup", h.BackupImport)

	// Jobs API
	mux.HandleFunc("GET /api/jobs/{id}", h.JobStatus)

	// Version API
	mux.HandleFunc("GET /api/version", h.APIVersion)

	// Wrap with middleware: logging -> auth -> mux
	handler := logger.HTTPMiddleware(a.Middleware(mux))

	log.Info("server_starting", "port", port, "address", "http://localhost:"+port, "version", version.Version)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
