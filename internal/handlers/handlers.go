package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/database"
	"budgetbuddy/internal/filestore"
	"budgetbuddy/internal/jobs"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/parser"
	"budgetbuddy/internal/report"
	"budgetbuddy/internal/rules"
	"budgetbuddy/internal/version"
)

// maxUploadBytes bounds statement uploads; bank exports are small.
const maxUploadBytes = 32 << 20

type Handler struct {
	db    *database.DB
	files *filestore.Store
	ocr   parser.OCR
}

func New(db *database.DB, files *filestore.Store, ocr parser.OCR) *Handler {
	return &Handler{
		db:    db,
		files: files,
		ocr:   ocr,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryInt reads an integer query parameter, falling back on absence
// or garbage.
func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// categorized loads a user's transactions for the given period and
// runs the rule engine over them. Stored category overrides survive:
// the engine only reassigns what the rules actually match, and manual
// overrides are persisted on the row itself.
func (h *Handler) categorized(userID string, year, month int) ([]models.Transaction, error) {
	txns, err := h.db.ListTransactions(userID, year, month)
	if err != nil {
		return nil, err
	}
	userRules, err := h.db.ListRules(userID)
	if err != nil {
		return nil, err
	}
	return rules.Apply(txns, userRules), nil
}

// uploadResult is the per-file outcome of a statement upload.
type uploadResult struct {
	ImportID int64  `json:"import_id"`
	FileName string `json:"file_name"`
	Source   string `json:"source"`
	Parsed   int    `json:"parsed"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// StatementsUpload accepts one or more statement files (multipart
// field "files", "file" also accepted), stores them, and runs the
// normalization pipeline synchronously. One bad file doesn't abort the
// batch; its result row carries the error instead.
func (h *Handler) StatementsUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.FromContext(ctx)
	userID := auth.UserID(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = r.MultipartForm.File["file"]
	}
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var results []uploadResult
	totalInserted, totalSkipped := 0, 0
	for _, fh := range fileHeaders {
		res := h.importFile(userID, fh)
		if res.Error == "" {
			totalInserted += res.Inserted
			totalSkipped += res.Skipped
		}
		results = append(results, res)
	}

	l.Info("statements_uploaded",
		"user_id", userID,
		"files", len(results),
		"inserted", totalInserted,
		"skipped", totalSkipped,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"results":  results,
		"inserted": totalInserted,
		"skipped":  totalSkipped,
	})
}

func (h *Handler) importFile(userID string, fh *multipart.FileHeader) uploadResult {
	res := uploadResult{FileName: fh.Filename}

	f, err := fh.Open()
	if err != nil {
		res.Error = "open upload: " + err.Error()
		return res
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		res.Error = "read upload: " + err.Error()
		return res
	}

	storedName, err := h.files.Save(fh.Filename, bytes.NewReader(data))
	if err != nil {
		res.Error = "store upload: " + err.Error()
		return res
	}

	profile := parser.ProfileFor(fh.Filename)
	res.Source = profile.Source

	importID, err := h.db.CreateImport(userID, fh.Filename, storedName, profile.Source)
	if err != nil {
		res.Error = "record import: " + err.Error()
		return res
	}
	res.ImportID = importID

	txns := parser.ParseStatement(fh.Filename, data, h.ocr)
	parser.AttachFingerprints(txns)
	res.Parsed = len(txns)

	inserted, skipped, err := h.db.InsertTransactions(userID, txns)
	if err != nil {
		h.db.UpdateImportStatus(importID, "failed")
		res.Error = "insert transactions: " + err.Error()
		return res
	}
	res.Inserted, res.Skipped = inserted, skipped

	if err := h.db.UpdateImportCounts(importID, len(txns), inserted, skipped, "completed"); err != nil {
		res.Error = "update import: " + err.Error()
	}
	return res
}

// TransactionsList returns the user's transactions, categorized, with
// optional year/month filters.
func (h *Handler) TransactionsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	year := queryInt(r, "year", 0)
	month := queryInt(r, "month", 0)

	txns, err := h.categorized(userID, year, month)
	if err != nil {
		logger.FromContext(ctx).Error("transactions_list_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns, "count": len(txns)})
}

// TransactionCategorize overrides the category on one transaction.
func (h *Handler) TransactionCategorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var body struct {
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	if err := h.db.UpdateTransactionCategory(userID, id, body.Category, body.Subcategory); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RulesList returns the user's rules in evaluation order.
func (h *Handler) RulesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userRules, err := h.db.ListRules(auth.UserID(ctx))
	if err != nil {
		logger.FromContext(ctx).Error("rules_list_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load rules")
		return
	}
	if userRules == nil {
		userRules = []models.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": userRules})
}

// RulesCreate stores a new categorization rule. The pattern is stored
// as-is even when it doesn't compile; the engine skips unmatchable
// patterns, but the response flags them so the client can warn.
func (h *Handler) RulesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	var rule models.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rule.Pattern == "" || rule.Category == "" {
		writeError(w, http.StatusBadRequest, "pattern and category are required")
		return
	}
	if rule.Field != "merchant" && rule.Field != "description" {
		writeError(w, http.StatusBadRequest, "field must be merchant or description")
		return
	}
	if rule.Priority == 0 {
		rule.Priority = 100
	}

	warning := ""
	if _, err := regexp.Compile("(?i)" + rule.Pattern); err != nil {
		warning = "pattern does not compile and will never match"
		logger.FromContext(ctx).Warn("rule_pattern_invalid", "pattern", rule.Pattern, "error", err.Error())
	}

	id, err := h.db.AddRule(userID, rule)
	if err != nil {
		logger.FromContext(ctx).Error("rule_create_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to create rule")
		return
	}
	rule.ID = id

	resp := map[string]any{"rule": rule}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusCreated, resp)
}

// RulesDelete removes one of the user's rules.
func (h *Handler) RulesDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	if err := h.db.DeleteRule(auth.UserID(r.Context()), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CategoriesList returns the built-in category catalog and fallback
// rules, the raw material for building user rules.
func (h *Handler) CategoriesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":    rules.Categories(),
		"subcategories": rules.Subcategories(),
		"default_rules": rules.Defaults(),
	})
}

// BudgetsList returns the budgets for one month (defaults to the
// current one).
func (h *Handler) BudgetsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))

	budgets, err := h.db.ListBudgets(auth.UserID(ctx), year, month)
	if err != nil {
		logger.FromContext(ctx).Error("budgets_list_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load budgets")
		return
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "month": month, "budgets": budgets})
}

// BudgetsUpsert sets a category budget for a month.
func (h *Handler) BudgetsUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var b models.Budget
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if b.Category == "" || b.Year < 1 || b.Month < 1 || b.Month > 12 {
		writeError(w, http.StatusBadRequest, "category, year and month are required")
		return
	}
	if err := h.db.UpsertBudget(auth.UserID(ctx), b); err != nil {
		logger.FromContext(ctx).Error("budget_upsert_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// IncomesList returns a month's income entries plus their total.
func (h *Handler) IncomesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))

	incomes, err := h.db.ListIncomes(userID, year, month)
	if err != nil {
		logger.FromContext(ctx).Error("incomes_list_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load incomes")
		return
	}
	if incomes == nil {
		incomes = []models.Income{}
	}
	total := decimal.Zero
	for _, in := range incomes {
		total = total.Add(in.Amount)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year": year, "month": month, "incomes": incomes, "total": total,
	})
}

// IncomesCreate records an income entry.
func (h *Handler) IncomesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.Income
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Year < 1 || in.Month < 1 || in.Month > 12 {
		writeError(w, http.StatusBadRequest, "year and month are required")
		return
	}
	id, err := h.db.AddIncome(auth.UserID(ctx), in)
	if err != nil {
		logger.FromContext(ctx).Error("income_create_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to save income")
		return
	}
	in.ID = id
	writeJSON(w, http.StatusCreated, map[string]any{"income": in})
}

// Overview returns the monthly budget overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))

	txns, err := h.categorized(userID, year, month)
	if err != nil {
		logger.FromContext(ctx).Error("overview_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	budgets, err := h.db.BudgetsByCategory(userID, year, month)
	if err != nil {
		logger.FromContext(ctx).Error("overview_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load budgets")
		return
	}
	income, err := h.db.IncomeTotal(userID, year, month)
	if err != nil {
		logger.FromContext(ctx).Error("overview_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load incomes")
		return
	}

	writeJSON(w, http.StatusOK, report.BuildOverview(txns, budgets, income, year, month, now))
}

// CategoryReport returns the merchant drill-down for a category.
func (h *Handler) CategoryReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	category := r.URL.Query().Get("category")
	subcategory := r.URL.Query().Get("subcategory")

	txns, err := h.categorized(userID, year, month)
	if err != nil {
		logger.FromContext(ctx).Error("category_report_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":        year,
		"month":       month,
		"category":    category,
		"subcategory": subcategory,
		"merchants":   report.MerchantBreakdown(txns, category, subcategory),
	})
}

// ImportsList returns the user's statement uploads, newest first.
func (h *Handler) ImportsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imports, err := h.db.ListImports(auth.UserID(ctx))
	if err != nil {
		logger.FromContext(ctx).Error("imports_list_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load imports")
		return
	}
	if imports == nil {
		imports = []models.Import{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": imports})
}

// ImportsReparse queues a background re-parse of a previously uploaded
// statement. Dedup makes this idempotent: unchanged rows come back as
// skipped.
func (h *Handler) ImportsReparse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid import id")
		return
	}

	imp, err := h.db.GetImport(id)
	if err != nil || imp.UserID != userID {
		writeError(w, http.StatusNotFound, "import not found")
		return
	}

	jobID, err := h.db.CreateJob("parse_statement", jobs.ParseStatementPayload{ImportID: imp.ID})
	if err != nil {
		logger.FromContext(ctx).Error("reparse_enqueue_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to queue re-parse")
		return
	}
	if err := h.db.UpdateImportParseJob(imp.ID, jobID); err != nil {
		logger.FromContext(ctx).Error("reparse_link_failed", "error", err.Error())
	}
	h.db.UpdateImportStatus(imp.ID, "pending")

	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": jobID})
}

// JobStatus returns the state of a background job.
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := h.db.GetJob(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// BackupExport streams the raw database file.
func (h *Handler) BackupExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := h.db.ExportBackup()
	if err != nil {
		logger.FromContext(ctx).Error("backup_export_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="budgetbuddy.db"`)
	w.Write(data)
}

// BackupImport replaces the database file with an uploaded backup. A
// restart is required before the new data is visible.
func (h *Handler) BackupImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, _, err := r.FormFile("backup")
	if err != nil {
		writeError(w, http.StatusBadRequest, "backup file is required")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read backup: "+err.Error())
		return
	}
	if err := h.db.ImportBackup(data); err != nil {
		logger.FromContext(ctx).Error("backup_import_failed", "error", err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.FromContext(ctx).Warn("backup_imported", "bytes", len(data))
	writeJSON(w, http.StatusOK, map[string]string{"status": "restart required"})
}

// APIVersion returns build information.
func (h *Handler) APIVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
	})
}
