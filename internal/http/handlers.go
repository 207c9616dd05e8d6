package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpRegister, err)
		return
	}
	id, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, applog.OpRegister, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: id, Username: strings.TrimSpace(req.Username)})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	filter, err := core.ParseKindFilter(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	txs, err := s.ledger.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	tx, err := s.ledger.AddTransaction(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.reportCache.InvalidateUser(userID)
	w.Header().Set("Location", fmt.Sprintf("/api/transactions/%d", tx.ID))
	writeJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	tx, err := s.ledger.GetTransaction(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	tx, err := s.ledger.EditTransaction(r.Context(), userID, id, req.patch())
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	s.reportCache.InvalidateUser(userID)
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.reportCache.InvalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

// reportFilter defaults to Expense; "all" selects every kind.
func reportFilter(r *http.Request) (core.KindFilter, error) {
	raw := r.URL.Query().Get("kind")
	if strings.TrimSpace(raw) == "" {
		return core.OnlyKind(core.Expense), nil
	}
	return core.ParseKindFilter(raw)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	filter, err := reportFilter(r)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}

	rows, ok := s.reportCache.Get(userID, filter)
	if !ok {
		gen := s.reportCache.Generation(userID)
		rows, err = s.reports.CategoryReport(r.Context(), userID, filter)
		if err != nil {
			writeError(w, r, applog.OpReport, err)
			return
		}
		s.reportCache.Set(userID, filter, gen, rows)
	}

	resp := categoryReportResponse{
		Kind:  filter.String(),
		Rows:  make([]categoryRow, 0, len(rows)),
		Total: report.GrandTotal(rows).String(),
	}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, categoryRow{Category: row.Category, Total: row.Total.String()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	q := r.URL.Query()
	goal, err := core.ParseBudgetGoal(q.Get("category"), q.Get("limit"))
	if err != nil {
		writeError(w, r, applog.OpBudget, err)
		return
	}
	res, err := s.reports.CheckBudget(r.Context(), userID, goal)
	if err != nil {
		writeError(w, r, applog.OpBudget, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{
		Category:   res.Category,
		TotalSpent: res.TotalSpent.String(),
		Limit:      res.Limit.String(),
		Status:     res.Status,
	})
}

// handleExport serves /api/exports/{scope}.{format}, scope being report or
// transactions.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, userID core.UserID) {
	scope, format, found := strings.Cut(r.PathValue("file"), ".")
	enc, ok := export.EncoderFor(format)
	if !found || !ok || (scope != "report" && scope != "transactions") {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown export, use report or transactions as csv or xlsx"})
		return
	}

	buf := export.NewBufferExporter(enc)
	var err error
	if scope == "report" {
		filter, ferr := reportFilter(r)
		if ferr != nil {
			writeError(w, r, applog.OpExport, ferr)
			return
		}
		err = s.reports.ExportReport(r.Context(), userID, filter, buf, scope)
	} else {
		err = s.reports.ExportTransactions(r.Context(), userID, buf, scope)
	}
	if err != nil {
		if !errors.Is(err, core.ErrStoreUnavailable) && !errors.Is(err, core.ErrExportFailed) {
			err = fmt.Errorf("%w: %w", core.ErrExportFailed, err)
		}
		writeError(w, r, applog.OpExport, err)
		return
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, scope, enc.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
