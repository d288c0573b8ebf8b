package http

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"cashbook/internal/core"
	"cashbook/internal/log"
)

// handleData returns the bare ledger document, degraded or not.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Snapshot(r.Context()))
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdateConfig, err)
		return
	}
	doc, err := s.ledger.UpdateConfig(r.Context(), req.update())
	s.respond(w, r, log.OpUpdateConfig, doc, err)
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeRecord(w, r, &req, &req.Amount, nil); err != nil {
		writeError(w, r, log.OpAddIncome, err)
		return
	}
	doc, err := s.ledger.AddIncome(r.Context(), req.Amount.Value, req.Source)
	s.respond(w, r, log.OpAddIncome, doc, err)
}

func (s *Server) handleEditIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeRecord(w, r, &req, &req.Amount, &req.ID); err != nil {
		writeError(w, r, log.OpEditIncome, err)
		return
	}
	doc, err := s.ledger.EditIncome(r.Context(), req.ID.Value, req.Amount.Value, req.Source)
	s.respond(w, r, log.OpEditIncome, doc, err)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeRecord(w, r, &req, &req.Amount, nil); err != nil {
		writeError(w, r, log.OpAddExpense, err)
		return
	}
	doc, err := s.ledger.AddExpense(r.Context(), req.Amount.Value, req.Category)
	s.respond(w, r, log.OpAddExpense, doc, err)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeRecord(w, r, &req, &req.Amount, &req.ID); err != nil {
		writeError(w, r, log.OpEditExpense, err)
		return
	}
	doc, err := s.ledger.EditExpense(r.Context(), req.ID.Value, req.Amount.Value, req.Category)
	s.respond(w, r, log.OpEditExpense, doc, err)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpAddTask, err)
		return
	}
	doc, err := s.ledger.AddTask(r.Context(), req.Title, req.Description)
	s.respond(w, r, log.OpAddTask, doc, err)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdateTask, err)
		return
	}
	if err := requireID(req.ID); err != nil {
		writeError(w, r, log.OpUpdateTask, err)
		return
	}
	doc, err := s.ledger.UpdateTaskStatus(r.Context(), req.ID.Value, core.TaskStatus(req.Status))
	s.respond(w, r, log.OpUpdateTask, doc, err)
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpEditTask, err)
		return
	}
	if err := requireID(req.ID); err != nil {
		writeError(w, r, log.OpEditTask, err)
		return
	}
	doc, err := s.ledger.EditTask(r.Context(), req.ID.Value, req.Title, req.Description)
	s.respond(w, r, log.OpEditTask, doc, err)
}

// handleExportCSV renders the whole export before writing so a failure can
// still produce an error status.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.ledger.Export(r.Context(), &buf); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// decodeRecord decodes dst and checks that the amount, and the id when one
// is passed, were supplied.
func decodeRecord(w http.ResponseWriter, r *http.Request, dst any, amount *Amount, id *ID) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	if id != nil {
		if err := requireID(*id); err != nil {
			return err
		}
	}
	return requireAmount(*amount, "amount")
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, op string, doc *core.Document, err error) {
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	writeSuccess(w, doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports not_ready while the store yields a degraded document.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.rateLimiter.activeClients()},
	}
	if err := s.ledger.Ready(ctx); err != nil {
		checks["ledger"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["ledger"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
