package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"cashbook/internal/core"
	"cashbook/internal/log"
	"cashbook/internal/services"
	"cashbook/internal/storage"
)

func newTestServer(t *testing.T, opts Options) (*Server, *services.LedgerService) {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "database.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ledger := services.NewLedgerService(store, log.Discard())
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	srv := NewServer(":0", ledger, opts)
	t.Cleanup(srv.rateLimiter.stop)
	return srv, ledger
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<title>Cashbook</title>") {
		t.Fatalf("index body missing title")
	}

	rr = do(t, srv, http.MethodGet, "/static/app.js", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("static status=%d", rr.Code)
	}

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestLedgerFlow(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/addIncome", `{"amount":5000,"source":"client A"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("addIncome status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if !resp.Success || resp.Data.Budget != 45000 || resp.Data.Incomes[0].ID != 1 {
		t.Fatalf("unexpected addIncome response %+v", resp)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	rr = do(t, srv, http.MethodPost, "/api/addExpense", `{"amount":"1200","category":""}`)
	resp = decodeResponse(t, rr)
	if !resp.Success || resp.Data.Budget != 43800 || resp.Data.Expenses[0].Category != core.Unspecified {
		t.Fatalf("unexpected addExpense response %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/editIncome", `{"id":"1","amount":7000,"source":"client A"}`)
	resp = decodeResponse(t, rr)
	if !resp.Success || resp.Data.Budget != 45800 {
		t.Fatalf("unexpected editIncome response %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/editExpense", `{"id":1,"amount":"1000,50","category":"supplies"}`)
	resp = decodeResponse(t, rr)
	if !resp.Success || resp.Data.Budget != 45999.5 || resp.Data.Expenses[0].Category != "supplies" {
		t.Fatalf("unexpected editExpense response %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/addTask", `{"title":"Call bank","description":"loan"}`)
	resp = decodeResponse(t, rr)
	if !resp.Success || len(resp.Data.Tasks) != 1 || resp.Data.Tasks[0].Status != core.StatusPending {
		t.Fatalf("unexpected addTask response %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/updateTask", `{"id":1,"status":"done"}`)
	resp = decodeResponse(t, rr)
	if !resp.Success || resp.Data.Tasks[0].Status != core.StatusDone {
		t.Fatalf("unexpected updateTask response %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/editTask", `{"id":1,"title":"Call bank today","description":""}`)
	resp = decodeResponse(t, rr)
	if !resp.Success || resp.Data.Tasks[0].Title != "Call bank today" {
		t.Fatalf("unexpected editTask response %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/updateConfig", `{"monthlyRent":12000}`)
	resp = decodeResponse(t, rr)
	if !resp.Success || resp.Data.MonthlyRent != 12000 || resp.Data.Budget != 45999.5 {
		t.Fatalf("unexpected updateConfig response %+v", resp)
	}

	rr = do(t, srv, http.MethodGet, "/api/data", "")
	var doc core.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode /api/data: %v", err)
	}
	if doc.Budget != 45999.5 || doc.LastIncomeID != 2 || doc.LastExpenseID != 2 || doc.LastTaskID != 2 {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestUnknownIDIsSuccess(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/updateTask", `{"id":999,"status":"done"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if !resp.Success || len(resp.Data.Tasks) != 0 || resp.Data.Budget != core.DefaultBudget {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 1000})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"non-numeric amount", "/api/addIncome", `{"amount":"abc","source":"x"}`, http.StatusUnprocessableEntity},
		{"zero amount", "/api/addIncome", `{"amount":0}`, http.StatusUnprocessableEntity},
		{"missing amount", "/api/addExpense", `{"category":"x"}`, http.StatusUnprocessableEntity},
		{"edit without id", "/api/editIncome", `{"amount":5}`, http.StatusUnprocessableEntity},
		{"non-numeric id", "/api/editExpense", `{"id":"one","amount":5}`, http.StatusUnprocessableEntity},
		{"blank task title", "/api/addTask", `{"title":"  "}`, http.StatusUnprocessableEntity},
		{"wrong field type", "/api/addTask", `{"title":42}`, http.StatusUnprocessableEntity},
		{"malformed json", "/api/addIncome", `{"amount":`, http.StatusBadRequest},
		{"empty body", "/api/updateConfig", ``, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			resp := decodeResponse(t, rr)
			if resp.Success || resp.Code != CodeInvalidInput || resp.Error == "" {
				t.Errorf("unexpected error envelope %+v", resp)
			}
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/data", "")
	var doc core.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Budget != core.DefaultBudget || len(doc.Incomes)+len(doc.Expenses)+len(doc.Tasks) != 0 {
		t.Errorf("rejected requests changed the ledger: %+v", doc)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := do(t, srv, http.MethodGet, "/api/addIncome", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestExportCSV(t *testing.T) {
	srv, ledger := newTestServer(t, Options{})
	ctx := context.Background()
	if _, err := ledger.AddIncome(ctx, 10, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.AddExpense(ctx, 2.5, "b"); err != nil {
		t.Fatal(err)
	}

	rr := do(t, srv, http.MethodGet, "/api/export/csv", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="ledger.csv"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 || lines[0] != "type,id,amount,category_or_source,date" {
		t.Fatalf("unexpected csv %q", rr.Body.String())
	}
	if !strings.HasPrefix(lines[1], "income,1,10,a,") || !strings.HasPrefix(lines[2], "expense,1,2.5,b,") {
		t.Errorf("unexpected rows %q", lines[1:])
	}
}

func TestRateLimitOnPost(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/addTask", `{"title":"t"}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/addTask", `{"title":"t"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if resp := decodeResponse(t, rr); resp.Code != CodeRateLimited {
		t.Errorf("code = %q", resp.Code)
	}

	if rr := do(t, srv, http.MethodGet, "/api/data", ""); rr.Code != http.StatusOK {
		t.Errorf("GET should not be rate limited, got %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/addIncome", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

type unavailableLedger struct{ Ledger }

func (unavailableLedger) AddIncome(context.Context, float64, string) (*core.Document, error) {
	return nil, core.ErrStoreUnavailable
}

func (unavailableLedger) Ready(context.Context) error {
	return errors.New("ledger unreadable")
}

func TestStoreUnavailable(t *testing.T) {
	srv := NewServer(":0", unavailableLedger{}, Options{Logger: log.Discard(), Gatherer: prometheus.NewRegistry()})
	t.Cleanup(srv.rateLimiter.stop)

	rr := do(t, srv, http.MethodPost, "/api/addIncome", `{"amount":5}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
	if resp := decodeResponse(t, rr); resp.Code != CodeStoreUnavailable {
		t.Errorf("code = %q", resp.Code)
	}

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status=%d", rr.Code)
	}
}
