package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cashbook/internal/core"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Amount
		wantErr bool
	}{
		{"number", `12.5`, Amount{Value: 12.5, Set: true}, false},
		{"numeric string", `"5000"`, Amount{Value: 5000, Set: true}, false},
		{"comma decimal", `"12,34"`, Amount{Value: 12.34, Set: true}, false},
		{"negative", `-3`, Amount{Value: -3, Set: true}, false},
		{"zero", `0`, Amount{Value: 0, Set: true}, false},
		{"null", `null`, Amount{}, false},
		{"text", `"abc"`, Amount{}, true},
		{"empty string", `""`, Amount{}, true},
		{"overflow", `1e400`, Amount{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Amount
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidAmount) {
					t.Fatalf("error = %v, want ErrInvalidAmount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    ID
		wantErr bool
	}{
		{`3`, ID{Value: 3, Set: true}, false},
		{`"17"`, ID{Value: 17, Set: true}, false},
		{`null`, ID{}, false},
		{`"x"`, ID{}, true},
		{`1.5`, ID{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got ID
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		malformed bool
		invalid   bool
	}{
		{"valid", `{"amount":"1","source":"x"}`, false, false},
		{"unknown fields ignored", `{"amount":1,"extra":true}`, false, false},
		{"syntax error", `{"amount":1,}`, true, false},
		{"truncated", `{"amount":`, true, false},
		{"empty", ``, true, false},
		{"bad amount", `{"amount":"ten"}`, false, true},
		{"wrong type", `{"source":5}`, false, true},
		{"too large", `{"source":"` + strings.Repeat("a", maxBodyBytes) + `"}`, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/addIncome", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			var dst incomeRequest
			err := decodeJSON(rr, req, &dst)

			if got := errors.Is(err, errMalformedJSON); got != tt.malformed {
				t.Errorf("malformed = %v, want %v (err=%v)", got, tt.malformed, err)
			}
			if got := errors.Is(err, core.ErrInvalidInput); got != tt.invalid {
				t.Errorf("invalid = %v, want %v (err=%v)", got, tt.invalid, err)
			}
		})
	}
}

func TestConfigRequestUpdate(t *testing.T) {
	var req configRequest
	if err := json.Unmarshal([]byte(`{"budget":"100","monthlyIncomeGoal":null}`), &req); err != nil {
		t.Fatal(err)
	}
	u := req.update()
	if u.Budget == nil || *u.Budget != 100 {
		t.Errorf("Budget = %v, want 100", u.Budget)
	}
	if u.MonthlyRent != nil || u.MonthlyIncomeGoal != nil {
		t.Errorf("absent fields should be nil: %+v", u)
	}
}
