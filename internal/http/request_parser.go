// Package http provides the JSON API, CSV download and dashboard server.
//
// This file decodes request bodies. Amounts and ids are accepted either as
// JSON numbers or as numeric strings, since the dashboard submits raw input
// field values.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cashbook/internal/core"
	"cashbook/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

var (
	errMalformedJSON = errors.New("malformed JSON body")
	errMissingField  = errors.New("missing required field")
	errInvalidID     = errors.New("invalid id")
)

// Amount is a money amount that may arrive as 12.5 or "12,50".
type Amount struct {
	Value float64
	Set   bool
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	v, err := core.ParseAmount(raw)
	if err != nil {
		return fmt.Errorf("amount %q: %w", raw, err)
	}
	*a = Amount{Value: v, Set: true}
	return nil
}

// ID is a record id that may arrive as 3 or "3".
type ID struct {
	Value int64
	Set   bool
}

func (i *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*i = ID{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("id %q: %w", raw, errInvalidID)
	}
	*i = ID{Value: v, Set: true}
	return nil
}

type configRequest struct {
	Budget            *Amount `json:"budget"`
	MonthlyRent       *Amount `json:"monthlyRent"`
	MonthlyIncomeGoal *Amount `json:"monthlyIncomeGoal"`
}

func (r configRequest) update() services.ConfigUpdate {
	pick := func(a *Amount) *float64 {
		if a == nil || !a.Set {
			return nil
		}
		v := a.Value
		return &v
	}
	return services.ConfigUpdate{
		Budget:            pick(r.Budget),
		MonthlyRent:       pick(r.MonthlyRent),
		MonthlyIncomeGoal: pick(r.MonthlyIncomeGoal),
	}
}

type incomeRequest struct {
	ID     ID     `json:"id"`
	Amount Amount `json:"amount"`
	Source string `json:"source"`
}

type expenseRequest struct {
	ID       ID     `json:"id"`
	Amount   Amount `json:"amount"`
	Category string `json:"category"`
}

type taskRequest struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// decodeJSON reads one JSON object from the request body into dst.
// Syntax errors map to errMalformedJSON; bad amounts or ids map to
// core.ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	err := dec.Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: empty body", errMalformedJSON)
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, errInvalidID):
		return fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &maxErr):
		return fmt.Errorf("%w: %v", errMalformedJSON, err)
	case errors.As(err, &typeErr):
		return fmt.Errorf("%w: field %s: %v", core.ErrInvalidInput, typeErr.Field, err)
	default:
		return fmt.Errorf("%w: %v", errMalformedJSON, err)
	}
}

// requireAmount and requireID reject fields the request left out.
func requireAmount(a Amount, name string) error {
	if !a.Set {
		return fmt.Errorf("%w: %w: %s", core.ErrInvalidInput, errMissingField, name)
	}
	return nil
}

func requireID(id ID) error {
	if !id.Set {
		return fmt.Errorf("%w: %w: id", core.ErrInvalidInput, errMissingField)
	}
	return nil
}
