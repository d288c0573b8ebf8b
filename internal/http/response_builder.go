// Package http provides the JSON API, CSV download and dashboard server.
//
// This file builds the JSON envelopes every API endpoint answers with and
// maps ledger errors to HTTP status codes in one place.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cashbook/internal/core"
	"cashbook/internal/log"
)

// Error codes carried in the "code" field of failed responses.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL"
)

// APIResponse is the envelope of every mutating endpoint.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    *core.Document `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, doc *core.Document) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: doc})
}

func writeFailure(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{Success: false, Error: message, Code: code})
}

// statusFor maps an operation error to its status code and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedJSON):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity, CodeInvalidInput
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeError logs err with the request logger and writes the failure envelope.
// Internal errors are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusFor(err)
	logger := log.FromContext(r.Context())

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldOperation, op, log.FieldError, err)
		if status == http.StatusInternalServerError {
			message = "internal error"
		}
	} else {
		logger.WarnContext(r.Context(), "Request rejected", log.FieldOperation, op, log.FieldError, err)
	}
	writeFailure(w, status, code, message)
}
