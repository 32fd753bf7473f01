// Package httpx holds the JSON request and response helpers shared by the
// HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/set-night/taskcoin/internal/config"
	"github.com/set-night/taskcoin/internal/domain"
)

// ErrorBody is the error envelope returned by every failing request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Completed string `json:"completed,omitempty"`
	Failed    string `json:"failed,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

var kinds = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{domain.ErrInvalidCredential, http.StatusUnauthorized, "invalid_credential"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance"},
	{domain.ErrUpstream, http.StatusBadGateway, "upstream"},
}

// Classify maps an error to its HTTP status and error code. Errors outside
// the domain taxonomy come from storage or the payment provider and are
// reported as upstream failures.
func Classify(err error) (int, string) {
	status, code, _ := classify(err)
	return status, code
}

func classify(err error) (int, string, bool) {
	var pf *domain.PartialFailureError
	if errors.As(err, &pf) {
		return http.StatusInternalServerError, "partial_failure", true
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.code, true
		}
	}
	return http.StatusBadGateway, "upstream", false
}

// WriteError writes err as an error envelope. Unclassified errors and the
// cause of a partial failure are logged and kept out of the response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, known := classify(err)
	detail := ErrorDetail{Code: code, Message: err.Error()}

	var pf *domain.PartialFailureError
	if errors.As(err, &pf) {
		slog.Error("request partially applied", "method", r.Method, "path", r.URL.Path,
			"operation", pf.Operation, "completed", pf.Completed, "failed", pf.Failed, "error", pf.Err)
		detail.Message = fmt.Sprintf("%s: %s applied but %s failed", pf.Operation, pf.Completed, pf.Failed)
		detail.Completed = pf.Completed
		detail.Failed = pf.Failed
	} else if !known {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		detail.Message = "storage or upstream service failure"
	}

	WriteJSON(w, status, ErrorBody{Error: detail})
}

// ReadJSON decodes the request body into v. Unknown fields and trailing
// data are rejected.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decode(w, r, v, false)
}

// ReadOptionalJSON is ReadJSON for endpoints whose body may be empty.
func ReadOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decode(w, r, v, true)
}

func decode(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.InvalidInput("request body exceeds %d bytes", maxErr.Limit)
		}
		return domain.InvalidInput("decode request body: %v", err)
	}
	if dec.More() {
		return domain.InvalidInput("request body must contain a single JSON value")
	}
	return nil
}

// Query helpers

// IntParam parses an optional integer query parameter.
func IntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidInput("query parameter %s must be an integer", name)
	}
	return n, nil
}
