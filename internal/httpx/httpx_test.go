package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/set-night/taskcoin/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnauthenticated, 401, "unauthenticated"},
		{domain.ErrInvalidCredential, 401, "invalid_credential"},
		{domain.ErrForbidden, 403, "forbidden"},
		{domain.ErrUnauthorized, 403, "unauthorized"},
		{domain.ErrUserNotFound, 404, "not_found"},
		{domain.ErrSubmissionFinalized, 409, "conflict"},
		{domain.InvalidInput("bad"), 400, "invalid_input"},
		{fmt.Errorf("wrap: %w", domain.ErrInsufficientBalance), 422, "insufficient_balance"},
		{domain.ErrUpstream, 502, "upstream"},
		{&domain.PartialFailureError{Operation: "x", Completed: "a", Failed: "b", Err: domain.ErrUserNotFound}, 500, "partial_failure"},
		{errors.New("connection refused"), 502, "upstream"},
	}
	for _, tt := range tests {
		status, code := Classify(tt.err)
		if status != tt.status || code != tt.code {
			t.Fatalf("Classify(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func TestWriteErrorPartialFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/submissions/1/approve", nil)
	cause := errors.New("dial tcp 10.0.0.7:5432: connection refused")
	WriteError(rec, req, fmt.Errorf("approve: %w", &domain.PartialFailureError{Operation: "approve submission", Completed: "status", Failed: "payout", Err: cause}))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "partial_failure" || body.Error.Completed != "status" || body.Error.Failed != "payout" {
		t.Fatalf("unexpected body %+v", body)
	}
	if strings.Contains(body.Error.Message, "10.0.0.7") || strings.Contains(body.Error.Message, "connection refused") {
		t.Fatalf("message leaks the storage error: %q", body.Error.Message)
	}
	if body.Error.Message != "approve submission: status applied but payout failed" {
		t.Fatalf("message = %q", body.Error.Message)
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name     string
		body     string
		optional bool
		wantErr  bool
	}{
		{"valid", `{"name":"a"}`, false, false},
		{"unknown field", `{"name":"a","extra":1}`, false, true},
		{"trailing value", `{"name":"a"}{"name":"b"}`, false, true},
		{"empty required", ``, false, true},
		{"empty optional", ``, true, false},
		{"oversized", `{"name":"` + strings.Repeat("x", 2<<20) + `"}`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			var err error
			if tt.optional {
				err = ReadOptionalJSON(rec, req, &p)
			} else {
				err = ReadJSON(rec, req, &p)
			}
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("want invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
