package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Validation failures short-circuit before any storage access, so these
// run against a handler with no store wired.
func newValidationHandler() *Handler {
	return &Handler{Validator: validator.New(), Logger: zerolog.Nop()}
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", handler)
	req, _ := http.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error.Code
}

func TestDispatchAutoRejectsMissingFields(t *testing.T) {
	h := newValidationHandler()
	w := postJSON(t, h.DispatchAuto, `{"atm_id":"atm-1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestDispatchAutoRejectsMalformedJSON(t *testing.T) {
	h := newValidationHandler()
	w := postJSON(t, h.DispatchAuto, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "INVALID_REQUEST" {
		t.Fatalf("expected INVALID_REQUEST, got %s", code)
	}
}

func TestTicketStatusRejectsUnknownStatus(t *testing.T) {
	h := newValidationHandler()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PATCH("/tickets/:id/status", h.TicketStatusUpdate)

	req, _ := http.NewRequest(http.MethodPatch, "/tickets/t-1/status", strings.NewReader(`{"status":"reopened"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAtmCreateRejectsIncompletePayload(t *testing.T) {
	h := newValidationHandler()
	w := postJSON(t, h.AtmCreate, `{"bank_id":"b1","model":"NCR"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestNormalizeSeverityCoercesUnknownToMedium(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LOW", "LOW"},
		{"high", "HIGH"},
		{" critical ", "CRITICAL"},
		{"URGENT", "MEDIUM"},
		{"P1", "MEDIUM"},
		{"", "MEDIUM"},
	}
	for _, tc := range cases {
		if got := normalizeSeverity(tc.in); got != tc.want {
			t.Errorf("normalizeSeverity(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

// An unrecognized severity must never fail validation; only genuinely
// missing required fields may.
func TestTicketCreateAcceptsUnknownSeverity(t *testing.T) {
	h := newValidationHandler()
	w := postJSON(t, h.TicketCreate, `{"issue_type":"NETWORK_FAILURE","severity":"URGENT"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing atm_id, got %d", w.Code)
	}
	var resp struct {
		Error struct {
			Details string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if strings.Contains(resp.Error.Details, "Severity") {
		t.Fatalf("severity must not be validated, got details %q", resp.Error.Details)
	}
	if !strings.Contains(resp.Error.Details, "AtmID") {
		t.Fatalf("expected only the missing atm_id to fail, got %q", resp.Error.Details)
	}
}

func TestLoginRejectsBadEmail(t *testing.T) {
	h := newValidationHandler()
	w := postJSON(t, h.Login, `{"email":"not-an-email","password":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
