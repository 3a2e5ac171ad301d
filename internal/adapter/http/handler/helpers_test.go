package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/api/transaksi?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/api/transaksi?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", &domain.ValidationError{Field: "amount", Message: "required"}, http.StatusUnprocessableEntity},
		{"backend field errors", &domain.FieldErrors{Message: "invalid", Fields: map[string]string{"email": "taken"}}, http.StatusUnprocessableEntity},
		{"insufficient balance", &domain.InsufficientBalanceError{Warning: "Saldo kas tunai tidak mencukupi."}, http.StatusUnprocessableEntity},
		{"backend rejected token", &domain.ExternalServiceError{Service: "backend", StatusCode: 401, Err: domain.ErrUnauthorized}, http.StatusUnauthorized},
		{"wrong password", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"backend not found", &domain.ExternalServiceError{Service: "backend", StatusCode: 404, Err: domain.ErrNotFound}, http.StatusNotFound},
		{"category not found", fmt.Errorf("resolve: %w", domain.ErrCategoryNotFound), http.StatusNotFound},
		{"summary unavailable", domain.ErrSummaryUnavailable, http.StatusServiceUnavailable},
		{"circuit open", &domain.ExternalServiceError{Service: "backend", StatusCode: 503, Err: errors.New("circuit breaker is open")}, http.StatusServiceUnavailable},
		{"backend 500", &domain.ExternalServiceError{Service: "backend", StatusCode: 500, Err: errors.New("boom")}, http.StatusBadGateway},
		{"malformed payload", fmt.Errorf("decode: %w", domain.ErrMalformedPayload), http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteDomainError_Bodies(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantFields   map[string]string
		wantRedirect string
	}{
		{
			name:       "insufficient balance lands on amount",
			err:        &domain.InsufficientBalanceError{Warning: "Saldo kas tunai tidak mencukupi."},
			wantFields: map[string]string{"amount": "Saldo kas tunai tidak mencukupi."},
		},
		{
			name:       "backend field errors pass through",
			err:        &domain.FieldErrors{Message: "The given data was invalid.", Fields: map[string]string{"email": "sudah digunakan"}},
			wantFields: map[string]string{"email": "sudah digunakan"},
		},
		{
			name:         "expired session redirects to login",
			err:          &domain.ExternalServiceError{Service: "backend", StatusCode: 401, Err: domain.ErrUnauthorized},
			wantRedirect: "/login",
		},
		{
			name: "wrong password does not redirect",
			err:  domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/api/transaksi", nil)

			writeDomainError(rr, req, zerolog.Nop(), tt.err, "failed")

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Redirect != tt.wantRedirect {
				t.Fatalf("redirect = %q, want %q", resp.Redirect, tt.wantRedirect)
			}
			for k, v := range tt.wantFields {
				if resp.Fields[k] != v {
					t.Fatalf("field %s = %q, want %q", k, resp.Fields[k], v)
				}
			}
		})
	}
}

func TestParseForm(t *testing.T) {
	t.Run("json numbers become strings", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":150000,"note":"infaq","draft":true,"skip":null}`))
		req.Header.Set("Content-Type", "application/json")

		form, err := parseForm(httptest.NewRecorder(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if form.Get("amount") != "150000" || form.Get("note") != "infaq" || form.Get("draft") != "true" {
			t.Fatalf("unexpected values %+v", form.values)
		}
		if _, ok := form.values["skip"]; ok {
			t.Fatalf("null values should be dropped")
		}
	})

	t.Run("multipart carries files", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		_ = mw.WriteField("judul", "Kajian")
		part, _ := mw.CreateFormFile("gambar", "poster.png")
		_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		form, err := parseForm(httptest.NewRecorder(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if form.Get("judul") != "Kajian" {
			t.Fatalf("unexpected judul %q", form.Get("judul"))
		}
		upload := form.File("gambar")
		if upload == nil || upload.FileName != "poster.png" || upload.ContentType != "image/png" {
			t.Fatalf("unexpected upload %+v", upload)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
		if _, err := parseForm(httptest.NewRecorder(), req); err == nil {
			t.Fatalf("expected error for bad json")
		}
	})
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
