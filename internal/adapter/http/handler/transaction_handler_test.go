package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
)

type transactionServiceStub struct {
	formStateFn func(ctx context.Context, token string) usecase.FormState
	checkFn     func(ctx context.Context, token string, input usecase.CheckInput) (usecase.CheckResult, error)
	createFn    func(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error)
	updateFn    func(ctx context.Context, token, id string, draft *domain.TransactionDraft) (*domain.Transaction, error)
	deleteFn    func(ctx context.Context, token, id string) error
	getFn       func(ctx context.Context, token, id string) (*domain.Transaction, error)
	listFn      func(ctx context.Context, token string, input usecase.ListInput) ([]*domain.Transaction, int, error)
}

func (s *transactionServiceStub) FormState(ctx context.Context, token string) usecase.FormState {
	return s.formStateFn(ctx, token)
}

func (s *transactionServiceStub) Check(ctx context.Context, token string, input usecase.CheckInput) (usecase.CheckResult, error) {
	return s.checkFn(ctx, token, input)
}

func (s *transactionServiceStub) Create(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
	return s.createFn(ctx, token, draft)
}

func (s *transactionServiceStub) Update(ctx context.Context, token, id string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
	return s.updateFn(ctx, token, id, draft)
}

func (s *transactionServiceStub) Delete(ctx context.Context, token, id string) error {
	return s.deleteFn(ctx, token, id)
}

func (s *transactionServiceStub) Get(ctx context.Context, token, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, token, id)
}

func (s *transactionServiceStub) List(ctx context.Context, token string, input usecase.ListInput) ([]*domain.Transaction, int, error) {
	return s.listFn(ctx, token, input)
}

type auditRecorderStub struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (s *auditRecorderStub) Record(ctx context.Context, log *domain.AuditLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, log)
}

var wib = time.FixedZone("WIB", 7*3600)

func withSession(req *http.Request) *http.Request {
	cred := &domain.Credential{SessionID: "sess-1", Token: "backend-token", User: domain.User{ID: "42"}}
	return req.WithContext(middleware.WithCredential(req.Context(), cred))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTransactionHandler_Create_Success(t *testing.T) {
	var captured *domain.TransactionDraft
	var gotToken string
	audit := &auditRecorderStub{}

	handler := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
			captured = draft
			gotToken = token
			return &domain.Transaction{ID: "tx-1", Kind: draft.Kind, Amount: decimal.NewFromInt(25000), ProofPath: "bukti/nota.pdf"}, nil
		},
	}, "https://api.masjid.test", wib, audit, zerolog.Nop())

	body := `{"kind":"pengeluaran","category_id":"4","amount":"25000","note":"Listrik","date":"2026-03-01"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/admin/api/transaksi", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotToken != "backend-token" {
		t.Fatalf("expected the session token to be forwarded, got %q", gotToken)
	}
	if captured.Kind != domain.KindExpense || captured.CategoryID != "4" || captured.Amount != "25000" {
		t.Fatalf("unexpected draft %+v", captured)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ProofURL != "https://api.masjid.test/storage/bukti/nota.pdf" {
		t.Fatalf("unexpected proof url %q", resp.ProofURL)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Action != domain.AuditActionTransactionCreate || entry.ResourceID != "tx-1" || entry.UserID != "42" || entry.Status != domain.AuditStatusSuccess {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
}

func TestTransactionHandler_Create_MultipartProof(t *testing.T) {
	var captured *domain.TransactionDraft
	handler := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
			captured = draft
			return &domain.Transaction{ID: "tx-2"}, nil
		},
	}, "", wib, nil, zerolog.Nop())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("kind", "income")
	_ = mw.WriteField("category_id", "1")
	_ = mw.WriteField("amount", "100000")
	part, _ := mw.CreateFormFile("proof", "kwitansi.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 test"))
	_ = mw.Close()

	req := withSession(httptest.NewRequest(http.MethodPost, "/admin/api/transaksi", &body))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Proof == nil || captured.Proof.FileName != "kwitansi.pdf" || captured.Proof.ContentType != "application/pdf" {
		t.Fatalf("expected proof upload, got %+v", captured.Proof)
	}
}

func TestTransactionHandler_Create_InsufficientBalance(t *testing.T) {
	audit := &auditRecorderStub{}
	warning := "Saldo kas tunai tidak mencukupi. Saldo tersedia Rp 100.000, dibutuhkan Rp 150.000."

	handler := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
			return nil, &domain.InsufficientBalanceError{Warning: warning}
		},
	}, "", wib, audit, zerolog.Nop())

	req := withSession(httptest.NewRequest(http.MethodPost, "/admin/api/transaksi",
		strings.NewReader(`{"kind":"expense","category_id":"4","amount":"150000"}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Fields["amount"] != warning {
		t.Fatalf("expected warning on amount, got %+v", resp.Fields)
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != domain.AuditStatusFailure {
		t.Fatalf("expected a failure audit entry, got %+v", audit.entries)
	}
}

func TestTransactionHandler_Create_InvalidBody(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
			t.Fatal("Create should not be called")
			return nil, nil
		},
	}, "", wib, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/admin/api/transaksi", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_Update_PassesID(t *testing.T) {
	var gotID string
	handler := NewTransactionHandler(&transactionServiceStub{
		updateFn: func(ctx context.Context, token, id string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
			gotID = id
			return &domain.Transaction{ID: id}, nil
		},
	}, "", wib, nil, zerolog.Nop())

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/admin/api/transaksi/9",
		strings.NewReader(`{"kind":"expense","category_id":"4","amount":"140000"}`)), "id", "9")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK || gotID != "9" {
		t.Fatalf("expected 200 for id 9, got %d for %q", rec.Code, gotID)
	}
}

func TestTransactionHandler_Check(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		checkFn: func(ctx context.Context, token string, input usecase.CheckInput) (usecase.CheckResult, error) {
			if input.Kind != domain.KindExpense || input.TransactionID != "9" {
				t.Errorf("unexpected input %+v", input)
			}
			return usecase.CheckResult{FundingSource: domain.FundingCash, Available: "Rp 100.000", Warning: "Saldo kurang"}, nil
		},
	}, "", wib, nil, zerolog.Nop())

	req := withSession(httptest.NewRequest(http.MethodPost, "/admin/api/transaksi/check",
		strings.NewReader(`{"kind":"expense","category_id":"4","amount":"150000","transaction_id":"9"}`)))
	rec := httptest.NewRecorder()

	handler.Check(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Allowed || resp.Warning != "Saldo kurang" || resp.FundingSource != domain.FundingCash {
		t.Fatalf("unexpected check response %+v", resp)
	}
}

func TestTransactionHandler_Form_PartialFailure(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		formStateFn: func(ctx context.Context, token string) usecase.FormState {
			return usecase.FormState{
				SummaryErr: errors.New("timeout"),
				Categories: []domain.TransactionCategory{{ID: "1", Label: "Kas Masjid", FundingSource: domain.FundingCash}},
			}
		},
	}, "", wib, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Form(rec, withSession(httptest.NewRequest(http.MethodGet, "/admin/api/transaksi/form", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.FormStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Summary != nil || resp.SummaryError == "" || len(resp.Categories) != 1 {
		t.Fatalf("unexpected form state %+v", resp)
	}
}

func TestTransactionHandler_List_Filters(t *testing.T) {
	var captured usecase.ListInput
	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, token string, input usecase.ListInput) ([]*domain.Transaction, int, error) {
			captured = input
			return []*domain.Transaction{{ID: "1"}}, 11, nil
		},
	}, "", wib, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.List(rec, withSession(httptest.NewRequest(http.MethodGet, "/admin/api/transaksi?q=listrik&kind=pengeluaran&status=draft&limit=10&offset=10", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Filter.Query != "listrik" || captured.Filter.Kind != domain.KindExpense || captured.Filter.Status != domain.StatusDraft {
		t.Fatalf("unexpected filter %+v", captured.Filter)
	}
	if captured.Limit != 10 || captured.Offset != 10 {
		t.Fatalf("unexpected paging %d/%d", captured.Limit, captured.Offset)
	}

	var resp dto.ListResponse[dto.TransactionResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 11 || len(resp.Data) != 1 {
		t.Fatalf("unexpected page %+v", resp)
	}
}

func TestTransactionHandler_Delete_BackendRejectsToken(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		deleteFn: func(ctx context.Context, token, id string) error {
			return &domain.ExternalServiceError{Service: "backend", StatusCode: 401, Err: domain.ErrUnauthorized}
		},
	}, "", wib, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Delete(rec, withURLParam(withSession(httptest.NewRequest(http.MethodDelete, "/admin/api/transaksi/3", nil)), "id", "3"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
