package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
)

type summaryServiceStub struct {
	currentFn func(ctx context.Context, token string) (domain.AccountSummary, error)
	refreshFn func(ctx context.Context, token string) (domain.AccountSummary, error)
}

func (s *summaryServiceStub) Current(ctx context.Context, token string) (domain.AccountSummary, error) {
	return s.currentFn(ctx, token)
}

func (s *summaryServiceStub) Refresh(ctx context.Context, token string) (domain.AccountSummary, error) {
	return s.refreshFn(ctx, token)
}

type categoryServiceStub struct {
	listFn      func(ctx context.Context, token string) ([]domain.TransactionCategory, error)
	invalidated int
}

func (s *categoryServiceStub) List(ctx context.Context, token string) ([]domain.TransactionCategory, error) {
	return s.listFn(ctx, token)
}

func (s *categoryServiceStub) Invalidate(ctx context.Context) {
	s.invalidated++
}

func TestSummaryHandler_Get(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceStub{
		currentFn: func(ctx context.Context, token string) (domain.AccountSummary, error) {
			return domain.AccountSummary{
				CashBalance:  decimal.NewFromInt(250000),
				BankBalance:  decimal.NewFromInt(1250000),
				TotalBalance: decimal.NewFromInt(1500000),
			}, nil
		},
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Get(rec, withSession(httptest.NewRequest(http.MethodGet, "/admin/api/summary", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalFormatted != "Rp 1.500.000" {
		t.Fatalf("unexpected total %q", resp.TotalFormatted)
	}
}

func TestSummaryHandler_Refresh_Unavailable(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceStub{
		refreshFn: func(ctx context.Context, token string) (domain.AccountSummary, error) {
			return domain.AccountSummary{}, domain.ErrSummaryUnavailable
		},
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Refresh(rec, withSession(httptest.NewRequest(http.MethodPost, "/admin/api/summary/refresh", nil)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCategoryHandler_Refresh_InvalidatesCache(t *testing.T) {
	svc := &categoryServiceStub{
		listFn: func(ctx context.Context, token string) ([]domain.TransactionCategory, error) {
			return nil, nil
		},
	}
	handler := NewCategoryHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Refresh(rec, withSession(httptest.NewRequest(http.MethodPost, "/admin/api/jenis-transaksi/refresh", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.invalidated != 1 {
		t.Fatalf("expected one invalidation, got %d", svc.invalidated)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected an empty list, got %q", body)
	}
}
