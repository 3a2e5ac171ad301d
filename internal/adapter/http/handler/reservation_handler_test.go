package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
)

func TestReservationHandler_List_Filter(t *testing.T) {
	var captured usecase.ListReservationsInput
	handler := NewReservationHandler(&reservationServiceStub{
		listFn: func(ctx context.Context, token string, input usecase.ListReservationsInput) ([]*domain.Reservation, int, error) {
			captured = input
			return []*domain.Reservation{{ID: "1", Status: domain.ReservationPending}}, 1, nil
		},
	}, "", nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.List(rec, withSession(httptest.NewRequest(http.MethodGet, "/admin/api/reservasi?status=menunggu&tempat_reservasi_id=2", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Filter.Status != domain.ReservationPending || captured.Filter.VenueID != "2" {
		t.Fatalf("unexpected filter %+v", captured.Filter)
	}

	rec = httptest.NewRecorder()
	handler.List(rec, withSession(httptest.NewRequest(http.MethodGet, "/admin/api/reservasi?status=maybe", nil)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an unknown status, got %d", rec.Code)
	}
}

func TestReservationHandler_SetStatus(t *testing.T) {
	audit := &auditRecorderStub{}
	var gotStatus domain.ReservationStatus

	handler := NewReservationHandler(&reservationServiceStub{
		setStatusFn: func(ctx context.Context, token, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
			gotStatus = status
			return &domain.Reservation{ID: id, Status: status}, nil
		},
	}, "", audit, zerolog.Nop())

	req := withURLParam(withSession(httptest.NewRequest(http.MethodPut, "/admin/api/reservasi/3/status",
		strings.NewReader(`{"status":"disetujui"}`))), "id", "3")
	rec := httptest.NewRecorder()

	handler.SetStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotStatus != domain.ReservationApproved {
		t.Fatalf("expected approved, got %q", gotStatus)
	}

	var resp dto.ReservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "3" || resp.Status != domain.ReservationApproved {
		t.Fatalf("unexpected reservation %+v", resp)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditActionReservationStatus {
		t.Fatalf("unexpected audit entries %+v", audit.entries)
	}
}

func TestReservationHandler_SetStatus_RequiresStatus(t *testing.T) {
	handler := NewReservationHandler(&reservationServiceStub{
		setStatusFn: func(ctx context.Context, token, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
			t.Fatal("SetStatus should not be called")
			return nil, nil
		},
	}, "", nil, zerolog.Nop())

	for _, body := range []string{`{}`, `{"status":"archived"}`} {
		rec := httptest.NewRecorder()
		handler.SetStatus(rec, withURLParam(httptest.NewRequest(http.MethodPut, "/admin/api/reservasi/3/status", strings.NewReader(body)), "id", "3"))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %s: expected 422, got %d", body, rec.Code)
		}
	}
}

func TestReservationHandler_CreateVenue(t *testing.T) {
	var captured *domain.VenueInput
	handler := NewReservationHandler(&reservationServiceStub{
		createVenueFn: func(ctx context.Context, token string, in *domain.VenueInput) (*domain.Venue, error) {
			captured = in
			return &domain.Venue{ID: "v-1", Name: in.Name, Capacity: in.Capacity}, nil
		},
	}, "", nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.CreateVenue(rec, withSession(httptest.NewRequest(http.MethodPost, "/admin/api/tempat-reservasi",
		strings.NewReader(`{"nama":"Aula Utama","kapasitas":200}`))))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Name != "Aula Utama" || captured.Capacity != 200 {
		t.Fatalf("unexpected venue input %+v", captured)
	}
}

func TestReservationHandler_CreateVenue_BadCapacity(t *testing.T) {
	handler := NewReservationHandler(&reservationServiceStub{}, "", nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.CreateVenue(rec, withSession(httptest.NewRequest(http.MethodPost, "/admin/api/tempat-reservasi",
		strings.NewReader(`{"nama":"Aula","kapasitas":"banyak"}`))))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
