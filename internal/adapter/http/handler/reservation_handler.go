package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
)

// ReservationService manages reservations and the venues they book.
type ReservationService interface {
	Request(ctx context.Context, req *domain.ReservationRequest) (*domain.Reservation, error)
	List(ctx context.Context, token string, input usecase.ListReservationsInput) ([]*domain.Reservation, int, error)
	SetStatus(ctx context.Context, token, id string, status domain.ReservationStatus) (*domain.Reservation, error)
	Delete(ctx context.Context, token, id string) error

	ListVenues(ctx context.Context, token, query string) ([]*domain.Venue, error)
	GetVenue(ctx context.Context, token, id string) (*domain.Venue, error)
	CreateVenue(ctx context.Context, token string, in *domain.VenueInput) (*domain.Venue, error)
	UpdateVenue(ctx context.Context, token, id string, in *domain.VenueInput) (*domain.Venue, error)
	DeleteVenue(ctx context.Context, token, id string) error
}

// ReservationHandler handles admin reservasi and tempat reservasi requests.
type ReservationHandler struct {
	reservations ReservationService
	assetBase    string
	audit        auditTrail
	logger       zerolog.Logger
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(reservations ReservationService, assetBase string, recorder AuditRecorder, logger zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		assetBase:    assetBase,
		audit:        auditTrail{recorder: recorder},
		logger:       logger,
	}
}

// List lists reservations, pending first.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ReservationFilter{
		Query:   q.Get("q"),
		VenueID: q.Get("tempat_reservasi_id"),
	}
	if s := q.Get("status"); s != "" {
		status, err := domain.ParseReservationStatus(s)
		if err != nil {
			writeDomainError(w, r, h.logger, &domain.ValidationError{Field: "status", Message: err.Error()}, "invalid filter")
			return
		}
		filter.Status = status
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	reservations, total, err := h.reservations.List(r.Context(), backendToken(r), usecase.ListReservationsInput{
		Filter: filter,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to list reservations")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(dto.ReservationsFromDomain(reservations), total, limit, offset))
}

// SetStatus approves or rejects a reservation.
func (h *ReservationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	status, err := domain.ParseReservationStatus(req.Status)
	if err != nil || req.Status == "" {
		writeDomainError(w, r, h.logger, &domain.ValidationError{
			Field:   "status",
			Message: domain.ErrInvalidReservationStatus.Error(),
		}, "invalid status")
		return
	}

	reservation, err := h.reservations.SetStatus(r.Context(), backendToken(r), id, status)
	if err != nil {
		h.audit.record(r, domain.AuditActionReservationStatus, "reservation", id, nil, err)
		writeDomainError(w, r, h.logger, err, "failed to update reservation")
		return
	}

	resp := dto.ReservationFromDomain(reservation)
	h.audit.record(r, domain.AuditActionReservationStatus, "reservation", id, resp, nil)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a reservation.
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.reservations.Delete(r.Context(), backendToken(r), id)
	h.audit.record(r, domain.AuditActionReservationDelete, "reservation", id, nil, err)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to delete reservation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVenues lists venues.
func (h *ReservationHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	listVenues(w, r, h.reservations, backendToken(r), h.assetBase, h.logger)
}

// GetVenue retrieves a venue by ID.
func (h *ReservationHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := h.reservations.GetVenue(r.Context(), backendToken(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to get venue")
		return
	}

	writeJSON(w, http.StatusOK, dto.VenueFromDomain(venue, h.assetBase))
}

// CreateVenue adds a venue.
func (h *ReservationHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readVenue(w, r)
	if !ok {
		return
	}

	venue, err := h.reservations.CreateVenue(r.Context(), backendToken(r), in)
	if err != nil {
		h.audit.record(r, domain.AuditActionVenueCreate, "venue", "", nil, err)
		writeDomainError(w, r, h.logger, err, "failed to create venue")
		return
	}

	resp := dto.VenueFromDomain(venue, h.assetBase)
	h.audit.record(r, domain.AuditActionVenueCreate, "venue", venue.ID, resp, nil)
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateVenue edits a venue.
func (h *ReservationHandler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := h.readVenue(w, r)
	if !ok {
		return
	}

	venue, err := h.reservations.UpdateVenue(r.Context(), backendToken(r), id, in)
	if err != nil {
		h.audit.record(r, domain.AuditActionVenueUpdate, "venue", id, nil, err)
		writeDomainError(w, r, h.logger, err, "failed to update venue")
		return
	}

	resp := dto.VenueFromDomain(venue, h.assetBase)
	h.audit.record(r, domain.AuditActionVenueUpdate, "venue", id, resp, nil)
	writeJSON(w, http.StatusOK, resp)
}

// DeleteVenue removes a venue.
func (h *ReservationHandler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.reservations.DeleteVenue(r.Context(), backendToken(r), id)
	h.audit.record(r, domain.AuditActionVenueDelete, "venue", id, nil, err)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to delete venue")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationHandler) readVenue(w http.ResponseWriter, r *http.Request) (*domain.VenueInput, bool) {
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}

	in, err := dto.VenueInputFromForm(form)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "invalid venue")
		return nil, false
	}

	return in, true
}

func listVenues(w http.ResponseWriter, r *http.Request, reservations ReservationService, token, assetBase string, logger zerolog.Logger) {
	venues, err := reservations.ListVenues(r.Context(), token, r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, r, logger, err, "failed to list venues")
		return
	}

	writeJSON(w, http.StatusOK, dto.VenuesFromDomain(venues, assetBase))
}
