package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
)

// PrayerService serves prayer schedules.
type PrayerService interface {
	Today(ctx context.Context) (usecase.PrayerDay, error)
	ForDate(ctx context.Context, date time.Time) (*domain.PrayerSchedule, error)
}

// PublicConfig holds what the public site needs besides the services.
type PublicConfig struct {
	PublicToken string
	AssetBase   string
	Location    *time.Location
	Donation    domain.DonationInfo
}

// PublicHandler serves the unauthenticated public site.
type PublicHandler struct {
	content      ContentService
	reservations ReservationService
	prayers      PrayerService
	cfg          PublicConfig
	logger       zerolog.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(content ContentService, reservations ReservationService, prayers PrayerService, cfg PublicConfig, logger zerolog.Logger) *PublicHandler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &PublicHandler{
		content:      content,
		reservations: reservations,
		prayers:      prayers,
		cfg:          cfg,
		logger:       logger,
	}
}

// PrayerTimes returns today's schedule with the next prayer, or the
// schedule of ?date=YYYY-MM-DD.
func (h *PublicHandler) PrayerTimes(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("date"); v != "" {
		date, err := time.ParseInLocation(dto.DateLayout, v, h.cfg.Location)
		if err != nil {
			writeDomainError(w, r, h.logger, &domain.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}, "invalid date")
			return
		}

		schedule, err := h.prayers.ForDate(r.Context(), date)
		if err != nil {
			writeDomainError(w, r, h.logger, err, "failed to load prayer times")
			return
		}

		writeJSON(w, http.StatusOK, dto.PrayerTimesFromUseCase(usecase.PrayerDay{Schedule: schedule}))
		return
	}

	day, err := h.prayers.Today(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to load prayer times")
		return
	}

	writeJSON(w, http.StatusOK, dto.PrayerTimesFromUseCase(day))
}

// ListActivities lists public activities, filterable by status.
func (h *PublicHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	listActivities(w, r, h.content, h.cfg.PublicToken, h.cfg.AssetBase, h.logger)
}

// GetActivity returns one activity.
func (h *PublicHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	getActivity(w, r, h.content, h.cfg.PublicToken, h.cfg.AssetBase, h.logger)
}

// ListPosts lists public posts.
func (h *PublicHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	listPosts(w, r, h.content, h.cfg.PublicToken, h.cfg.AssetBase, h.logger)
}

// GetPost returns one post.
func (h *PublicHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	getPost(w, r, h.content, h.cfg.PublicToken, h.cfg.AssetBase, h.logger)
}

// ListVenues lists reservable venues.
func (h *PublicHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	listVenues(w, r, h.reservations, h.cfg.PublicToken, h.cfg.AssetBase, h.logger)
}

// RequestReservation submits a reservation request.
func (h *PublicHandler) RequestReservation(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	req, err := dto.ReservationRequestFromForm(form, h.cfg.Location)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "invalid reservation")
		return
	}

	reservation, err := h.reservations.Request(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to submit reservation")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReservationFromDomain(reservation))
}

// Donation returns the donation channels.
func (h *PublicHandler) Donation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.DonationFromDomain(h.cfg.Donation))
}
