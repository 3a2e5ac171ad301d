package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
)

// AuditService lists recorded admin actions.
type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	History(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// AuditHandler handles audit log requests.
type AuditHandler struct {
	audits AuditService
	logger zerolog.Logger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audits AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{audits: audits, logger: logger}
}

// List lists audit entries, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	}
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	for key, dst := range map[string]**time.Time{"from": &filter.StartDate, "to": &filter.EndDate} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		t, err := dto.ParseDateTime(v, time.UTC)
		if err != nil {
			writeDomainError(w, r, h.logger, &domain.ValidationError{Field: key, Message: err.Error()}, "invalid filter")
			return
		}
		*dst = &t
	}

	logs, err := h.audits.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// History lists the entries for one resource.
func (h *AuditHandler) History(w http.ResponseWriter, r *http.Request) {
	logs, err := h.audits.History(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to load audit history")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
