package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
)

// SummaryService serves the account summary.
type SummaryService interface {
	Current(ctx context.Context, token string) (domain.AccountSummary, error)
	Refresh(ctx context.Context, token string) (domain.AccountSummary, error)
}

// SummaryHandler handles the dashboard summary.
type SummaryHandler struct {
	summaries SummaryService
	logger    zerolog.Logger
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaries SummaryService, logger zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, logger: logger}
}

// Get returns the cached summary, fetching it when stale.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.Current(r.Context(), backendToken(r))
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to load summary")
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// Refresh forces a fetch from the backend.
func (h *SummaryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.Refresh(r.Context(), backendToken(r))
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to refresh summary")
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}
