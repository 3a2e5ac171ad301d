package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/domain"
)

// CategoryService lists transaction categories.
type CategoryService interface {
	List(ctx context.Context, token string) ([]domain.TransactionCategory, error)
	Invalidate(ctx context.Context)
}

// CategoryHandler handles jenis transaksi requests.
type CategoryHandler struct {
	categories CategoryService
	logger     zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// List returns categories with their resolved funding source.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context(), backendToken(r))
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []domain.TransactionCategory{}
	}

	writeJSON(w, http.StatusOK, categories)
}

// Refresh drops the category cache and lists again.
func (h *CategoryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.categories.Invalidate(r.Context())
	h.List(w, r)
}
