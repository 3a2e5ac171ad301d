package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
)

// TransactionService runs the transaction form and CRUD.
type TransactionService interface {
	FormState(ctx context.Context, token string) usecase.FormState
	Check(ctx context.Context, token string, input usecase.CheckInput) (usecase.CheckResult, error)
	Create(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error)
	Update(ctx context.Context, token, id string, draft *domain.TransactionDraft) (*domain.Transaction, error)
	Delete(ctx context.Context, token, id string) error
	Get(ctx context.Context, token, id string) (*domain.Transaction, error)
	List(ctx context.Context, token string, input usecase.ListInput) ([]*domain.Transaction, int, error)
}

// TransactionHandler handles transaksi requests.
type TransactionHandler struct {
	transactions TransactionService
	assetBase    string
	loc          *time.Location
	audit        auditTrail
	logger       zerolog.Logger
	now          func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions TransactionService, assetBase string, loc *time.Location, recorder AuditRecorder, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		assetBase:    assetBase,
		loc:          loc,
		audit:        auditTrail{recorder: recorder},
		logger:       logger,
		now:          time.Now,
	}
}

// Form returns the summary and category options for the form.
func (h *TransactionHandler) Form(w http.ResponseWriter, r *http.Request) {
	state := h.transactions.FormState(r.Context(), backendToken(r))
	writeJSON(w, http.StatusOK, dto.FormStateFromUseCase(state))
}

// Check previews the balance guard for the form's current values.
func (h *TransactionHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, h.logger, err, "invalid check request")
		return
	}

	result, err := h.transactions.Check(r.Context(), backendToken(r), input)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "balance check failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.CheckFromUseCase(result))
}

// List lists transactions with search and filters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		Query:  q.Get("q"),
		Status: domain.TransactionStatus(q.Get("status")),
	}
	if kind := q.Get("kind"); kind != "" {
		parsed, err := domain.ParseTransactionKind(kind)
		if err != nil {
			writeDomainError(w, r, h.logger, &domain.ValidationError{Field: "kind", Message: err.Error()}, "invalid filter")
			return
		}
		filter.Kind = parsed
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txs, total, err := h.transactions.List(r.Context(), backendToken(r), usecase.ListInput{
		Filter: filter,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(dto.TransactionsFromDomain(txs, h.assetBase), total, limit, offset))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	tx, err := h.transactions.Get(r.Context(), backendToken(r), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to get transaction")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx, h.assetBase))
}

// Create submits a new transaction after the balance guard.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.readDraft(w, r)
	if !ok {
		return
	}

	tx, err := h.transactions.Create(r.Context(), backendToken(r), draft)
	if err != nil {
		h.audit.record(r, domain.AuditActionTransactionCreate, "transaction", "", nil, err)
		writeDomainError(w, r, h.logger, err, "failed to create transaction")
		return
	}

	resp := dto.TransactionFromDomain(tx, h.assetBase)
	h.audit.record(r, domain.AuditActionTransactionCreate, "transaction", tx.ID, resp, nil)
	writeJSON(w, http.StatusCreated, resp)
}

// Update edits a transaction; the guard accounts for the original amount.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	draft, ok := h.readDraft(w, r)
	if !ok {
		return
	}

	tx, err := h.transactions.Update(r.Context(), backendToken(r), id, draft)
	if err != nil {
		h.audit.record(r, domain.AuditActionTransactionUpdate, "transaction", id, nil, err)
		writeDomainError(w, r, h.logger, err, "failed to update transaction")
		return
	}

	resp := dto.TransactionFromDomain(tx, h.assetBase)
	h.audit.record(r, domain.AuditActionTransactionUpdate, "transaction", id, resp, nil)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	err := h.transactions.Delete(r.Context(), backendToken(r), id)
	h.audit.record(r, domain.AuditActionTransactionDelete, "transaction", id, nil, err)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) readDraft(w http.ResponseWriter, r *http.Request) (*domain.TransactionDraft, bool) {
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}

	draft, err := dto.TransactionDraftFromForm(form, h.loc, h.now())
	if err != nil {
		writeDomainError(w, r, h.logger, err, "invalid transaction")
		return nil, false
	}

	return draft, true
}
