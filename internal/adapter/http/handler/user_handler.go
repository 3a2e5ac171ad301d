package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/domain"
)

// UserService manages admin accounts and roles.
type UserService interface {
	ListUsers(ctx context.Context, token, query string, limit, offset int) ([]*domain.User, int, error)
	GetUser(ctx context.Context, token, id string) (*domain.User, error)
	CreateUser(ctx context.Context, token string, in *domain.UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, token, id string, in *domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, token, id string, actor *domain.User) error
	ListRoles(ctx context.Context, token string) ([]domain.Role, error)
}

// UserHandler handles admin account requests.
type UserHandler struct {
	users  UserService
	audit  auditTrail
	logger zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, recorder AuditRecorder, logger zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, audit: auditTrail{recorder: recorder}, logger: logger}
}

// List lists admins.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	users, total, err := h.users.ListUsers(r.Context(), backendToken(r), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(dto.UsersFromDomain(users), total, limit, offset))
}

// Get retrieves an admin by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), backendToken(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// Create adds an admin.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.users.CreateUser(r.Context(), backendToken(r), dto.UserInputFromForm(form))
	if err != nil {
		h.audit.record(r, domain.AuditActionAdminCreate, "user", "", nil, err)
		writeDomainError(w, r, h.logger, err, "failed to create user")
		return
	}

	resp := dto.UserFromDomain(user)
	h.audit.record(r, domain.AuditActionAdminCreate, "user", user.ID, resp, nil)
	writeJSON(w, http.StatusCreated, resp)
}

// Update edits an admin. An empty password keeps the current one.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.users.UpdateUser(r.Context(), backendToken(r), id, dto.UserInputFromForm(form))
	if err != nil {
		h.audit.record(r, domain.AuditActionAdminUpdate, "user", id, nil, err)
		writeDomainError(w, r, h.logger, err, "failed to update user")
		return
	}

	resp := dto.UserFromDomain(user)
	h.audit.record(r, domain.AuditActionAdminUpdate, "user", id, resp, nil)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes an admin other than the caller.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var actor *domain.User
	if cred, ok := middleware.CredentialFromContext(r.Context()); ok {
		actor = &cred.User
	}

	err := h.users.DeleteUser(r.Context(), backendToken(r), id, actor)
	h.audit.record(r, domain.AuditActionAdminDelete, "user", id, nil, err)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Roles lists the roles an admin can be given.
func (h *UserHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.users.ListRoles(r.Context(), backendToken(r))
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to list roles")
		return
	}

	writeJSON(w, http.StatusOK, dto.RolesFromDomain(roles))
}
