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

// ContentService manages informasi posts and kegiatan.
type ContentService interface {
	ListPosts(ctx context.Context, token, query string, limit, offset int) ([]*domain.Post, int, error)
	GetPost(ctx context.Context, token, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, token string, in *domain.PostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, token, id string, in *domain.PostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, token, id string) error

	ListActivities(ctx context.Context, token string, q usecase.ActivityQuery) ([]usecase.ActivityView, int, error)
	GetActivity(ctx context.Context, token, id string) (usecase.ActivityView, error)
	CreateActivity(ctx context.Context, token string, in *domain.ActivityInput) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, token, id string, in *domain.ActivityInput) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, token, id string) error
}

// ContentHandler handles admin informasi and kegiatan requests.
type ContentHandler struct {
	content   ContentService
	assetBase string
	loc       *time.Location
	audit     auditTrail
	logger    zerolog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(content ContentService, assetBase string, loc *time.Location, recorder AuditRecorder, logger zerolog.Logger) *ContentHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ContentHandler{
		content:   content,
		assetBase: assetBase,
		loc:       loc,
		audit:     auditTrail{recorder: recorder},
		logger:    logger,
	}
}

// ListPosts lists posts, newest first.
func (h *ContentHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	listPosts(w, r, h.content, backendToken(r), h.assetBase, h.logger)
}

// GetPost retrieves a post by ID.
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	getPost(w, r, h.content, backendToken(r), h.assetBase, h.logger)
}

// CreatePost publishes a post.
func (h *ContentHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	post, err := h.content.CreatePost(r.Context(), backendToken(r), dto.PostInputFromForm(form))
	if err != nil {
		h.audit.record(r, domain.AuditActionPostCreate, "post", "", nil, err)
		writeDomainError(w, r, h.logger, err, "failed to create post")
		return
	}

	resp := dto.PostFromDomain(post, h.assetBase)
	h.audit.record(r, domain.AuditActionPostCreate, "post", post.ID, resp, nil)
	writeJSON(w, http.StatusCreated, resp)
}

// UpdatePost edits a post.
func (h *ContentHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	post, err := h.content.UpdatePost(r.Context(), backendToken(r), id, dto.PostInputFromForm(form))
	if err != nil {
		h.audit.record(r, domain.AuditActionPostUpdate, "post", id, nil, err)
		writeDomainError(w, r, h.logger, err, "failed to update post")
		return
	}

	resp := dto.PostFromDomain(post, h.assetBase)
	h.audit.record(r, domain.AuditActionPostUpdate, "post", id, resp, nil)
	writeJSON(w, http.StatusOK, resp)
}

// DeletePost removes a post.
func (h *ContentHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.content.DeletePost(r.Context(), backendToken(r), id)
	h.audit.record(r, domain.AuditActionPostDelete, "post", id, nil, err)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to delete post")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListActivities lists activities with their derived status.
func (h *ContentHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	listActivities(w, r, h.content, backendToken(r), h.assetBase, h.logger)
}

// GetActivity retrieves an activity by ID.
func (h *ContentHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	getActivity(w, r, h.content, backendToken(r), h.assetBase, h.logger)
}

// CreateActivity schedules an activity.
func (h *ContentHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readActivity(w, r)
	if !ok {
		return
	}

	activity, err := h.content.CreateActivity(r.Context(), backendToken(r), in)
	if err != nil {
		h.audit.record(r, domain.AuditActionActivityCreate, "activity", "", nil, err)
		writeDomainError(w, r, h.logger, err, "failed to create activity")
		return
	}

	resp := h.activityResponse(activity)
	h.audit.record(r, domain.AuditActionActivityCreate, "activity", activity.ID, resp, nil)
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateActivity edits an activity.
func (h *ContentHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := h.readActivity(w, r)
	if !ok {
		return
	}

	activity, err := h.content.UpdateActivity(r.Context(), backendToken(r), id, in)
	if err != nil {
		h.audit.record(r, domain.AuditActionActivityUpdate, "activity", id, nil, err)
		writeDomainError(w, r, h.logger, err, "failed to update activity")
		return
	}

	resp := h.activityResponse(activity)
	h.audit.record(r, domain.AuditActionActivityUpdate, "activity", id, resp, nil)
	writeJSON(w, http.StatusOK, resp)
}

// DeleteActivity removes an activity.
func (h *ContentHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.content.DeleteActivity(r.Context(), backendToken(r), id)
	h.audit.record(r, domain.AuditActionActivityDelete, "activity", id, nil, err)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to delete activity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) readActivity(w http.ResponseWriter, r *http.Request) (*domain.ActivityInput, bool) {
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}

	in, err := dto.ActivityInputFromForm(form, h.loc)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "invalid activity")
		return nil, false
	}

	return in, true
}

func (h *ContentHandler) activityResponse(a *domain.Activity) *dto.ActivityResponse {
	view := usecase.ActivityView{Activity: a, Status: a.StatusAt(time.Now(), h.loc)}
	return dto.ActivityFromView(view, h.assetBase)
}

// The read paths are shared by the admin and public handlers; only the token differs.

func listPosts(w http.ResponseWriter, r *http.Request, content ContentService, token, assetBase string, logger zerolog.Logger) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	posts, total, err := content.ListPosts(r.Context(), token, r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeDomainError(w, r, logger, err, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(dto.PostsFromDomain(posts, assetBase), total, limit, offset))
}

func getPost(w http.ResponseWriter, r *http.Request, content ContentService, token, assetBase string, logger zerolog.Logger) {
	post, err := content.GetPost(r.Context(), token, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, logger, err, "failed to get post")
		return
	}

	writeJSON(w, http.StatusOK, dto.PostFromDomain(post, assetBase))
}

func listActivities(w http.ResponseWriter, r *http.Request, content ContentService, token, assetBase string, logger zerolog.Logger) {
	q := r.URL.Query()
	query := usecase.ActivityQuery{
		Query:  q.Get("q"),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	}

	switch status := domain.ActivityStatus(q.Get("status")); status {
	case "":
	case domain.ActivityUpcoming, domain.ActivityOngoing, domain.ActivityFinished:
		query.Status = status
	default:
		writeDomainError(w, r, logger, &domain.ValidationError{
			Field:   "status",
			Message: "status must be upcoming, ongoing or finished",
		}, "invalid filter")
		return
	}

	views, total, err := content.ListActivities(r.Context(), token, query)
	if err != nil {
		writeDomainError(w, r, logger, err, "failed to list activities")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(dto.ActivitiesFromViews(views, assetBase), total, query.Limit, query.Offset))
}

func getActivity(w http.ResponseWriter, r *http.Request, content ContentService, token, assetBase string, logger zerolog.Logger) {
	view, err := content.GetActivity(r.Context(), token, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, logger, err, "failed to get activity")
		return
	}

	writeJSON(w, http.StatusOK, dto.ActivityFromView(view, assetBase))
}
