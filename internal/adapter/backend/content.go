package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/masjid-console/internal/domain"
)

const (
	postsPath      = "/api/informasi"
	activitiesPath = "/api/kegiatan"
)

type postRecord struct {
	ID          flexString `json:"id"`
	Title       string     `json:"judul"`
	Content     string     `json:"isi"`
	Image       string     `json:"gambar"`
	PublishedAt flexTime   `json:"tanggal"`
	CreatedAt   flexTime   `json:"created_at"`
}

func (r postRecord) toDomain() (*domain.Post, error) {
	if err := required("informasi", map[string]string{"id": string(r.ID), "judul": r.Title}); err != nil {
		return nil, err
	}
	published := r.PublishedAt.Time
	if published.IsZero() {
		published = r.CreatedAt.Time
	}
	return &domain.Post{
		ID:          string(r.ID),
		Title:       r.Title,
		Content:     r.Content,
		ImagePath:   r.Image,
		PublishedAt: published,
	}, nil
}

// ListPosts implements usecase.PostBackend.
func (c *Client) ListPosts(ctx context.Context, token string) ([]*domain.Post, error) {
	var recs []postRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: postsPath, token: token, endpoint: "informasi.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]*domain.Post, 0, len(recs))
	for _, r := range recs {
		p, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed post")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetPost implements usecase.PostBackend.
func (c *Client) GetPost(ctx context.Context, token, id string) (*domain.Post, error) {
	var rec postRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: resourcePath(postsPath, id), token: token, endpoint: "informasi.get"}, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// CreatePost implements usecase.PostBackend.
func (c *Client) CreatePost(ctx context.Context, token string, in *domain.PostInput) (*domain.Post, error) {
	return c.sendPost(ctx, http.MethodPost, postsPath, token, "informasi.create", in)
}

// UpdatePost implements usecase.PostBackend.
func (c *Client) UpdatePost(ctx context.Context, token, id string, in *domain.PostInput) (*domain.Post, error) {
	return c.sendPost(ctx, http.MethodPut, resourcePath(postsPath, id), token, "informasi.update", in)
}

// DeletePost implements usecase.PostBackend.
func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(postsPath, id), token: token, endpoint: "informasi.delete"}, nil)
}

func (c *Client) sendPost(ctx context.Context, method, path, token, endpoint string, in *domain.PostInput) (*domain.Post, error) {
	body := formBody{
		fields: map[string]string{"judul": in.Title, "isi": in.Content},
		file:   withField(in.Image, "gambar"),
	}
	req, err := body.request(method, path, token, endpoint)
	if err != nil {
		return nil, err
	}

	var rec postRecord
	if err := c.do(ctx, req, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

type activityRecord struct {
	ID          flexString `json:"id"`
	Title       string     `json:"nama_kegiatan"`
	Description string     `json:"deskripsi"`
	Location    string     `json:"lokasi"`
	StartsAt    flexTime   `json:"tanggal_mulai"`
	EndsAt      flexTime   `json:"tanggal_selesai"`
	Image       string     `json:"gambar"`
}

func (r activityRecord) toDomain() (*domain.Activity, error) {
	if err := required("kegiatan", map[string]string{"id": string(r.ID), "nama_kegiatan": r.Title}); err != nil {
		return nil, err
	}
	if r.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: kegiatan %s without tanggal_mulai", domain.ErrMalformedPayload, r.ID)
	}
	return &domain.Activity{
		ID:          string(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartsAt:    r.StartsAt.Time,
		EndsAt:      r.EndsAt.ptr(),
		ImagePath:   r.Image,
	}, nil
}

// ListActivities implements usecase.ActivityBackend.
func (c *Client) ListActivities(ctx context.Context, token string) ([]*domain.Activity, error) {
	var recs []activityRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: activitiesPath, token: token, endpoint: "kegiatan.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]*domain.Activity, 0, len(recs))
	for _, r := range recs {
		a, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed activity")
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// GetActivity implements usecase.ActivityBackend.
func (c *Client) GetActivity(ctx context.Context, token, id string) (*domain.Activity, error) {
	var rec activityRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: resourcePath(activitiesPath, id), token: token, endpoint: "kegiatan.get"}, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// CreateActivity implements usecase.ActivityBackend.
func (c *Client) CreateActivity(ctx context.Context, token string, in *domain.ActivityInput) (*domain.Activity, error) {
	return c.sendActivity(ctx, http.MethodPost, activitiesPath, token, "kegiatan.create", in)
}

// UpdateActivity implements usecase.ActivityBackend.
func (c *Client) UpdateActivity(ctx context.Context, token, id string, in *domain.ActivityInput) (*domain.Activity, error) {
	return c.sendActivity(ctx, http.MethodPut, resourcePath(activitiesPath, id), token, "kegiatan.update", in)
}

// DeleteActivity implements usecase.ActivityBackend.
func (c *Client) DeleteActivity(ctx context.Context, token, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(activitiesPath, id), token: token, endpoint: "kegiatan.delete"}, nil)
}

func (c *Client) sendActivity(ctx context.Context, method, path, token, endpoint string, in *domain.ActivityInput) (*domain.Activity, error) {
	fields := map[string]string{
		"nama_kegiatan": in.Title,
		"deskripsi":     in.Description,
		"lokasi":        in.Location,
		"tanggal_mulai": in.StartsAt.Format(datetimeLayout),
	}
	if in.EndsAt != nil {
		fields["tanggal_selesai"] = in.EndsAt.Format(datetimeLayout)
	}

	req, err := formBody{fields: fields, file: withField(in.Image, "gambar")}.request(method, path, token, endpoint)
	if err != nil {
		return nil, err
	}

	var rec activityRecord
	if err := c.do(ctx, req, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

func withField(u *domain.Upload, field string) *domain.Upload {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Field = field
	return &cp
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
