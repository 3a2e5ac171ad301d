package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iho/masjid-console/internal/domain"
)

const (
	usersPath = "/api/user"
	rolesPath = "/api/role"
)

type roleRecord struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

type userRecord struct {
	ID        flexString  `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	RoleID    flexString  `json:"role_id"`
	Role      *roleRecord `json:"role"`
	CreatedAt flexTime    `json:"created_at"`
}

func (r userRecord) toDomain() (*domain.User, error) {
	if err := required("user", map[string]string{"id": string(r.ID), "email": r.Email}); err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:        string(r.ID),
		Name:      r.Name,
		Email:     r.Email,
		Role:      domain.Role{ID: string(r.RoleID)},
		CreatedAt: r.CreatedAt.Time,
	}
	if r.Role != nil {
		u.Role.Name = r.Role.Name
		if u.Role.ID == "" {
			u.Role.ID = string(r.Role.ID)
		}
	}
	return u, nil
}

type loginResponse struct {
	Token       string      `json:"token"`
	AccessToken string      `json:"access_token"`
	User        *userRecord `json:"user"`
}

// Login implements usecase.AuthBackend.
func (c *Client) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	req, err := jsonRequest(http.MethodPost, "/api/login", "", "auth.login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", nil, err
	}

	var resp loginResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", nil, err
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" || resp.User == nil {
		return "", nil, fmt.Errorf("%w: login response without token or user", domain.ErrMalformedPayload)
	}

	user, err := resp.User.toDomain()
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout implements usecase.AuthBackend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/logout", token: token, endpoint: "auth.logout"}, nil)
}

// Profile implements usecase.AuthBackend. It is the whoami call of the auth gate.
func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var rec userRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: c.profilePath, token: token, endpoint: "auth.profile"}, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// ListUsers implements usecase.UserBackend.
func (c *Client) ListUsers(ctx context.Context, token string) ([]*domain.User, error) {
	var recs []userRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: usersPath, token: token, endpoint: "user.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]*domain.User, 0, len(recs))
	for _, r := range recs {
		u, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed user")
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// GetUser implements usecase.UserBackend.
func (c *Client) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	var rec userRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: resourcePath(usersPath, id), token: token, endpoint: "user.get"}, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// CreateUser implements usecase.UserBackend.
func (c *Client) CreateUser(ctx context.Context, token string, in *domain.UserInput) (*domain.User, error) {
	return c.sendUser(ctx, http.MethodPost, usersPath, token, "user.create", in)
}

// UpdateUser implements usecase.UserBackend.
func (c *Client) UpdateUser(ctx context.Context, token, id string, in *domain.UserInput) (*domain.User, error) {
	return c.sendUser(ctx, http.MethodPut, resourcePath(usersPath, id), token, "user.update", in)
}

// DeleteUser implements usecase.UserBackend.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(usersPath, id), token: token, endpoint: "user.delete"}, nil)
}

// ListRoles implements usecase.UserBackend.
func (c *Client) ListRoles(ctx context.Context, token string) ([]domain.Role, error) {
	var recs []roleRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: rolesPath, token: token, endpoint: "role.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]domain.Role, 0, len(recs))
	for _, r := range recs {
		if r.ID == "" {
			continue
		}
		out = append(out, domain.Role{ID: string(r.ID), Name: r.Name})
	}
	return out, nil
}

func (c *Client) sendUser(ctx context.Context, method, path, token, endpoint string, in *domain.UserInput) (*domain.User, error) {
	payload := map[string]string{
		"name":    in.Name,
		"email":   in.Email,
		"role_id": in.RoleID,
	}
	if in.Password != "" {
		payload["password"] = in.Password
	}

	req, err := jsonRequest(method, path, token, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var rec userRecord
	if err := c.do(ctx, req, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}
