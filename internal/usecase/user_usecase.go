package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/iho/masjid-console/internal/domain"
)

// UserUseCase handles admin management through the backend.
type UserUseCase struct {
	backend UserBackend
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(backend UserBackend) *UserUseCase {
	return &UserUseCase{backend: backend}
}

// ListUsers lists admins filtered by name or email.
func (uc *UserUseCase) ListUsers(ctx context.Context, token, query string, limit, offset int) ([]*domain.User, int, error) {
	all, err := uc.backend.ListUsers(ctx, token)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*domain.User, 0, len(all))
	for _, u := range all {
		if domain.MatchesQuery(query, u.Name, u.Email, u.Role.Name) {
			matched = append(matched, u)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})

	return domain.Paginate(matched, limit, offset), len(matched), nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	return uc.backend.GetUser(ctx, token, id)
}

// CreateUser validates and creates an admin. A password is required.
func (uc *UserUseCase) CreateUser(ctx context.Context, token string, in *domain.UserInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	return uc.backend.CreateUser(ctx, token, in)
}

// UpdateUser validates and updates an admin. An empty password keeps the old one.
func (uc *UserUseCase) UpdateUser(ctx context.Context, token, id string, in *domain.UserInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	return uc.backend.UpdateUser(ctx, token, id, in)
}

// DeleteUser deletes a user. Admins cannot delete themselves.
func (uc *UserUseCase) DeleteUser(ctx context.Context, token, id string, actor *domain.User) error {
	if actor != nil && actor.ID == id {
		return domain.ErrForbidden
	}
	return uc.backend.DeleteUser(ctx, token, id)
}

// ListRoles lists the roles an admin can be given.
func (uc *UserUseCase) ListRoles(ctx context.Context, token string) ([]domain.Role, error) {
	return uc.backend.ListRoles(ctx, token)
}
