package domain

import (
	"errors"
	"strings"
	"time"
)

// User is an admin account managed through the backend.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Role is a backend role such as "admin" or "superadmin".
type Role struct {
	ID   string
	Name string
}

// IsSuperAdmin reports whether the role may manage other admins.
func (r Role) IsSuperAdmin() bool {
	n := strings.ToLower(strings.ReplaceAll(r.Name, " ", ""))
	return n == "superadmin" || n == "super_admin"
}

// UserInput is the payload for creating or updating an admin.
// Password is optional on update.
type UserInput struct {
	Name     string
	Email    string
	Password string
	RoleID   string
}

// Validate checks the input; requirePassword is true on create.
func (in *UserInput) Validate(requirePassword bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	if err := ValidateEmail(in.Email); err != nil {
		return &ValidationError{Field: "email", Message: err.Error()}
	}

	if requirePassword || in.Password != "" {
		if err := ValidatePassword(in.Password); err != nil {
			return &ValidationError{Field: "password", Message: err.Error()}
		}
	}

	if strings.TrimSpace(in.RoleID) == "" {
		return &ValidationError{Field: "role_id", Message: "role is required"}
	}

	return nil
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("insufficient role for this operation")
)
