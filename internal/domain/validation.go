package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrPasswordTooWeak = errors.New("password does not meet requirements")
	ErrInvalidPhone    = errors.New("invalid phone number")
)

// Validation constants
const (
	MaxTitleLength    = 255
	MaxNoteLength     = 1000
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxUploadSize     = 5 << 20 // 5MB
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^(\+62|62|0)8[0-9]{7,12}$`)
)

// ValidateTitle validates a post, activity or venue title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidTitle)
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidTitle, MaxTitleLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password length. Strength rules belong to the backend.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	return nil
}

// ValidatePhone accepts Indonesian mobile numbers, with or without separators.
func ValidatePhone(phone string) error {
	normalized := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(strings.TrimSpace(phone))
	if !phoneRegex.MatchString(normalized) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 200
	const defaultPageSize = 20

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// Paginate returns the window [offset, offset+limit) of items.
func Paginate[T any](items []T, limit, offset int) []T {
	limit, offset = ValidatePagination(limit, offset)
	if offset >= len(items) {
		return []T{}
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end]
}

// MatchesQuery reports whether any field contains the query, case-insensitively.
func MatchesQuery(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}

	return false
}
