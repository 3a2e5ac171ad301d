package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Transaction errors
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrInvalidKind         = errors.New("transaction kind must be income or expense")
	ErrCategoryNotFound    = errors.New("transaction category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSummaryUnavailable  = errors.New("account summary unavailable")

	// Resource errors
	ErrNotFound         = errors.New("resource not found")
	ErrMalformedPayload = errors.New("malformed payload")
)

// ValidationError reports a client-side validation failure on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// FieldErrors carries per-field messages, usually reported by the backend.
type FieldErrors struct {
	Message string
	Fields  map[string]string
}

func (e *FieldErrors) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// InsufficientBalanceError blocks an expense whose amount exceeds the cached balance.
type InsufficientBalanceError struct {
	Warning string
}

func (e *InsufficientBalanceError) Error() string {
	return e.Warning
}

// ExternalServiceError wraps a failure from the backend or a third-party API.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("external service error [%s] status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
