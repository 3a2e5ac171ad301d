package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/logger"
	"github.com/iho/masjid-console/internal/usecase"
)

// maxBodySize bounds a request body: one upload plus the text fields.
const maxBodySize = domain.MaxUploadSize + 1<<20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var validationErr *domain.ValidationError
	var fieldErrs *domain.FieldErrors
	var balanceErr *domain.InsufficientBalanceError
	var externalErr *domain.ExternalServiceError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs), errors.As(err, &balanceErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSummaryUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &externalErr):
		if externalErr.StatusCode == http.StatusServiceUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body for err, carrying per-field messages
// and the login redirect where they apply.
func errorBody(err error, status int, message string) dto.ErrorResponse {
	resp := dto.ErrorResponse{Error: message}

	var validationErr *domain.ValidationError
	var fieldErrs *domain.FieldErrors
	var balanceErr *domain.InsufficientBalanceError

	switch {
	case errors.As(err, &balanceErr):
		resp.Message = balanceErr.Warning
		resp.Fields = map[string]string{"amount": balanceErr.Warning}
	case errors.As(err, &validationErr):
		resp.Message = validationErr.Message
		resp.Fields = map[string]string{validationErr.Field: validationErr.Message}
	case errors.As(err, &fieldErrs):
		resp.Message = fieldErrs.Message
		resp.Fields = fieldErrs.Fields
	case status == http.StatusUnauthorized:
		if errors.Is(err, domain.ErrInvalidCredentials) {
			resp.Message = domain.ErrInvalidCredentials.Error()
		} else {
			resp.Message = "session expired, please log in again"
			resp.Redirect = usecase.LoginRoute
		}
	case status == http.StatusForbidden, status == http.StatusNotFound:
		resp.Message = err.Error()
	case status == http.StatusServiceUnavailable:
		resp.Message = "service temporarily unavailable"
	case status == http.StatusBadGateway:
		resp.Message = "backend request failed"
	}

	return resp
}

// writeDomainError maps err to a response. Server-side failures are logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, base zerolog.Logger, err error, message string) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		log := logger.FromContext(r.Context(), base)
		log.Error().Err(err).Int("status", status).Msg(message)
	}
	writeJSON(w, status, errorBody(err, status, message))
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// backendToken returns the backend token of the gated session.
func backendToken(r *http.Request) string {
	if cred, ok := middleware.CredentialFromContext(r.Context()); ok {
		return cred.Token
	}
	return ""
}

// decodeJSON decodes a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// formInput is a request body read from JSON, urlencoded or multipart form data.
type formInput struct {
	values map[string][]string
	files  map[string]*domain.Upload
}

func (f *formInput) Get(key string) string {
	if v := f.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *formInput) File(key string) *domain.Upload {
	return f.files[key]
}

// parseForm reads the body as multipart when it carries files, otherwise as
// urlencoded or JSON.
func parseForm(w http.ResponseWriter, r *http.Request) (*formInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodySize); err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		form := &formInput{values: r.MultipartForm.Value, files: map[string]*domain.Upload{}}
		for field, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			upload, err := readUpload(field, headers[0])
			if err != nil {
				return nil, err
			}
			form.files[field] = upload
		}
		return form, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
		return &formInput{values: r.PostForm}, nil

	default:
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()

		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}

		form := &formInput{values: make(map[string][]string, len(raw))}
		for k, v := range raw {
			if s, ok := jsonString(v); ok {
				form.values[k] = []string{s}
			}
		}
		return form, nil
	}
}

func jsonString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func readUpload(field string, header *multipart.FileHeader) (*domain.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, domain.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}

	return &domain.Upload{
		Field:       field,
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
