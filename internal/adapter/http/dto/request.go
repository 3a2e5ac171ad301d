package dto

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

var errInvalidDate = errors.New("date must be YYYY-MM-DD or YYYY-MM-DDTHH:MM")

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// Form is a decoded request body, either JSON or multipart.
type Form interface {
	Get(key string) string
	File(key string) *domain.Upload
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.LoginInput {
	return usecase.LoginInput{
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
	}
}

// CheckRequest asks for a balance guard preview.
type CheckRequest struct {
	Kind          string `json:"kind"`
	CategoryID    string `json:"category_id"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CheckRequest) ToUseCaseInput() (usecase.CheckInput, error) {
	kind, err := domain.ParseTransactionKind(r.Kind)
	if err != nil {
		return usecase.CheckInput{}, &domain.ValidationError{Field: "kind", Message: err.Error()}
	}
	return usecase.CheckInput{
		Kind:          kind,
		CategoryID:    r.CategoryID,
		Amount:        r.Amount,
		TransactionID: r.TransactionID,
	}, nil
}

// StatusRequest changes a reservation's status.
type StatusRequest struct {
	Status string `json:"status"`
}

// TransactionDraftFromForm reads a transaction submission.
func TransactionDraftFromForm(f Form, loc *time.Location, now time.Time) (*domain.TransactionDraft, error) {
	kind, err := domain.ParseTransactionKind(f.Get("kind"))
	if err != nil {
		return nil, &domain.ValidationError{Field: "kind", Message: err.Error()}
	}

	if loc == nil {
		loc = time.UTC
	}

	date := now.In(loc)
	if v := f.Get("date"); v != "" {
		date, err = ParseDateTime(v, loc)
		if err != nil {
			return nil, &domain.ValidationError{Field: "date", Message: err.Error()}
		}
	}

	return &domain.TransactionDraft{
		Kind:        kind,
		CategoryID:  strings.TrimSpace(f.Get("category_id")),
		Amount:      f.Get("amount"),
		Note:        strings.TrimSpace(f.Get("note")),
		SourceLabel: strings.TrimSpace(f.Get("source")),
		Date:        date,
		Proof:       f.File("proof"),
	}, nil
}

// UserInputFromForm reads an admin account submission.
func UserInputFromForm(f Form) *domain.UserInput {
	return &domain.UserInput{
		Name:     strings.TrimSpace(f.Get("name")),
		Email:    strings.TrimSpace(f.Get("email")),
		Password: f.Get("password"),
		RoleID:   strings.TrimSpace(f.Get("role_id")),
	}
}

// PostInputFromForm reads an informasi submission.
func PostInputFromForm(f Form) *domain.PostInput {
	return &domain.PostInput{
		Title:   strings.TrimSpace(f.Get("judul")),
		Content: f.Get("isi"),
		Image:   f.File("gambar"),
	}
}

// ActivityInputFromForm reads a kegiatan submission.
func ActivityInputFromForm(f Form, loc *time.Location) (*domain.ActivityInput, error) {
	in := &domain.ActivityInput{
		Title:       strings.TrimSpace(f.Get("nama_kegiatan")),
		Description: f.Get("deskripsi"),
		Location:    strings.TrimSpace(f.Get("lokasi")),
		Image:       f.File("gambar"),
	}

	if v := f.Get("tanggal_mulai"); v != "" {
		start, err := ParseDateTime(v, loc)
		if err != nil {
			return nil, &domain.ValidationError{Field: "tanggal_mulai", Message: err.Error()}
		}
		in.StartsAt = start
	}

	if v := f.Get("tanggal_selesai"); v != "" {
		end, err := ParseDateTime(v, loc)
		if err != nil {
			return nil, &domain.ValidationError{Field: "tanggal_selesai", Message: err.Error()}
		}
		in.EndsAt = &end
	}

	return in, nil
}

// VenueInputFromForm reads a tempat reservasi submission.
func VenueInputFromForm(f Form) (*domain.VenueInput, error) {
	in := &domain.VenueInput{
		Name:        strings.TrimSpace(f.Get("nama")),
		Description: f.Get("deskripsi"),
		Image:       f.File("gambar"),
	}

	if v := strings.TrimSpace(f.Get("kapasitas")); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return nil, &domain.ValidationError{Field: "kapasitas", Message: "capacity must be a whole number"}
		}
		in.Capacity = capacity
	}

	return in, nil
}

// ReservationRequestFromForm reads a public reservation request.
func ReservationRequestFromForm(f Form, loc *time.Location) (*domain.ReservationRequest, error) {
	req := &domain.ReservationRequest{
		RequesterName: f.Get("nama"),
		Phone:         strings.TrimSpace(f.Get("no_hp")),
		Email:         strings.TrimSpace(f.Get("email")),
		VenueID:       strings.TrimSpace(f.Get("tempat_reservasi_id")),
		StartTime:     strings.TrimSpace(f.Get("jam_mulai")),
		EndTime:       strings.TrimSpace(f.Get("jam_selesai")),
		Purpose:       f.Get("keperluan"),
	}

	if v := strings.TrimSpace(f.Get("tanggal")); v != "" {
		if loc == nil {
			loc = time.UTC
		}
		date, err := time.ParseInLocation(DateLayout, v, loc)
		if err != nil {
			return nil, &domain.ValidationError{Field: "tanggal", Message: "date must be YYYY-MM-DD"}
		}
		req.Date = date
	}

	return req, nil
}

// ParseDateTime accepts a calendar date or a date with time, read in loc
// unless the value carries its own offset.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errInvalidDate
}
