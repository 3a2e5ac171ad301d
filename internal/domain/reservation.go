package domain

import (
	"errors"
	"strings"
	"time"
)

// ReservationStatus is the approval state of a reservation request.
type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "pending"
	ReservationApproved ReservationStatus = "approved"
	ReservationRejected ReservationStatus = "rejected"
)

var ErrInvalidReservationStatus = errors.New("reservation status must be pending, approved or rejected")

// ParseReservationStatus accepts English and the backend's Indonesian values.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "menunggu", "":
		return ReservationPending, nil
	case "approved", "disetujui", "diterima":
		return ReservationApproved, nil
	case "rejected", "ditolak":
		return ReservationRejected, nil
	default:
		return "", ErrInvalidReservationStatus
	}
}

// Venue is a reservable place ("tempat reservasi"), e.g. the main hall.
type Venue struct {
	ID          string
	Name        string
	Capacity    int
	Description string
	ImagePath   string
}

// VenueInput is the payload for creating or updating a venue.
type VenueInput struct {
	Name        string
	Capacity    int
	Description string
	Image       *Upload
}

// Validate checks the input.
func (in *VenueInput) Validate() error {
	if err := ValidateTitle(in.Name); err != nil {
		return &ValidationError{Field: "nama", Message: err.Error()}
	}
	if in.Capacity < 0 {
		return &ValidationError{Field: "kapasitas", Message: "capacity cannot be negative"}
	}
	if in.Image != nil {
		return in.Image.Validate()
	}
	return nil
}

// Reservation is a request to use a venue.
type Reservation struct {
	ID            string
	RequesterName string
	Phone         string
	Email         string
	VenueID       string
	VenueName     string
	Date          time.Time
	StartTime     string
	EndTime       string
	Purpose       string
	Status        ReservationStatus
	CreatedAt     time.Time
}

// ReservationRequest is submitted from the public site.
type ReservationRequest struct {
	RequesterName string
	Phone         string
	Email         string
	VenueID       string
	Date          time.Time
	StartTime     string
	EndTime       string
	Purpose       string
}

const clockLayout = "15:04"

// Validate checks the request. now is used to reject dates in the past.
func (r *ReservationRequest) Validate(now time.Time, loc *time.Location) error {
	if strings.TrimSpace(r.RequesterName) == "" {
		return &ValidationError{Field: "nama", Message: "name is required"}
	}
	if err := ValidatePhone(r.Phone); err != nil {
		return &ValidationError{Field: "no_hp", Message: err.Error()}
	}
	if r.Email != "" {
		if err := ValidateEmail(r.Email); err != nil {
			return &ValidationError{Field: "email", Message: err.Error()}
		}
	}
	if strings.TrimSpace(r.VenueID) == "" {
		return &ValidationError{Field: "tempat_reservasi_id", Message: "venue is required"}
	}
	if r.Date.IsZero() {
		return &ValidationError{Field: "tanggal", Message: "date is required"}
	}
	if dayOf(r.Date, loc).Before(dayOf(now, loc)) {
		return &ValidationError{Field: "tanggal", Message: "date is in the past"}
	}

	start, err := time.Parse(clockLayout, r.StartTime)
	if err != nil {
		return &ValidationError{Field: "jam_mulai", Message: "start time must be HH:MM"}
	}
	end, err := time.Parse(clockLayout, r.EndTime)
	if err != nil {
		return &ValidationError{Field: "jam_selesai", Message: "end time must be HH:MM"}
	}
	if !start.Before(end) {
		return &ValidationError{Field: "jam_selesai", Message: "end time must be after start time"}
	}

	if strings.TrimSpace(r.Purpose) == "" {
		return &ValidationError{Field: "keperluan", Message: "purpose is required"}
	}

	return nil
}

// ReservationFilter narrows a fetched list in memory.
type ReservationFilter struct {
	Query   string
	Status  ReservationStatus
	VenueID string
}

// Match reports whether the reservation passes the filter.
func (f ReservationFilter) Match(r *Reservation) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.VenueID != "" && r.VenueID != f.VenueID {
		return false
	}
	return MatchesQuery(f.Query, r.RequesterName, r.Purpose, r.VenueName, r.Phone)
}
