package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iho/masjid-console/internal/domain"
)

// ReservationUseCase handles venue reservations and the venues themselves.
type ReservationUseCase struct {
	reservations ReservationBackend
	venues       VenueBackend
	publicToken  string
	loc          *time.Location
	now          func() time.Time
}

// NewReservationUseCase creates a new ReservationUseCase. publicToken is used
// for requests from the public site and may be empty when the backend
// accepts them anonymously.
func NewReservationUseCase(reservations ReservationBackend, venues VenueBackend, publicToken string, loc *time.Location) *ReservationUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationUseCase{
		reservations: reservations,
		venues:       venues,
		publicToken:  publicToken,
		loc:          loc,
		now:          time.Now,
	}
}

// Request submits a reservation from the public site.
func (uc *ReservationUseCase) Request(ctx context.Context, req *domain.ReservationRequest) (*domain.Reservation, error) {
	req.RequesterName = strings.TrimSpace(req.RequesterName)
	req.Purpose = strings.TrimSpace(req.Purpose)

	if err := req.Validate(uc.now(), uc.loc); err != nil {
		return nil, err
	}

	return uc.reservations.CreateReservation(ctx, uc.publicToken, req)
}

// ListReservationsInput filters and pages reservations.
type ListReservationsInput struct {
	Filter domain.ReservationFilter
	Limit  int
	Offset int
}

// List returns reservations, pending first, then by date.
func (uc *ReservationUseCase) List(ctx context.Context, token string, input ListReservationsInput) ([]*domain.Reservation, int, error) {
	all, err := uc.reservations.ListReservations(ctx, token)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*domain.Reservation, 0, len(all))
	for _, r := range all {
		if input.Filter.Match(r) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		pi, pj := matched[i].Status == domain.ReservationPending, matched[j].Status == domain.ReservationPending
		if pi != pj {
			return pi
		}
		return matched[i].Date.Before(matched[j].Date)
	})

	return domain.Paginate(matched, input.Limit, input.Offset), len(matched), nil
}

// SetStatus approves or rejects a reservation.
func (uc *ReservationUseCase) SetStatus(ctx context.Context, token, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	if status != domain.ReservationApproved && status != domain.ReservationRejected {
		return nil, &domain.ValidationError{Field: "status", Message: "status must be approved or rejected"}
	}
	return uc.reservations.SetReservationStatus(ctx, token, id, status)
}

// Delete removes a reservation.
func (uc *ReservationUseCase) Delete(ctx context.Context, token, id string) error {
	return uc.reservations.DeleteReservation(ctx, token, id)
}

// ListVenues returns venues sorted by name.
func (uc *ReservationUseCase) ListVenues(ctx context.Context, token, query string) ([]*domain.Venue, error) {
	if token == "" {
		token = uc.publicToken
	}

	all, err := uc.venues.ListVenues(ctx, token)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Venue, 0, len(all))
	for _, v := range all {
		if domain.MatchesQuery(query, v.Name, v.Description) {
			matched = append(matched, v)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})

	return matched, nil
}

// GetVenue returns a single venue.
func (uc *ReservationUseCase) GetVenue(ctx context.Context, token, id string) (*domain.Venue, error) {
	return uc.venues.GetVenue(ctx, token, id)
}

// CreateVenue validates and creates a venue.
func (uc *ReservationUseCase) CreateVenue(ctx context.Context, token string, in *domain.VenueInput) (*domain.Venue, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.venues.CreateVenue(ctx, token, in)
}

// UpdateVenue validates and updates a venue.
func (uc *ReservationUseCase) UpdateVenue(ctx context.Context, token, id string, in *domain.VenueInput) (*domain.Venue, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.venues.UpdateVenue(ctx, token, id, in)
}

// DeleteVenue removes a venue.
func (uc *ReservationUseCase) DeleteVenue(ctx context.Context, token, id string) error {
	return uc.venues.DeleteVenue(ctx, token, id)
}
