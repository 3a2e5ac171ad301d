package backend

import (
	"context"
	"net/http"

	"github.com/iho/masjid-console/internal/domain"
)

const (
	reservationsPath = "/api/reservasi"
	venuesPath       = "/api/tempatReservasi"
)

type venueRecord struct {
	ID          flexString `json:"id"`
	Name        string     `json:"nama"`
	Capacity    flexInt    `json:"kapasitas"`
	Description string     `json:"deskripsi"`
	Image       string     `json:"gambar"`
}

func (r venueRecord) toDomain() (*domain.Venue, error) {
	if err := required("tempat reservasi", map[string]string{"id": string(r.ID), "nama": r.Name}); err != nil {
		return nil, err
	}
	return &domain.Venue{
		ID:          string(r.ID),
		Name:        r.Name,
		Capacity:    int(r.Capacity),
		Description: r.Description,
		ImagePath:   r.Image,
	}, nil
}

type reservationRecord struct {
	ID        flexString   `json:"id"`
	Name      string       `json:"nama"`
	Phone     string       `json:"no_hp"`
	Email     string       `json:"email"`
	VenueID   flexString   `json:"tempat_reservasi_id"`
	Venue     *venueRecord `json:"tempat_reservasi"`
	Date      flexTime     `json:"tanggal"`
	StartTime string       `json:"jam_mulai"`
	EndTime   string       `json:"jam_selesai"`
	Purpose   string       `json:"keperluan"`
	Status    string       `json:"status"`
	CreatedAt flexTime     `json:"created_at"`
}

func (r reservationRecord) toDomain() (*domain.Reservation, error) {
	if err := required("reservasi", map[string]string{"id": string(r.ID)}); err != nil {
		return nil, err
	}

	status, err := domain.ParseReservationStatus(r.Status)
	if err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		ID:            string(r.ID),
		RequesterName: r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		VenueID:       string(r.VenueID),
		Date:          r.Date.Time,
		StartTime:     trimSeconds(r.StartTime),
		EndTime:       trimSeconds(r.EndTime),
		Purpose:       r.Purpose,
		Status:        status,
		CreatedAt:     r.CreatedAt.Time,
	}
	if r.Venue != nil {
		res.VenueName = r.Venue.Name
		if res.VenueID == "" {
			res.VenueID = string(r.Venue.ID)
		}
	}
	return res, nil
}

// trimSeconds turns MySQL TIME "08:00:00" into "08:00".
func trimSeconds(s string) string {
	if len(s) == 8 && s[2] == ':' && s[5] == ':' {
		return s[:5]
	}
	return s
}

// ListReservations implements usecase.ReservationBackend.
func (c *Client) ListReservations(ctx context.Context, token string) ([]*domain.Reservation, error) {
	var recs []reservationRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: reservationsPath, token: token, endpoint: "reservasi.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]*domain.Reservation, 0, len(recs))
	for _, r := range recs {
		res, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed reservation")
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// CreateReservation implements usecase.ReservationBackend.
func (c *Client) CreateReservation(ctx context.Context, token string, in *domain.ReservationRequest) (*domain.Reservation, error) {
	req, err := jsonRequest(http.MethodPost, reservationsPath, token, "reservasi.create", map[string]string{
		"nama":                in.RequesterName,
		"no_hp":               in.Phone,
		"email":               in.Email,
		"tempat_reservasi_id": in.VenueID,
		"tanggal":             in.Date.Format(dateLayout),
		"jam_mulai":           in.StartTime,
		"jam_selesai":         in.EndTime,
		"keperluan":           in.Purpose,
	})
	if err != nil {
		return nil, err
	}

	var rec reservationRecord
	if err := c.do(ctx, req, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// SetReservationStatus implements usecase.ReservationBackend.
func (c *Client) SetReservationStatus(ctx context.Context, token, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	req, err := jsonRequest(http.MethodPut, resourcePath(reservationsPath, id), token, "reservasi.status", map[string]string{
		"status": string(status),
	})
	if err != nil {
		return nil, err
	}

	var rec reservationRecord
	if err := c.do(ctx, req, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// DeleteReservation implements usecase.ReservationBackend.
func (c *Client) DeleteReservation(ctx context.Context, token, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(reservationsPath, id), token: token, endpoint: "reservasi.delete"}, nil)
}

// ListVenues implements usecase.VenueBackend.
func (c *Client) ListVenues(ctx context.Context, token string) ([]*domain.Venue, error) {
	var recs []venueRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: venuesPath, token: token, endpoint: "tempat_reservasi.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]*domain.Venue, 0, len(recs))
	for _, r := range recs {
		v, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed venue")
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// GetVenue implements usecase.VenueBackend.
func (c *Client) GetVenue(ctx context.Context, token, id string) (*domain.Venue, error) {
	var rec venueRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: resourcePath(venuesPath, id), token: token, endpoint: "tempat_reservasi.get"}, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// CreateVenue implements usecase.VenueBackend.
func (c *Client) CreateVenue(ctx context.Context, token string, in *domain.VenueInput) (*domain.Venue, error) {
	return c.sendVenue(ctx, http.MethodPost, venuesPath, token, "tempat_reservasi.create", in)
}

// UpdateVenue implements usecase.VenueBackend.
func (c *Client) UpdateVenue(ctx context.Context, token, id string, in *domain.VenueInput) (*domain.Venue, error) {
	return c.sendVenue(ctx, http.MethodPut, resourcePath(venuesPath, id), token, "tempat_reservasi.update", in)
}

// DeleteVenue implements usecase.VenueBackend.
func (c *Client) DeleteVenue(ctx context.Context, token, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(venuesPath, id), token: token, endpoint: "tempat_reservasi.delete"}, nil)
}

func (c *Client) sendVenue(ctx context.Context, method, path, token, endpoint string, in *domain.VenueInput) (*domain.Venue, error) {
	body := formBody{
		fields: map[string]string{
			"nama":      in.Name,
			"kapasitas": itoa(in.Capacity),
			"deskripsi": in.Description,
		},
		file: withField(in.Image, "gambar"),
	}
	req, err := body.request(method, path, token, endpoint)
	if err != nil {
		return nil, err
	}

	var rec venueRecord
	if err := c.do(ctx, req, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}
