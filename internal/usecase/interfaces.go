//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

package usecase

import (
	"context"
	"time"

	"github.com/iho/masjid-console/internal/domain"
)

// SummaryFetcher reads the account summary from the backend.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, token string) (domain.AccountSummary, error)
}

// CategoryLister lists transaction categories from the backend.
type CategoryLister interface {
	ListCategories(ctx context.Context, token string) ([]domain.CategoryRecord, error)
}

// TransactionBackend forwards transaction CRUD to the backend.
type TransactionBackend interface {
	ListTransactions(ctx context.Context, token string) ([]*domain.Transaction, error)
	GetTransaction(ctx context.Context, token, id string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, token string, draft *domain.TransactionDraft, source domain.FundingSource) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, token, id string, draft *domain.TransactionDraft, source domain.FundingSource) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, token, id string) error
}

// AuthBackend authenticates admins against the backend.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*domain.User, error)
}

// PostBackend forwards "informasi" CRUD.
type PostBackend interface {
	ListPosts(ctx context.Context, token string) ([]*domain.Post, error)
	GetPost(ctx context.Context, token, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, token string, in *domain.PostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, token, id string, in *domain.PostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, token, id string) error
}

// ActivityBackend forwards "kegiatan" CRUD.
type ActivityBackend interface {
	ListActivities(ctx context.Context, token string) ([]*domain.Activity, error)
	GetActivity(ctx context.Context, token, id string) (*domain.Activity, error)
	CreateActivity(ctx context.Context, token string, in *domain.ActivityInput) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, token, id string, in *domain.ActivityInput) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, token, id string) error
}

// ReservationBackend forwards "reservasi" operations.
type ReservationBackend interface {
	ListReservations(ctx context.Context, token string) ([]*domain.Reservation, error)
	CreateReservation(ctx context.Context, token string, req *domain.ReservationRequest) (*domain.Reservation, error)
	SetReservationStatus(ctx context.Context, token, id string, status domain.ReservationStatus) (*domain.Reservation, error)
	DeleteReservation(ctx context.Context, token, id string) error
}

// VenueBackend forwards "tempat reservasi" CRUD.
type VenueBackend interface {
	ListVenues(ctx context.Context, token string) ([]*domain.Venue, error)
	GetVenue(ctx context.Context, token, id string) (*domain.Venue, error)
	CreateVenue(ctx context.Context, token string, in *domain.VenueInput) (*domain.Venue, error)
	UpdateVenue(ctx context.Context, token, id string, in *domain.VenueInput) (*domain.Venue, error)
	DeleteVenue(ctx context.Context, token, id string) error
}

// UserBackend forwards admin user and role management.
type UserBackend interface {
	ListUsers(ctx context.Context, token string) ([]*domain.User, error)
	GetUser(ctx context.Context, token, id string) (*domain.User, error)
	CreateUser(ctx context.Context, token string, in *domain.UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, token, id string, in *domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, token, id string) error
	ListRoles(ctx context.Context, token string) ([]domain.Role, error)
}

// PrayerTimeProvider fetches a day's prayer schedule from a third-party API.
type PrayerTimeProvider interface {
	Timings(ctx context.Context, date time.Time, city, country string) (*domain.PrayerSchedule, error)
}

// CredentialStore holds console sessions.
type CredentialStore interface {
	Save(ctx context.Context, cred *domain.Credential, ttl time.Duration) error
	// Get returns domain.ErrNotFound when the session does not exist.
	Get(ctx context.Context, sessionID string) (*domain.Credential, error)
	MarkValidated(ctx context.Context, sessionID string, user *domain.User, at time.Time) error
	// Delete reports whether this call removed the session.
	Delete(ctx context.Context, sessionID string) (bool, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// RefreshTrigger asks a background poller for an immediate refresh.
type RefreshTrigger interface {
	Trigger()
}

// SummaryProvider is the part of SummaryUseCase the form controller needs.
type SummaryProvider interface {
	Current(ctx context.Context, token string) (domain.AccountSummary, error)
	Invalidate()
}

// CategoryResolver is the part of CategoryUseCase the form controller needs.
type CategoryResolver interface {
	List(ctx context.Context, token string) ([]domain.TransactionCategory, error)
	Resolve(ctx context.Context, token, id string) (domain.TransactionCategory, error)
}
