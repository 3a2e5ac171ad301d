package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// ListResponse wraps one page of a filtered list.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse builds a page response with normalized paging values.
func NewListResponse[T any](data []T, total, limit, offset int) ListResponse[T] {
	limit, offset = domain.ValidatePagination(limit, offset)
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Data: data, Total: total, Limit: limit, Offset: offset}
}

// mapSlice converts a slice with fn.
func mapSlice[S, T any](in []S, fn func(S) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// SummaryResponse represents the account summary.
type SummaryResponse struct {
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
	DraftCount     int             `json:"draft_count"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	BankBalance    decimal.Decimal `json:"bank_balance"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	TotalFormatted string          `json:"total_formatted"`
	FetchedAt      time.Time       `json:"fetched_at"`
}

// SummaryFromDomain converts a domain summary to response.
func SummaryFromDomain(s domain.AccountSummary) *SummaryResponse {
	return &SummaryResponse{
		Income:         s.Income,
		Expense:        s.Expense,
		DraftCount:     s.DraftCount,
		CashBalance:    s.CashBalance,
		BankBalance:    s.BankBalance,
		TotalBalance:   s.TotalBalance,
		TotalFormatted: domain.FormatRupiah(s.TotalBalance),
		FetchedAt:      s.FetchedAt,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID            string                   `json:"id"`
	Kind          domain.TransactionKind   `json:"kind"`
	CategoryID    string                   `json:"category_id"`
	CategoryLabel string                   `json:"category_label"`
	FundingSource domain.FundingSource     `json:"funding_source,omitempty"`
	Amount        decimal.Decimal          `json:"amount"`
	Note          string                   `json:"note"`
	Source        string                   `json:"source,omitempty"`
	Date          time.Time                `json:"date"`
	Status        domain.TransactionStatus `json:"status"`
	ProofURL      string                   `json:"proof_url,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction, assetBase string) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		Kind:          t.Kind,
		CategoryID:    t.CategoryID,
		CategoryLabel: t.CategoryLabel,
		FundingSource: t.FundingSource,
		Amount:        t.Amount,
		Note:          t.Note,
		Source:        t.SourceLabel,
		Date:          t.Date,
		Status:        t.Status,
		ProofURL:      domain.AssetURL(assetBase, t.ProofPath),
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction, assetBase string) []*TransactionResponse {
	return mapSlice(txs, func(t *domain.Transaction) *TransactionResponse {
		return TransactionFromDomain(t, assetBase)
	})
}

// FormStateResponse is what the transaction form needs to render.
// A part that failed to load carries an error message instead of data.
type FormStateResponse struct {
	Summary         *SummaryResponse             `json:"summary,omitempty"`
	SummaryError    string                       `json:"summary_error,omitempty"`
	Categories      []domain.TransactionCategory `json:"categories"`
	CategoriesError string                       `json:"categories_error,omitempty"`
}

// FormStateFromUseCase converts a loaded form state to response.
func FormStateFromUseCase(fs usecase.FormState) *FormStateResponse {
	resp := &FormStateResponse{Categories: fs.Categories}
	if resp.Categories == nil {
		resp.Categories = []domain.TransactionCategory{}
	}
	if fs.Summary != nil {
		resp.Summary = SummaryFromDomain(*fs.Summary)
	}
	if fs.SummaryErr != nil {
		resp.SummaryError = domain.ErrSummaryUnavailable.Error()
	}
	if fs.CategoriesErr != nil {
		resp.CategoriesError = "categories unavailable"
	}
	return resp
}

// CheckResponse is the balance guard preview.
type CheckResponse struct {
	FundingSource domain.FundingSource `json:"funding_source"`
	Available     string               `json:"available,omitempty"`
	Warning       string               `json:"warning,omitempty"`
	Allowed       bool                 `json:"allowed"`
}

// CheckFromUseCase converts a guard preview to response.
func CheckFromUseCase(res usecase.CheckResult) *CheckResponse {
	return &CheckResponse{
		FundingSource: res.FundingSource,
		Available:     res.Available,
		Warning:       res.Warning,
		Allowed:       res.Warning == "",
	}
}

// RoleResponse represents a role.
type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleFromDomain converts a domain role to response.
func RoleFromDomain(r domain.Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name}
}

// RolesFromDomain converts domain roles to responses.
func RolesFromDomain(roles []domain.Role) []RoleResponse {
	return mapSlice(roles, RoleFromDomain)
}

// UserResponse represents an admin account.
type UserResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      RoleResponse `json:"role"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	resp := &UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  RoleFromDomain(u.Role),
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	return mapSlice(users, UserFromDomain)
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// PostResponse represents an informasi post.
type PostResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"judul"`
	Content     string    `json:"isi"`
	ImageURL    string    `json:"gambar_url,omitempty"`
	PublishedAt time.Time `json:"tanggal"`
}

// PostFromDomain converts a domain post to response.
func PostFromDomain(p *domain.Post, assetBase string) *PostResponse {
	return &PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ImageURL:    domain.AssetURL(assetBase, p.ImagePath),
		PublishedAt: p.PublishedAt,
	}
}

// PostsFromDomain converts domain posts to responses.
func PostsFromDomain(posts []*domain.Post, assetBase string) []*PostResponse {
	return mapSlice(posts, func(p *domain.Post) *PostResponse { return PostFromDomain(p, assetBase) })
}

// ActivityResponse represents a kegiatan with its derived status.
type ActivityResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"nama_kegiatan"`
	Description string                `json:"deskripsi"`
	Location    string                `json:"lokasi"`
	StartsAt    time.Time             `json:"tanggal_mulai"`
	EndsAt      *time.Time            `json:"tanggal_selesai,omitempty"`
	ImageURL    string                `json:"gambar_url,omitempty"`
	Status      domain.ActivityStatus `json:"status"`
	StatusLabel string                `json:"status_label"`
}

// ActivityFromView converts an activity view to response.
func ActivityFromView(v usecase.ActivityView, assetBase string) *ActivityResponse {
	return &ActivityResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Location:    v.Location,
		StartsAt:    v.StartsAt,
		EndsAt:      v.EndsAt,
		ImageURL:    domain.AssetURL(assetBase, v.ImagePath),
		Status:      v.Status,
		StatusLabel: v.Status.Label(),
	}
}

// ActivitiesFromViews converts activity views to responses.
func ActivitiesFromViews(views []usecase.ActivityView, assetBase string) []*ActivityResponse {
	return mapSlice(views, func(v usecase.ActivityView) *ActivityResponse { return ActivityFromView(v, assetBase) })
}

// VenueResponse represents a tempat reservasi.
type VenueResponse struct {
	ID          string `json:"id"`
	Name        string `json:"nama"`
	Capacity    int    `json:"kapasitas"`
	Description string `json:"deskripsi"`
	ImageURL    string `json:"gambar_url,omitempty"`
}

// VenueFromDomain converts a domain venue to response.
func VenueFromDomain(v *domain.Venue, assetBase string) *VenueResponse {
	return &VenueResponse{
		ID:          v.ID,
		Name:        v.Name,
		Capacity:    v.Capacity,
		Description: v.Description,
		ImageURL:    domain.AssetURL(assetBase, v.ImagePath),
	}
}

// VenuesFromDomain converts domain venues to responses.
func VenuesFromDomain(venues []*domain.Venue, assetBase string) []*VenueResponse {
	return mapSlice(venues, func(v *domain.Venue) *VenueResponse { return VenueFromDomain(v, assetBase) })
}

// ReservationResponse represents a reservation request.
type ReservationResponse struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"nama"`
	Phone     string                   `json:"no_hp"`
	Email     string                   `json:"email,omitempty"`
	VenueID   string                   `json:"tempat_reservasi_id"`
	VenueName string                   `json:"tempat_reservasi,omitempty"`
	Date      string                   `json:"tanggal"`
	StartTime string                   `json:"jam_mulai"`
	EndTime   string                   `json:"jam_selesai"`
	Purpose   string                   `json:"keperluan"`
	Status    domain.ReservationStatus `json:"status"`
	CreatedAt *time.Time               `json:"created_at,omitempty"`
}

// ReservationFromDomain converts a domain reservation to response.
func ReservationFromDomain(r *domain.Reservation) *ReservationResponse {
	resp := &ReservationResponse{
		ID:        r.ID,
		Name:      r.RequesterName,
		Phone:     r.Phone,
		Email:     r.Email,
		VenueID:   r.VenueID,
		VenueName: r.VenueName,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Purpose:   r.Purpose,
		Status:    r.Status,
	}
	if !r.Date.IsZero() {
		resp.Date = r.Date.Format(DateLayout)
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

// ReservationsFromDomain converts domain reservations to responses.
func ReservationsFromDomain(rs []*domain.Reservation) []*ReservationResponse {
	return mapSlice(rs, ReservationFromDomain)
}

// PrayerTimesResponse is a day's schedule with the upcoming prayer.
type PrayerTimesResponse struct {
	Date  string              `json:"date"`
	City  string              `json:"city"`
	Times []domain.PrayerTime `json:"times"`
	Next  *domain.PrayerTime  `json:"next,omitempty"`
}

// PrayerTimesFromUseCase converts a prayer day to response.
func PrayerTimesFromUseCase(day usecase.PrayerDay) *PrayerTimesResponse {
	return &PrayerTimesResponse{
		Date:  day.Schedule.Date.Format(DateLayout),
		City:  day.Schedule.City,
		Times: day.Schedule.Times,
		Next:  day.Next,
	}
}

// DonationResponse carries the mosque's donation channels.
type DonationResponse struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
	QRISImageURL  string `json:"qris_image_url,omitempty"`
	Note          string `json:"note,omitempty"`
}

// DonationFromDomain converts donation info to response.
func DonationFromDomain(d domain.DonationInfo) *DonationResponse {
	return &DonationResponse{
		BankName:      d.BankName,
		AccountNumber: d.AccountNumber,
		AccountHolder: d.AccountHolder,
		QRISImageURL:  d.QRISImageURL,
		Note:          d.Note,
	}
}

// AuditLogResponse represents an audit entry.
type AuditLogResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Action       domain.AuditAction `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id,omitempty"`
	IPAddress    string             `json:"ip_address,omitempty"`
	RequestID    string             `json:"request_id,omitempty"`
	BeforeState  domain.JSON        `json:"before_state,omitempty"`
	AfterState   domain.JSON        `json:"after_state,omitempty"`
	Status       domain.AuditStatus `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// AuditLogsFromDomain converts audit entries to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	return mapSlice(logs, func(l *domain.AuditLog) *AuditLogResponse {
		return &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			IPAddress:    l.IPAddress,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	})
}
