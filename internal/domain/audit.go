package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records an admin action taken through the console.
type AuditLog struct {
	ID           string
	UserID       string // Backend user id of the admin
	Action       AuditAction
	ResourceType string // transaction, post, activity, reservation, venue, user
	ResourceID   string
	IPAddress    string
	UserAgent    string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       AuditStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a free-form state snapshot.
type JSON map[string]any

// AuditAction names an auditable action.
type AuditAction string

const (
	AuditActionUserLogin  AuditAction = "auth.login"
	AuditActionUserLogout AuditAction = "auth.logout"

	AuditActionTransactionCreate AuditAction = "transaction.create"
	AuditActionTransactionUpdate AuditAction = "transaction.update"
	AuditActionTransactionDelete AuditAction = "transaction.delete"

	AuditActionPostCreate AuditAction = "post.create"
	AuditActionPostUpdate AuditAction = "post.update"
	AuditActionPostDelete AuditAction = "post.delete"

	AuditActionActivityCreate AuditAction = "activity.create"
	AuditActionActivityUpdate AuditAction = "activity.update"
	AuditActionActivityDelete AuditAction = "activity.delete"

	AuditActionReservationStatus AuditAction = "reservation.status"
	AuditActionReservationDelete AuditAction = "reservation.delete"

	AuditActionVenueCreate AuditAction = "venue.create"
	AuditActionVenueUpdate AuditAction = "venue.update"
	AuditActionVenueDelete AuditAction = "venue.delete"

	AuditActionAdminCreate AuditAction = "user.create"
	AuditActionAdminUpdate AuditAction = "user.update"
	AuditActionAdminDelete AuditAction = "user.delete"
)

// AuditStatus is the outcome of an audited action.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a value to a JSON snapshot for the audit trail.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"value": string(data)}
	}

	return result
}

// AuditFilter narrows an audit log query.
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
