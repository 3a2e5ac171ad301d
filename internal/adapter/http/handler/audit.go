package handler

import (
	"context"
	"net"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/domain"
)

// AuditRecorder stores audit entries for admin actions.
type AuditRecorder interface {
	Record(ctx context.Context, log *domain.AuditLog)
}

// auditTrail records admin mutations. A nil recorder disables it.
type auditTrail struct {
	recorder AuditRecorder
}

func (a auditTrail) record(r *http.Request, action domain.AuditAction, resourceType, resourceID string, after any, err error) {
	if a.recorder == nil {
		return
	}

	entry := &domain.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    remoteIP(r),
		UserAgent:    r.UserAgent(),
		RequestID:    chimiddleware.GetReqID(r.Context()),
		AfterState:   domain.MarshalState(after),
		Status:       domain.AuditStatusSuccess,
	}
	if cred, ok := middleware.CredentialFromContext(r.Context()); ok {
		entry.UserID = cred.User.ID
	}
	if err != nil {
		entry.Status = domain.AuditStatusFailure
		if mapDomainError(err) >= http.StatusInternalServerError {
			entry.Status = domain.AuditStatusError
		}
		entry.ErrorMessage = err.Error()
		entry.AfterState = nil
	}

	a.recorder.Record(context.WithoutCancel(r.Context()), entry)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
