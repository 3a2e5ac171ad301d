package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/auth"
	"github.com/iho/masjid-console/internal/usecase"
)

// SessionService logs admins in and out.
type SessionService interface {
	Login(ctx context.Context, input usecase.LoginInput) (*domain.Credential, error)
	Logout(ctx context.Context, sessionID string) error
}

// TokenIssuer signs and verifies gateway tokens.
type TokenIssuer interface {
	Generate(cred *domain.Credential) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	sessions     SessionService
	tokens       TokenIssuer
	audit        auditTrail
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionService, tokens TokenIssuer, recorder AuditRecorder, secureCookie bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		tokens:       tokens,
		audit:        auditTrail{recorder: recorder},
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Login authenticates against the backend and issues a gateway token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cred, err := h.sessions.Login(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, h.logger, err, "login failed")
		return
	}

	token, expiresAt, err := h.tokens.Generate(cred)
	if err != nil {
		writeDomainError(w, r, h.logger, err, "failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	r = r.WithContext(middleware.WithCredential(r.Context(), cred))
	h.audit.record(r, domain.AuditActionUserLogin, "session", cred.SessionID, nil, nil)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.UserFromDomain(&cred.User),
	})
}

// Logout ends the session. It succeeds even without a valid token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token != "" {
		if claims, err := h.tokens.Verify(token); err == nil {
			if err := h.sessions.Logout(r.Context(), claims.SessionID); err != nil {
				writeDomainError(w, r, h.logger, err, "logout failed")
				return
			}
			h.audit.record(r, domain.AuditActionUserLogout, "session", claims.SessionID, nil, nil)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the admin behind the gated session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cred, ok := middleware.CredentialFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, h.logger, domain.ErrUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(&cred.User))
}
