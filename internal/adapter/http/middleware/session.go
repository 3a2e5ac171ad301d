package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/auth"
	"github.com/iho/masjid-console/internal/infrastructure/logger"
	"github.com/iho/masjid-console/internal/usecase"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CredentialContextKey is the context key for the session credential
	CredentialContextKey ContextKey = "credential"

	// SessionCookieName carries the gateway token for browser clients.
	SessionCookieName = "masjid_session"
)

// TokenVerifier verifies gateway tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticator runs the auth gate and clears rejected sessions.
type Authenticator interface {
	Gate(ctx context.Context, sessionID string) (domain.GateDecision, error)
	Invalidate(ctx context.Context, sessionID string) (bool, error)
}

// SessionGate admits requests whose session passes the auth gate.
//
// A missing or unverifiable token reaches the gate as an empty session, which
// it rejects without calling the backend. When a handler answers 401 because
// the backend rejected the stored token, the session is cleared.
func SessionGate(verifier TokenVerifier, authn Authenticator, base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx, base)

			var sessionID string
			if token := BearerToken(r); token != "" {
				claims, err := verifier.Verify(token)
				if err != nil {
					log.Debug().Err(err).Msg("gateway token rejected")
				} else {
					sessionID = claims.SessionID
				}
			}

			decision, err := authn.Gate(ctx, sessionID)
			if err != nil {
				log.Error().Err(err).Msg("session check failed")
				writeError(w, http.StatusServiceUnavailable, dto.ErrorResponse{
					Error:   "session check failed",
					Message: "please try again",
				})
				return
			}

			if !decision.Allowed() {
				redirect := decision.Redirect
				if redirect == "" {
					redirect = usecase.LoginRoute
				}
				writeError(w, http.StatusUnauthorized, dto.ErrorResponse{
					Error:    "unauthorized",
					Redirect: redirect,
				})
				return
			}

			cred := decision.Credential
			ctx = WithCredential(ctx, cred)
			ctx = log.With().Str("user_id", cred.User.ID).Logger().WithContext(ctx)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.statusCode == http.StatusUnauthorized {
				if _, err := authn.Invalidate(context.WithoutCancel(ctx), cred.SessionID); err != nil {
					log.Error().Err(err).Msg("failed to clear rejected session")
				}
			}
		})
	}
}

// RequireSuperAdmin allows only superadmins through. It must run after SessionGate.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred, ok := CredentialFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized", Redirect: usecase.LoginRoute})
			return
		}

		if !cred.User.Role.IsSuperAdmin() {
			writeError(w, http.StatusForbidden, dto.ErrorResponse{Error: "forbidden", Message: domain.ErrForbidden.Error()})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CredentialFromContext extracts the gated session credential from context
func CredentialFromContext(ctx context.Context) (*domain.Credential, bool) {
	cred, ok := ctx.Value(CredentialContextKey).(*domain.Credential)
	return cred, ok && cred != nil
}

// WithCredential stores cred in ctx.
func WithCredential(ctx context.Context, cred *domain.Credential) context.Context {
	return context.WithValue(ctx, CredentialContextKey, cred)
}

// BearerToken returns the gateway token from the Authorization header or the session cookie.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}

	return ""
}
