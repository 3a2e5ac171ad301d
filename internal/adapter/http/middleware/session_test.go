package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/dto"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeAuthenticator struct {
	gateFn      func(ctx context.Context, sessionID string) (domain.GateDecision, error)
	invalidated []string
}

func (f *fakeAuthenticator) Gate(ctx context.Context, sessionID string) (domain.GateDecision, error) {
	return f.gateFn(ctx, sessionID)
}

func (f *fakeAuthenticator) Invalidate(ctx context.Context, sessionID string) (bool, error) {
	f.invalidated = append(f.invalidated, sessionID)
	return len(f.invalidated) == 1, nil
}

func allowSession(cred *domain.Credential) func(context.Context, string) (domain.GateDecision, error) {
	return func(ctx context.Context, sessionID string) (domain.GateDecision, error) {
		if sessionID != cred.SessionID {
			return domain.GateDecision{State: domain.GateUnauthenticated, Redirect: "/login"}, nil
		}
		return domain.GateDecision{State: domain.GateAuthenticated, Credential: cred}, nil
	}
}

func signedToken(t *testing.T, jwtManager *auth.JWTManager, cred *domain.Credential) string {
	t.Helper()
	token, _, err := jwtManager.Generate(cred)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestSessionGate_RejectsMissingTokenWithRedirect(t *testing.T) {
	var gotSession *string
	authn := &fakeAuthenticator{gateFn: func(ctx context.Context, sessionID string) (domain.GateDecision, error) {
		gotSession = &sessionID
		return domain.GateDecision{State: domain.GateUnauthenticated, Redirect: "/login"}, nil
	}}

	mw := SessionGate(auth.NewJWTManager(testSecret, time.Hour), authn, zerolog.Nop())
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run without a session")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/api/summary", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if gotSession == nil || *gotSession != "" {
		t.Fatalf("expected gate to see an empty session")
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Redirect != "/login" {
		t.Fatalf("expected redirect to /login, got %q", resp.Redirect)
	}
}

func TestSessionGate_ForgedTokenIsTreatedAsMissing(t *testing.T) {
	cred := &domain.Credential{SessionID: "sess-1"}
	authn := &fakeAuthenticator{gateFn: allowSession(cred)}

	forged := signedToken(t, auth.NewJWTManager("another-secret-another-secret-xx", time.Hour), cred)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/summary", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rr := httptest.NewRecorder()

	SessionGate(auth.NewJWTManager(testSecret, time.Hour), authn, zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatalf("handler should not run with a forged token")
		})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestSessionGate_PassesCredentialFromCookie(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	cred := &domain.Credential{SessionID: "sess-2", Token: "backend-token", User: domain.User{ID: "7"}}
	authn := &fakeAuthenticator{gateFn: allowSession(cred)}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signedToken(t, jwtManager, cred)})
	rr := httptest.NewRecorder()

	var seen *domain.Credential
	SessionGate(jwtManager, authn, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CredentialFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if seen == nil || seen.Token != "backend-token" {
		t.Fatalf("expected credential in context, got %+v", seen)
	}
	if len(authn.invalidated) != 0 {
		t.Fatalf("session should not be cleared on success")
	}
}

func TestSessionGate_ClearsSessionWhenBackendRejectsToken(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	cred := &domain.Credential{SessionID: "sess-3"}
	authn := &fakeAuthenticator{gateFn: allowSession(cred)}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/transaksi", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, jwtManager, cred))
	rr := httptest.NewRecorder()

	SessionGate(jwtManager, authn, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})).ServeHTTP(rr, req)

	if len(authn.invalidated) != 1 || authn.invalidated[0] != "sess-3" {
		t.Fatalf("expected sess-3 to be cleared once, got %v", authn.invalidated)
	}
}

func TestSessionGate_StoreFailure(t *testing.T) {
	authn := &fakeAuthenticator{gateFn: func(ctx context.Context, sessionID string) (domain.GateDecision, error) {
		return domain.GateDecision{}, errors.New("redis down")
	}}

	rr := httptest.NewRecorder()
	SessionGate(auth.NewJWTManager(testSecret, time.Hour), authn, zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatalf("handler should not run when the gate fails")
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/api/summary", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	tests := []struct {
		name   string
		cred   *domain.Credential
		status int
	}{
		{name: "no credential", status: http.StatusUnauthorized},
		{name: "admin", cred: &domain.Credential{User: domain.User{Role: domain.Role{Name: "admin"}}}, status: http.StatusForbidden},
		{name: "superadmin", cred: &domain.Credential{User: domain.User{Role: domain.Role{Name: "Super Admin"}}}, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/api/user", nil)
			if tt.cred != nil {
				req = req.WithContext(WithCredential(req.Context(), tt.cred))
			}
			rr := httptest.NewRecorder()

			RequireSuperAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
		})
	}
}
