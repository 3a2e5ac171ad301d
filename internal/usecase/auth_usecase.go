package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

// AuthUseCase runs login, logout and the admin auth gate.
type AuthUseCase struct {
	backend    AuthBackend
	store      CredentialStore
	idGen      IDGenerator
	sessionTTL time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(backend AuthBackend, store CredentialStore, idGen IDGenerator, sessionTTL time.Duration, logger zerolog.Logger) *AuthUseCase {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthUseCase{
		backend:    backend,
		store:      store,
		idGen:      idGen,
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("component", "auth").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetMetrics enables login and session metrics.
func (uc *AuthUseCase) SetMetrics(m *metrics.Metrics) {
	uc.metrics = m
}

func (uc *AuthUseCase) countLogin(status string) {
	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}

// LoginInput represents login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates against the backend and stores a new session.
// The returned credential has been validated by the login itself.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*domain.Credential, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, &domain.ValidationError{Field: "email", Message: err.Error()}
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, &domain.ValidationError{Field: "password", Message: "password is required"}
	}

	token, user, err := uc.backend.Login(ctx, strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			uc.countLogin("invalid")
			return nil, domain.ErrInvalidCredentials
		}
		uc.countLogin("error")
		return nil, err
	}

	now := uc.now()
	cred := &domain.Credential{
		SessionID:   uc.idGen.Generate(),
		Token:       token,
		User:        *user,
		CreatedAt:   now,
		ValidatedAt: &now,
	}

	if err := uc.store.Save(ctx, cred, uc.sessionTTL); err != nil {
		uc.countLogin("error")
		return nil, err
	}

	uc.countLogin("success")
	return cred, nil
}

// Logout ends the session at the backend and clears it locally.
// The local session is cleared even when the backend call fails.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	cred, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	backendErr := uc.backend.Logout(ctx, cred.Token)
	if backendErr != nil {
		uc.logger.Warn().Err(backendErr).Str("session_id", sessionID).Msg("backend logout failed")
	}

	if _, err := uc.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	return nil
}

// Gate decides whether a request carrying sessionID may reach admin routes.
//
// A missing session id or a session unknown to the store is rejected without
// calling the backend. A stored but unvalidated credential is checked once
// against the backend; any failure clears it. Validated credentials are
// trusted for the rest of their lifetime.
func (uc *AuthUseCase) Gate(ctx context.Context, sessionID string) (domain.GateDecision, error) {
	gate := domain.NewAuthGate()
	if err := gate.Begin(); err != nil {
		return domain.GateDecision{}, err
	}

	if sessionID == "" {
		return uc.reject(gate), nil
	}

	cred, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uc.reject(gate), nil
		}
		return domain.GateDecision{}, err
	}

	if cred.Validated() {
		_ = gate.Resolve(true)
		return domain.GateDecision{State: gate.State(), Credential: cred}, nil
	}

	user, err := uc.backend.Profile(ctx, cred.Token)
	if err != nil {
		uc.logger.Info().Err(err).Str("session_id", sessionID).Msg("credential rejected by backend")
		if _, clearErr := uc.Invalidate(ctx, sessionID); clearErr != nil {
			return domain.GateDecision{}, clearErr
		}
		return uc.reject(gate), nil
	}

	now := uc.now()
	if err := uc.store.MarkValidated(ctx, sessionID, user, now); err != nil {
		return domain.GateDecision{}, err
	}
	cred.User = *user
	cred.ValidatedAt = &now

	_ = gate.Resolve(true)
	return domain.GateDecision{State: gate.State(), Credential: cred}, nil
}

// Invalidate clears a session after the backend rejected its token.
// It reports whether this call was the one that cleared it.
func (uc *AuthUseCase) Invalidate(ctx context.Context, sessionID string) (bool, error) {
	cleared, err := uc.store.Delete(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if cleared {
		if uc.metrics != nil {
			uc.metrics.SessionsCleared.Inc()
		}
		uc.logger.Info().Str("session_id", sessionID).Msg("session cleared")
	}
	return cleared, nil
}

func (uc *AuthUseCase) reject(gate *domain.AuthGate) domain.GateDecision {
	_ = gate.Resolve(false)
	return domain.GateDecision{State: gate.State(), Redirect: LoginRoute}
}
