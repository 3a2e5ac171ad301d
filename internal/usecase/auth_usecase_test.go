package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
	"github.com/iho/masjid-console/internal/usecase"
	"github.com/iho/masjid-console/internal/usecase/mocks"
)

type authFixture struct {
	backend *mocks.MockAuthBackend
	store   *mocks.MockCredentialStore
	idGen   *mocks.MockIDGenerator
	uc      *usecase.AuthUseCase
}

func newAuthFixture(t *testing.T) authFixture {
	ctrl := gomock.NewController(t)
	f := authFixture{
		backend: mocks.NewMockAuthBackend(ctrl),
		store:   mocks.NewMockCredentialStore(ctrl),
		idGen:   mocks.NewMockIDGenerator(ctrl),
	}
	f.uc = usecase.NewAuthUseCase(f.backend, f.store, f.idGen, time.Hour, zerolog.Nop())
	return f
}

func TestAuthUseCase_Login(t *testing.T) {
	f := newAuthFixture(t)

	user := &domain.User{ID: "1", Name: "Ahmad", Email: "ahmad@masjid.id"}
	f.backend.EXPECT().Login(gomock.Any(), "ahmad@masjid.id", "rahasia123").Return("backend-token", user, nil)
	f.idGen.EXPECT().Generate().Return("01HSESSION")
	f.store.EXPECT().Save(gomock.Any(), gomock.Any(), time.Hour).DoAndReturn(
		func(_ context.Context, cred *domain.Credential, _ time.Duration) error {
			if cred.SessionID != "01HSESSION" || cred.Token != "backend-token" || !cred.Validated() {
				t.Fatalf("unexpected credential %+v", cred)
			}
			return nil
		})

	cred, err := f.uc.Login(context.Background(), usecase.LoginInput{Email: "ahmad@masjid.id", Password: "rahasia123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.User.Name != "Ahmad" {
		t.Errorf("expected profile to be stored, got %+v", cred.User)
	}
}

func TestAuthUseCase_Login_Rejected(t *testing.T) {
	f := newAuthFixture(t)

	f.backend.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil, &domain.ExternalServiceError{
		Service: "backend", StatusCode: 401, Err: domain.ErrUnauthorized,
	})

	_, err := f.uc.Login(context.Background(), usecase.LoginInput{Email: "a@masjid.id", Password: "wrongpass"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthUseCase_Login_ValidatesInput(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.uc.Login(context.Background(), usecase.LoginInput{Email: "not-an-email", Password: "x"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestAuthUseCase_Gate_NoSession(t *testing.T) {
	f := newAuthFixture(t)

	// No store or backend expectations: neither may be called.
	d, err := f.uc.Gate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.State != domain.GateUnauthenticated || d.Redirect != usecase.LoginRoute {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestAuthUseCase_Gate_UnknownSession(t *testing.T) {
	f := newAuthFixture(t)

	f.store.EXPECT().Get(gomock.Any(), "gone").Return(nil, domain.ErrNotFound)

	d, err := f.uc.Gate(context.Background(), "gone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed() || d.State != domain.GateUnauthenticated {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestAuthUseCase_Gate_ValidatedSessionSkipsBackend(t *testing.T) {
	f := newAuthFixture(t)

	now := time.Now()
	f.store.EXPECT().Get(gomock.Any(), "s1").Return(&domain.Credential{SessionID: "s1", Token: "t", ValidatedAt: &now}, nil)

	d, err := f.uc.Gate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Allowed() {
		t.Fatalf("expected access, got %+v", d)
	}
}

func TestAuthUseCase_Gate_ValidatesOnce(t *testing.T) {
	f := newAuthFixture(t)

	user := &domain.User{ID: "7", Name: "Fatimah"}
	f.store.EXPECT().Get(gomock.Any(), "s2").Return(&domain.Credential{SessionID: "s2", Token: "t"}, nil)
	f.backend.EXPECT().Profile(gomock.Any(), "t").Return(user, nil).Times(1)
	f.store.EXPECT().MarkValidated(gomock.Any(), "s2", user, gomock.Any()).Return(nil)

	d, err := f.uc.Gate(context.Background(), "s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Allowed() || d.Credential.User.Name != "Fatimah" || !d.Credential.Validated() {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestAuthUseCase_Gate_RejectedTokenClearsOnce(t *testing.T) {
	f := newAuthFixture(t)

	f.store.EXPECT().Get(gomock.Any(), "s3").Return(&domain.Credential{SessionID: "s3", Token: "bad"}, nil)
	f.backend.EXPECT().Profile(gomock.Any(), "bad").Return(nil, errors.New("connection refused"))
	f.store.EXPECT().Delete(gomock.Any(), "s3").Return(true, nil).Times(1)

	d, err := f.uc.Gate(context.Background(), "s3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.State != domain.GateUnauthenticated || d.Redirect != usecase.LoginRoute {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestAuthUseCase_Logout(t *testing.T) {
	f := newAuthFixture(t)

	f.store.EXPECT().Get(gomock.Any(), "s4").Return(&domain.Credential{SessionID: "s4", Token: "t"}, nil)
	f.backend.EXPECT().Logout(gomock.Any(), "t").Return(errors.New("backend down"))
	f.store.EXPECT().Delete(gomock.Any(), "s4").Return(true, nil)

	if err := f.uc.Logout(context.Background(), "s4"); err != nil {
		t.Fatalf("logout must clear locally even if the backend fails, got %v", err)
	}
}

func TestAuthUseCase_Logout_UnknownSession(t *testing.T) {
	f := newAuthFixture(t)

	f.store.EXPECT().Get(gomock.Any(), "nope").Return(nil, domain.ErrNotFound)

	if err := f.uc.Logout(context.Background(), "nope"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthUseCase_Metrics(t *testing.T) {
	f := newAuthFixture(t)
	m := metrics.New(prometheus.NewRegistry())
	f.uc.SetMetrics(m)

	f.backend.EXPECT().Login(gomock.Any(), "ahmad@masjid.id", "salah12345").
		Return("", nil, &domain.ExternalServiceError{Service: "backend", StatusCode: 401, Err: domain.ErrUnauthorized})
	if _, err := f.uc.Login(context.Background(), usecase.LoginInput{Email: "ahmad@masjid.id", Password: "salah12345"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	f.store.EXPECT().Delete(gomock.Any(), "s9").Return(true, nil)
	f.store.EXPECT().Delete(gomock.Any(), "s9").Return(false, nil)
	for i := 0; i < 2; i++ {
		if _, err := f.uc.Invalidate(context.Background(), "s9"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("invalid")); got != 1 {
		t.Fatalf("expected 1 invalid login, got %v", got)
	}
	if got := testutil.ToFloat64(m.SessionsCleared); got != 1 {
		t.Fatalf("expected one cleared session, got %v", got)
	}
}
