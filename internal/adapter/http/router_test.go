package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/masjid-console/internal/adapter/http/handler"
	apimiddleware "github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/auth"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_AdminRequiresSession(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/api/summary", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/login"`) {
		t.Fatalf("expected a login redirect, got %s", rec.Body.String())
	}
}

func TestNewRouter_AdminWithSession(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/admin/api/summary", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_UserWritesNeedSuperAdmin(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodPost, "/admin/api/user/", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a plain admin, got %d", rec.Code)
	}
}

func TestNewRouter_ReservationRateLimited(t *testing.T) {
	limiter := apimiddleware.NewRateLimiter(1, 1, "/public/reservasi", nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.ReservationLimiter = limiter
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/public/reservasi", strings.NewReader("{bad"))
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusBadRequest {
		t.Fatalf("expected first request to reach the handler, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/api/summary/refresh", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if store.checkedKey != "sess-1:key-123" {
		t.Fatalf("expected a session scoped key, got %q", store.checkedKey)
	}
	if !store.updated {
		t.Fatal("expected the response to be stored")
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.Gatherer = reg
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in output")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /auth/login",
		"POST /auth/logout",
		"GET /auth/me",
		"GET /public/prayer-times",
		"GET /public/kegiatan",
		"POST /public/reservasi",
		"GET /public/donasi",
		"GET /admin/api/summary",
		"GET /admin/api/transaksi/form",
		"POST /admin/api/transaksi/check",
		"POST /admin/api/transaksi/",
		"PUT /admin/api/transaksi/{id}",
		"DELETE /admin/api/transaksi/{id}",
		"GET /admin/api/jenis-transaksi",
		"POST /admin/api/user/",
		"GET /admin/api/role",
		"POST /admin/api/informasi/",
		"POST /admin/api/kegiatan/",
		"PUT /admin/api/reservasi/{id}/status",
		"POST /admin/api/tempat-reservasi/",
		"GET /admin/api/audit/{type}/{id}",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	logger := zerolog.Nop()

	cfg := RouterConfig{
		AuthHandler:        handler.NewAuthHandler(nil, nil, nil, false, logger),
		SummaryHandler:     handler.NewSummaryHandler(stubSummaryService{}, logger),
		CategoryHandler:    handler.NewCategoryHandler(nil, logger),
		TransactionHandler: handler.NewTransactionHandler(nil, "", time.UTC, nil, logger),
		ContentHandler:     handler.NewContentHandler(nil, "", time.UTC, nil, logger),
		ReservationHandler: handler.NewReservationHandler(nil, "", nil, logger),
		UserHandler:        handler.NewUserHandler(nil, nil, logger),
		AuditHandler:       handler.NewAuditHandler(nil, logger),
		PublicHandler:      handler.NewPublicHandler(nil, nil, nil, handler.PublicConfig{}, logger),
		HealthHandler:      handler.NewHealthHandler(nil),
		TokenVerifier:      stubVerifier{},
		Authenticator:      stubAuthenticator{},
		Logger:             logger,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*auth.Claims, error) {
	if token != "admin-token" {
		return nil, domain.ErrInvalidToken
	}
	return &auth.Claims{SessionID: "sess-1"}, nil
}

type stubAuthenticator struct{}

func (stubAuthenticator) Gate(ctx context.Context, sessionID string) (domain.GateDecision, error) {
	if sessionID != "sess-1" {
		return domain.GateDecision{State: domain.GateUnauthenticated}, nil
	}
	return domain.GateDecision{
		State: domain.GateAuthenticated,
		Credential: &domain.Credential{
			SessionID: sessionID,
			Token:     "backend-token",
			User:      domain.User{ID: "1", Role: domain.Role{ID: "2", Name: "admin"}},
		},
	}, nil
}

func (stubAuthenticator) Invalidate(ctx context.Context, sessionID string) (bool, error) {
	return true, nil
}

type stubSummaryService struct{}

func (stubSummaryService) Current(ctx context.Context, token string) (domain.AccountSummary, error) {
	return domain.AccountSummary{TotalBalance: decimal.NewFromInt(1000)}, nil
}

func (stubSummaryService) Refresh(ctx context.Context, token string) (domain.AccountSummary, error) {
	return domain.AccountSummary{TotalBalance: decimal.NewFromInt(1000)}, nil
}

type stubIdempotencyStore struct {
	checkedKey string
	updated    bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkedKey = key
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updated = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
