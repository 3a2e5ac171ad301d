package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/adapter/http/handler"
	"github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
	"github.com/iho/masjid-console/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	SummaryHandler     *handler.SummaryHandler
	CategoryHandler    *handler.CategoryHandler
	TransactionHandler *handler.TransactionHandler
	ContentHandler     *handler.ContentHandler
	ReservationHandler *handler.ReservationHandler
	UserHandler        *handler.UserHandler
	AuditHandler       *handler.AuditHandler
	PublicHandler      *handler.PublicHandler
	HealthHandler      *handler.HealthHandler

	TokenVerifier middleware.TokenVerifier
	Authenticator middleware.Authenticator

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// ReservationLimiter throttles public reservation requests; nil disables it.
	ReservationLimiter *middleware.RateLimiter

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	gate := middleware.SessionGate(cfg.TokenVerifier, cfg.Authenticator, cfg.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/logout", cfg.AuthHandler.Logout)
		r.With(gate).Get("/me", cfg.AuthHandler.Me)
	})

	// Public site, served with the configured public token
	r.Route("/public", func(r chi.Router) {
		r.Get("/prayer-times", cfg.PublicHandler.PrayerTimes)
		r.Get("/kegiatan", cfg.PublicHandler.ListActivities)
		r.Get("/kegiatan/{id}", cfg.PublicHandler.GetActivity)
		r.Get("/informasi", cfg.PublicHandler.ListPosts)
		r.Get("/informasi/{id}", cfg.PublicHandler.GetPost)
		r.Get("/tempat-reservasi", cfg.PublicHandler.ListVenues)
		r.Get("/donasi", cfg.PublicHandler.Donation)

		reserve := http.Handler(http.HandlerFunc(cfg.PublicHandler.RequestReservation))
		if cfg.ReservationLimiter != nil {
			reserve = cfg.ReservationLimiter.Limit(reserve)
		}
		r.Method(http.MethodPost, "/reservasi", reserve)
	})

	// Admin console
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(gate)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = usecase.IdempotencyKeyTTL
			}
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, ttl, cfg.Logger).Wrap)
		}

		r.Get("/summary", cfg.SummaryHandler.Get)
		r.Post("/summary/refresh", cfg.SummaryHandler.Refresh)

		r.Get("/jenis-transaksi", cfg.CategoryHandler.List)
		r.Post("/jenis-transaksi/refresh", cfg.CategoryHandler.Refresh)

		// Transactions
		r.Route("/transaksi", func(r chi.Router) {
			r.Get("/form", cfg.TransactionHandler.Form)
			r.Post("/check", cfg.TransactionHandler.Check)
			r.Get("/", cfg.TransactionHandler.List)
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
		})

		// Admin accounts; changes need a superadmin
		r.Get("/role", cfg.UserHandler.Roles)
		r.Route("/user", func(r chi.Router) {
			r.Get("/", cfg.UserHandler.List)
			r.Get("/{id}", cfg.UserHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSuperAdmin)
				r.Post("/", cfg.UserHandler.Create)
				r.Put("/{id}", cfg.UserHandler.Update)
				r.Delete("/{id}", cfg.UserHandler.Delete)
			})
		})

		r.Route("/informasi", func(r chi.Router) {
			r.Get("/", cfg.ContentHandler.ListPosts)
			r.Post("/", cfg.ContentHandler.CreatePost)
			r.Get("/{id}", cfg.ContentHandler.GetPost)
			r.Put("/{id}", cfg.ContentHandler.UpdatePost)
			r.Delete("/{id}", cfg.ContentHandler.DeletePost)
		})

		r.Route("/kegiatan", func(r chi.Router) {
			r.Get("/", cfg.ContentHandler.ListActivities)
			r.Post("/", cfg.ContentHandler.CreateActivity)
			r.Get("/{id}", cfg.ContentHandler.GetActivity)
			r.Put("/{id}", cfg.ContentHandler.UpdateActivity)
			r.Delete("/{id}", cfg.ContentHandler.DeleteActivity)
		})

		r.Route("/reservasi", func(r chi.Router) {
			r.Get("/", cfg.ReservationHandler.List)
			r.Put("/{id}/status", cfg.ReservationHandler.SetStatus)
			r.Delete("/{id}", cfg.ReservationHandler.Delete)
		})

		r.Route("/tempat-reservasi", func(r chi.Router) {
			r.Get("/", cfg.ReservationHandler.ListVenues)
			r.Post("/", cfg.ReservationHandler.CreateVenue)
			r.Get("/{id}", cfg.ReservationHandler.GetVenue)
			r.Put("/{id}", cfg.ReservationHandler.UpdateVenue)
			r.Delete("/{id}", cfg.ReservationHandler.DeleteVenue)
		})

		if cfg.AuditHandler != nil {
			r.Get("/audit", cfg.AuditHandler.List)
			r.Get("/audit/{type}/{id}", cfg.AuditHandler.History)
		}
	})

	return r
}
