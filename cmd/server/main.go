package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/iho/masjid-console/internal/adapter/backend"
	httpAdapter "github.com/iho/masjid-console/internal/adapter/http"
	"github.com/iho/masjid-console/internal/adapter/http/handler"
	"github.com/iho/masjid-console/internal/adapter/http/middleware"
	"github.com/iho/masjid-console/internal/adapter/prayer"
	postgresRepo "github.com/iho/masjid-console/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/masjid-console/internal/adapter/repository/redis"
	"github.com/iho/masjid-console/internal/infrastructure/auth"
	"github.com/iho/masjid-console/internal/infrastructure/config"
	"github.com/iho/masjid-console/internal/infrastructure/logger"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
	"github.com/iho/masjid-console/internal/infrastructure/poller"
	"github.com/iho/masjid-console/internal/infrastructure/postgres"
	"github.com/iho/masjid-console/internal/infrastructure/redis"
	"github.com/iho/masjid-console/internal/infrastructure/scheduler"
	"github.com/iho/masjid-console/internal/infrastructure/tracing"
	"github.com/iho/masjid-console/internal/usecase"
	"github.com/iho/masjid-console/migrations"
)

const (
	rateLimitCleanupSchedule = "*/10 * * * *"
	rateLimitIdle            = 30 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: cfg.ServiceName})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	loc := cfg.Location()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: cfg.ServiceName,
		SampleRatio: 1,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Connect to PostgreSQL for the audit trail
	var pool *pgxpool.Pool
	if cfg.AuditEnabled {
		if err := postgres.RunMigrations(cfg.DatabaseURL, migrations.FS, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		log.Info().Msg("connected to postgres")
	}

	// Initialize adapters
	backendClient := backend.NewClient(backend.Config{
		BaseURL:     cfg.BackendURL,
		ProfilePath: cfg.BackendProfilePath,
		Timeout:     cfg.BackendTimeout,
	}, m, log)
	prayerClient := prayer.NewClient(prayer.Config{
		BaseURL:  cfg.PrayerAPIURL,
		Method:   cfg.PrayerMethod,
		Timeout:  cfg.BackendTimeout,
		Location: loc,
	}, m, log)

	credentialStore := redisRepo.NewCredentialStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	authUC := usecase.NewAuthUseCase(backendClient, credentialStore, idGen, cfg.SessionTTL, log)
	authUC.SetMetrics(m)

	summaryUC := usecase.NewSummaryUseCase(backendClient, cfg.BackendServiceToken, cfg.SummaryMaxAge)
	summaryUC.SetMetrics(m)

	categoryUC := usecase.NewCategoryUseCase(backendClient, cache, cfg.CategoryCacheTTL, log)
	categoryUC.SetMetrics(m)

	transactionUC := usecase.NewTransactionUseCase(backendClient, summaryUC, categoryUC)
	transactionUC.SetMetrics(m)

	contentUC := usecase.NewContentUseCase(backendClient, backendClient, loc)
	reservationUC := usecase.NewReservationUseCase(backendClient, backendClient, cfg.BackendPublicToken, loc)
	userUC := usecase.NewUserUseCase(backendClient)
	prayerUC := usecase.NewPrayerUseCase(prayerClient, cache, cfg.PrayerCity, cfg.PrayerCountry, loc, log)

	var (
		recorder     handler.AuditRecorder
		auditHandler *handler.AuditHandler
	)
	if pool != nil {
		auditUC := usecase.NewAuditUseCase(postgresRepo.NewAuditRepository(pool, postgresRepo.NewRetrier(log)), idGen, log)
		auditUC.SetMetrics(m)
		recorder = auditUC
		auditHandler = handler.NewAuditHandler(auditUC, log)
	}

	// Background work
	summaryPoller := poller.New(poller.Config{
		Refresher: summaryUC,
		Interval:  cfg.SummaryPollInterval,
		Logger:    log,
	})
	if summaryUC.HasServiceToken() {
		summaryUC.SetTrigger(summaryPoller)
		if err := summaryPoller.Subscribe(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start summary poller")
		}
	} else {
		log.Warn().Msg("BACKEND_SERVICE_TOKEN not set, summary refreshes on demand only")
	}

	reservationLimiter := middleware.NewRateLimiter(
		float64(cfg.ReservationRatePerMinute), cfg.ReservationRateBurst, "/public/reservasi", m)

	jobs := scheduler.New(loc, time.Minute, log)
	if err := jobs.Add("prayer-warm", cfg.PrayerWarmSchedule, prayerUC.Warm); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule prayer warm-up")
	}
	if err := jobs.Add("rate-limit-cleanup", rateLimitCleanupSchedule, func(context.Context) error {
		reservationLimiter.Cleanup(rateLimitIdle)
		return nil
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule rate limiter cleanup")
	}
	jobs.Start()

	// Warm today's schedule so the first visitor does not wait on the provider.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := prayerUC.Warm(warmCtx); err != nil {
			log.Warn().Err(err).Msg("initial prayer warm-up failed")
		}
	}()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(authUC, jwtManager, recorder, cfg.CookieSecure, log),
		SummaryHandler:     handler.NewSummaryHandler(summaryUC, log),
		CategoryHandler:    handler.NewCategoryHandler(categoryUC, log),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, cfg.StorageBaseURL, loc, recorder, log),
		ContentHandler:     handler.NewContentHandler(contentUC, cfg.StorageBaseURL, loc, recorder, log),
		ReservationHandler: handler.NewReservationHandler(reservationUC, cfg.StorageBaseURL, recorder, log),
		UserHandler:        handler.NewUserHandler(userUC, recorder, log),
		AuditHandler:       auditHandler,
		PublicHandler: handler.NewPublicHandler(contentUC, reservationUC, prayerUC, handler.PublicConfig{
			PublicToken: cfg.BackendPublicToken,
			AssetBase:   cfg.StorageBaseURL,
			Location:    loc,
			Donation:    cfg.Donation(),
		}, log),
		HealthHandler:      handler.NewHealthHandler(readinessChecks(redisClient, pool)),
		TokenVerifier:      jwtManager,
		Authenticator:      authUC,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		ReservationLimiter: reservationLimiter,
		Metrics:            m,
		Gatherer:           reg,
		Logger:             log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	jobs.Stop()
	summaryPoller.Close()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("failed to flush traces")
	}

	log.Info().Msg("server stopped")
}

// readinessChecks builds the /ready probes. pool is nil when auditing is off.
func readinessChecks(redisClient goredis.UniversalClient, pool *pgxpool.Pool) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	return checks
}
