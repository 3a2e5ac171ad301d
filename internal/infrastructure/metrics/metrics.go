package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Backend metrics
	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec

	// Summary metrics
	SummaryRefreshes *prometheus.CounterVec
	SummaryBalance   *prometheus.GaugeVec

	// Guard metrics
	BalanceWarnings    *prometheus.CounterVec
	CategoriesInferred prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Storage metrics
	RedisErrors *prometheus.CounterVec
	DBErrors    *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts    *prometheus.CounterVec
	SessionsCleared prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec

	// Prayer time metrics
	PrayerFetches *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		BackendRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_backend_requests_total",
				Help: "Total requests sent to the mosque backend",
			},
			[]string{"endpoint", "status"},
		),
		BackendDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "masjid_backend_request_duration_seconds",
				Help:    "Backend request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		BreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "masjid_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),

		SummaryRefreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_summary_refreshes_total",
				Help: "Account summary refreshes by result",
			},
			[]string{"result"},
		),
		SummaryBalance: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "masjid_summary_balance_rupiah",
				Help: "Last fetched balance per funding source",
			},
			[]string{"source"},
		),

		BalanceWarnings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_balance_warnings_total",
				Help: "Submissions blocked by the balance guard",
			},
			[]string{"source"},
		),
		CategoriesInferred: f.NewCounter(prometheus.CounterOpts{
			Name: "masjid_categories_inferred_total",
			Help: "Categories whose funding source was inferred from the label",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "masjid_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "masjid_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		RedisErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
		DBErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		AuthAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_auth_attempts_total",
				Help: "Total login attempts",
			},
			[]string{"status"},
		),
		SessionsCleared: f.NewCounter(prometheus.CounterOpts{
			Name: "masjid_sessions_cleared_total",
			Help: "Sessions cleared after the backend rejected their token",
		}),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"route"},
		),

		AuditLogsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),

		PrayerFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masjid_prayer_fetches_total",
				Help: "Prayer time API fetches by result",
			},
			[]string{"result"},
		),
	}
}
