package usecase

import "time"

const (
	// DefaultSessionTTL bounds how long a console session lives in the store.
	DefaultSessionTTL = 12 * time.Hour

	// DefaultSummaryMaxAge is how old a cached summary may be before the guard refetches it.
	DefaultSummaryMaxAge = time.Minute

	// DefaultCategoryCacheTTL is how long normalized categories are cached.
	DefaultCategoryCacheTTL = 5 * time.Minute

	// DefaultPrayerCacheTTL is how long a day's prayer schedule is cached.
	DefaultPrayerCacheTTL = 36 * time.Hour

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is the stored value while the first request for a key runs.
	IdempotencyPending = "processing"

	// LoginRoute is where unauthenticated admins are sent.
	LoginRoute = "/login"
)
