package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/domain"
)

// PrayerUseCase serves prayer schedules for the mosque's city.
type PrayerUseCase struct {
	provider PrayerTimeProvider
	cache    Cache
	city     string
	country  string
	loc      *time.Location
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPrayerUseCase creates a new PrayerUseCase. cache may be nil.
func NewPrayerUseCase(provider PrayerTimeProvider, cache Cache, city, country string, loc *time.Location, logger zerolog.Logger) *PrayerUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &PrayerUseCase{
		provider: provider,
		cache:    cache,
		city:     city,
		country:  country,
		loc:      loc,
		ttl:      DefaultPrayerCacheTTL,
		logger:   logger.With().Str("component", "prayer").Logger(),
		now:      time.Now,
	}
}

// PrayerDay is a schedule plus the next prayer when the day is today.
type PrayerDay struct {
	Schedule *domain.PrayerSchedule
	Next     *domain.PrayerTime
}

// Today returns today's schedule and the next prayer.
func (uc *PrayerUseCase) Today(ctx context.Context) (PrayerDay, error) {
	now := uc.now().In(uc.loc)

	schedule, err := uc.ForDate(ctx, now)
	if err != nil {
		return PrayerDay{}, err
	}

	day := PrayerDay{Schedule: schedule}
	if next, ok := schedule.Next(now); ok {
		day.Next = &next
	}

	return day, nil
}

// ForDate returns the schedule for the calendar day of date in the mosque's zone.
func (uc *PrayerUseCase) ForDate(ctx context.Context, date time.Time) (*domain.PrayerSchedule, error) {
	date = date.In(uc.loc)
	key := uc.cacheKey(date)

	if schedule, ok := uc.fromCache(ctx, key); ok {
		return schedule, nil
	}

	schedule, err := uc.provider.Timings(ctx, date, uc.city, uc.country)
	if err != nil {
		return nil, err
	}

	uc.toCache(ctx, key, schedule)

	return schedule, nil
}

// Warm fetches and caches today's and tomorrow's schedules.
func (uc *PrayerUseCase) Warm(ctx context.Context) error {
	today := uc.now().In(uc.loc)
	for _, d := range []time.Time{today, today.AddDate(0, 0, 1)} {
		if uc.cache != nil {
			_ = uc.cache.Delete(ctx, uc.cacheKey(d))
		}
		if _, err := uc.ForDate(ctx, d); err != nil {
			return err
		}
	}
	uc.logger.Info().Str("city", uc.city).Msg("prayer schedule warmed")
	return nil
}

func (uc *PrayerUseCase) cacheKey(date time.Time) string {
	return "prayer:" + strings.ToLower(uc.city) + ":" + date.Format("2006-01-02")
}

func (uc *PrayerUseCase) fromCache(ctx context.Context, key string) (*domain.PrayerSchedule, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}

	var schedule domain.PrayerSchedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, false
	}

	return &schedule, true
}

func (uc *PrayerUseCase) toCache(ctx context.Context, key string, schedule *domain.PrayerSchedule) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.ttl); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("failed to cache prayer schedule")
	}
}
