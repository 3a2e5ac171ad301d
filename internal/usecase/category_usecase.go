package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

const categoryCacheKey = "jenis_transaksi"

// CategoryUseCase loads transaction categories with their funding source.
type CategoryUseCase struct {
	lister  CategoryLister
	cache   Cache
	ttl     time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// SetMetrics enables the inferred-category counter.
func (uc *CategoryUseCase) SetMetrics(m *metrics.Metrics) {
	uc.metrics = m
}

// NewCategoryUseCase creates a new CategoryUseCase. cache may be nil.
func NewCategoryUseCase(lister CategoryLister, cache Cache, ttl time.Duration, logger zerolog.Logger) *CategoryUseCase {
	if ttl <= 0 {
		ttl = DefaultCategoryCacheTTL
	}
	return &CategoryUseCase{
		lister: lister,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "categories").Logger(),
	}
}

// List returns normalized categories, from cache when possible.
func (uc *CategoryUseCase) List(ctx context.Context, token string) ([]domain.TransactionCategory, error) {
	if cached, ok := uc.fromCache(ctx); ok {
		return cached, nil
	}

	records, err := uc.lister.ListCategories(ctx, token)
	if err != nil {
		return nil, err
	}

	categories := make([]domain.TransactionCategory, 0, len(records))
	for _, rec := range records {
		c := domain.NormalizeCategory(rec)
		if c.Inferred {
			if uc.metrics != nil {
				uc.metrics.CategoriesInferred.Inc()
			}
			uc.logger.Debug().
				Str("category_id", c.ID).
				Str("label", c.Label).
				Str("funding_source", string(c.FundingSource)).
				Msg("funding source inferred from label")
		}
		categories = append(categories, c)
	}

	uc.toCache(ctx, categories)

	return categories, nil
}

// Resolve finds a category by id.
func (uc *CategoryUseCase) Resolve(ctx context.Context, token, id string) (domain.TransactionCategory, error) {
	categories, err := uc.List(ctx, token)
	if err != nil {
		return domain.TransactionCategory{}, err
	}

	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}

	return domain.TransactionCategory{}, fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, id)
}

// Invalidate drops cached categories.
func (uc *CategoryUseCase) Invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, categoryCacheKey); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to drop category cache")
	}
}

func (uc *CategoryUseCase) fromCache(ctx context.Context) ([]domain.TransactionCategory, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, categoryCacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var categories []domain.TransactionCategory
	if err := json.Unmarshal(data, &categories); err != nil {
		uc.logger.Warn().Err(err).Msg("discarding unreadable category cache")
		return nil, false
	}

	return categories, true
}

func (uc *CategoryUseCase) toCache(ctx context.Context, categories []domain.TransactionCategory) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(categories)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, categoryCacheKey, data, uc.ttl); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to cache categories")
	}
}
