package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

// AuditUseCase records and lists admin actions.
type AuditUseCase struct {
	repo    AuditRepository
	idGen   IDGenerator
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(repo AuditRepository, idGen IDGenerator, logger zerolog.Logger) *AuditUseCase {
	return &AuditUseCase{
		repo:   repo,
		idGen:  idGen,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record stores an entry. Failures are logged and never block the action
// being audited.
func (uc *AuditUseCase) Record(ctx context.Context, log *domain.AuditLog) {
	if log.ID == "" {
		log.ID = uc.idGen.Generate()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if log.Status == "" {
		log.Status = domain.AuditStatusSuccess
	}

	if err := uc.repo.Create(ctx, log); err != nil {
		if uc.metrics != nil {
			uc.metrics.DBErrors.WithLabelValues("audit_create").Inc()
		}
		uc.logger.Error().Err(err).
			Str("action", string(log.Action)).
			Str("resource_id", log.ResourceID).
			Msg("failed to write audit log")
		return
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(string(log.Action), string(log.Status)).Inc()
	}
}

// SetMetrics enables audit counters.
func (uc *AuditUseCase) SetMetrics(m *metrics.Metrics) {
	uc.metrics = m
}

// List returns entries matching filter, newest first.
func (uc *AuditUseCase) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.repo.List(ctx, filter)
}

// History returns the trail of one resource.
func (uc *AuditUseCase) History(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return uc.repo.GetByResourceID(ctx, resourceType, resourceID)
}
