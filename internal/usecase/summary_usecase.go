package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

// SummaryUseCase keeps the latest account summary snapshot.
//
// Fetches are numbered as they start and only a fetch newer than the one
// that produced the snapshot may replace it. Fetches never cancel each
// other; cancelling a superseded poller refresh is the poller's job.
type SummaryUseCase struct {
	fetcher      SummaryFetcher
	serviceToken string
	maxAge       time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time

	mu         sync.RWMutex
	snapshot   domain.AccountSummary
	stale      bool
	generation uint64 // last fetch started
	applied    uint64 // fetch that produced snapshot
	staleAt    uint64 // last fetch started before Invalidate
	trigger    RefreshTrigger
}

// NewSummaryUseCase creates a new SummaryUseCase. serviceToken may be empty,
// in which case only callers with their own token can refresh.
func NewSummaryUseCase(fetcher SummaryFetcher, serviceToken string, maxAge time.Duration) *SummaryUseCase {
	if maxAge <= 0 {
		maxAge = DefaultSummaryMaxAge
	}
	return &SummaryUseCase{
		fetcher:      fetcher,
		serviceToken: serviceToken,
		maxAge:       maxAge,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetTrigger attaches a background poller woken by Invalidate.
func (uc *SummaryUseCase) SetTrigger(t RefreshTrigger) {
	uc.mu.Lock()
	uc.trigger = t
	uc.mu.Unlock()
}

// SetMetrics enables refresh and balance metrics.
func (uc *SummaryUseCase) SetMetrics(m *metrics.Metrics) {
	uc.metrics = m
}

func (uc *SummaryUseCase) countRefresh(result string) {
	if uc.metrics != nil {
		uc.metrics.SummaryRefreshes.WithLabelValues(result).Inc()
	}
}

// HasServiceToken reports whether background refreshes are possible.
func (uc *SummaryUseCase) HasServiceToken() bool {
	return uc.serviceToken != ""
}

// Snapshot returns the last fetched summary and whether one exists.
func (uc *SummaryUseCase) Snapshot() (domain.AccountSummary, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.snapshot, !uc.snapshot.IsZero()
}

// Refresh fetches the summary with token and replaces the snapshot unless a
// newer fetch already has.
func (uc *SummaryUseCase) Refresh(ctx context.Context, token string) (domain.AccountSummary, error) {
	uc.mu.Lock()
	uc.generation++
	gen := uc.generation
	uc.mu.Unlock()

	summary, err := uc.fetcher.FetchSummary(ctx, token)
	if err != nil {
		uc.countRefresh("error")
		return domain.AccountSummary{}, err
	}

	if summary.FetchedAt.IsZero() {
		summary.FetchedAt = uc.now()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if gen < uc.applied {
		uc.countRefresh("superseded")
		return summary, nil
	}

	uc.snapshot = summary
	uc.applied = gen
	// A fetch that started before the last write may not see it.
	if gen > uc.staleAt {
		uc.stale = false
	}

	uc.countRefresh("success")
	if uc.metrics != nil {
		uc.metrics.SummaryBalance.WithLabelValues(string(domain.FundingCash)).Set(summary.CashBalance.InexactFloat64())
		uc.metrics.SummaryBalance.WithLabelValues(string(domain.FundingBank)).Set(summary.BankBalance.InexactFloat64())
	}

	return summary, nil
}

// RefreshService refreshes with the configured service token.
func (uc *SummaryUseCase) RefreshService(ctx context.Context) error {
	if uc.serviceToken == "" {
		return domain.ErrSummaryUnavailable
	}
	_, err := uc.Refresh(ctx, uc.serviceToken)
	return err
}

// Current returns a fresh enough snapshot, fetching with the caller's token
// when the snapshot is missing, stale or older than the max age.
func (uc *SummaryUseCase) Current(ctx context.Context, token string) (domain.AccountSummary, error) {
	uc.mu.RLock()
	snapshot, stale := uc.snapshot, uc.stale
	uc.mu.RUnlock()

	if !snapshot.IsZero() && !stale && uc.now().Sub(snapshot.FetchedAt) <= uc.maxAge {
		return snapshot, nil
	}

	summary, err := uc.Refresh(ctx, token)
	if err != nil {
		return domain.AccountSummary{}, err
	}
	return summary, nil
}

// Invalidate marks the snapshot stale after a write and wakes the poller.
func (uc *SummaryUseCase) Invalidate() {
	uc.mu.Lock()
	uc.stale = true
	uc.staleAt = uc.generation
	trigger := uc.trigger
	uc.mu.Unlock()

	if trigger != nil {
		trigger.Trigger()
	}
}
