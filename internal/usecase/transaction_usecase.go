package usecase

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

// TransactionUseCase is the transaction form controller: it validates a
// draft, runs the balance guard for expenses and forwards to the backend.
type TransactionUseCase struct {
	backend    TransactionBackend
	summaries  SummaryProvider
	categories CategoryResolver
	metrics    *metrics.Metrics
}

// SetMetrics enables the blocked-expense counter.
func (uc *TransactionUseCase) SetMetrics(m *metrics.Metrics) {
	uc.metrics = m
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(backend TransactionBackend, summaries SummaryProvider, categories CategoryResolver) *TransactionUseCase {
	return &TransactionUseCase{
		backend:    backend,
		summaries:  summaries,
		categories: categories,
	}
}

// FormState is what the transaction form needs before the user types.
// Summary and categories load independently; either may fail alone.
type FormState struct {
	Summary       *domain.AccountSummary
	SummaryErr    error
	Categories    []domain.TransactionCategory
	CategoriesErr error
}

// FormState loads the summary and the category options concurrently.
func (uc *TransactionUseCase) FormState(ctx context.Context, token string) FormState {
	var (
		state FormState
		g     errgroup.Group
	)

	g.Go(func() error {
		summary, err := uc.summaries.Current(ctx, token)
		if err != nil {
			state.SummaryErr = err
			return nil
		}
		state.Summary = &summary
		return nil
	})

	g.Go(func() error {
		categories, err := uc.categories.List(ctx, token)
		if err != nil {
			state.CategoriesErr = err
			return nil
		}
		state.Categories = categories
		return nil
	})

	_ = g.Wait()

	return state
}

// CheckInput is a guard preview request.
type CheckInput struct {
	Kind          domain.TransactionKind
	CategoryID    string
	Amount        string
	TransactionID string // set in edit mode
}

// CheckResult is the outcome of a guard preview.
type CheckResult struct {
	FundingSource domain.FundingSource
	Available     string
	Warning       string
}

// Check runs the balance guard without submitting anything.
func (uc *TransactionUseCase) Check(ctx context.Context, token string, input CheckInput) (CheckResult, error) {
	category, err := uc.categories.Resolve(ctx, token, input.CategoryID)
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{FundingSource: category.FundingSource}
	if input.Kind != domain.KindExpense {
		return result, nil
	}

	var original *domain.OriginalTransaction
	if input.TransactionID != "" {
		existing, err := uc.backend.GetTransaction(ctx, token, input.TransactionID)
		if err != nil {
			return CheckResult{}, err
		}
		original, err = uc.original(ctx, token, existing)
		if err != nil {
			return CheckResult{}, err
		}
	}

	summary, err := uc.summaries.Current(ctx, token)
	if err != nil {
		return CheckResult{}, err
	}

	result.Available = domain.FormatRupiah(domain.AdjustedBalance(summary, category.FundingSource, original))
	result.Warning = domain.BalanceWarning(input.Amount, category.FundingSource, summary, original)

	return result, nil
}

// Create validates and submits a new transaction.
func (uc *TransactionUseCase) Create(ctx context.Context, token string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
	source, err := uc.guard(ctx, token, draft, nil)
	if err != nil {
		return nil, err
	}

	tx, err := uc.backend.CreateTransaction(ctx, token, draft, source)
	if err != nil {
		return nil, err
	}

	uc.summaries.Invalidate()
	return tx, nil
}

// Update validates and submits an edit. The original is loaded from the
// backend so its effect on the summary can be reversed before the check.
func (uc *TransactionUseCase) Update(ctx context.Context, token, id string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	existing, err := uc.backend.GetTransaction(ctx, token, id)
	if err != nil {
		return nil, err
	}

	original, err := uc.original(ctx, token, existing)
	if err != nil {
		return nil, err
	}

	source, err := uc.guard(ctx, token, draft, original)
	if err != nil {
		return nil, err
	}

	tx, err := uc.backend.UpdateTransaction(ctx, token, id, draft, source)
	if err != nil {
		return nil, err
	}

	uc.summaries.Invalidate()
	return tx, nil
}

// Delete removes a transaction.
func (uc *TransactionUseCase) Delete(ctx context.Context, token, id string) error {
	if err := uc.backend.DeleteTransaction(ctx, token, id); err != nil {
		return err
	}
	uc.summaries.Invalidate()
	return nil
}

// Get returns a single transaction.
func (uc *TransactionUseCase) Get(ctx context.Context, token, id string) (*domain.Transaction, error) {
	return uc.backend.GetTransaction(ctx, token, id)
}

// ListInput filters and pages the transaction list.
type ListInput struct {
	Filter domain.TransactionFilter
	Limit  int
	Offset int
}

// List returns transactions newest first, filtered in memory.
func (uc *TransactionUseCase) List(ctx context.Context, token string, input ListInput) ([]*domain.Transaction, int, error) {
	all, err := uc.backend.ListTransactions(ctx, token)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*domain.Transaction, 0, len(all))
	for _, tx := range all {
		if input.Filter.Match(tx) {
			matched = append(matched, tx)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	return domain.Paginate(matched, input.Limit, input.Offset), len(matched), nil
}

// original snapshots an existing transaction for edit mode. Records listed
// without a nested category get their funding source from the category id;
// a category that no longer exists counts as cash.
func (uc *TransactionUseCase) original(ctx context.Context, token string, existing *domain.Transaction) (*domain.OriginalTransaction, error) {
	original := existing.Original()
	if original.FundingSource.IsValid() || original.CategoryID == "" {
		return original, nil
	}

	category, err := uc.categories.Resolve(ctx, token, original.CategoryID)
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		original.FundingSource = domain.FundingCash
	case err != nil:
		return nil, err
	default:
		original.FundingSource = category.FundingSource
	}

	return original, nil
}

// guard runs required-field validation, resolves the funding source and,
// for expenses, blocks amounts the cached balance cannot cover.
func (uc *TransactionUseCase) guard(ctx context.Context, token string, draft *domain.TransactionDraft, original *domain.OriginalTransaction) (domain.FundingSource, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	category, err := uc.categories.Resolve(ctx, token, draft.CategoryID)
	if err != nil {
		return "", err
	}

	if draft.Proof != nil {
		if err := draft.Proof.Validate(); err != nil {
			return "", err
		}
	}

	if draft.Kind != domain.KindExpense {
		return category.FundingSource, nil
	}

	summary, err := uc.summaries.Current(ctx, token)
	if err != nil {
		return "", err
	}

	if warning := domain.BalanceWarning(draft.Amount, category.FundingSource, summary, original); warning != "" {
		if uc.metrics != nil {
			uc.metrics.BalanceWarnings.WithLabelValues(string(category.FundingSource)).Inc()
		}
		return "", &domain.InsufficientBalanceError{Warning: warning}
	}

	return category.FundingSource, nil
}
