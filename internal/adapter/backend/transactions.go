package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/masjid-console/internal/domain"
)

const (
	transactionsPath = "/api/transaksi"
	categoriesPath   = "/api/jenis_transaksi"
)

type categoryRecord struct {
	ID         flexString `json:"id"`
	Name       string     `json:"nama"`
	Kind       string     `json:"kategori"`
	SourceFund string     `json:"sumber_dana"`
}

func (r categoryRecord) toDomain() (domain.CategoryRecord, error) {
	if err := required("jenis_transaksi", map[string]string{"id": string(r.ID), "nama": r.Name}); err != nil {
		return domain.CategoryRecord{}, err
	}
	return domain.CategoryRecord{
		ID:            string(r.ID),
		Label:         r.Name,
		Kind:          r.Kind,
		FundingSource: r.SourceFund,
	}, nil
}

// ListCategories implements usecase.CategoryLister.
func (c *Client) ListCategories(ctx context.Context, token string) ([]domain.CategoryRecord, error) {
	var recs []categoryRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: categoriesPath, token: token, endpoint: "jenis_transaksi.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]domain.CategoryRecord, 0, len(recs))
	for _, r := range recs {
		rec, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed category")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type transactionRecord struct {
	ID         flexString       `json:"id"`
	Kind       string           `json:"kategori"`
	CategoryID flexString       `json:"jenis_transaksi_id"`
	Category   *categoryRecord  `json:"jenis_transaksi"`
	Amount     *decimal.Decimal `json:"nominal"`
	Note       string           `json:"keterangan"`
	Source     string           `json:"sumber"`
	Date       flexTime         `json:"tanggal"`
	Status     string           `json:"status"`
	Proof      string           `json:"bukti"`
	CreatedAt  flexTime         `json:"created_at"`
}

func (r transactionRecord) toDomain() (*domain.Transaction, error) {
	if err := required("transaksi", map[string]string{"id": string(r.ID)}); err != nil {
		return nil, err
	}
	if r.Amount == nil {
		return nil, fmt.Errorf("%w: transaksi %s without nominal", domain.ErrMalformedPayload, r.ID)
	}

	kind, err := domain.ParseTransactionKind(r.Kind)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		ID:          string(r.ID),
		Kind:        kind,
		CategoryID:  string(r.CategoryID),
		Amount:      *r.Amount,
		Note:        r.Note,
		SourceLabel: r.Source,
		Date:        r.Date.Time,
		ProofPath:   r.Proof,
		CreatedAt:   r.CreatedAt.Time,
		Status:      domain.StatusPosted,
	}

	if strings.EqualFold(r.Status, string(domain.StatusDraft)) {
		tx.Status = domain.StatusDraft
	}

	// FundingSource stays empty without a nested category; callers resolve
	// it from CategoryID.
	if r.Category != nil {
		if tx.CategoryID == "" {
			tx.CategoryID = string(r.Category.ID)
		}
		tx.CategoryLabel = r.Category.Name
		tx.FundingSource, _ = domain.InferFundingSource(r.Category.Name, r.Category.SourceFund)
	}

	return tx, nil
}

// ListTransactions implements usecase.TransactionBackend.
func (c *Client) ListTransactions(ctx context.Context, token string) ([]*domain.Transaction, error) {
	var recs []transactionRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: transactionsPath, token: token, endpoint: "transaksi.list"}, &recs); err != nil {
		return nil, err
	}

	out := make([]*domain.Transaction, 0, len(recs))
	for _, r := range recs {
		tx, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Str("id", string(r.ID)).Msg("skipping malformed transaction")
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// GetTransaction implements usecase.TransactionBackend.
func (c *Client) GetTransaction(ctx context.Context, token, id string) (*domain.Transaction, error) {
	var rec transactionRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: resourcePath(transactionsPath, id), token: token, endpoint: "transaksi.get"}, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// CreateTransaction implements usecase.TransactionBackend.
func (c *Client) CreateTransaction(ctx context.Context, token string, draft *domain.TransactionDraft, source domain.FundingSource) (*domain.Transaction, error) {
	return c.sendTransaction(ctx, http.MethodPost, transactionsPath, token, "transaksi.create", draft, source)
}

// UpdateTransaction implements usecase.TransactionBackend.
func (c *Client) UpdateTransaction(ctx context.Context, token, id string, draft *domain.TransactionDraft, source domain.FundingSource) (*domain.Transaction, error) {
	return c.sendTransaction(ctx, http.MethodPut, resourcePath(transactionsPath, id), token, "transaksi.update", draft, source)
}

// DeleteTransaction implements usecase.TransactionBackend.
func (c *Client) DeleteTransaction(ctx context.Context, token, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(transactionsPath, id), token: token, endpoint: "transaksi.delete"}, nil)
}

func (c *Client) sendTransaction(ctx context.Context, method, path, token, endpoint string, draft *domain.TransactionDraft, source domain.FundingSource) (*domain.Transaction, error) {
	amount, err := domain.ParseAmount(draft.Amount)
	if err != nil {
		return nil, err
	}

	kind := "pemasukan"
	if draft.Kind == domain.KindExpense {
		kind = "pengeluaran"
	}

	fields := map[string]string{
		"kategori":           kind,
		"jenis_transaksi_id": draft.CategoryID,
		"nominal":            amount.String(),
		"keterangan":         draft.Note,
		"sumber":             draft.SourceLabel,
		"sumber_dana":        string(source),
	}
	if !draft.Date.IsZero() {
		fields["tanggal"] = draft.Date.Format(dateLayout)
	}

	req, err := formBody{fields: fields, file: withField(draft.Proof, "bukti")}.request(method, path, token, endpoint)
	if err != nil {
		return nil, err
	}

	var rec transactionRecord
	if err := c.do(ctx, req, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}
