package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/masjid-console/internal/domain"
)

type summaryRecord struct {
	Income       *decimal.Decimal `json:"income"`
	Expense      *decimal.Decimal `json:"expense"`
	DraftCount   flexInt          `json:"draftCount"`
	CashBalance  *decimal.Decimal `json:"cashBalance"`
	BankBalance  *decimal.Decimal `json:"bankBalance"`
	TotalBalance *decimal.Decimal `json:"totalBalance"`
}

func (r summaryRecord) toDomain() (domain.AccountSummary, error) {
	if r.CashBalance == nil || r.BankBalance == nil {
		return domain.AccountSummary{}, fmt.Errorf("%w: summary without cashBalance/bankBalance", domain.ErrMalformedPayload)
	}

	s := domain.AccountSummary{
		DraftCount:  int(r.DraftCount),
		CashBalance: *r.CashBalance,
		BankBalance: *r.BankBalance,
	}
	if r.Income != nil {
		s.Income = *r.Income
	}
	if r.Expense != nil {
		s.Expense = *r.Expense
	}
	if r.TotalBalance != nil {
		s.TotalBalance = *r.TotalBalance
	} else {
		s.TotalBalance = s.CashBalance.Add(s.BankBalance)
	}

	return s, nil
}

// FetchSummary implements usecase.SummaryFetcher.
func (c *Client) FetchSummary(ctx context.Context, token string) (domain.AccountSummary, error) {
	var rec summaryRecord
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/transaksi/summary", token: token, endpoint: "transaksi.summary"}, &rec); err != nil {
		return domain.AccountSummary{}, err
	}

	summary, err := rec.toDomain()
	if err != nil {
		c.logger.Warn().Err(err).Msg("rejected summary payload")
		return domain.AccountSummary{}, err
	}

	return summary, nil
}
