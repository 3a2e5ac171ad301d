package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSummary is a point-in-time snapshot of the mosque's balances as
// reported by the backend. It is never computed locally.
type AccountSummary struct {
	Income       decimal.Decimal
	Expense      decimal.Decimal
	DraftCount   int
	CashBalance  decimal.Decimal
	BankBalance  decimal.Decimal
	TotalBalance decimal.Decimal
	FetchedAt    time.Time
}

// Balance returns the balance held by a funding source.
func (s AccountSummary) Balance(source FundingSource) decimal.Decimal {
	if source == FundingBank {
		return s.BankBalance
	}
	return s.CashBalance
}

// IsZero reports whether the summary was never fetched.
func (s AccountSummary) IsZero() bool {
	return s.FetchedAt.IsZero()
}
