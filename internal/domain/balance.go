package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BalanceWarning checks a candidate expense against the cached summary.
//
// In edit mode the original transaction already moved the summary, so its
// effect is reversed on a copy of the balances before comparing. An empty
// result means the amount is covered. Unparseable or non-positive amounts
// also yield an empty result; required-field validation reports those.
func BalanceWarning(amount string, source FundingSource, summary AccountSummary, original *OriginalTransaction) string {
	want, err := ParseAmount(amount)
	if err != nil {
		return ""
	}

	available := AdjustedBalance(summary, source, original)
	if available.GreaterThanOrEqual(want) {
		return ""
	}

	return fmt.Sprintf("Saldo %s tidak mencukupi. Saldo tersedia %s, dibutuhkan %s.",
		source.Label(), FormatRupiah(available), FormatRupiah(want))
}

// AdjustedBalance returns the balance of source as it would be without the
// original transaction. The summary itself is not modified.
func AdjustedBalance(summary AccountSummary, source FundingSource, original *OriginalTransaction) decimal.Decimal {
	balances := map[FundingSource]decimal.Decimal{
		FundingCash: summary.CashBalance,
		FundingBank: summary.BankBalance,
	}

	if original != nil && original.Amount.IsPositive() {
		funded := original.FundingSource
		if !funded.IsValid() {
			funded = FundingCash
		}

		switch original.Kind {
		case KindIncome:
			balances[funded] = balances[funded].Sub(original.Amount)
		case KindExpense:
			balances[funded] = balances[funded].Add(original.Amount)
		}
	}

	return balances[source]
}
