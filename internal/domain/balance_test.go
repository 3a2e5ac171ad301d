package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func summaryWith(cash, bank int64) AccountSummary {
	return AccountSummary{
		CashBalance:  decimal.NewFromInt(cash),
		BankBalance:  decimal.NewFromInt(bank),
		TotalBalance: decimal.NewFromInt(cash + bank),
	}
}

func TestBalanceWarning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		source   FundingSource
		summary  AccountSummary
		original *OriginalTransaction
		wantWarn bool
		contains []string
	}{
		{
			name:     "cash short",
			amount:   "150000",
			source:   FundingCash,
			summary:  summaryWith(100000, 0),
			wantWarn: true,
			contains: []string{"150.000", "100.000", "kas tunai"},
		},
		{
			name:    "cash covered exactly",
			amount:  "100000",
			source:  FundingCash,
			summary: summaryWith(100000, 0),
		},
		{
			name:     "bank short while cash is plenty",
			amount:   "200000",
			source:   FundingBank,
			summary:  summaryWith(1000000, 50000),
			wantWarn: true,
			contains: []string{"rekening bank", "50.000", "200.000"},
		},
		{
			name:    "edit expense adds original back",
			amount:  "140000",
			source:  FundingCash,
			summary: summaryWith(100000, 0),
			original: &OriginalTransaction{
				Kind:          KindExpense,
				Amount:        decimal.NewFromInt(50000),
				FundingSource: FundingCash,
			},
		},
		{
			name:    "edit income subtracts original",
			amount:  "80000",
			source:  FundingCash,
			summary: summaryWith(100000, 0),
			original: &OriginalTransaction{
				Kind:          KindIncome,
				Amount:        decimal.NewFromInt(30000),
				FundingSource: FundingCash,
			},
			wantWarn: true,
			contains: []string{"70.000", "80.000"},
		},
		{
			name:    "original on other source does not help",
			amount:  "140000",
			source:  FundingCash,
			summary: summaryWith(100000, 0),
			original: &OriginalTransaction{
				Kind:          KindExpense,
				Amount:        decimal.NewFromInt(50000),
				FundingSource: FundingBank,
			},
			wantWarn: true,
		},
		{
			name:    "unparseable amount is silent",
			amount:  "abc",
			source:  FundingCash,
			summary: summaryWith(0, 0),
		},
		{
			name:    "zero amount is silent",
			amount:  "0",
			source:  FundingCash,
			summary: summaryWith(0, 0),
		},
		{
			name:    "negative amount is silent",
			amount:  "-5",
			source:  FundingCash,
			summary: summaryWith(0, 0),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BalanceWarning(tt.amount, tt.source, tt.summary, tt.original)
			if tt.wantWarn && got == "" {
				t.Fatalf("expected a warning")
			}
			if !tt.wantWarn && got != "" {
				t.Fatalf("expected no warning, got %q", got)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("warning %q does not contain %q", got, s)
				}
			}
		})
	}
}

func TestAdjustedBalance_DoesNotMutateSummary(t *testing.T) {
	t.Parallel()

	summary := summaryWith(100000, 20000)
	original := &OriginalTransaction{Kind: KindExpense, Amount: decimal.NewFromInt(50000), FundingSource: FundingCash}

	got := AdjustedBalance(summary, FundingCash, original)
	if !got.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("expected 150000, got %s", got)
	}
	if !summary.CashBalance.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("summary was mutated: %s", summary.CashBalance)
	}
}

func TestAdjustedBalance_InvalidOriginalSourceDefaultsToCash(t *testing.T) {
	t.Parallel()

	summary := summaryWith(10000, 10000)
	original := &OriginalTransaction{Kind: KindExpense, Amount: decimal.NewFromInt(5000)}

	if got := AdjustedBalance(summary, FundingCash, original); !got.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected cash 15000, got %s", got)
	}
	if got := AdjustedBalance(summary, FundingBank, original); !got.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected bank untouched, got %s", got)
	}
}

func TestBalanceWarning_Threshold(t *testing.T) {
	t.Parallel()

	summary := summaryWith(1000, 0)
	for a := int64(1); a <= 2000; a += 37 {
		amount := decimal.NewFromInt(a).String()
		warned := BalanceWarning(amount, FundingCash, summary, nil) != ""
		if warned != (a > 1000) {
			t.Fatalf("amount %d: warned=%v", a, warned)
		}
	}
}
