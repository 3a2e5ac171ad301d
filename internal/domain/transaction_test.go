package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTransactionKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]TransactionKind{
		"income":       KindIncome,
		"Pemasukan":    KindIncome,
		"expense":      KindExpense,
		" pengeluaran": KindExpense,
	} {
		got, err := ParseTransactionKind(in)
		if err != nil || got != want {
			t.Errorf("ParseTransactionKind(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := ParseTransactionKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionDraft_Validate(t *testing.T) {
	t.Parallel()

	base := func() TransactionDraft {
		return TransactionDraft{Kind: KindExpense, CategoryID: "3", Amount: "50000", Date: time.Now()}
	}

	tests := []struct {
		name      string
		mutate    func(d *TransactionDraft)
		wantField string
	}{
		{name: "valid", mutate: func(d *TransactionDraft) {}},
		{name: "missing kind", mutate: func(d *TransactionDraft) { d.Kind = "" }, wantField: "kind"},
		{name: "missing category", mutate: func(d *TransactionDraft) { d.CategoryID = " " }, wantField: "category_id"},
		{name: "zero amount", mutate: func(d *TransactionDraft) { d.Amount = "0" }, wantField: "amount"},
		{name: "non-numeric amount", mutate: func(d *TransactionDraft) { d.Amount = "lima" }, wantField: "amount"},
		{name: "note too long", mutate: func(d *TransactionDraft) { d.Note = string(make([]byte, MaxNoteLength+1)) }, wantField: "note"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := base()
			tt.mutate(&d)
			err := d.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestTransaction_Original(t *testing.T) {
	t.Parallel()

	tx := &Transaction{ID: "9", Kind: KindExpense, CategoryID: "2", FundingSource: FundingBank, Amount: decimal.NewFromInt(75000)}
	orig := tx.Original()

	if orig.Kind != KindExpense || orig.CategoryID != "2" || orig.FundingSource != FundingBank || !orig.Amount.Equal(tx.Amount) {
		t.Fatalf("unexpected original %+v", orig)
	}
}

func TestTransactionFilter_Match(t *testing.T) {
	t.Parallel()

	tx := &Transaction{Kind: KindIncome, Status: StatusPosted, Note: "Infaq Jumat", CategoryLabel: "Kas Tunai"}

	if !(TransactionFilter{}).Match(tx) {
		t.Error("empty filter should match")
	}
	if !(TransactionFilter{Query: "jumat"}).Match(tx) {
		t.Error("query should match note case-insensitively")
	}
	if (TransactionFilter{Kind: KindExpense}).Match(tx) {
		t.Error("kind filter should exclude")
	}
	if (TransactionFilter{Status: StatusDraft}).Match(tx) {
		t.Error("status filter should exclude")
	}
	if (TransactionFilter{Query: "zakat"}).Match(tx) {
		t.Error("unrelated query should not match")
	}
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	got := NormalizeCategory(CategoryRecord{ID: "4", Label: "Kas Masjid", Kind: "pengeluaran"})
	if got.FundingSource != FundingCash || !got.Inferred || got.Kind != KindExpense {
		t.Fatalf("unexpected category %+v", got)
	}

	got = NormalizeCategory(CategoryRecord{ID: "5", Label: "Kas Masjid", FundingSource: "bank", Kind: "lainnya"})
	if got.FundingSource != FundingBank || got.Inferred || got.Kind != "" {
		t.Fatalf("unexpected category %+v", got)
	}
}
