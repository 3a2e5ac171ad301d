package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tells whether money comes in or goes out.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// ParseTransactionKind accepts both the English and the Indonesian spelling
// used by the backend ("pemasukan"/"pengeluaran").
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "pemasukan":
		return KindIncome, nil
	case "expense", "pengeluaran":
		return KindExpense, nil
	default:
		return "", ErrInvalidKind
	}
}

// TransactionStatus is the backend posting state of a transaction.
type TransactionStatus string

const (
	StatusDraft  TransactionStatus = "draft"
	StatusPosted TransactionStatus = "posted"
)

// TransactionCategory is a "jenis transaksi" option with its funding source.
type TransactionCategory struct {
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	Kind          TransactionKind `json:"kind,omitempty"` // empty when the backend does not tag it
	FundingSource FundingSource   `json:"funding_source"`
	Inferred      bool            `json:"inferred"`
}

// CategoryRecord is a category as listed by the backend, before normalization.
type CategoryRecord struct {
	ID            string
	Label         string
	Kind          string
	FundingSource string
}

// NormalizeCategory resolves the record's funding source and kind.
// Unknown kinds are left empty.
func NormalizeCategory(rec CategoryRecord) TransactionCategory {
	source, inferred := InferFundingSource(rec.Label, rec.FundingSource)
	kind, _ := ParseTransactionKind(rec.Kind)

	return TransactionCategory{
		ID:            rec.ID,
		Label:         rec.Label,
		Kind:          kind,
		FundingSource: source,
		Inferred:      inferred,
	}
}

// Transaction is a financial record as stored by the backend.
type Transaction struct {
	ID            string
	Kind          TransactionKind
	CategoryID    string
	CategoryLabel string
	FundingSource FundingSource
	Amount        decimal.Decimal
	Note          string
	SourceLabel   string
	Date          time.Time
	Status        TransactionStatus
	ProofPath     string
	CreatedAt     time.Time
}

// Original returns the snapshot used to undo this transaction's effect on the summary.
func (t *Transaction) Original() *OriginalTransaction {
	return &OriginalTransaction{
		Kind:          t.Kind,
		Amount:        t.Amount,
		CategoryID:    t.CategoryID,
		FundingSource: t.FundingSource,
	}
}

// OriginalTransaction is the record being replaced in edit mode.
type OriginalTransaction struct {
	Kind          TransactionKind
	Amount        decimal.Decimal
	CategoryID    string
	FundingSource FundingSource
}

// TransactionDraft holds in-progress form values for one submission.
type TransactionDraft struct {
	Kind        TransactionKind
	CategoryID  string
	Amount      string
	Note        string
	SourceLabel string
	Date        time.Time
	Proof       *Upload
}

// Validate runs required-field validation. It does not look at balances.
func (d *TransactionDraft) Validate() error {
	if d.Kind != KindIncome && d.Kind != KindExpense {
		return &ValidationError{Field: "kind", Message: ErrInvalidKind.Error()}
	}

	if strings.TrimSpace(d.CategoryID) == "" {
		return &ValidationError{Field: "category_id", Message: "category is required"}
	}

	if _, err := ParseAmount(d.Amount); err != nil {
		return &ValidationError{Field: "amount", Message: err.Error()}
	}

	if len(d.Note) > MaxNoteLength {
		return &ValidationError{Field: "note", Message: "note is too long"}
	}

	return nil
}

// TransactionFilter narrows a fetched list in memory.
type TransactionFilter struct {
	Query  string
	Kind   TransactionKind
	Status TransactionStatus
}

// Match reports whether the transaction passes the filter.
func (f TransactionFilter) Match(t *Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	return MatchesQuery(f.Query, t.Note, t.CategoryLabel, t.SourceLabel)
}
