package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger record.
type Kind string

const (
	KindExpense Kind = "expense"
	KindDeposit Kind = "deposit"
)

// ParseKind maps the persisted type column to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindExpense:
		return KindExpense, true
	case KindDeposit:
		return KindDeposit, true
	}
	return "", false
}

// Record is one row of a user's ledger.
type Record struct {
	Timestamp time.Time       `json:"timestamp"`
	Kind      Kind            `json:"type"`
	Category  string          `json:"category"` // verbatim statement text, trimmed
	Amount    decimal.Decimal `json:"amount"`
}

// IsExpense reports whether the record is an expense.
func (r Record) IsExpense() bool { return r.Kind == KindExpense }

// IsDeposit reports whether the record is a deposit.
func (r Record) IsDeposit() bool { return r.Kind == KindDeposit }
