package report

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/model"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Entry is a described amount in a payload.
type Entry struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Totals are the headline figures of a payload.
type Totals struct {
	Expenses decimal.Decimal `json:"expenses"`
	Deposits decimal.Decimal `json:"deposits"`
	Balance  decimal.Decimal `json:"balance"`
}

// Payload is the structured summary handed to callers and to the analysis
// collaborator.
type Payload struct {
	Expenses []Entry `json:"expenses"`
	Deposits []Entry `json:"deposits"`
	Totals   Totals  `json:"totals"`
}

// FormatSummary turns a View into a Payload. Lists are never nil so they
// encode as [].
func FormatSummary(v View) Payload {
	return Payload{
		Expenses: entries(v.Expenses),
		Deposits: entries(v.Deposits),
		Totals: Totals{
			Expenses: v.TotalExpenses,
			Deposits: v.TotalDeposits,
			Balance:  v.Balance,
		},
	}
}

// JSON encodes the payload compactly.
func (p Payload) JSON() ([]byte, error) {
	return json.Marshal(p)
}

func entries(items []CategoryAmount) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		out = append(out, Entry{Description: it.Category, Amount: it.Amount})
	}
	return out
}

// DepositPair encodes as a two element [category, amount] array.
type DepositPair struct {
	Category string
	Amount   decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (p DepositPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Category, p.Amount})
}

// Ledger is the per-category view of a ledger returned by the
// transactions endpoint.
type Ledger struct {
	Expenses map[string]decimal.Decimal `json:"expenses"`
	Deposits []DepositPair              `json:"deposits"`
	Balance  decimal.Decimal            `json:"balance"`
}

// LedgerPayload builds a Ledger from a View.
func LedgerPayload(v View) Ledger {
	l := Ledger{
		Expenses: make(map[string]decimal.Decimal, len(v.Expenses)),
		Deposits: make([]DepositPair, 0, len(v.Deposits)),
		Balance:  v.Balance,
	}
	for _, e := range v.Expenses {
		l.Expenses[e.Category] = e.Amount
	}
	for _, d := range v.Deposits {
		l.Deposits = append(l.Deposits, DepositPair{Category: d.Category, Amount: d.Amount})
	}
	return l
}

// Stats are the headline numbers of a ledger.
type Stats struct {
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
	RecordCount      int             `json:"record_count"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TopExpenses      []Entry         `json:"top_expenses"`
	Recent           []model.Record  `json:"recent"`
}

// StatsPayload builds Stats from a View.
func StatsPayload(v View) Stats {
	recent := v.Recent
	if recent == nil {
		recent = []model.Record{}
	}
	return Stats{
		Balance:          v.Balance,
		TransactionCount: v.TransactionCount(),
		RecordCount:      v.RecordCount,
		TotalExpenses:    v.TotalExpenses,
		TotalDeposits:    v.TotalDeposits,
		TopExpenses:      entries(v.TopExpenses),
		Recent:           recent,
	}
}
