// Package report derives summaries from a user's ledger.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/model"
)

// Defaults used by Aggregate.
const (
	DefaultTopN         = 5
	DefaultRecentWindow = 10
)

// Options tune the derived parts of a View.
type Options struct {
	TopN         int
	RecentWindow int
}

// DefaultOptions returns the options used by Aggregate.
func DefaultOptions() Options {
	return Options{TopN: DefaultTopN, RecentWindow: DefaultRecentWindow}
}

// CategoryAmount is an amount attributed to a category (the verbatim
// statement text).
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// View is the aggregate of one user's ledger. It is recomputed on every
// read and never cached.
type View struct {
	// Expenses are summed per category, in order of first appearance.
	Expenses []CategoryAmount
	// Deposits are the individual deposit entries, in ledger order.
	Deposits []CategoryAmount

	TotalExpenses decimal.Decimal
	TotalDeposits decimal.Decimal
	Balance       decimal.Decimal

	TopExpenses []CategoryAmount
	Recent      []model.Record

	// RecordCount is the number of valid ledger rows.
	RecordCount int
}

// Aggregate builds a View with the default top-N and recent window.
func Aggregate(records []model.Record) View {
	return AggregateWith(records, DefaultOptions())
}

// AggregateWith builds a View. Non-positive option values fall back to the
// defaults.
func AggregateWith(records []model.Record, opts Options) View {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.RecentWindow <= 0 {
		opts.RecentWindow = DefaultRecentWindow
	}

	v := View{
		TotalExpenses: decimal.Zero,
		TotalDeposits: decimal.Zero,
		RecordCount:   len(records),
	}

	index := make(map[string]int)
	for _, rec := range records {
		switch rec.Kind {
		case model.KindExpense:
			i, ok := index[rec.Category]
			if !ok {
				i = len(v.Expenses)
				index[rec.Category] = i
				v.Expenses = append(v.Expenses, CategoryAmount{Category: rec.Category, Amount: decimal.Zero})
			}
			v.Expenses[i].Amount = v.Expenses[i].Amount.Add(rec.Amount)
			v.TotalExpenses = v.TotalExpenses.Add(rec.Amount)
		case model.KindDeposit:
			v.Deposits = append(v.Deposits, CategoryAmount{Category: rec.Category, Amount: rec.Amount})
			v.TotalDeposits = v.TotalDeposits.Add(rec.Amount)
		}
	}
	v.Balance = v.TotalDeposits.Sub(v.TotalExpenses)

	v.TopExpenses = topN(v.Expenses, opts.TopN)

	start := max(len(records)-opts.RecentWindow, 0)
	v.Recent = append([]model.Record(nil), records[start:]...)

	return v
}

// TransactionCount is the number of distinct expense categories plus the
// number of deposit entries.
func (v View) TransactionCount() int {
	return len(v.Expenses) + len(v.Deposits)
}

// ExpenseByCategory returns the summed expense of a category.
func (v View) ExpenseByCategory(category string) (decimal.Decimal, bool) {
	for _, e := range v.Expenses {
		if e.Category == category {
			return e.Amount, true
		}
	}
	return decimal.Zero, false
}

// Empty reports whether the view was built from no records.
func (v View) Empty() bool {
	return v.RecordCount == 0
}

// topN returns the n largest amounts. Equal amounts keep their input order.
func topN(items []CategoryAmount, n int) []CategoryAmount {
	sorted := append([]CategoryAmount(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
