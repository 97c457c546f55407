package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartspend-dev/smartspend/internal/model"
)

func TestFormatSummary(t *testing.T) {
	v := Aggregate([]model.Record{
		expense(0, "coffee", "3.5"),
		deposit(1, "salary", "1000"),
		expense(2, "coffee", "1.5"),
	})

	p := FormatSummary(v)
	require.Len(t, p.Expenses, 1)
	assert.Equal(t, "coffee", p.Expenses[0].Description)
	assert.True(t, p.Expenses[0].Amount.Equal(dec("5")))
	require.Len(t, p.Deposits, 1)
	assert.True(t, p.Totals.Balance.Equal(dec("995")))

	data, err := p.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"expenses": [{"description": "coffee", "amount": 5}],
		"deposits": [{"description": "salary", "amount": 1000}],
		"totals": {"expenses": 5, "deposits": 1000, "balance": 995}
	}`, string(data))
}

func TestFormatSummary_EmptyListsEncodeAsArrays(t *testing.T) {
	data, err := FormatSummary(Aggregate(nil)).JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"expenses": [], "deposits": [], "totals": {"expenses": 0, "deposits": 0, "balance": 0}}`, string(data))
}

func TestLedgerPayload(t *testing.T) {
	v := Aggregate([]model.Record{
		expense(0, "rent", "400"),
		deposit(1, "salary", "1000.25"),
		deposit(2, "gift", "20"),
	})

	data, err := json.Marshal(LedgerPayload(v))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"expenses": {"rent": 400},
		"deposits": [["salary", 1000.25], ["gift", 20]],
		"balance": 620.25
	}`, string(data))
}

func TestLedgerPayload_Empty(t *testing.T) {
	data, err := json.Marshal(LedgerPayload(Aggregate(nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"expenses": {}, "deposits": [], "balance": 0}`, string(data))
}

func TestStatsPayload(t *testing.T) {
	v := Aggregate([]model.Record{
		expense(0, "coffee", "3"),
		expense(1, "coffee", "3"),
		deposit(2, "salary", "100"),
	})

	s := StatsPayload(v)
	assert.Equal(t, 2, s.TransactionCount)
	assert.Equal(t, 3, s.RecordCount)
	assert.True(t, s.Balance.Equal(dec("94")))
	require.Len(t, s.TopExpenses, 1)
	assert.Len(t, s.Recent, 3)

	data, err := json.Marshal(StatsPayload(Aggregate(nil)))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{}, decoded["top_expenses"])
	assert.Equal(t, []any{}, decoded["recent"])
	assert.Equal(t, float64(0), decoded["transaction_count"])
}
