package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input  string
		want   Kind
		wantOK bool
	}{
		{"expense", KindExpense, true},
		{"deposit", KindDeposit, true},
		{"Expense", "", false},
		{"withdrawal", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.input)
		assert.Equal(t, tt.wantOK, ok, "ParseKind(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseKind(%q)", tt.input)
	}
}

func TestRecordKindHelpers(t *testing.T) {
	assert.True(t, Record{Kind: KindExpense}.IsExpense())
	assert.False(t, Record{Kind: KindExpense}.IsDeposit())
	assert.True(t, Record{Kind: KindDeposit}.IsDeposit())
}
